package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/core/report"
)

// ErrReportNotFound is returned when no report has the requested ID.
var ErrReportNotFound = errors.New("report not found")

// Summary is the listing view of an archived report.
type Summary struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReportStore archives generated reports.
// Hybrid vault: DB (primary) when a pool is configured, JSON files otherwise.
type ReportStore struct {
	pool    *pgxpool.Pool
	fileDir string
	logger  zerolog.Logger
}

// NewReportStore creates a store. If pool is nil, reports are kept as JSON
// files in dir (default .cache/reports).
func NewReportStore(pool *pgxpool.Pool, dir string) *ReportStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "reports")
	}
	logger := log.With().Str("component", "store").Logger()
	if pool == nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("cannot create report directory")
		}
	}
	return &ReportStore{pool: pool, fileDir: dir, logger: logger}
}

// Backend names the active storage.
func (s *ReportStore) Backend() string {
	if s.pool != nil {
		return "postgres"
	}
	return "file"
}

// Save persists a report, replacing any report with the same ID.
func (s *ReportStore) Save(ctx context.Context, rep *report.Report) error {
	if _, err := uuid.Parse(rep.ID); err != nil {
		return fmt.Errorf("invalid report id %q: %w", rep.ID, err)
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if s.pool != nil {
		query := `
			INSERT INTO analysis_reports (id, symbol, company_name, report_json, generated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				company_name = EXCLUDED.company_name,
				report_json = EXCLUDED.report_json,
				generated_at = EXCLUDED.generated_at
		`
		if _, err := s.pool.Exec(ctx, query, rep.ID, rep.Symbol, companyName(rep), data, rep.GeneratedAt); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	} else {
		if err := os.WriteFile(s.path(rep.ID), data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	s.logger.Debug().Str("report_id", rep.ID).Str("symbol", rep.Symbol).Str("backend", s.Backend()).Msg("report saved")
	return nil
}

// Get loads a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*report.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}

	var data []byte
	if s.pool != nil {
		err := s.pool.QueryRow(ctx, `SELECT report_json FROM analysis_reports WHERE id = $1`, id).Scan(&data)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(s.path(id))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &rep, nil
}

// List returns the most recent reports first, optionally for one symbol.
func (s *ReportStore) List(ctx context.Context, symbol string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.pool != nil {
		return s.listDB(ctx, symbol, limit)
	}
	return s.listFiles(symbol, limit)
}

func (s *ReportStore) listDB(ctx context.Context, symbol string, limit int) ([]Summary, error) {
	query := `
		SELECT id::text, symbol, COALESCE(company_name, ''), generated_at
		FROM analysis_reports
		WHERE $1 = '' OR symbol = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Symbol, &sum.CompanyName, &sum.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// listFiles scans the report directory. Fine for local use.
func (s *ReportStore) listFiles(symbol string, limit int) ([]Summary, error) {
	entries, err := os.ReadDir(s.fileDir)
	if errors.Is(err, os.ErrNotExist) {
		return []Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	summaries := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.fileDir, entry.Name()))
		if err != nil {
			continue
		}
		var rep report.Report
		if err := json.Unmarshal(data, &rep); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable report")
			continue
		}
		if symbol != "" && rep.Symbol != symbol {
			continue
		}
		summaries = append(summaries, Summary{
			ID:          rep.ID,
			Symbol:      rep.Symbol,
			CompanyName: companyName(&rep),
			GeneratedAt: rep.GeneratedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt) })
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *ReportStore) path(id string) string {
	return filepath.Join(s.fileDir, id+".json")
}

func companyName(rep *report.Report) string {
	if rep.Company == nil {
		return ""
	}
	return rep.Company.DisplayName()
}
