package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"financial_analyst/pkg/core/calc"
	"financial_analyst/pkg/core/utils"
)

// companyFile is the on-disk layout of <dir>/<SYMBOL>.hjson.
type companyFile struct {
	Profile         Profile             `json:"profile"`
	Snapshot        calc.Snapshot       `json:"snapshot"`
	BalanceSheet    calc.StatementTable `json:"balance_sheet"`
	IncomeStatement calc.StatementTable `json:"income_statement"`
	CashFlow        calc.StatementTable `json:"cash_flow"`
	News            []NewsItem          `json:"news"`
}

// FileFetcher serves statements from hand-maintained Hjson files. It is
// used offline and for demos.
type FileFetcher struct {
	dir string
}

// NewFileFetcher reads company files from dir.
func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{dir: dir}
}

func (f *FileFetcher) load(symbol string) (*companyFile, string, error) {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(f.dir, s+".hjson")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, s, fmt.Errorf("%w: %s", ErrNotFound, s)
		}
		return nil, s, fmt.Errorf("failed to read %s: %w", path, err)
	}

	jsonData, err := utils.ParseHJSON(string(raw))
	if err != nil {
		return nil, s, fmt.Errorf("%s: %w", path, err)
	}
	var cf companyFile
	if err := json.Unmarshal([]byte(jsonData), &cf); err != nil {
		return nil, s, fmt.Errorf("%s: %w", path, err)
	}
	return &cf, s, nil
}

// FetchStatements implements Fetcher. A statement missing from the file is
// left nil; an empty object means present with no line items.
func (f *FileFetcher) FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error) {
	cf, s, err := f.load(symbol)
	if err != nil {
		return nil, err
	}
	stmts := &calc.Statements{
		Symbol:          s,
		BalanceSheet:    cf.BalanceSheet,
		IncomeStatement: cf.IncomeStatement,
		CashFlow:        cf.CashFlow,
		Snapshot:        cf.Snapshot,
	}
	if stmts.Snapshot.Currency == "" {
		stmts.Snapshot.Currency = cf.Profile.Currency
	}
	return stmts, nil
}

// FetchProfile implements Fetcher.
func (f *FileFetcher) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	cf, s, err := f.load(symbol)
	if err != nil {
		return nil, err
	}
	p := cf.Profile
	p.Symbol = s
	p.Market = cf.Snapshot
	return &p, nil
}

// FetchNews implements NewsSource, newest first.
func (f *FileFetcher) FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	cf, _, err := f.load(symbol)
	if err != nil {
		return nil, err
	}
	items := append([]NewsItem(nil), cf.News...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Published.After(items[j].Published) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Symbols lists the companies available in the directory.
func (f *FileFetcher) Symbols() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hjson") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(e.Name(), ".hjson"))
	}
	sort.Strings(symbols)
	return symbols, nil
}

var (
	_ Fetcher    = (*FileFetcher)(nil)
	_ NewsSource = (*FileFetcher)(nil)
)
