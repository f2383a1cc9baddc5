package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"financial_analyst/pkg/core/calc"
)

type stubFetcher struct {
	profile *Profile
	err     error
	panics  bool
}

func (s *stubFetcher) FetchStatements(ctx context.Context, symbol string) (*calc.Statements, error) {
	return nil, errors.New("not used")
}

func (s *stubFetcher) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	if s.panics {
		panic("upstream exploded")
	}
	return s.profile, s.err
}

func TestNormalizeSymbol(t *testing.T) {
	for _, ok := range []string{"AAPL", " msft ", "BRK-B", "BRK.B", "RELIANCE.NS", "7203.T"} {
		_, err := NormalizeSymbol(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "AA PL", "$AAPL", "../etc/passwd", "TOOLONGSYMBOLNAME123"} {
		_, err := NormalizeSymbol(bad)
		assert.True(t, errors.Is(err, ErrInvalidSymbol), bad)
	}
}

func TestIsValidTicker(t *testing.T) {
	ctx := context.Background()

	assert.True(t, IsValidTicker(ctx, &stubFetcher{profile: &Profile{Name: "Apple Inc."}}, "AAPL"))
	assert.False(t, IsValidTicker(ctx, &stubFetcher{profile: &Profile{}}, "AAPL"), "empty name")
	assert.False(t, IsValidTicker(ctx, &stubFetcher{err: ErrNotFound}, "DELISTED"))
	assert.False(t, IsValidTicker(ctx, &stubFetcher{profile: &Profile{Name: "x"}}, "not a ticker!"))
	assert.False(t, IsValidTicker(ctx, &stubFetcher{panics: true}, "AAPL"))
	assert.False(t, IsValidTicker(ctx, nil, "AAPL"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Shares rose 5% today", PlainText("<div><p>Shares rose <em>5%</em></p>\n<p>today</p></div>"))
	assert.Equal(t, "no markup here", PlainText("  no   markup\nhere "))
	assert.Equal(t, "", PlainText("<script>alert(1)</script>"))
}
