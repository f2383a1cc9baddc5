// Package sentiment scores recent news headlines for a company and reduces
// them to an overall market tone.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"financial_analyst/pkg/core/agent"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/prompt"
	"financial_analyst/pkg/core/utils"
)

// MaxHeadlines is the number of headlines scored per request.
const MaxHeadlines = 25

// Tone thresholds on the average score.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

type Tone string

const (
	Positive Tone = "Positive"
	Negative Tone = "Negative"
	Neutral  Tone = "Neutral"
)

// Result is the sentiment of one company's recent news.
type Result struct {
	Sentiment Tone      `json:"sentiment"`
	AvgScore  float64   `json:"avg_score"`
	Scores    []float64 `json:"scores"`
	Headlines []string  `json:"headlines"`
}

// Classify maps an average score to a tone.
func Classify(avg float64) Tone {
	switch {
	case avg > positiveThreshold:
		return Positive
	case avg < negativeThreshold:
		return Negative
	}
	return Neutral
}

// Aggregate averages the scores (rounded to three decimals) and classifies
// the result. No scores means a neutral zero.
func Aggregate(headlines []string, scores []float64) *Result {
	var avg float64
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}
	if headlines == nil {
		headlines = []string{}
	}
	if scores == nil {
		scores = []float64{}
	}
	return &Result{
		Sentiment: Classify(avg),
		AvgScore:  math.Round(avg*1000) / 1000,
		Scores:    scores,
		Headlines: headlines,
	}
}

// Analyzer fetches headlines and has an LLM score them.
type Analyzer struct {
	news    ingest.NewsSource
	llm     agent.Executor
	prompts *prompt.Registry
	limit   int
}

func NewAnalyzer(news ingest.NewsSource, llm agent.Executor, prompts *prompt.Registry) *Analyzer {
	return &Analyzer{news: news, llm: llm, prompts: prompts, limit: MaxHeadlines}
}

// Analyze scores up to MaxHeadlines recent headlines about symbol.
func (a *Analyzer) Analyze(ctx context.Context, symbol, companyName string) (*Result, error) {
	items, err := a.news.FetchNews(ctx, symbol, a.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	headlines := make([]string, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item.Title)
		if text == "" {
			text = strings.TrimSpace(item.Summary)
		}
		if text == "" {
			continue
		}
		headlines = append(headlines, text)
		if len(headlines) == a.limit {
			break
		}
	}
	if len(headlines) == 0 {
		return Aggregate(nil, nil), nil
	}

	if companyName == "" {
		companyName = symbol
	}
	scores, err := a.Score(ctx, companyName, headlines)
	if err != nil {
		return nil, err
	}

	result := Aggregate(headlines, scores)
	log.Debug().
		Str("component", "sentiment").
		Str("symbol", symbol).
		Int("headlines", len(headlines)).
		Float64("avg_score", result.AvgScore).
		Msg("scored headlines")
	return result, nil
}

// scoreResponse is the JSON object the scoring prompt asks for.
type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score asks the LLM for one score per headline. Scores are clamped to
// [-1, 1]; a reply with the wrong number of scores is an error.
func (a *Analyzer) Score(ctx context.Context, companyName string, headlines []string) ([]float64, error) {
	var list strings.Builder
	for i, h := range headlines {
		fmt.Fprintf(&list, "%d. %s\n", i+1, h)
	}

	system, user, err := a.prompts.Render(prompt.IDSentimentScore, prompt.NewContext().
		Set("CompanyName", companyName).
		Set("Headlines", strings.TrimRight(list.String(), "\n")).
		Set("Count", len(headlines)))
	if err != nil {
		return nil, err
	}

	raw, err := a.llm.ExecutePrompt(ctx, agent.RoleSentiment, user, system, map[string]interface{}{"json": true})
	if err != nil {
		return nil, fmt.Errorf("sentiment scoring failed: %w", err)
	}

	var resp scoreResponse
	if _, err := utils.SmartParse(raw, &resp); err != nil {
		return nil, fmt.Errorf("unparseable sentiment response: %w", err)
	}
	if len(resp.Scores) != len(headlines) {
		return nil, fmt.Errorf("sentiment response has %d scores for %d headlines", len(resp.Scores), len(headlines))
	}

	for i, s := range resp.Scores {
		resp.Scores[i] = math.Max(-1, math.Min(1, s))
	}
	return resp.Scores, nil
}
