package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"spendlog/internal/core"
)

// Gemini is the hosted-model extractor. Every call runs under a bounded
// timeout; Extract falls back to the rule parser when the model fails so
// a model outage degrades accuracy, not availability.
type Gemini struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	fallback *RuleExtractor
}

var _ Extractor = (*Gemini)(nil)

type GeminiConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	DefaultCurrency string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gemini{
		client:   client,
		model:    model,
		timeout:  timeout,
		fallback: NewRuleExtractor(cfg.DefaultCurrency),
	}, nil
}

// generate sends a single text prompt and returns the raw model output.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", core.ErrExtractionFailed, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", core.ErrExtractionFailed)
	}
	return text, nil
}

type extractPayload struct {
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes"`
	Timestamp   string   `json:"timestamp"`
}

func (g *Gemini) Extract(ctx context.Context, text string, now time.Time) (ParsedExpense, error) {
	raw, err := g.generate(ctx, extractPrompt(text, g.fallback.DefaultCurrency, now))
	if err != nil {
		return g.fallback.Extract(ctx, text, now)
	}

	var payload extractPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return g.fallback.Extract(ctx, text, now)
	}

	cents, err := core.ParseFloatToCents(payload.Amount)
	if err != nil {
		return g.fallback.Extract(ctx, text, now)
	}

	category, _ := core.ParseCategory(payload.Category)
	currency := strings.TrimSpace(payload.Currency)
	if currency == "" {
		currency = g.fallback.DefaultCurrency
	}
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		description = strings.TrimSpace(text)
	}
	ts := now
	if parsed, perr := parseModelTime(payload.Timestamp); perr == nil {
		ts = parsed
	}

	return ParsedExpense{
		Amount:      core.Money{Cents: cents},
		Currency:    currency,
		Category:    category,
		Description: description,
		Tags:        payload.Tags,
		Notes:       payload.Notes,
		Timestamp:   ts,
	}, nil
}

type interpretPayload struct {
	Intent      string  `json:"intent"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	StartB      *string `json:"start_b"`
	EndB        *string `json:"end_b"`
	Granularity *string `json:"granularity"`
	Category    *string `json:"category"`
}

func (g *Gemini) InterpretQuery(ctx context.Context, query string, now time.Time) (QueryInterpretation, error) {
	raw, err := g.generate(ctx, interpretPrompt(query, now))
	if err != nil {
		return QueryInterpretation{}, err
	}

	var payload interpretPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return QueryInterpretation{}, fmt.Errorf("%w: unmarshal interpretation: %v", core.ErrExtractionFailed, err)
	}

	out := QueryInterpretation{}
	switch QueryIntent(strings.ToLower(payload.Intent)) {
	case IntentTotal, IntentByCategory, IntentTrend, IntentComparison:
		out.Intent = QueryIntent(strings.ToLower(payload.Intent))
	default:
		return QueryInterpretation{}, fmt.Errorf("%w: unknown intent %q", core.ErrExtractionFailed, payload.Intent)
	}

	out.Start, err = parseModelDate(payload.Start)
	if err != nil {
		return QueryInterpretation{}, fmt.Errorf("%w: bad start date %q", core.ErrExtractionFailed, payload.Start)
	}
	out.End, err = parseModelDate(payload.End)
	if err != nil {
		return QueryInterpretation{}, fmt.Errorf("%w: bad end date %q", core.ErrExtractionFailed, payload.End)
	}
	if payload.StartB != nil && payload.EndB != nil {
		out.StartB, err = parseModelDate(*payload.StartB)
		if err != nil {
			return QueryInterpretation{}, fmt.Errorf("%w: bad second range", core.ErrExtractionFailed)
		}
		out.EndB, err = parseModelDate(*payload.EndB)
		if err != nil {
			return QueryInterpretation{}, fmt.Errorf("%w: bad second range", core.ErrExtractionFailed)
		}
	}
	if payload.Granularity != nil {
		switch gran := strings.ToLower(*payload.Granularity); gran {
		case "day", "week", "month":
			out.Granularity = gran
		}
	}
	if payload.Category != nil {
		if cat, ok := core.ParseCategory(*payload.Category); ok {
			out.Category = &cat
		}
	}
	return out, nil
}

func (g *Gemini) Summarize(ctx context.Context, facts string) (string, error) {
	raw, err := g.generate(ctx, summarizePrompt(facts))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// cleanModelJSON strips markdown fences and surrounding junk when the
// model ignores the no-fences instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON object if junk remains around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func parseModelTime(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.Replace(s, "Z", "+00:00", 1))
	for _, layout := range []string{
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func parseModelDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
}
