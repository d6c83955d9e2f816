package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"spendlog/internal/core"
)

// RuleExtractor is the deterministic fallback: a regex amount scanner and
// keyword category buckets. It is also a full Extractor so the service
// runs without model credentials (tests, local development).
type RuleExtractor struct {
	DefaultCurrency string
}

var _ Extractor = (*RuleExtractor)(nil)

func NewRuleExtractor(defaultCurrency string) *RuleExtractor {
	return &RuleExtractor{DefaultCurrency: defaultCurrency}
}

var (
	// A currency-marked amount ("$3.50", "$ 12") is unambiguous.
	markedAmountRE = regexp.MustCompile(`\$\s*(\d+(?:[.,]\d{1,2})?)`)
	// A bare number; only trusted after clock times are stripped.
	bareAmountRE = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)
	// A clock time like "12:30" or "9:05".
	clockRE = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

var categoryKeywords = []struct {
	category core.Category
	words    []string
}{
	{core.CategoryFood, []string{"eat", "food", "lunch", "dinner", "breakfast", "restaurant", "coffee", "snack"}},
	{core.CategoryGroceries, []string{"grocery", "groceries", "supermarket", "market"}},
	{core.CategoryTransportation, []string{"transport", "taxi", "bus", "train", "grab", "uber", "mrt", "fuel", "petrol"}},
	{core.CategoryEntertainment, []string{"movie", "cinema", "game", "concert", "entertainment"}},
	{core.CategoryUtilities, []string{"electric", "electricity", "water bill", "gas bill", "internet", "utility", "utilities"}},
	{core.CategoryHealthcare, []string{"doctor", "clinic", "pharmacy", "medicine", "dental", "hospital"}},
	{core.CategoryEducation, []string{"course", "class", "tuition", "book", "school"}},
	{core.CategoryTravel, []string{"flight", "hotel", "trip", "travel", "airbnb"}},
	{core.CategorySubscription, []string{"subscription", "netflix", "spotify", "membership"}},
	{core.CategoryFamily, []string{"kids", "toys", "family", "baby"}},
	{core.CategoryShopping, []string{"shop", "buy", "purchase", "clothes", "shoes"}},
}

func (r *RuleExtractor) Extract(_ context.Context, text string, now time.Time) (ParsedExpense, error) {
	amountStr := findAmount(text)
	if amountStr == "" {
		return ParsedExpense{}, fmt.Errorf("%w: no amount found in %q", core.ErrExtractionFailed, text)
	}
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		return ParsedExpense{}, fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}

	ts := now
	if m := clockRE.FindStringSubmatch(text); m != nil {
		hour := atoiSafe(m[1])
		minute := atoiSafe(m[2])
		if hour < 24 && minute < 60 {
			ts = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		}
	}

	return ParsedExpense{
		Amount:      core.Money{Cents: cents},
		Currency:    r.DefaultCurrency,
		Category:    guessCategory(text),
		Description: strings.TrimSpace(text),
		Timestamp:   ts,
	}, nil
}

// findAmount prefers a currency-marked amount; otherwise it strips clock
// times ("at 12:30") and takes the first remaining number.
func findAmount(text string) string {
	if ms := markedAmountRE.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		return ms[len(ms)-1][1]
	}
	stripped := clockRE.ReplaceAllString(text, " ")
	return bareAmountRE.FindString(stripped)
}

func guessCategory(text string) core.Category {
	lower := strings.ToLower(text)
	for _, bucket := range categoryKeywords {
		for _, w := range bucket.words {
			if strings.Contains(lower, w) {
				return bucket.category
			}
		}
	}
	return core.CategoryOther
}

// Summarize always fails; the response composer then uses its template.
func (r *RuleExtractor) Summarize(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: no model configured", core.ErrExtractionFailed)
}

// InterpretQuery always fails; the intent classifier then applies its
// keyword rules and default range.
func (r *RuleExtractor) InterpretQuery(context.Context, string, time.Time) (QueryInterpretation, error) {
	return QueryInterpretation{}, fmt.Errorf("%w: no model configured", core.ErrExtractionFailed)
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
