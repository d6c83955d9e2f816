package ai

import (
	"strings"
	"time"

	"spendlog/internal/core"
)

func categoryList() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// extractPrompt asks for one strict-JSON object describing the expense.
func extractPrompt(text, defaultCurrency string, now time.Time) string {
	var b strings.Builder
	b.WriteString("You parse one free-text expense line into structured data.\n\n")
	b.WriteString("Text: \"" + text + "\"\n\n")
	b.WriteString("Return STRICT JSON only (no comments, no extra text) with these fields:\n")
	b.WriteString("- \"amount\": number, required, must be > 0\n")
	b.WriteString("- \"currency\": string currency code (default \"" + defaultCurrency + "\" if not mentioned)\n")
	b.WriteString("- \"category\": one of: " + categoryList() + "\n")
	b.WriteString("- \"description\": short, clear description of the expense\n")
	b.WriteString("- \"tags\": array of relevant keyword strings (may be empty)\n")
	b.WriteString("- \"notes\": any extra context, or \"\"\n")
	b.WriteString("- \"timestamp\": ISO 8601 datetime; resolve times like \"at 12:30\" against the reference below\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- If no date is mentioned, assume the reference date.\n")
	b.WriteString("- If no time is mentioned, use the reference time.\n")
	b.WriteString("- Category must be exactly one of the listed values; when unsure use \"other\".\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n\n")
	b.WriteString("Reference datetime: " + now.Format(time.RFC3339) + "\n")
	return b.String()
}

// interpretPrompt asks the model to classify an analytics question into
// the intent enumeration and resolve its time parameters.
func interpretPrompt(query string, now time.Time) string {
	var b strings.Builder
	b.WriteString("You classify a question about personal spending.\n\n")
	b.WriteString("Question: \"" + query + "\"\n\n")
	b.WriteString("Return STRICT JSON only with these fields:\n")
	b.WriteString("- \"intent\": one of \"total\", \"by_category\", \"trend\", \"comparison\"\n")
	b.WriteString("- \"start\", \"end\": dates \"YYYY-MM-DD\"; the range is start-inclusive, end-exclusive\n")
	b.WriteString("- \"start_b\", \"end_b\": second range for comparisons, else null\n")
	b.WriteString("- \"granularity\": \"day\", \"week\" or \"month\" for trends, else null\n")
	b.WriteString("- \"category\": one of " + categoryList() + " if the question names one, else null\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Resolve relative expressions (\"this month\", \"last quarter\") against the reference date.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n\n")
	b.WriteString("Reference date: " + now.Format("2006-01-02") + "\n")
	return b.String()
}

// summarizePrompt turns a compact facts blob into one or two sentences.
func summarizePrompt(facts string) string {
	var b strings.Builder
	b.WriteString("Phrase this spending analysis result as one or two short, friendly sentences.\n")
	b.WriteString("Mention the concrete amounts. Plain text only, no markdown, no preamble.\n\n")
	b.WriteString("Result:\n" + facts + "\n")
	return b.String()
}
