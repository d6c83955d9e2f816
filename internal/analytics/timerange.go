package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/core"
)

// DayFilter restricts a range to a weekday/weekend partition.
type DayFilter int

const (
	AllDays DayFilter = iota
	WeekdaysOnly
	WeekendsOnly
)

// Range is a half-open [Start, End) window, optionally restricted to
// weekdays or weekends. Zero bounds mean unbounded (full history).
type Range struct {
	Label string
	Start time.Time
	End   time.Time
	Days  DayFilter
}

// Contains reports whether a record timestamp falls in the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	switch r.Days {
	case WeekdaysOnly:
		return !isWeekend(t)
	case WeekendsOnly:
		return isWeekend(t)
	}
	return true
}

// Bounded reports whether both ends of the range are set.
func (r Range) Bounded() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// clampEnd caps a bounded end at now, keeping records timestamped after
// the query out of calendar-aligned windows that extend past it.
func (r Range) clampEnd(now time.Time) Range {
	if !r.End.IsZero() && r.End.After(now) {
		r.End = now
	}
	return r
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the preceding (or same) Monday.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

var (
	lastNRE   = regexp.MustCompile(`\b(?:last|past)\s+(\d+|[a-z]+)\s+(day|week|month)s?\b`)
	quarterRE = regexp.MustCompile(`\bq([1-4])(?:\s+(?:of\s+)?(\d{4}))?\b`)
	allTimeRE = regexp.MustCompile(`\ball time\b|\bever\b|\bentire history\b|\bin total\b`)
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// lastNDays is the N calendar days ending today. The ends are aligned
// to whole days so a trend over the range has exactly N buckets.
func lastNDays(n int, now time.Time) Range {
	today := startOfDay(now)
	return Range{
		Label: fmt.Sprintf("the last %d days", n),
		Start: today.AddDate(0, 0, -(n - 1)),
		End:   today.AddDate(0, 0, 1),
	}
}

// defaultRange is the fallback window when a time expression cannot be
// resolved.
func defaultRange(now time.Time) Range {
	r := lastNDays(30, now)
	r.Label = "the last 30 days"
	return r
}

// PeriodRange resolves a fixed period name used by the spending
// endpoints: day, week, month, year or all.
func PeriodRange(period string, now time.Time) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "day", "today":
		return Range{Label: "today", Start: startOfDay(now), End: now}, nil
	case "week":
		return Range{Label: "this week", Start: startOfWeek(now), End: now}, nil
	case "month", "":
		return Range{Label: "this month", Start: startOfMonth(now), End: now}, nil
	case "year":
		return Range{Label: "this year", Start: startOfYear(now), End: now}, nil
	case "all":
		return Range{Label: "all time"}, nil
	}
	return Range{}, fmt.Errorf("%w: unknown period %q", core.ErrTimeRangeUnresolved, period)
}

// scanRange finds the first recognized time expression in text and
// resolves it against now. Recognized forms: today, yesterday,
// this/last week/month/year, quarters (Q1..Q4, optional year), and
// "last N days/weeks/months" with digit or word counts.
func scanRange(text string, now time.Time) (Range, bool) {
	lower := strings.ToLower(text)

	if m := lastNRE.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = wordNumbers[m[1]]
		}
		if n > 0 {
			switch m[2] {
			case "day":
				return lastNDays(n, now), true
			case "week":
				week := startOfWeek(now)
				return Range{
					Label: fmt.Sprintf("the last %d weeks", n),
					Start: week.AddDate(0, 0, -7*(n-1)),
					End:   week.AddDate(0, 0, 7),
				}, true
			case "month":
				month := startOfMonth(now)
				return Range{
					Label: fmt.Sprintf("the last %d months", n),
					Start: month.AddDate(0, -(n - 1), 0),
					End:   month.AddDate(0, 1, 0),
				}, true
			}
		}
	}

	if m := quarterRE.FindStringSubmatch(lower); m != nil {
		q, _ := strconv.Atoi(m[1])
		year := now.Year()
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		start := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, now.Location())
		return Range{
			Label: fmt.Sprintf("Q%d %d", q, year),
			Start: start,
			End:   start.AddDate(0, 3, 0),
		}, true
	}

	switch {
	case strings.Contains(lower, "today"):
		return Range{Label: "today", Start: startOfDay(now), End: now}, true
	case strings.Contains(lower, "yesterday"):
		d := startOfDay(now)
		return Range{Label: "yesterday", Start: d.AddDate(0, 0, -1), End: d}, true
	case strings.Contains(lower, "this week"), strings.Contains(lower, "current week"):
		return Range{Label: "this week", Start: startOfWeek(now), End: now}, true
	case strings.Contains(lower, "last week"), strings.Contains(lower, "previous week"):
		w := startOfWeek(now)
		return Range{Label: "last week", Start: w.AddDate(0, 0, -7), End: w}, true
	case strings.Contains(lower, "this month"), strings.Contains(lower, "current month"):
		return Range{Label: "this month", Start: startOfMonth(now), End: now}, true
	case strings.Contains(lower, "last month"), strings.Contains(lower, "previous month"):
		m := startOfMonth(now)
		return Range{Label: "last month", Start: m.AddDate(0, -1, 0), End: m}, true
	case strings.Contains(lower, "this year"), strings.Contains(lower, "current year"):
		return Range{Label: "this year", Start: startOfYear(now), End: now}, true
	case strings.Contains(lower, "last year"), strings.Contains(lower, "previous year"):
		y := startOfYear(now)
		return Range{Label: "last year", Start: y.AddDate(-1, 0, 0), End: y}, true
	case allTimeRE.MatchString(lower):
		return Range{Label: "all time"}, true
	}
	return Range{}, false
}

// resolveSingle resolves the time expression in a non-comparison query.
func resolveSingle(query string, now time.Time) (Range, error) {
	if r, ok := scanRange(query, now); ok {
		return r, nil
	}
	return Range{}, fmt.Errorf("%w: no recognizable time expression in %q", core.ErrTimeRangeUnresolved, query)
}

var comparisonSplitRE = regexp.MustCompile(`\s+(?:vs\.?|versus|compared\s+(?:to|with)|against)\s+`)

// resolveComparison resolves a query into two ranges. "Weekdays vs
// weekends" yields two predicate partitions of one base range rather
// than two separate windows; the base range is any other time
// expression in the query, defaulting to the last 30 days.
func resolveComparison(query string, now time.Time) (a, b Range, approximate bool, err error) {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "weekday") && strings.Contains(lower, "weekend") {
		base, ok := scanRange(lower, now)
		if !ok {
			base = defaultRange(now)
			approximate = true
		}
		a = Range{Label: "weekdays " + base.Label, Start: base.Start, End: base.End, Days: WeekdaysOnly}
		b = Range{Label: "weekends " + base.Label, Start: base.Start, End: base.End, Days: WeekendsOnly}
		if base.Label == "" {
			a.Label = "weekdays"
			b.Label = "weekends"
		}
		return a, b, approximate, nil
	}

	parts := comparisonSplitRE.Split(lower, 2)
	if len(parts) == 2 {
		left := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "compare"))
		right := strings.TrimSpace(parts[1])
		ra, okA := scanRange(left, now)
		rb, okB := scanRange(right, now)
		if okA && okB {
			return ra, rb, false, nil
		}
	}
	return Range{}, Range{}, false, fmt.Errorf("%w: cannot resolve both sides of comparison %q", core.ErrTimeRangeUnresolved, query)
}
