package analytics

import (
	"sort"
	"time"

	"spendlog/internal/core"
)

// Aggregation is pure: identical records and ranges give identical
// output, byte for byte. All ordering is explicit.

// Total sums records over the range. Average per day divides by
// the number of calendar days the range covers (respecting weekday or
// weekend partitions), never fewer than one. An unbounded range takes
// its day span from the records themselves.
func Total(recs []core.ExpenseRecord, r Range) TotalStats {
	var sum int64
	for _, rec := range recs {
		sum += rec.Amount.Cents
	}
	days := calendarDays(r, recs)
	if days < 1 {
		days = 1
	}
	return TotalStats{
		SumCents:       sum,
		Count:          len(recs),
		AvgPerDayCents: (sum + int64(days)/2) / int64(days),
		DaysInRange:    days,
	}
}

// effectiveBounds fills unbounded range ends from the earliest and
// latest record timestamps. ok is false when there is nothing to
// derive them from.
func effectiveBounds(r Range, recs []core.ExpenseRecord) (start, end time.Time, ok bool) {
	start, end = r.Start, r.End
	if !start.IsZero() && !end.IsZero() {
		return start, end, true
	}
	if len(recs) == 0 {
		return start, end, false
	}
	first, last := recs[0].Timestamp, recs[0].Timestamp
	for _, rec := range recs[1:] {
		if rec.Timestamp.Before(first) {
			first = rec.Timestamp
		}
		if rec.Timestamp.After(last) {
			last = rec.Timestamp
		}
	}
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last.Add(time.Nanosecond)
	}
	return start, end, true
}

// calendarDays counts distinct dates intersecting the range. Unbounded
// ends fall back to the earliest/latest record dates.
func calendarDays(r Range, recs []core.ExpenseRecord) int {
	start, end, ok := effectiveBounds(r, recs)
	if !ok {
		return 1
	}

	count := 0
	for d := startOfDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		switch r.Days {
		case WeekdaysOnly:
			if isWeekend(d) {
				continue
			}
		case WeekendsOnly:
			if !isWeekend(d) {
				continue
			}
		}
		count++
	}
	return count
}

// ByCategory groups sums per category, sorted descending by sum.
// Categories with no matching records are omitted. Equal sums tie-break
// on category name so the order is stable.
func ByCategory(recs []core.ExpenseRecord) []CategoryStat {
	grouped := make(map[core.Category]*CategoryStat)
	for _, rec := range recs {
		stat, ok := grouped[rec.Category]
		if !ok {
			stat = &CategoryStat{Category: rec.Category}
			grouped[rec.Category] = stat
		}
		stat.SumCents += rec.Amount.Cents
		stat.Count++
	}
	out := make([]CategoryStat, 0, len(grouped))
	for _, stat := range grouped {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SumCents != out[j].SumCents {
			return out[i].SumCents > out[j].SumCents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// bucketStart truncates t to its day, ISO week (Monday) or month.
func bucketStart(t time.Time, granularity string) time.Time {
	switch granularity {
	case "week":
		return startOfWeek(t)
	case "month":
		return startOfMonth(t)
	}
	return startOfDay(t)
}

func nextBucket(t time.Time, granularity string) time.Time {
	switch granularity {
	case "week":
		return t.AddDate(0, 0, 7)
	case "month":
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// Trend buckets sums by granularity across the range with no gaps:
// every bucket between the range ends appears, zero or not. An
// unbounded range derives its ends from the records.
func Trend(recs []core.ExpenseRecord, r Range, granularity string) []TrendPoint {
	start, end, ok := effectiveBounds(r, recs)
	if !ok {
		return []TrendPoint{}
	}

	sums := make(map[time.Time]int64)
	for _, rec := range recs {
		sums[bucketStart(rec.Timestamp, granularity)] += rec.Amount.Cents
	}

	out := []TrendPoint{}
	for b := bucketStart(start, granularity); b.Before(end); b = nextBucket(b, granularity) {
		out = append(out, TrendPoint{BucketStart: b, SumCents: sums[b]})
	}
	return out
}

// Compare computes totals for both sides and the percentage delta
// (B - A) / A * 100. A zero A-side sum makes the delta undefined: with a
// nonzero B it carries the new-spending flag instead of dividing by
// zero, and with both sides at zero the delta is simply absent.
// byCategory additionally breaks each side down per category.
func Compare(recsA, recsB []core.ExpenseRecord, a, b Range, byCategory bool) *Comparison {
	cmp := &Comparison{
		A: ComparisonSide{Label: a.Label, Start: a.Start, End: a.End, Total: Total(recsA, a)},
		B: ComparisonSide{Label: b.Label, Start: b.Start, End: b.End, Total: Total(recsB, b)},
	}
	if byCategory {
		cmp.A.Categories = ByCategory(recsA)
		cmp.B.Categories = ByCategory(recsB)
	}
	switch {
	case cmp.A.Total.SumCents == 0 && cmp.B.Total.SumCents > 0:
		cmp.NewSpending = true
	case cmp.A.Total.SumCents == 0:
		// Both sides empty. No delta to report.
	default:
		delta := float64(cmp.B.Total.SumCents-cmp.A.Total.SumCents) / float64(cmp.A.Total.SumCents) * 100
		cmp.DeltaPct = &delta
	}
	return cmp
}
