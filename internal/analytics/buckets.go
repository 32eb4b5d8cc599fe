package analytics

import (
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

// Time-bucketing: lays out a fixed, gap-free sequence of buckets covering a
// resolved range and assigns records to them. Granularity is a function of
// the range type alone:
//
//	this_week  → one bucket per calendar day
//	this_month → one bucket per 7-day step, aligned to the range start
//	anything   → one bucket per calendar month
//
// Records re-derive their own key with the same rule; a key that falls
// outside the initialized set is silently dropped. For this_month the
// layout is range-start-aligned while record keys are Sunday-aligned, so
// contributions can be dropped at month boundaries when the two alignments
// disagree. That asymmetry is intentional and covered by tests.

type granularity int

const (
	daily granularity = iota
	weekly
	monthly
)

// Bucket is one slot of a rollup time series.
type Bucket struct {
	Key   string
	Label string
}

func granularityFor(rangeType string) granularity {
	switch rangeType {
	case domain.RangeThisWeek:
		return daily
	case domain.RangeThisMonth:
		return weekly
	default:
		return monthly
	}
}

// Buckets returns the ordered bucket sequence for a range. start and end
// are inclusive calendar days.
func Buckets(rangeType string, start, end time.Time) []Bucket {
	g := granularityFor(rangeType)
	var out []Bucket

	switch g {
	case daily:
		for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
			out = append(out, Bucket{Key: t.Format(DateLayout), Label: t.Format("Mon")})
		}
	case weekly:
		for t := start; !t.After(end); t = t.AddDate(0, 0, 7) {
			out = append(out, Bucket{Key: t.Format(DateLayout), Label: t.Format("01/02")})
		}
	default:
		for t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()); !t.After(end); t = t.AddDate(0, 1, 0) {
			out = append(out, Bucket{Key: t.Format("2006-01"), Label: t.Format("Jan")})
		}
	}
	return out
}

// bucketKeyFor derives the bucket key a single record belongs to,
// using the same granularity rule the layout uses.
func bucketKeyFor(rangeType string, ts time.Time) string {
	switch granularityFor(rangeType) {
	case daily:
		return ts.Format(DateLayout)
	case weekly:
		// Sunday-aligned week start.
		return ts.AddDate(0, 0, -int(ts.Weekday())).Format(DateLayout)
	default:
		return ts.Format("2006-01")
	}
}

// bucketIndex maps bucket keys to positions in the layout.
func bucketIndex(buckets []Bucket) map[string]int {
	idx := make(map[string]int, len(buckets))
	for i, b := range buckets {
		idx[b.Key] = i
	}
	return idx
}
