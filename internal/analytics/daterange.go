// Package analytics is the dashboard aggregation core: date-range
// resolution, time bucketing, and the rollup engine. Everything here is
// pure: "now" is always an explicit parameter, there is no I/O, and the
// same inputs always produce the same model.
package analytics

import (
	"fmt"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
)

// DateLayout is the wire format for range boundaries.
const DateLayout = "2006-01-02"

// ResolveDateRange converts a symbolic range selector into concrete
// calendar bounds. Unknown selectors fall back to this_month rather than
// failing: the dashboard always has a period to render.
func ResolveDateRange(rangeType, customStart, customEnd string, now time.Time) domain.DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch rangeType {
	case domain.RangeThisWeek:
		// Week starts on Sunday.
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return domain.DateRange{
			Type:      rangeType,
			StartDate: start.Format(DateLayout),
			EndDate:   start.AddDate(0, 0, 6).Format(DateLayout),
		}

	case domain.RangeThisYear:
		return domain.DateRange{
			Type:      rangeType,
			StartDate: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(DateLayout),
			EndDate:   time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location()).Format(DateLayout),
		}

	case domain.RangeCustom:
		// Missing bounds default to the trailing 30-day window ending today.
		start := customStart
		if start == "" {
			start = today.AddDate(0, 0, -30).Format(DateLayout)
		}
		end := customEnd
		if end == "" {
			end = today.Format(DateLayout)
		}
		return domain.DateRange{Type: rangeType, StartDate: start, EndDate: end}

	default:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		resolved := rangeType
		if resolved == "" {
			resolved = domain.RangeThisMonth
		}
		return domain.DateRange{
			Type:      resolved,
			StartDate: first.Format(DateLayout),
			EndDate:   first.AddDate(0, 1, -1).Format(DateLayout),
		}
	}
}

// PreviousPeriod derives the window of identical duration that ends the
// instant before the given range starts: prevEnd = start - 1ms,
// prevStart = prevEnd - (end - start). Used for period-over-period deltas;
// the fallback engine has no historical fetch, so its deltas stay zero.
func PreviousPeriod(r domain.DateRange) (domain.DateRange, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid end date %q: %w", r.EndDate, err)
	}

	prevEnd := start.Add(-time.Millisecond)
	prevStart := prevEnd.Add(-end.Sub(start))

	return domain.DateRange{
		Type:      r.Type,
		StartDate: prevStart.Format(DateLayout),
		EndDate:   prevEnd.Format(DateLayout),
	}, nil
}
