// Package aggregate derives a complete 7-day nutrition series from the sparse,
// unordered daily rows the backend returns. It is pure: no I/O, no clock
// access beyond the injected Now.
package aggregate

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

var labels = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// HistoryRow is the tolerant input form: one day's totals as the history
// endpoint reports them. Dates arrive in a handful of formats and are parsed
// leniently.
type HistoryRow struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	EntryCount    int     `json:"entry_count"`
}

// DayRecord is one bucket of the derived series, keyed by day-of-week label.
type DayRecord struct {
	Day        string  `json:"day"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fats       float64 `json:"fats"`
	EntryCount int     `json:"entry_count"`
}

// WeekSeries is exactly one DayRecord per day-of-week label, in fixed
// Sunday..Saturday order.
type WeekSeries [7]DayRecord

// Options controls the aggregation window.
type Options struct {
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
	// WeekOffset selects the window: 0 is the current week, N is N weeks
	// back. Future-day suppression applies only to the current week.
	WeekOffset int
}

// Window returns the inclusive 7-day date range for the given offset: the
// trailing week ending today, shifted back offset whole weeks.
func Window(now time.Time, offset int) (start, end time.Time) {
	end = dayStart(now).AddDate(0, 0, -7*offset)
	start = end.AddDate(0, 0, -6)
	return start, end
}

// Week folds history rows, plus an optional authoritative snapshot of today,
// into a complete series. Rows with unparseable dates are skipped. The today
// snapshot wins over any history row for today's date; duplicate non-today
// rows for the same label keep the field-wise maximum.
func Week(history []HistoryRow, today *HistoryRow, opts Options) WeekSeries {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()
	todayKey := now.Format(dateLayout)

	var series WeekSeries
	for i := range series {
		series[i] = DayRecord{Day: labels[i]}
	}

	rows := history
	if today != nil {
		snapshot := *today
		if snapshot.Date == "" {
			snapshot.Date = todayKey
		}
		merged := make([]HistoryRow, 0, len(history)+1)
		for _, r := range history {
			if d, err := parseDate(r.Date); err == nil && d.Format(dateLayout) == todayKey {
				continue
			}
			merged = append(merged, r)
		}
		rows = append(merged, snapshot)
	}

	for _, r := range rows {
		d, err := parseDate(r.Date)
		if err != nil {
			continue
		}
		idx := int(d.Weekday())
		rec := DayRecord{
			Day:        labels[idx],
			Calories:   math.Max(0, r.TotalCalories),
			Protein:    math.Max(0, r.TotalProtein),
			Carbs:      math.Max(0, r.TotalCarbs),
			Fats:       math.Max(0, r.TotalFats),
			EntryCount: maxInt(0, r.EntryCount),
		}

		if d.Format(dateLayout) == todayKey {
			// Freshest wins outright for today.
			series[idx] = rec
			continue
		}

		cur := series[idx]
		series[idx] = DayRecord{
			Day:        labels[idx],
			Calories:   math.Max(cur.Calories, rec.Calories),
			Protein:    math.Max(cur.Protein, rec.Protein),
			Carbs:      math.Max(cur.Carbs, rec.Carbs),
			Fats:       math.Max(cur.Fats, rec.Fats),
			EntryCount: maxInt(cur.EntryCount, rec.EntryCount),
		}
	}

	if opts.WeekOffset == 0 {
		// Days positioned after today's weekday have not happened yet in the
		// rendered week; stray backend data for them must not show.
		for i := int(now.Weekday()) + 1; i < 7; i++ {
			series[i] = DayRecord{Day: labels[i]}
		}
	}

	return series
}

// HistoryRows converts the series back to canonical per-day rows for the
// window starting at start. Aggregating the result reproduces the series.
func (w WeekSeries) HistoryRows(start time.Time) []HistoryRow {
	rows := make([]HistoryRow, 0, len(w))
	for i := 0; i < len(w); i++ {
		d := start.AddDate(0, 0, i)
		rec := w[int(d.Weekday())]
		rows = append(rows, HistoryRow{
			Date:          d.Format(dateLayout),
			TotalCalories: rec.Calories,
			TotalProtein:  rec.Protein,
			TotalCarbs:    rec.Carbs,
			TotalFats:     rec.Fats,
			EntryCount:    rec.EntryCount,
		})
	}
	return rows
}

var dateFormats = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateFormats {
		var d time.Time
		if d, err = time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
