package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedNow is a Wednesday; 2024-03-04 in the same week is a Monday.
var fixedNow = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func wantLabels() []string {
	return []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
}

func TestWeek_AlwaysSevenCanonicalLabels(t *testing.T) {
	inputs := [][]HistoryRow{
		nil,
		{},
		{{Date: "2024-03-04", TotalCalories: 100}},
		{{Date: "garbage"}, {Date: "2024-03-05", TotalProtein: 20}},
		{{Date: "2024-03-01"}, {Date: "2024-03-01"}, {Date: "2024-03-02"}},
	}
	for _, history := range inputs {
		week := Week(history, nil, Options{Now: clock})
		seen := map[string]bool{}
		for i, rec := range week {
			assert.Equal(t, wantLabels()[i], rec.Day)
			assert.False(t, seen[rec.Day], "duplicate label %s", rec.Day)
			seen[rec.Day] = true
		}
		assert.Len(t, seen, 7)
	}
}

func TestWeek_EmptyInputIsAllZero(t *testing.T) {
	week := Week(nil, nil, Options{Now: clock})
	for _, rec := range week {
		assert.Zero(t, rec.Calories)
		assert.Zero(t, rec.Protein)
		assert.Zero(t, rec.Carbs)
		assert.Zero(t, rec.Fats)
		assert.Zero(t, rec.EntryCount)
	}
}

func TestWeek_SingleMondayRow(t *testing.T) {
	week := Week([]HistoryRow{
		{Date: "2024-03-04", TotalCalories: 1800, TotalProtein: 100, TotalCarbs: 200, TotalFats: 60},
	}, nil, Options{Now: clock})

	monday := week[1]
	assert.Equal(t, "Monday", monday.Day)
	assert.Equal(t, 1800.0, monday.Calories)
	assert.Equal(t, 100.0, monday.Protein)
	assert.Equal(t, 200.0, monday.Carbs)
	assert.Equal(t, 60.0, monday.Fats)

	for i, rec := range week {
		if i == 1 {
			continue
		}
		assert.Zero(t, rec.Calories, "day %s should be zero", rec.Day)
	}
}

func TestWeek_FutureDaySuppressedInCurrentWeek(t *testing.T) {
	// Tomorrow is Thursday; a stray backend row for it must not render.
	week := Week([]HistoryRow{
		{Date: "2024-03-07", TotalCalories: 9999, TotalProtein: 500},
	}, nil, Options{Now: clock, WeekOffset: 0})

	thursday := week[4]
	assert.Equal(t, "Thursday", thursday.Day)
	assert.Zero(t, thursday.Calories)
	assert.Zero(t, thursday.Protein)
}

func TestWeek_NoSuppressionForPastWeeks(t *testing.T) {
	// Same weekday position, but the window is one week back: the data is
	// real history and must render.
	week := Week([]HistoryRow{
		{Date: "2024-02-29", TotalCalories: 2100}, // a past Thursday
	}, nil, Options{Now: clock, WeekOffset: 1})

	assert.Equal(t, 2100.0, week[4].Calories)
}

func TestWeek_TodaySnapshotWinsOverHistoryRow(t *testing.T) {
	history := []HistoryRow{
		{Date: "2024-03-06", TotalCalories: 500, TotalProtein: 30},
	}
	snapshot := &HistoryRow{Date: "2024-03-06", TotalCalories: 700, TotalProtein: 10}

	week := Week(history, snapshot, Options{Now: clock})

	wednesday := week[3]
	assert.Equal(t, 700.0, wednesday.Calories)
	assert.Equal(t, 10.0, wednesday.Protein, "snapshot replaces the row outright, no field-wise max for today")
}

func TestWeek_SnapshotWithoutDateDefaultsToToday(t *testing.T) {
	snapshot := &HistoryRow{TotalCalories: 1234}
	week := Week(nil, snapshot, Options{Now: clock})
	assert.Equal(t, 1234.0, week[3].Calories)
}

func TestWeek_MalformedDateSkippedWithoutCorruption(t *testing.T) {
	week := Week([]HistoryRow{
		{Date: "not-a-date", TotalCalories: 4000},
		{Date: "2024-03-04", TotalCalories: 1500},
		{Date: "", TotalCalories: 3000},
	}, nil, Options{Now: clock})

	assert.Equal(t, 1500.0, week[1].Calories)
	total := 0.0
	for _, rec := range week {
		total += rec.Calories
	}
	assert.Equal(t, 1500.0, total, "malformed rows must not leak into any bucket")
}

func TestWeek_DuplicateWeekdayKeepsFieldwiseMax(t *testing.T) {
	// 2024-02-27 and 2024-03-05 are both Tuesdays.
	week := Week([]HistoryRow{
		{Date: "2024-02-27", TotalCalories: 300},
		{Date: "2024-03-05", TotalCalories: 500, TotalProtein: 10},
	}, nil, Options{Now: clock})

	tuesday := week[2]
	assert.Equal(t, 500.0, tuesday.Calories)
	assert.Equal(t, 10.0, tuesday.Protein)

	// Order must not matter for the max rule.
	reversed := Week([]HistoryRow{
		{Date: "2024-03-05", TotalCalories: 500, TotalProtein: 10},
		{Date: "2024-02-27", TotalCalories: 300},
	}, nil, Options{Now: clock})
	assert.Equal(t, tuesday, reversed[2])
}

func TestWeek_NegativeValuesClampedToZero(t *testing.T) {
	week := Week([]HistoryRow{
		{Date: "2024-03-04", TotalCalories: -50, TotalProtein: -1},
	}, nil, Options{Now: clock})
	assert.Zero(t, week[1].Calories)
	assert.Zero(t, week[1].Protein)
}

func TestWeek_TolerantDateFormats(t *testing.T) {
	week := Week([]HistoryRow{
		{Date: "2024-03-04T08:30:00Z", TotalCalories: 800},
		{Date: "2024-03-05 12:00:00", TotalCarbs: 90},
	}, nil, Options{Now: clock})
	assert.Equal(t, 800.0, week[1].Calories)
	assert.Equal(t, 90.0, week[2].Carbs)
}

func TestWeek_Idempotence(t *testing.T) {
	history := []HistoryRow{
		{Date: "2024-03-01", TotalCalories: 2000, TotalProtein: 90, TotalCarbs: 210, TotalFats: 55},
		{Date: "2024-03-03", TotalCalories: 1700, TotalProtein: 80},
		{Date: "2024-03-06", TotalCalories: 600},
	}
	opts := Options{Now: clock}
	first := Week(history, nil, opts)

	start, _ := Window(fixedNow, 0)
	second := Week(first.HistoryRows(start), nil, opts)

	assert.Equal(t, first, second)
}

func TestWindow(t *testing.T) {
	start, end := Window(fixedNow, 0)
	assert.Equal(t, "2024-02-29", start.Format("2006-01-02"))
	assert.Equal(t, "2024-03-06", end.Format("2006-01-02"))

	start, end = Window(fixedNow, 2)
	assert.Equal(t, "2024-02-15", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-21", end.Format("2006-01-02"))
}
