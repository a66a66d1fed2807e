package analysis

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 30, 0, 0, time.UTC)
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{at(2025, 1, 13, 7), date(2025, 1, 13)},  // Monday
		{at(2025, 1, 15, 18), date(2025, 1, 13)}, // Wednesday
		{at(2025, 1, 19, 23), date(2025, 1, 13)}, // Sunday
		{at(2025, 1, 1, 6), date(2024, 12, 30)},  // crosses year
	}

	for _, tt := range tests {
		got := MondayOf(tt.in)
		if !got.Equal(tt.want) {
			t.Errorf("MondayOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDateOfKeepsWallClockDate(t *testing.T) {
	// 23:30 local in a zone behind UTC would be the next day in UTC
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2025, 1, 19, 23, 30, 0, 0, loc)
	got := DateOf(in)
	if !got.Equal(date(2025, 1, 19)) {
		t.Errorf("DateOf(%v) = %v, want 2025-01-19", in, got)
	}
}

func TestWeekDataEmptyWeek(t *testing.T) {
	start := date(2025, 1, 13)
	w := WeekData(nil, start)

	wantLabels := []string{"Mon 13", "Tue 14", "Wed 15", "Thu 16", "Fri 17", "Sat 18", "Sun 19"}
	for i, d := range w.Days {
		if d.Label != wantLabels[i] {
			t.Errorf("Days[%d].Label = %q, want %q", i, d.Label, wantLabels[i])
		}
		if !d.Date.Equal(start.AddDate(0, 0, i)) {
			t.Errorf("Days[%d].Date = %v, want %v", i, d.Date, start.AddDate(0, 0, i))
		}
		if d.Miles != 0 || d.Time != 0 {
			t.Errorf("Days[%d] = %+v, want zero values", i, d)
		}
	}
	if w.Summary != (Summary{}) {
		t.Errorf("Summary = %+v, want zero", w.Summary)
	}
	if !w.End().Equal(date(2025, 1, 19)) {
		t.Errorf("End() = %v, want 2025-01-19", w.End())
	}
}

func TestWeekDataBucketing(t *testing.T) {
	start := date(2025, 1, 13)
	entries := []Entry{
		{StartDateLocal: at(2025, 1, 13, 6), Distance: 3.1, MovingTime: 1500, Calories: 300, AverageHeartrate: 150},
		{StartDateLocal: at(2025, 1, 13, 18), Distance: 2, MovingTime: 1000, Calories: 200},
		{StartDateLocal: at(2025, 1, 16, 7), Distance: 6.2, MovingTime: 3000, AverageHeartrate: 140},
		{StartDateLocal: at(2025, 1, 19, 23), Distance: 10, MovingTime: 5400, Calories: 1000, AverageHeartrate: 145},
		// no distance still counts as a run
		{StartDateLocal: at(2025, 1, 17, 12), Distance: 0, MovingTime: 600},
		// outside the window
		{StartDateLocal: at(2025, 1, 12, 9), Distance: 4, MovingTime: 2000},
		{StartDateLocal: at(2025, 1, 20, 0), Distance: 4, MovingTime: 2000},
		// no local start date
		{Distance: 99, MovingTime: 9999},
	}

	w := WeekData(entries, start)

	if w.Summary.TotalRuns != 5 {
		t.Errorf("TotalRuns = %d, want 5", w.Summary.TotalRuns)
	}
	if math.Abs(w.Summary.TotalMiles-21.3) > 1e-9 {
		t.Errorf("TotalMiles = %v, want 21.3", w.Summary.TotalMiles)
	}
	if w.Summary.TotalTime != 11500 {
		t.Errorf("TotalTime = %d, want 11500", w.Summary.TotalTime)
	}
	if w.Summary.TotalCalories != 1500 {
		t.Errorf("TotalCalories = %v, want 1500", w.Summary.TotalCalories)
	}
	if w.Summary.HeartRateCount != 3 || w.Summary.HeartRateSum != 435 {
		t.Errorf("heart rate = (%v, %d), want (435, 3)", w.Summary.HeartRateSum, w.Summary.HeartRateCount)
	}
	if w.Summary.PaceActivities != 4 {
		t.Errorf("PaceActivities = %d, want 4", w.Summary.PaceActivities)
	}

	hr, ok := w.Summary.AverageHeartRate()
	if !ok || hr != 145 {
		t.Errorf("AverageHeartRate() = (%v, %v), want (145, true)", hr, ok)
	}

	wantMiles := [7]float64{5.1, 0, 0, 6.2, 0, 0, 10}
	for i, d := range w.Days {
		if math.Abs(d.Miles-wantMiles[i]) > 1e-9 {
			t.Errorf("Days[%d].Miles = %v, want %v", i, d.Miles, wantMiles[i])
		}
	}
	if w.Days[4].Time != 600 {
		t.Errorf("Days[4].Time = %d, want 600", w.Days[4].Time)
	}
}

func TestWeekDataDaysSumToSummary(t *testing.T) {
	entries := []Entry{
		{StartDateLocal: at(2025, 3, 3, 6), Distance: 1.25, MovingTime: 700},
		{StartDateLocal: at(2025, 3, 5, 6), Distance: 4.75, MovingTime: 2400},
		{StartDateLocal: at(2025, 3, 9, 6), Distance: 13.1, MovingTime: 7200},
		{StartDateLocal: at(2025, 3, 11, 6), Distance: 3, MovingTime: 1500},
	}

	for _, start := range []time.Time{date(2025, 3, 3), date(2025, 3, 10), date(2025, 3, 17)} {
		w := WeekData(entries, start)
		var miles float64
		var secs int
		for _, d := range w.Days {
			miles += d.Miles
			secs += d.Time
		}
		if math.Abs(miles-w.Summary.TotalMiles) > 1e-9 {
			t.Errorf("week %v: day miles %v != total %v", start, miles, w.Summary.TotalMiles)
		}
		if secs != w.Summary.TotalTime {
			t.Errorf("week %v: day time %d != total %d", start, secs, w.Summary.TotalTime)
		}
	}
}

func TestAvailableWeeks(t *testing.T) {
	entries := []Entry{
		{StartDateLocal: at(2025, 1, 14, 6)},
		{StartDateLocal: at(2025, 1, 28, 6)},
		{StartDateLocal: at(2025, 1, 16, 6)},
		{StartDateLocal: at(2025, 1, 5, 6)},
		{},
	}

	got := AvailableWeeks(entries)
	want := []time.Time{date(2025, 1, 27), date(2025, 1, 13), date(2024, 12, 30)}
	if len(got) != len(want) {
		t.Fatalf("AvailableWeeks() returned %d weeks, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("AvailableWeeks()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWeeklySummariesNumbering(t *testing.T) {
	entries := []Entry{
		{StartDateLocal: at(2025, 1, 14, 6), Distance: 3, MovingTime: 1500},
		{StartDateLocal: at(2025, 1, 21, 6), Distance: 5, MovingTime: 2500},
		{StartDateLocal: at(2025, 2, 4, 6), Distance: 8, MovingTime: 4000},
	}

	got := WeeklySummaries(entries)
	if len(got) != 3 {
		t.Fatalf("WeeklySummaries() returned %d weeks, want 3", len(got))
	}
	wantNumbers := []int{3, 2, 1}
	wantMiles := []float64{8, 5, 3}
	for i, w := range got {
		if w.Number != wantNumbers[i] {
			t.Errorf("week %d Number = %d, want %d", i, w.Number, wantNumbers[i])
		}
		if w.Summary.TotalMiles != wantMiles[i] {
			t.Errorf("week %d TotalMiles = %v, want %v", i, w.Summary.TotalMiles, wantMiles[i])
		}
	}
}

func TestAveragePace(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
		wantOK  bool
	}{
		{"no miles", Summary{TotalTime: 600}, "", false},
		{"no time", Summary{TotalMiles: 3}, "", false},
		{"truncated", Summary{TotalMiles: 3.107, TotalTime: 1500}, "8:02", true},
		{"even", Summary{TotalMiles: 10, TotalTime: 5400}, "9:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AveragePace(tt.summary)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("AveragePace(%+v) = (%q, %v), want (%q, %v)", tt.summary, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAdjacentWeek(t *testing.T) {
	weeks := []time.Time{date(2025, 1, 27), date(2025, 1, 13), date(2025, 1, 6)}

	older, ok := AdjacentWeek(weeks, date(2025, 1, 13), 1)
	if !ok || !older.Equal(date(2025, 1, 6)) {
		t.Errorf("older week = (%v, %v), want 2025-01-06", older, ok)
	}
	newer, ok := AdjacentWeek(weeks, date(2025, 1, 13), -1)
	if !ok || !newer.Equal(date(2025, 1, 27)) {
		t.Errorf("newer week = (%v, %v), want 2025-01-27", newer, ok)
	}
	if _, ok := AdjacentWeek(weeks, date(2025, 1, 27), -1); ok {
		t.Error("expected no week newer than the most recent")
	}
	if _, ok := AdjacentWeek(weeks, date(2025, 2, 3), 1); ok {
		t.Error("expected no match for an unknown week")
	}
}
