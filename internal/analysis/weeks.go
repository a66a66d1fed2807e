package analysis

import (
	"sort"
	"time"
)

// Entry is the slice of an activity the week views need.
// Distance is in miles and MovingTime in seconds.
type Entry struct {
	StartDateLocal   time.Time
	Distance         float64
	MovingTime       int
	Calories         float64
	AverageHeartrate float64
}

// Day is one calendar day inside a week.
type Day struct {
	Label string    `json:"day"`
	Date  time.Time `json:"date"`
	Miles float64   `json:"miles"`
	Time  int       `json:"time"`
}

// Summary accumulates totals over a week.
type Summary struct {
	TotalRuns      int     `json:"totalRuns"`
	TotalMiles     float64 `json:"totalMiles"`
	TotalCalories  float64 `json:"totalCalories"`
	TotalTime      int     `json:"totalTime"`
	HeartRateSum   float64 `json:"heartRateSum"`
	HeartRateCount int     `json:"heartRateCount"`
	PaceActivities int     `json:"paceActivities"`
}

// AverageHeartRate returns the mean heart rate over activities that had one.
func (s Summary) AverageHeartRate() (float64, bool) {
	if s.HeartRateCount == 0 {
		return 0, false
	}
	return s.HeartRateSum / float64(s.HeartRateCount), true
}

// Week is a Monday-aligned 7 day window with its totals.
type Week struct {
	Start   time.Time `json:"weekStart"`
	Days    [7]Day    `json:"days"`
	Summary Summary   `json:"summary"`
}

// End returns the Sunday closing the week.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, 6)
}

// NumberedWeek pairs a week with its ordinal, oldest week first.
type NumberedWeek struct {
	Number int `json:"weekNumber"`
	Week
}

// DateOf returns the wall-clock calendar date of t as midnight UTC.
// Local start times from Strava carry a Z suffix but are local wall-clock
// values, so the date parts are used untouched.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday at or before t's calendar date.
func MondayOf(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// dayLabel formats a bucket label like "Mon 13".
func dayLabel(d time.Time) string {
	return d.Format("Mon 2")
}

// WeekData buckets entries into the week starting at weekStart.
// weekStart must already be a Monday. Entries outside the window or without
// a local start date are ignored.
func WeekData(entries []Entry, weekStart time.Time) Week {
	start := DateOf(weekStart)
	w := Week{Start: start}
	for i := range w.Days {
		d := start.AddDate(0, 0, i)
		w.Days[i] = Day{Label: dayLabel(d), Date: d}
	}

	for _, e := range entries {
		if e.StartDateLocal.IsZero() {
			continue
		}
		diff := DateOf(e.StartDateLocal).Sub(start)
		if diff < 0 {
			continue
		}
		idx := int(diff / (24 * time.Hour))
		if idx > 6 {
			continue
		}

		w.Days[idx].Miles += e.Distance
		w.Days[idx].Time += e.MovingTime

		s := &w.Summary
		s.TotalRuns++
		s.TotalMiles += e.Distance
		s.TotalTime += e.MovingTime
		s.TotalCalories += e.Calories
		if e.AverageHeartrate > 0 {
			s.HeartRateSum += e.AverageHeartrate
			s.HeartRateCount++
		}
		if e.Distance > 0 && e.MovingTime > 0 {
			s.PaceActivities++
		}
	}

	return w
}

// AvailableWeeks lists the distinct Monday week starts present in entries,
// most recent first.
func AvailableWeeks(entries []Entry) []time.Time {
	seen := make(map[time.Time]bool)
	var weeks []time.Time
	for _, e := range entries {
		if e.StartDateLocal.IsZero() {
			continue
		}
		m := MondayOf(e.StartDateLocal)
		if seen[m] {
			continue
		}
		seen[m] = true
		weeks = append(weeks, m)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].After(weeks[j])
	})
	return weeks
}

// WeeklySummaries builds one week per available week start, most recent
// first, numbered so the oldest week is 1.
func WeeklySummaries(entries []Entry) []NumberedWeek {
	starts := AvailableWeeks(entries)
	out := make([]NumberedWeek, 0, len(starts))
	for i, start := range starts {
		out = append(out, NumberedWeek{
			Number: len(starts) - i,
			Week:   WeekData(entries, start),
		})
	}
	return out
}

// AveragePace returns the week's pace per mile with seconds truncated.
func AveragePace(s Summary) (string, bool) {
	if s.TotalMiles == 0 || s.TotalTime == 0 {
		return "", false
	}
	return CalculatePace(s.TotalMiles, s.TotalTime)
}

// AdjacentWeek returns the week start next to current in the most recent
// first list. step -1 moves to the newer week, +1 to the older one.
func AdjacentWeek(weeks []time.Time, current time.Time, step int) (time.Time, bool) {
	for i, w := range weeks {
		if !w.Equal(current) {
			continue
		}
		j := i + step
		if j < 0 || j >= len(weeks) {
			return time.Time{}, false
		}
		return weeks[j], true
	}
	return time.Time{}, false
}
