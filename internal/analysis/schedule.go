package analysis

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// nextMonday returns the first Monday strictly after d.
func nextMonday(d time.Time) time.Time {
	days := (8 - int(d.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDate(0, 0, days)
}

// firstMonday returns the first Monday on or after d.
func firstMonday(d time.Time) time.Time {
	switch wd := d.Weekday(); wd {
	case time.Monday:
		return d
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d.AddDate(0, 0, 8-int(wd))
	}
}

// TrainingWeeks returns the Monday start of each week in a training block.
// Week 1 begins on the first Monday on or after startDate. Week 2 begins on
// the Monday after week 1 ends and later weeks follow every 7 days.
func TrainingWeeks(startDate time.Time, durationWeeks int) []time.Time {
	if durationWeeks <= 0 {
		return nil
	}

	week1 := firstMonday(DateOf(startDate))
	weeks := []time.Time{week1}
	if durationWeeks == 1 {
		return weeks
	}

	week2 := nextMonday(week1.AddDate(0, 0, 6))
	seen := map[time.Time]bool{week1: true}
	for i := 0; len(weeks) < durationWeeks; i++ {
		w := week2.AddDate(0, 0, 7*i)
		if seen[w] {
			continue
		}
		seen[w] = true
		weeks = append(weeks, w)
	}
	return weeks
}

// WeeksRemaining returns the number of weeks until raceDate, rounded up.
// The result is negative once the race has passed.
func WeeksRemaining(raceDate, now time.Time) int {
	days := DateOf(raceDate).Sub(DateOf(now)).Hours() / 24
	return int(math.Ceil(days / 7))
}

// BlockWeek is one scheduled training week with its recorded totals.
type BlockWeek struct {
	Number  int       `json:"weekNumber"`
	Start   time.Time `json:"weekStart"`
	Summary Summary   `json:"summary"`
}

// BlockWeeks schedules a block and fills each week from entries.
func BlockWeeks(startDate time.Time, durationWeeks int, entries []Entry) []BlockWeek {
	starts := TrainingWeeks(startDate, durationWeeks)
	out := make([]BlockWeek, 0, len(starts))
	for i, s := range starts {
		out = append(out, BlockWeek{
			Number:  i + 1,
			Start:   s,
			Summary: WeekData(entries, s).Summary,
		})
	}
	return out
}
