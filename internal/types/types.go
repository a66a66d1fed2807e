// Package types holds the JSON shapes exchanged between the HTTP API and its
// clients.
package types

import (
	"time"

	"runlog/internal/analysis"
)

// Activity is an activity as served by the API. Distance is in miles and
// the id is a string so clients never lose precision.
type Activity struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name,omitempty"`
	Type               string    `json:"type"`
	SportType          string    `json:"sportType"`
	StartDate          time.Time `json:"startDate"`
	StartDateLocal     time.Time `json:"startDateLocal"`
	Timezone           string    `json:"timezone,omitempty"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"movingTime"`
	ElapsedTime        int       `json:"elapsedTime"`
	TotalElevationGain float64   `json:"totalElevationGain"`
	AverageSpeed       float64   `json:"averageSpeed"`
	AverageHeartrate   *float64  `json:"averageHeartrate,omitempty"`
	Calories           *float64  `json:"calories,omitempty"`
	KudosCount         int       `json:"kudosCount"`
	CommentCount       int       `json:"commentCount"`
	Trainer            bool      `json:"trainer"`
	Commute            bool      `json:"commute"`
	Manual             bool      `json:"manual"`
	Private            bool      `json:"private"`
}

// Entry returns the fields the week engine aggregates.
func (a Activity) Entry() analysis.Entry {
	e := analysis.Entry{
		StartDateLocal: a.StartDateLocal,
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
	}
	if a.Calories != nil {
		e.Calories = *a.Calories
	}
	if a.AverageHeartrate != nil {
		e.AverageHeartrate = *a.AverageHeartrate
	}
	return e
}

// Entries converts a list of activities for the week engine.
func Entries(activities []Activity) []analysis.Entry {
	entries := make([]analysis.Entry, len(activities))
	for i, a := range activities {
		entries[i] = a.Entry()
	}
	return entries
}

type CountResponse struct {
	Count int `json:"count"`
}

type TokenStatus struct {
	HasToken      bool       `json:"hasToken"`
	HasReadScope  bool       `json:"hasReadScope"`
	HasWriteScope bool       `json:"hasWriteScope"`
	Scopes        []string   `json:"scopes"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type RefetchResponse struct {
	Success bool `json:"success"`
	Fetched int  `json:"fetched"`
	Total   int  `json:"total"`
}

type UpdateActivityRequest struct {
	Name string `json:"name"`
}

// MessageResponse acknowledges a write
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Day is one bucket of a week view. Date is YYYY-MM-DD.
type Day struct {
	Day   string  `json:"day"`
	Date  string  `json:"date"`
	Miles float64 `json:"miles"`
	Time  int     `json:"time"`
}

// Week is a Monday-to-Sunday view with its totals.
type Week struct {
	WeekStart        string           `json:"weekStart"`
	WeekEnd          string           `json:"weekEnd"`
	Days             []Day            `json:"days"`
	Summary          analysis.Summary `json:"summary"`
	AveragePace      string           `json:"averagePace,omitempty"`
	AverageHeartRate *float64         `json:"averageHeartRate,omitempty"`
}

// WeekSummary is one row of the weekly summaries list, oldest week numbered 1.
type WeekSummary struct {
	WeekNumber int `json:"weekNumber"`
	Week
}

// NewWeek renders an engine week for the wire.
func NewWeek(w analysis.Week) Week {
	out := Week{
		WeekStart: w.Start.Format(analysis.DateLayout),
		WeekEnd:   w.End().Format(analysis.DateLayout),
		Days:      make([]Day, len(w.Days)),
		Summary:   w.Summary,
	}
	for i, d := range w.Days {
		out.Days[i] = Day{Day: d.Label, Date: d.Date.Format(analysis.DateLayout), Miles: d.Miles, Time: d.Time}
	}
	if pace, ok := analysis.AveragePace(w.Summary); ok {
		out.AveragePace = pace
	}
	if hr, ok := w.Summary.AverageHeartRate(); ok {
		out.AverageHeartRate = &hr
	}
	return out
}

// TrainingBlock is a race-prep plan. Dates are YYYY-MM-DD.
type TrainingBlock struct {
	ID             string    `json:"id"`
	RaceName       string    `json:"raceName"`
	Identifier     string    `json:"identifier"`
	RaceDate       string    `json:"raceDate"`
	StartDate      string    `json:"startDate"`
	DurationWeeks  int       `json:"durationWeeks"`
	WeeksRemaining int       `json:"weeksRemaining"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateTrainingBlockRequest carries every field; missing ones fail validation.
type CreateTrainingBlockRequest struct {
	RaceName      string `json:"raceName"`
	Identifier    string `json:"identifier"`
	RaceDate      string `json:"raceDate"`
	StartDate     string `json:"startDate"`
	DurationWeeks int    `json:"durationWeeks"`
}

// UpdateTrainingBlockRequest is a partial update; nil fields are kept.
type UpdateTrainingBlockRequest struct {
	RaceName      *string `json:"raceName,omitempty"`
	Identifier    *string `json:"identifier,omitempty"`
	RaceDate      *string `json:"raceDate,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	DurationWeeks *int    `json:"durationWeeks,omitempty"`
}

// BlockWeek is one scheduled week of a training block.
type BlockWeek struct {
	WeekNumber  int              `json:"weekNumber"`
	WeekStart   string           `json:"weekStart"`
	WeekEnd     string           `json:"weekEnd"`
	Summary     analysis.Summary `json:"summary"`
	AveragePace string           `json:"averagePace,omitempty"`
}

type TrainingBlockWeeks struct {
	Block TrainingBlock `json:"block"`
	Weeks []BlockWeek   `json:"weeks"`
}
