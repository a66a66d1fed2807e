package strava

import (
	"fmt"
	"strings"
	"time"
)

// Activity is the single intake shape for Strava activity payloads.
// The list endpoint returns a summary; the detail endpoint adds heart rate,
// calories and a refined sport type. Fields a payload may omit are pointers.
type Activity struct {
	ID                 int64     `json:"id"`
	Athlete            Athlete   `json:"athlete"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       *float64  `json:"average_speed"`        // m/s
	AverageHeartrate   *float64  `json:"average_heartrate"`    // bpm
	Calories           *float64  `json:"calories"`             // detail only
	KudosCount         int       `json:"kudos_count"`
	CommentCount       int       `json:"comment_count"`
	Trainer            bool      `json:"trainer"`
	Commute            bool      `json:"commute"`
	Manual             bool      `json:"manual"`
	Private            bool      `json:"private"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// WithDetail returns a copy of a with the fields only the detail endpoint
// reliably returns filled in from d. Fields d leaves empty keep a's values.
func (a Activity) WithDetail(d *Activity) Activity {
	if d == nil {
		return a
	}
	if d.AverageHeartrate != nil {
		a.AverageHeartrate = d.AverageHeartrate
	}
	if d.Calories != nil {
		a.Calories = d.Calories
	}
	if d.AverageSpeed != nil {
		a.AverageSpeed = d.AverageSpeed
	}
	if d.SportType != "" {
		a.SportType = d.SportType
	}
	return a
}

// Speed returns the average speed, deriving it from distance and moving time
// when the payload omitted it.
func (a Activity) Speed() float64 {
	if a.AverageSpeed != nil {
		return *a.AverageSpeed
	}
	if a.MovingTime > 0 {
		return a.Distance / float64(a.MovingTime)
	}
	return 0
}

// UpdatableActivity is the body accepted by PUT /activities/{id}
type UpdatableActivity struct {
	Name string `json:"name"`
}

// Fault is one entry in a Strava error response
type Fault struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int     `json:"-"`
	Message    string  `json:"message"`
	Errors     []Fault `json:"errors"`
	Body       string  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// MissingScope reports whether Strava rejected the token for lacking a
// permission, e.g. {"field":"activity:read_permission","code":"missing"}.
// Refreshing cannot fix this; the user must authorize again.
func (e *APIError) MissingScope() bool {
	for _, f := range e.Errors {
		if f.Code == "missing" && strings.HasSuffix(f.Field, "_permission") {
			return true
		}
	}
	return false
}
