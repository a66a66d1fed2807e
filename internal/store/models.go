package store

import "time"

// Auth is the singleton OAuth token record
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string // comma separated, as granted
}

// Activity is a persisted Strava activity
type Activity struct {
	ID                 int64
	Name               string
	Type               string
	SportType          string
	StartDate          time.Time
	StartDateLocal     time.Time
	Timezone           string
	Distance           float64  // kilometers
	MovingTime         int      // seconds
	ElapsedTime        int      // seconds
	TotalElevationGain float64  // meters
	AverageSpeed       float64  // m/s
	AverageHeartrate   *float64 // nullable
	Calories           *float64 // nullable
	KudosCount         int
	CommentCount       int
	Trainer            bool
	Commute            bool
	Manual             bool
	Private            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ActivityFilter narrows ListActivities
type ActivityFilter struct {
	Type   string // empty matches every type
	Limit  int    // 0 means no limit
	Offset int
}

// TrainingBlock is a race-prep plan
type TrainingBlock struct {
	ID            string
	RaceName      string
	Identifier    string
	RaceDate      time.Time
	StartDate     time.Time
	DurationWeeks int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
