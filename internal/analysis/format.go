package analysis

import (
	"fmt"
	"math"
	"time"
)

const (
	// MetersPerMile is the exact international mile.
	MetersPerMile = 1609.344
	// KmToMiles converts stored kilometers to display miles.
	KmToMiles = 0.621371
)

// FormatTimeFromSeconds renders a duration as HH:MM:SS, or "N/A" when zero.
func FormatTimeFromSeconds(seconds int) string {
	if seconds <= 0 {
		return "N/A"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatTimeSimple renders a duration as "1h 5m" or "42m".
func FormatTimeSimple(seconds int) string {
	if seconds <= 0 {
		return "0m"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatTimeFromHours renders fractional hours as "1h 30m" or "45m".
func FormatTimeFromHours(hours float64) string {
	h := int(math.Floor(hours))
	m := int(math.Floor((hours - float64(h)) * 60))
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatDate renders a date as "Jan 2, 2006", or "N/A" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// CalculatePace returns minutes:seconds per mile for a distance and duration.
// Seconds are truncated. ok is false when either input is zero.
func CalculatePace(miles float64, seconds int) (pace string, ok bool) {
	if miles <= 0 || seconds <= 0 {
		return "", false
	}
	perMile := float64(seconds) / miles
	mins := int(perMile / 60)
	secs := int(math.Mod(perMile, 60))
	return fmt.Sprintf("%d:%02d", mins, secs), true
}

// FormatPace converts an average speed in m/s to minutes:seconds per mile.
// The total is rounded to the nearest second before splitting so the
// seconds field never reads 60.
func FormatPace(averageSpeed float64) (pace string, ok bool) {
	if averageSpeed <= 0 {
		return "", false
	}
	total := int(math.Round(MetersPerMile / averageSpeed))
	return fmt.Sprintf("%d:%02d", total/60, total%60), true
}

// KmToMi converts kilometers to miles.
func KmToMi(km float64) float64 {
	return km * KmToMiles
}

// Truncate shortens s to n runes, ending in "..." when there is room.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
