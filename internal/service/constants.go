package service

const (
	// Sync defaults, matching a single page of the list endpoint
	DefaultSyncPages   = 1
	DefaultSyncPerPage = 30
	MaxSyncPerPage     = 200
	DefaultPrimaryType = "Run"

	// Unit conversions
	MetersPerKm = 1000.0
	KmToMiles   = 0.621371
)
