package auth

import (
	"strings"

	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scope names granted by Strava
const (
	ScopeRead          = "read"
	ScopeActivityRead  = "activity:read"
	ScopeActivityAll   = "activity:read_all"
	ScopeActivityWrite = "activity:write"
)

// Scopes required for our app. Strava expects one comma-separated value,
// so this is a single element rather than one per scope.
var Scopes = []string{
	strings.Join([]string{ScopeRead, ScopeActivityAll, ScopeActivityWrite}, ","),
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
	TokenURL     string // overrides the Strava token endpoint
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	tokenURL := TokenURL
	if cfg.TokenURL != "" {
		tokenURL = cfg.TokenURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: tokenURL,
			// Strava wants client_id and client_secret in the form body
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
	Scope     string // as reported on the callback
}

// ExtractAthleteID extracts the athlete ID from the token extras
// Strava includes athlete info in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// SplitScopes turns "read,activity:read_all" into its parts.
func SplitScopes(scope string) []string {
	return strings.FieldsFunc(scope, func(r rune) bool { return r == ',' || r == ' ' })
}
