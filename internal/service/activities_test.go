package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"runlog/internal/auth"
	"runlog/internal/store"
	"runlog/internal/strava"
)

func seedActivities(t *testing.T, db *store.DB, activities ...strava.Activity) {
	t.Helper()
	for _, a := range activities {
		if err := db.UpsertActivity(context.Background(), ConvertActivity(a)); err != nil {
			t.Fatalf("seeding activity %d: %v", a.ID, err)
		}
	}
}

func TestActivityServiceList(t *testing.T) {
	db := setupTestDB(t)
	ride := run(3, "2025-01-16T06:00:00Z", 30000, 3600)
	ride.Type = "Ride"
	seedActivities(t, db,
		run(1, "2025-01-13T06:00:00Z", 1609.344, 480),
		run(2, "2025-01-15T06:00:00Z", 5000, 1500),
		ride,
	)
	svc := NewActivityService(db, &fakeStrava{}, fakeStatus{}, "Run", quietLogger())

	tests := []struct {
		name    string
		typ     string
		wantIDs []string
	}{
		{"default is primary type", "", []string{"2", "1"}},
		{"explicit type", "Ride", []string{"3"}},
		{"all types", "all", []string{"3", "2", "1"}},
		{"unknown type", "Swim", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.typ)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d activities, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}

	all, _ := svc.List(context.Background(), "")
	if mi := all[1].Distance; math.Abs(mi-1.0) > 0.001 {
		t.Errorf("Distance = %v mi, want ~1", mi)
	}
}

func TestActivityServiceCount(t *testing.T) {
	db := setupTestDB(t)
	seedActivities(t, db, run(1, "2025-01-13T06:00:00Z", 5000, 1500), run(2, "2025-01-14T06:00:00Z", 5000, 1500))
	svc := NewActivityService(db, &fakeStrava{}, fakeStatus{}, "", quietLogger())

	n, err := svc.Count(context.Background())
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v; want 2", n, err)
	}
}

func TestActivityServiceRename(t *testing.T) {
	db := setupTestDB(t)
	seedActivities(t, db, run(1, "2025-01-13T06:00:00Z", 5000, 1500))
	api := &fakeStrava{}
	svc := NewActivityService(db, api, fakeStatus{}, "", quietLogger())

	if err := svc.Rename(context.Background(), "1", "  Tempo Tuesday "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if api.updates[1] != "Tempo Tuesday" {
		t.Errorf("Strava update = %q", api.updates[1])
	}
	got, _ := db.GetActivity(context.Background(), 1)
	if got.Name != "Tempo Tuesday" {
		t.Errorf("stored name = %q", got.Name)
	}

	// Not stored locally yet is fine
	if err := svc.Rename(context.Background(), "99", "Later"); err != nil {
		t.Errorf("Rename() of unsynced activity error = %v", err)
	}
	if api.updates[99] != "Later" {
		t.Error("unsynced activity not renamed on Strava")
	}
}

func TestActivityServiceRenameValidation(t *testing.T) {
	db := setupTestDB(t)
	api := &fakeStrava{}
	svc := NewActivityService(db, api, fakeStatus{}, "", quietLogger())

	tests := []struct {
		name, id, newName, want string
	}{
		{"blank name", "1", "   ", "Name is required"},
		{"bad id", "abc", "Run", "Invalid activity id"},
		{"negative id", "-4", "Run", "Invalid activity id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Rename(context.Background(), tt.id, tt.newName)
			var v *ValidationError
			if !errors.As(err, &v) || v.Message != tt.want {
				t.Errorf("Rename() error = %v, want %q", err, tt.want)
			}
		})
	}
	if len(api.updates) != 0 {
		t.Errorf("invalid renames reached Strava: %v", api.updates)
	}
}

func TestActivityServiceRenameStravaFailure(t *testing.T) {
	db := setupTestDB(t)
	seedActivities(t, db, run(1, "2025-01-13T06:00:00Z", 5000, 1500))
	api := &fakeStrava{updateErr: &strava.APIError{StatusCode: 500}}
	svc := NewActivityService(db, api, fakeStatus{}, "", quietLogger())

	if err := svc.Rename(context.Background(), "1", "New"); err == nil {
		t.Fatal("expected error")
	}
	got, _ := db.GetActivity(context.Background(), 1)
	if got.Name != "Run 1" {
		t.Errorf("local name changed to %q after Strava failure", got.Name)
	}
}

func TestActivityServiceTokenStatus(t *testing.T) {
	exp := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		status auth.Status
		check  func(t *testing.T, hasToken, read, write bool, scopes []string, expires *time.Time)
	}{
		{
			name:   "no token",
			status: auth.Status{State: auth.StateNoToken},
			check: func(t *testing.T, hasToken, read, write bool, scopes []string, expires *time.Time) {
				if hasToken || expires != nil || scopes == nil || len(scopes) != 0 {
					t.Errorf("got hasToken=%v expires=%v scopes=%v", hasToken, expires, scopes)
				}
			},
		},
		{
			name: "read and write",
			status: auth.Status{
				State: auth.StateValid, HasToken: true, HasReadScope: true, HasWriteScope: true,
				Scopes: []string{"read", "activity:read_all", "activity:write"}, ExpiresAt: exp,
			},
			check: func(t *testing.T, hasToken, read, write bool, scopes []string, expires *time.Time) {
				if !hasToken || !read || !write || len(scopes) != 3 {
					t.Errorf("got hasToken=%v read=%v write=%v scopes=%v", hasToken, read, write, scopes)
				}
				if expires == nil || !expires.Equal(exp) {
					t.Errorf("expires = %v", expires)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewActivityService(setupTestDB(t), &fakeStrava{}, fakeStatus{status: tt.status}, "", quietLogger())
			got, err := svc.TokenStatus(context.Background())
			if err != nil {
				t.Fatalf("TokenStatus() error = %v", err)
			}
			tt.check(t, got.HasToken, got.HasReadScope, got.HasWriteScope, got.Scopes, got.ExpiresAt)
		})
	}
}
