package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"runlog/internal/store"
)

// tokenServer fakes Strava's token endpoint and counts grants by type
type tokenServer struct {
	*httptest.Server
	refreshGrants int32
	codeGrants    int32
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if r.Form.Get("client_id") != "cid" || r.Form.Get("client_secret") != "secret" {
			t.Errorf("client credentials not sent in params: %v", r.Form)
		}

		var access, refresh string
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			n := atomic.AddInt32(&ts.refreshGrants, 1)
			access = fmt.Sprintf("access-refresh-%d", n)
			refresh = "rotated-" + r.Form.Get("refresh_token")
		case "authorization_code":
			atomic.AddInt32(&ts.codeGrants, 1)
			access = "access-code-" + r.Form.Get("code")
			refresh = "refresh-code"
		default:
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  access,
			"refresh_token": refresh,
			"token_type":    "Bearer",
			"expires_in":    21600,
			"athlete":       map[string]any{"id": 4242},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// memStore is an in-memory TokenStore
type memStore struct {
	auth  *store.Auth
	saves int
}

func (s *memStore) GetAuth(ctx context.Context) (*store.Auth, error) {
	if s.auth == nil {
		return nil, store.ErrNoAuth
	}
	a := *s.auth
	return &a, nil
}

func (s *memStore) SaveAuth(ctx context.Context, a *store.Auth) error {
	cp := *a
	s.auth = &cp
	s.saves++
	return nil
}

type fakeAuthorizer struct {
	calls int
	err   error
}

func (f *fakeAuthorizer) Authorize(ctx context.Context) (*AuthResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &AuthResult{
		Token:     &oauth2.Token{AccessToken: "interactive", RefreshToken: "interactive-refresh", Expiry: time.Now().Add(6 * time.Hour)},
		AthleteID: 7,
		Scope:     "read,activity:read_all,activity:write",
	}, nil
}

func testOAuth(ts *tokenServer) *oauth2.Config {
	return NewOAuthConfig(Config{ClientID: "cid", ClientSecret: "secret", TokenURL: ts.URL})
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestManagerUsesValidStoredToken(t *testing.T) {
	ts := newTokenServer(t)
	s := &memStore{auth: &store.Auth{AccessToken: "stored", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}}
	m := NewManager(testOAuth(ts), s, quietLogger())

	tok, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if tok != "stored" {
		t.Errorf("AccessToken() = %q, want stored", tok)
	}
	if ts.refreshGrants != 0 {
		t.Errorf("refresh grants = %d, want 0", ts.refreshGrants)
	}
}

func TestManagerRefreshesWithinBuffer(t *testing.T) {
	ts := newTokenServer(t)
	s := &memStore{auth: &store.Auth{
		AthleteID:    9,
		AccessToken:  "old",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(4 * time.Minute),
		Scope:        "read,activity:read_all",
	}}
	m := NewManager(testOAuth(ts), s, quietLogger())

	tok, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if tok != "access-refresh-1" {
		t.Errorf("AccessToken() = %q, want access-refresh-1", tok)
	}
	if s.auth.RefreshToken != "rotated-r1" {
		t.Errorf("stored refresh token = %q, want rotated-r1", s.auth.RefreshToken)
	}
	if s.auth.Scope != "read,activity:read_all" {
		t.Errorf("scope lost across refresh: %q", s.auth.Scope)
	}

	// Second call uses the cached token
	if _, err := m.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken() second call error = %v", err)
	}
	if got := atomic.LoadInt32(&ts.refreshGrants); got != 1 {
		t.Errorf("refresh grants = %d, want 1", got)
	}
}

func TestManagerBootstrapsFromRefreshToken(t *testing.T) {
	ts := newTokenServer(t)
	s := &memStore{}
	authz := &fakeAuthorizer{}
	m := NewManager(testOAuth(ts), s, quietLogger(), WithBootstrapRefreshToken("seed"), WithAuthorizer(authz))

	tok, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if tok != "access-refresh-1" {
		t.Errorf("AccessToken() = %q", tok)
	}
	if authz.calls != 0 {
		t.Errorf("interactive flow ran %d times, want 0", authz.calls)
	}
	if s.auth == nil || s.auth.AthleteID != 4242 {
		t.Errorf("stored auth = %+v, want athlete 4242", s.auth)
	}
}

func TestManagerAuthorizesWhenEmpty(t *testing.T) {
	ts := newTokenServer(t)
	s := &memStore{}
	authz := &fakeAuthorizer{}
	m := NewManager(testOAuth(ts), s, quietLogger(), WithAuthorizer(authz))

	tok, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if tok != "interactive" || authz.calls != 1 {
		t.Errorf("AccessToken() = %q after %d flows", tok, authz.calls)
	}

	st, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.HasToken || !st.HasReadScope || !st.HasWriteScope || st.State != StateValid {
		t.Errorf("Status() = %+v", st)
	}
	if len(st.Scopes) != 3 {
		t.Errorf("Scopes = %v, want 3 entries", st.Scopes)
	}
}

func TestManagerWithoutAuthorizer(t *testing.T) {
	ts := newTokenServer(t)
	m := NewManager(testOAuth(ts), &memStore{}, quietLogger())

	_, err := m.AccessToken(context.Background())
	if !errors.Is(err, ErrInteractiveDisabled) {
		t.Errorf("AccessToken() error = %v, want ErrInteractiveDisabled", err)
	}

	st, _ := m.Status(context.Background())
	if st.HasToken || st.State != StateNoToken {
		t.Errorf("Status() = %+v, want no token", st)
	}
}

func TestManagerAuthorizationFailureSurfaces(t *testing.T) {
	ts := newTokenServer(t)
	authz := &fakeAuthorizer{err: ErrAuthTimeout}
	m := NewManager(testOAuth(ts), &memStore{}, quietLogger(), WithAuthorizer(authz))

	_, err := m.AccessToken(context.Background())
	if !errors.Is(err, ErrAuthTimeout) {
		t.Errorf("AccessToken() error = %v, want ErrAuthTimeout", err)
	}
	if authz.calls != 1 {
		t.Errorf("interactive flow ran %d times, want 1", authz.calls)
	}
}

func TestManagerForcedRefreshAndReauthorize(t *testing.T) {
	ts := newTokenServer(t)
	s := &memStore{auth: &store.Auth{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour), Scope: "read"}}
	authz := &fakeAuthorizer{}
	m := NewManager(testOAuth(ts), s, quietLogger(), WithAuthorizer(authz))

	tok, err := m.Refresh(context.Background())
	if err != nil || tok != "access-refresh-1" {
		t.Fatalf("Refresh() = (%q, %v)", tok, err)
	}

	st, _ := m.Status(context.Background())
	if st.HasReadScope {
		t.Error("read-only scope should not report activity read access")
	}

	tok, err = m.Reauthorize(context.Background())
	if err != nil || tok != "interactive" {
		t.Fatalf("Reauthorize() = (%q, %v)", tok, err)
	}
	st, _ = m.Status(context.Background())
	if !st.HasWriteScope {
		t.Errorf("Status() after reauthorize = %+v, want write scope", st)
	}
}

func TestFlowCompletesAndReleasesPort(t *testing.T) {
	ts := newTokenServer(t)
	var port string
	f := &Flow{
		OAuth:   testOAuth(ts),
		Port:    0,
		Timeout: 5 * time.Second,
		Out:     io.Discard,
		OpenBrowser: func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			if q.Get("approval_prompt") != "force" {
				t.Errorf("approval_prompt = %q, want force", q.Get("approval_prompt"))
			}
			if q.Get("scope") != "read,activity:read_all,activity:write" {
				t.Errorf("scope = %q", q.Get("scope"))
			}
			redirect, _ := url.Parse(q.Get("redirect_uri"))
			port = redirect.Port()
			go func() {
				cb := fmt.Sprintf("%s?code=abc&state=%s&scope=%s",
					redirect.String(), q.Get("state"), url.QueryEscape("read,activity:read_all"))
				resp, err := http.Get(cb)
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	res, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Token.AccessToken != "access-code-abc" {
		t.Errorf("AccessToken = %q", res.Token.AccessToken)
	}
	if res.AthleteID != 4242 {
		t.Errorf("AthleteID = %d, want 4242", res.AthleteID)
	}
	if res.Scope != "read,activity:read_all" {
		t.Errorf("Scope = %q", res.Scope)
	}

	assertPortFree(t, port)
}

func TestFlowTimeoutReleasesPort(t *testing.T) {
	ts := newTokenServer(t)
	var port string
	f := &Flow{
		OAuth:   testOAuth(ts),
		Timeout: 50 * time.Millisecond,
		Out:     io.Discard,
		OpenBrowser: func(authURL string) error {
			u, _ := url.Parse(authURL)
			redirect, _ := url.Parse(u.Query().Get("redirect_uri"))
			port = redirect.Port()
			return nil
		},
	}

	_, err := f.Run(context.Background())
	if !errors.Is(err, ErrAuthTimeout) {
		t.Fatalf("Run() error = %v, want ErrAuthTimeout", err)
	}
	assertPortFree(t, port)
}

func TestFlowStateMismatch(t *testing.T) {
	ts := newTokenServer(t)
	f := &Flow{
		OAuth:   testOAuth(ts),
		Timeout: 5 * time.Second,
		Out:     io.Discard,
		OpenBrowser: func(authURL string) error {
			u, _ := url.Parse(authURL)
			redirect := u.Query().Get("redirect_uri")
			go func() {
				resp, err := http.Get(redirect + "?code=abc&state=forged")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	if _, err := f.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail on state mismatch")
	}
	if got := atomic.LoadInt32(&ts.codeGrants); got != 0 {
		t.Errorf("code grants = %d, want 0", got)
	}
}

func assertPortFree(t *testing.T, port string) {
	t.Helper()
	if port == "" {
		t.Fatal("callback port was never observed")
	}
	l, err := net.Listen("tcp", ":"+port)
	if err != nil {
		t.Fatalf("callback port %s still bound: %v", port, err)
	}
	l.Close()
}

func TestSplitScopes(t *testing.T) {
	got := SplitScopes("read,activity:read_all, activity:write")
	want := []string{"read", "activity:read_all", "activity:write"}
	if len(got) != len(want) {
		t.Fatalf("SplitScopes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitScopes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(SplitScopes("")) != 0 {
		t.Error("SplitScopes(\"\") should be empty")
	}
}
