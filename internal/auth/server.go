package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

const (
	// CallbackPort is the default port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

// ErrAuthTimeout is returned when no callback arrives in time
var ErrAuthTimeout = errors.New("authentication timed out")

// Flow runs the authorization-code flow against a local callback listener
type Flow struct {
	OAuth   *oauth2.Config
	Port    int           // 0 picks a free port
	Timeout time.Duration // defaults to AuthTimeout
	Out     io.Writer     // defaults to stdout

	// OpenBrowser is called with the authorization URL. Failures are
	// ignored since the URL is also printed.
	OpenBrowser func(url string) error
}

// NewFlow creates a Flow on CallbackPort that opens the system browser
func NewFlow(cfg *oauth2.Config, port int) *Flow {
	return &Flow{
		OAuth:       cfg,
		Port:        port,
		Timeout:     AuthTimeout,
		Out:         os.Stdout,
		OpenBrowser: openBrowser,
	}
}

// Authorize implements Authorizer
func (f *Flow) Authorize(ctx context.Context) (*AuthResult, error) {
	return f.Run(ctx)
}

// Run starts the listener, waits for the callback and exchanges the code.
// The listener is shut down before Run returns on every path.
func (f *Flow) Run(ctx context.Context) (*AuthResult, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = AuthTimeout
	}
	out := f.Out
	if out == nil {
		out = os.Stdout
	}

	// Generate state for CSRF protection
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", f.Port))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}
	defer listener.Close()

	// The redirect must match the port actually bound
	cfg := *f.OAuth
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", listener.Addr().(*net.TCPAddr).Port)

	type callback struct {
		code  string
		scope string
	}
	codeChan := make(chan callback, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			sendErr(errChan, fmt.Errorf("state mismatch - possible CSRF attack"))
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if errMsg := q.Get("error"); errMsg != "" {
			sendErr(errChan, fmt.Errorf("auth error: %s", errMsg))
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			sendErr(errChan, fmt.Errorf("no code in callback"))
			http.Error(w, "No authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		select {
		case codeChan <- callback{code: code, scope: q.Get("scope")}:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	defer shutdownServer(server)

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errChan, fmt.Errorf("server error: %w", err))
		}
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To authenticate with Strava, open this URL in your browser:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", authURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Waiting for authentication...")
	if f.OpenBrowser != nil {
		_ = f.OpenBrowser(authURL)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cb callback
	select {
	case cb = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %v", ErrAuthTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		AthleteID: ExtractAthleteID(token),
		Scope:     cb.scope,
	}, nil
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Success!</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
