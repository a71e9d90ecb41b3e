package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/codetutor/internal/config"
	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/github"
	"github.com/codetutor/internal/session"
	"github.com/codetutor/internal/token"
)

const testPassword = "Abcd1234!"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:  "test",
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
		FrontendURL:  "http://localhost:5173",
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			Issuer:        "codetutor",
			Audience:      "codetutor-api",
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
		},
		Lockout: config.LockoutConfig{
			MaxAttempts: 3,
			Window:      15 * time.Minute,
			Duration:    15 * time.Minute,
		},
		Cookie:     config.CookieConfig{Domain: "localhost"},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		BcryptCost: 10,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *db.DB) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}

	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("db.Init() failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	tokens, err := token.NewService(token.Options{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		t.Fatalf("token.NewService() failed: %v", err)
	}

	flow := github.NewFlow(cfg.GitHub, session.NewMemoryStore(), database, slog.Default())
	return NewServer(cfg, database, tokens, flow), database
}

// createUser inserts a user directly and returns it with a valid token pair
func createUser(t *testing.T, s *Server, database *db.DB, username, email string, role domain.Role) (*db.User, *token.Pair) {
	t.Helper()

	hash, err := s.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	user := db.NewUser(username, email, hash)
	user.Role = role
	if err := database.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair() failed: %v", err)
	}
	return user, pair
}

type requestOptions struct {
	body    any
	bearer  string
	cookies []*http.Cookie
}

func doRequest(t *testing.T, s *Server, method, path string, opts requestOptions) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if opts.body != nil {
		raw, err := json.Marshal(opts.body)
		if err != nil {
			t.Fatalf("marshaling request body failed: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+opts.bearer)
	}
	for _, cookie := range opts.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors Response with Data left as raw JSON for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding response envelope failed: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decoding response data failed: %v\ndata: %s", err, env.Data)
	}
}

// findCookie returns the named Set-Cookie entry from a response, if present
func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
