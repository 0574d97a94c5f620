package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lumenweave/lumenweave-core/internal/auth"
	"github.com/lumenweave/lumenweave-core/internal/compiler"
	"github.com/lumenweave/lumenweave-core/internal/curve"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/config"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/logging"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/template"
	"github.com/lumenweave/lumenweave-core/internal/transition"
)

const testJWTSecret = "api-test-secret-key-with-32-chars!!"

// testSchema creates the tables the API touches. Mirrors the real
// migrations closely enough for handler tests.
const testSchema = `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		email TEXT,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	) STRICT;

	CREATE TABLE templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		steps TEXT NOT NULL DEFAULT '[]',
		repeatable INTEGER NOT NULL DEFAULT 0,
		cycle_bars REAL NOT NULL DEFAULT 0,
		loop_step_ids TEXT,
		repeat_mode TEXT NOT NULL DEFAULT 'normal',
		dimmer_floor REAL,
		dimmer_ceiling REAL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	) STRICT;
`

// testEnv bundles a fully wired server and the handler under test.
type testEnv struct {
	server  *Server
	handler http.Handler
	db      *sql.DB
}

// newTestEnv builds a server backed by a temp SQLite database, a
// two-fixture rig, and seeded viewer/operator/admin accounts.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f, err := os.CreateTemp("", "api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	users := auth.NewUserRepository(db)
	for _, acct := range []struct {
		username string
		role     auth.Role
	}{
		{"viewer", auth.RoleViewer},
		{"operator", auth.RoleOperator},
		{"admin", auth.RoleAdmin},
	} {
		hash, err := auth.HashPassword("test-password")
		if err != nil {
			t.Fatalf("hashing password: %v", err)
		}
		user := &auth.User{
			Username:     acct.username,
			DisplayName:  acct.username,
			PasswordHash: hash,
			Role:         acct.role,
			IsActive:     true,
		}
		if err := users.Create(context.Background(), user); err != nil {
			t.Fatalf("seeding %s: %v", acct.username, err)
		}
	}

	fixtures := []rig.Fixture{
		{ID: "mh-1", Name: "Left", Calibration: rig.DefaultCalibration()},
		{ID: "mh-2", Name: "Right", Calibration: rig.DefaultCalibration()},
	}
	testRig, err := rig.New(fixtures, nil, nil)
	if err != nil {
		t.Fatalf("building rig: %v", err)
	}

	comp, err := compiler.New(testRig)
	if err != nil {
		t.Fatalf("building compiler: %v", err)
	}

	registry := template.NewRegistry(template.NewSQLiteRepository(db))

	srv, err := New(Deps{
		Config:    config.APIConfig{},
		WS:        config.WebSocketConfig{MaxMessageSize: 65536, PingInterval: 30, PongTimeout: 60},
		Security:  config.SecurityConfig{JWT: config.JWTConfig{Secret: testJWTSecret, AccessTokenTTL: 15}},
		Logger:    logging.Default(),
		Templates: registry,
		Rig:       testRig,
		Compiler:  comp,
		Planner:   transition.NewPlanner(),
		Blender:   transition.NewBlender(),
		Users:     users,
		ShowID:    "test-show",
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	// The hub is normally created in Start(); handlers need it.
	srv.hub = NewHub(srv.wsCfg, srv.logger)

	return &testEnv{
		server:  srv,
		handler: srv.buildRouter(),
		db:      db,
	}
}

// request performs an HTTP request against the router and returns the recorder.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login authenticates a seeded account and returns its access token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Username: username,
		Password: "test-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return resp.AccessToken
}

// decodeBody unmarshals the recorder body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
}

// sweepTemplate returns a minimal valid template targeting the ALL group.
func sweepTemplate(slug string) template.Template {
	return template.Template{
		Name: "Slow Sweep",
		Slug: slug,
		Steps: []template.Step{
			{
				ID:    "sweep",
				Group: rig.GroupAll,
				Movement: &template.Movement{
					Curve:           curve.Sine,
					Params:          curve.Params{Cycles: 1},
					PanAmplitudeDeg: 45,
				},
				Timing: template.Timing{DurationBars: 4},
			},
		},
	}
}
