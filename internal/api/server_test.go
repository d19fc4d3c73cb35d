package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akuaponik-iot/gateway/internal/access"
	"github.com/akuaponik-iot/gateway/internal/actuator"
	"github.com/akuaponik-iot/gateway/internal/auth"
	"github.com/akuaponik-iot/gateway/internal/farm"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/config"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
	"github.com/akuaponik-iot/gateway/internal/telemetry"
)

// recordingPublisher captures broker announcements.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	bodies []string
	err    error
}

func (p *recordingPublisher) Publish(topic string, payload []byte, _ byte, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.bodies = append(p.bodies, string(payload))
	return nil
}

// stubHealth is a HealthChecker with a fixed answer.
type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

// testEnv bundles a server with its backing store for assertions.
type testEnv struct {
	srv       *Server
	router    http.Handler
	db        *database.DB
	publisher *recordingPublisher
}

// testServer creates a Server backed by a temporary SQLite store.
func testServer(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	log := logging.Discard()
	wsCfg := config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}

	hub := NewHub(wsCfg, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	hasher := &auth.Argon2idHasher{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
	accounts := auth.NewService(auth.NewUserRepository(db), hasher)
	publisher := &recordingPublisher{}

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS:       wsCfg,
		Logger:   log,
		Store:    db,
		Accounts: accounts,
		Farms:    farm.NewSQLRepository(db),
		Readings: telemetry.NewSQLRepository(db),
		Actuators: actuator.NewService(actuator.ServiceDeps{
			Repo:      actuator.NewSQLRepository(db),
			Publisher: publisher,
			Notifier:  hub,
			Topics:    map[actuator.Kind]string{actuator.Solenoid: "solenoid_info", actuator.Aerator: "aerator_info"},
		}),
		Access:  access.NewService(access.NewSQLRepository(db), accounts),
		Hub:     hub,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return &testEnv{srv: srv, router: srv.buildRouter(), db: db, publisher: publisher}
}

// do sends a request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API.
func (e *testEnv) register(t *testing.T, username string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/register", `{"idusername":"`+username+`","password":"rahasia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status = %d; body: %s", username, w.Code, w.Body.String())
	}
}

// storedState reads the state column of one actuator event row.
func (e *testEnv) storedState(t *testing.T, table, idColumn string, id any) int {
	t.Helper()
	n, ok := id.(float64)
	if !ok {
		t.Fatalf("%s id = %v (%T), want number", table, id, id)
	}
	var state int
	query := "SELECT state FROM " + table + " WHERE " + idColumn + " = ?"
	if err := e.db.QueryRowContext(context.Background(), query, int64(n)).Scan(&state); err != nil {
		t.Fatalf("reading %s state: %v", table, err)
	}
	return state
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d; body: %s", w.Code, status, w.Body.String())
	}
	if body != "" && w.Body.String() != body {
		t.Errorf("body = %q, want %q", w.Body.String(), body)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New(empty) error = nil, want error")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New(logger only) error = nil, want error")
	}
}

func TestServer_StartAppliesTimeouts(t *testing.T) {
	env := testServer(t)

	if err := env.srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { env.srv.Close() }) //nolint:errcheck // Test cleanup

	if env.srv.Addr() == "" {
		t.Error("Addr() is empty after Start")
	}
	if err := env.srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	hs := env.srv.server
	if hs.ReadTimeout != 5*time.Second || hs.WriteTimeout != 5*time.Second || hs.IdleTimeout != 5*time.Second {
		t.Errorf("timeouts = read %v write %v idle %v, want 5s each", hs.ReadTimeout, hs.WriteTimeout, hs.IdleTimeout)
	}

	resp, err := http.Get("http://" + env.srv.Addr() + "/users")
	if err != nil {
		t.Fatalf("GET /users: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /users status = %d, want 200", resp.StatusCode)
	}
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/health", "")
	expect(t, w, http.StatusOK, "")

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ok" || resp["version"] != "test" || resp["database"] != "ok" || resp["mqtt"] != "disabled" || resp["influxdb"] != "disabled" {
		t.Errorf("health = %v", resp)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestHealth_BrokerDown(t *testing.T) {
	env := testServer(t)
	env.srv.broker = stubHealth{err: errors.New("offline")}

	w := env.do(t, http.MethodGet, "/health", "")
	expect(t, w, http.StatusOK, "")
	if !strings.Contains(w.Body.String(), `"mqtt":"disconnected"`) || !strings.Contains(w.Body.String(), `"status":"degraded"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHealth_Mirror(t *testing.T) {
	tests := []struct {
		name       string
		mirror     HealthChecker
		wantMirror string
		wantStatus string
	}{
		{"reachable", stubHealth{}, "ok", "ok"},
		{"unreachable", stubHealth{err: errors.New("timeout")}, "unavailable", "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testServer(t)
			env.srv.mirror = tt.mirror

			w := env.do(t, http.MethodGet, "/health", "")
			expect(t, w, http.StatusOK, "")

			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp["influxdb"] != tt.wantMirror || resp["status"] != tt.wantStatus {
				t.Errorf("health = %v, want influxdb %q status %q", resp, tt.wantMirror, tt.wantStatus)
			}
		})
	}
}

func TestHealth_StoreDown(t *testing.T) {
	env := testServer(t)
	env.srv.store = stubHealth{err: errors.New("disk gone")}

	w := env.do(t, http.MethodGet, "/health", "")
	expect(t, w, http.StatusServiceUnavailable, "")
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	env := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	env := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/akuaponik", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin on preflight")
	}
}

func TestNotFound(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/nonexistent", "")
	expect(t, w, http.StatusNotFound, "")
}

// ─── Account Tests ─────────────────────────────────────────────────

func TestRegisterAndLogin(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodPost, "/register", `{"idusername":"budi","password":"rahasia"}`),
		http.StatusOK, "User registered successfully")
	expect(t, env.do(t, http.MethodPost, "/login", `{"idusername":"budi","password":"rahasia"}`),
		http.StatusOK, "Login successful")
	expect(t, env.do(t, http.MethodPost, "/login", `{"idusername":"budi","password":"salah"}`),
		http.StatusUnauthorized, "Invalid password")
	expect(t, env.do(t, http.MethodPost, "/login", `{"idusername":"siti","password":"rahasia"}`),
		http.StatusNotFound, "User not found")
}

func TestRegister_Validation(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodPost, "/register", `{"idusername":"budi"}`),
		http.StatusBadRequest, "Username and password are required")
	expect(t, env.do(t, http.MethodPost, "/register", ""),
		http.StatusBadRequest, "Username and password are required")
	expect(t, env.do(t, http.MethodPost, "/login", `{"password":"x"}`),
		http.StatusBadRequest, "Username and password are required")
	expect(t, env.do(t, http.MethodPost, "/register", `{not json`),
		http.StatusBadRequest, "")
}

func TestRegister_DuplicateIsServerError(t *testing.T) {
	env := testServer(t)
	env.register(t, "budi")

	expect(t, env.do(t, http.MethodPost, "/register", `{"idusername":"budi","password":"lain"}`),
		http.StatusInternalServerError, "Error registering user")
}

func TestListUsers(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodGet, "/users", "")
	expect(t, w, http.StatusOK, "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty users body = %s, want []", w.Body.String())
	}

	env.register(t, "budi")
	env.register(t, "ani")

	w = env.do(t, http.MethodGet, "/users", "")
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("users = %v, want 2 names", names)
	}
}

// ─── Farm and Pond Tests ───────────────────────────────────────────

func TestCreateFarm(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Lele Jaya"}`),
		http.StatusBadRequest, "Nama farm dan ID Username harus diisi")
	expect(t, env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Lele Jaya","Username":"hantu"}`),
		http.StatusNotFound, "ID Username tidak ditemukan")

	env.register(t, "budi")
	w := env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Lele Jaya","Username":"budi"}`)
	expect(t, w, http.StatusCreated, "")

	var f farm.Farm
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.ID == 0 || f.Name != "Lele Jaya" || f.Username != "budi" {
		t.Errorf("created farm = %+v", f)
	}
	expect(t, env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Lele Jaya","Username":" budi"}`),
		http.StatusNotFound, "ID Username tidak ditemukan")

	if !strings.Contains(w.Body.String(), `"Username":"budi"`) {
		t.Errorf("body = %s, want Username field", w.Body.String())
	}
}

func TestFarmLifecycle(t *testing.T) {
	env := testServer(t)
	env.register(t, "budi")
	env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Nila Sejahtera","Username":"budi"}`)

	w := env.do(t, http.MethodGet, "/data/budi", "")
	var farms []farm.Farm
	if err := json.Unmarshal(w.Body.Bytes(), &farms); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(farms) != 1 {
		t.Fatalf("farms = %+v, want 1", farms)
	}
	id := farms[0].ID
	path := "/akuaponik/" + itoa(id)

	expect(t, env.do(t, http.MethodGet, path, ""), http.StatusOK, "")
	expect(t, env.do(t, http.MethodGet, "/akuaponik/abc", ""), http.StatusBadRequest, "Invalid idakuaponik")
	expect(t, env.do(t, http.MethodGet, "/akuaponik/999", ""), http.StatusNotFound, "Akuaponik not found")

	expect(t, env.do(t, http.MethodPut, path, `{"nama_farm":"Nila Makmur"}`),
		http.StatusOK, "Akuaponik data updated successfully")
	expect(t, env.do(t, http.MethodPut, path, `{}`), http.StatusBadRequest, "Nama farm harus diisi")
	expect(t, env.do(t, http.MethodPut, "/akuaponik/999", `{"nama_farm":"x"}`), http.StatusNotFound, "")

	w = env.do(t, http.MethodGet, path, "")
	if !strings.Contains(w.Body.String(), "Nila Makmur") {
		t.Errorf("after update body = %s", w.Body.String())
	}

	expect(t, env.do(t, http.MethodDelete, path, ""), http.StatusOK, "Akuaponik data deleted successfully")
	expect(t, env.do(t, http.MethodDelete, path, ""), http.StatusNotFound, "Akuaponik not found")
}

func TestDeleteFarmsByName(t *testing.T) {
	env := testServer(t)
	env.register(t, "budi")
	env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Kebun Air","Username":"budi"}`)
	env.do(t, http.MethodPost, "/akuaponik", `{"nama_farm":"Kebun Air","Username":"budi"}`)
	env.do(t, http.MethodPost, "/kolam", `{"idakuaponik":1,"nama_kolam":"Kolam A"}`)

	expect(t, env.do(t, http.MethodDelete, "/akuaponik/by-name/Kebun%20Air", ""),
		http.StatusOK, "Akuaponik data and related records deleted successfully")
	expect(t, env.do(t, http.MethodDelete, "/akuaponik/by-name/Kebun%20Air", ""),
		http.StatusNotFound, "Akuaponik not found")

	w := env.do(t, http.MethodGet, "/kolam/1", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("ponds after delete = %s, want []", w.Body.String())
	}
}

func TestPonds(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodPost, "/kolam", `{"nama_kolam":"Kolam A"}`),
		http.StatusBadRequest, "Data kolam harus disertakan")
	expect(t, env.do(t, http.MethodPost, "/kolam", `{"idakuaponik":2}`),
		http.StatusBadRequest, "Data kolam harus disertakan")

	w := env.do(t, http.MethodPost, "/kolam", `{"idakuaponik":2,"nama_kolam":"Kolam A"}`)
	expect(t, w, http.StatusCreated, "")
	var created map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created["addedKolamId"] == 0 {
		t.Errorf("body = %s, want addedKolamId", w.Body.String())
	}

	expect(t, env.do(t, http.MethodPost, "/kolam", `{"idakuaponik":"2","nama_kolam":"Kolam B"}`),
		http.StatusCreated, "")

	w = env.do(t, http.MethodGet, "/kolam/2", "")
	var ponds []farm.Pond
	if err := json.Unmarshal(w.Body.Bytes(), &ponds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(ponds) != 2 {
		t.Errorf("ponds = %+v, want 2", ponds)
	}

	expect(t, env.do(t, http.MethodGet, "/kolam/x", ""), http.StatusBadRequest, "Invalid idakuaponik")
}

// ─── Sensor Tests ──────────────────────────────────────────────────

func TestListReadings(t *testing.T) {
	env := testServer(t)
	repo := telemetry.NewSQLRepository(env.db)
	r := telemetry.Reading{PondID: 5, SensorType: "ph", Value: 7, Timestamp: "2026-01-01T00:00:00.000Z"}
	if err := repo.Insert(context.Background(), &r); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	w := env.do(t, http.MethodGet, "/sensor/5", "")
	expect(t, w, http.StatusOK, "")
	var readings []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &readings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(readings) != 1 || readings[0]["jenis_sensor"] != "ph" || readings[0]["timestamp"] != "2026-01-01T00:00:00.000Z" {
		t.Errorf("readings = %v", readings)
	}

	expect(t, env.do(t, http.MethodGet, "/sensor/lima", ""), http.StatusBadRequest, "Invalid idkolam")
}

// ─── Actuator Tests ────────────────────────────────────────────────

func TestActuatorCommand(t *testing.T) {
	env := testServer(t)

	w := env.do(t, http.MethodPost, "/solenoid/3", `{"value":true}`)
	expect(t, w, http.StatusCreated, "")

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["idSolenoid"] == nil || resp["idkolam"] != "3" || resp["boolean"] != true || resp["Date"] == "" {
		t.Errorf("response = %v", resp)
	}

	if got := env.storedState(t, "solenoid", "idsolenoid", resp["idSolenoid"]); got != 1 {
		t.Errorf("stored solenoid state = %d, want 1", got)
	}

	if len(env.publisher.topics) != 1 || env.publisher.topics[0] != "solenoid_info" {
		t.Fatalf("published topics = %v", env.publisher.topics)
	}
	if env.publisher.bodies[0] != `{"message":"Solenoid pada kolam 3 on"}` {
		t.Errorf("published body = %s", env.publisher.bodies[0])
	}

	w = env.do(t, http.MethodPost, "/aerator/3", `{"value":false}`)
	expect(t, w, http.StatusCreated, "")
	var aerator map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &aerator); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if aerator["idaerator"] == nil || aerator["boolean"] != false {
		t.Errorf("aerator response = %s", w.Body.String())
	}
	if got := env.storedState(t, "aerator", "idaerator", aerator["idaerator"]); got != 0 {
		t.Errorf("stored aerator state = %d, want 0", got)
	}
	if env.publisher.bodies[1] != `{"message":"Aerator pada kolam 3 off"}` {
		t.Errorf("published body = %s", env.publisher.bodies[1])
	}
}

func TestActuatorCommand_Validation(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodPost, "/solenoid/abc", `{"value":true}`), http.StatusBadRequest, "Invalid idkolam")
	expect(t, env.do(t, http.MethodPost, "/solenoid/1", `{}`), http.StatusBadRequest, "Value must be a boolean")
	expect(t, env.do(t, http.MethodPost, "/solenoid/1", `{"value":"on"}`), http.StatusBadRequest, "Value must be a boolean")
	expect(t, env.do(t, http.MethodPost, "/aerator/1", `{"value":1}`), http.StatusBadRequest, "Value must be a boolean")

	if len(env.publisher.topics) != 0 {
		t.Errorf("published on invalid requests: %v", env.publisher.topics)
	}
}

func TestActuatorCommand_PublishFailureStillCreated(t *testing.T) {
	env := testServer(t)
	env.publisher.err = errors.New("broker offline")

	expect(t, env.do(t, http.MethodPost, "/aerator/4", `{"value":true}`), http.StatusCreated, "")
	expect(t, env.do(t, http.MethodGet, "/aerator/4", ""), http.StatusOK, "")
}

func TestActuatorHistory(t *testing.T) {
	env := testServer(t)

	expect(t, env.do(t, http.MethodGet, "/solenoid/8", ""),
		http.StatusNotFound, "No solenoid data found for the specified idkolam")

	env.do(t, http.MethodPost, "/solenoid/8", `{"value":true}`)
	env.do(t, http.MethodPost, "/solenoid/8", `{"value":false}`)

	w := env.do(t, http.MethodGet, "/solenoid/8", "")
	expect(t, w, http.StatusOK, "")
	var events []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(events) != 2 || events[0]["idsolenoid"] == nil || events[1]["boolean"] != false {
		t.Errorf("events = %v", events)
	}

	expect(t, env.do(t, http.MethodGet, "/aerator/8", ""),
		http.StatusNotFound, "No aerator data found for the specified idkolam")
}

// ─── Access Request Tests ──────────────────────────────────────────

func TestRequestAccess(t *testing.T) {
	env := testServer(t)
	env.register(t, "andi")
	env.register(t, "sari")

	expect(t, env.do(t, http.MethodPost, "/request-access", `{"Username_req":"andi"}`),
		http.StatusBadRequest, "Requesting username and accepting username are required")
	expect(t, env.do(t, http.MethodPost, "/request-access", `{"Username_req":"andi","Username_acc":"andi"}`),
		http.StatusBadRequest, "You cannot request access from yourself")
	expect(t, env.do(t, http.MethodPost, "/request-access", `{"Username_req":"andi","Username_acc":"hantu"}`),
		http.StatusNotFound, "Accepting user not found")
	expect(t, env.do(t, http.MethodPost, "/request-access", `{"Username_req":"andi","Username_acc":"sari"}`),
		http.StatusCreated, "Access request sent successfully")

	w := env.do(t, http.MethodGet, "/access-requests?Username_acc=sari", "")
	expect(t, w, http.StatusOK, "")
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0]["Username_req"] != "andi" || list[0]["status"] != "pending" {
		t.Errorf("access requests = %v", list)
	}

	expect(t, env.do(t, http.MethodGet, "/access-requests", ""), http.StatusBadRequest, "Username_acc is required")
}

func TestUpdateAccess(t *testing.T) {
	env := testServer(t)
	env.register(t, "andi")
	env.register(t, "sari")
	env.do(t, http.MethodPost, "/request-access", `{"Username_req":"andi","Username_acc":"sari"}`)

	expect(t, env.do(t, http.MethodPut, "/update-access/1", `{"new_status":"accept"}`),
		http.StatusBadRequest, "Username_acc is required")
	expect(t, env.do(t, http.MethodPut, "/update-access/1", `{"new_status":"maybe","Username_acc":"sari"}`),
		http.StatusBadRequest, "Invalid status")
	expect(t, env.do(t, http.MethodPut, "/update-access/1", `{"new_status":"accept","Username_acc":"andi"}`),
		http.StatusNotFound, "Access not found")
	expect(t, env.do(t, http.MethodPut, "/update-access/x", `{"new_status":"accept","Username_acc":"sari"}`),
		http.StatusNotFound, "Access not found")

	expect(t, env.do(t, http.MethodPut, "/update-access/1", `{"new_status":"decline","Username_acc":"sari"}`),
		http.StatusOK, "Access status updated successfully")
	expect(t, env.do(t, http.MethodPut, "/update-access/1", `{"new_status":"accept","Username_acc":"sari"}`),
		http.StatusConflict, "Access request already resolved")

	w := env.do(t, http.MethodGet, "/access-requests?Username_acc=sari", "")
	if !strings.Contains(w.Body.String(), `"status":"decline"`) {
		t.Errorf("access requests = %s, want decline", w.Body.String())
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
