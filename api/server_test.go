package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
	"github.com/chaojikugua/l-echo/game/service"
	"github.com/chaojikugua/l-echo/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc    func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error)
	GetSessionFunc       func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc     func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc    func(ctx context.Context, sessionID string) error
	RealtimeSessionsFunc func(ctx context.Context) ([]string, error)

	TickFunc     func(ctx context.Context, sessionID string, ticks int) (*service.TickResult, error)
	ActionFunc   func(ctx context.Context, sessionID, action string) (*service.ActionResult, error)
	SetAngleFunc func(ctx context.Context, sessionID string, angle mgl64.Vec3) (*engine.GameState, error)

	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)

	ListLevelsFunc   func(ctx context.Context) ([]*service.LevelInfo, error)
	GetLevelFunc     func(ctx context.Context, name string) (*service.LevelDetail, error)
	SaveLevelFunc    func(ctx context.Context, name string, data []byte) (*service.LevelInfo, error)
	ListProfilesFunc func(ctx context.Context) ([]engine.Tuning, error)
}

var _ service.GameService = (*MockGameService)(nil)

func testState(sessionID string) *engine.GameState {
	return &engine.GameState{
		Level:      "intro",
		LevelName:  "Intro Loop",
		Profile:    "standard",
		GoalsTotal: 3,
		Character:  engine.CharacterState{Current: "a1", Start: "a1"},
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		LevelID:   opts.LevelID,
		Profile:   opts.Profile,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, LevelID: "intro", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) RealtimeSessions(ctx context.Context) ([]string, error) {
	if m.RealtimeSessionsFunc != nil {
		return m.RealtimeSessionsFunc(ctx)
	}
	return nil, nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string, ticks int) (*service.TickResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID, ticks)
	}
	return &service.TickResult{Requested: ticks, Ticks: ticks, GameState: testState(sessionID)}, nil
}

func (m *MockGameService) Action(ctx context.Context, sessionID, action string) (*service.ActionResult, error) {
	if m.ActionFunc != nil {
		return m.ActionFunc(ctx, sessionID, action)
	}
	return &service.ActionResult{Action: action, Message: "ok", GameState: testState(sessionID)}, nil
}

func (m *MockGameService) SetAngle(ctx context.Context, sessionID string, angle mgl64.Vec3) (*engine.GameState, error) {
	if m.SetAngleFunc != nil {
		return m.SetAngleFunc(ctx, sessionID, angle)
	}
	state := testState(sessionID)
	state.Angle = angle
	return state, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return testState(sessionID), nil
}

func (m *MockGameService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	if m.ListLevelsFunc != nil {
		return m.ListLevelsFunc(ctx)
	}
	return []*service.LevelInfo{}, nil
}

func (m *MockGameService) GetLevel(ctx context.Context, name string) (*service.LevelDetail, error) {
	if m.GetLevelFunc != nil {
		return m.GetLevelFunc(ctx, name)
	}
	return &service.LevelDetail{
		LevelInfo: &service.LevelInfo{LevelID: name, Filename: name + ".xml"},
		Report:    &level.Report{Name: name},
		Source:    `<stage start="a"/>`,
	}, nil
}

func (m *MockGameService) SaveLevel(ctx context.Context, name string, data []byte) (*service.LevelInfo, error) {
	if m.SaveLevelFunc != nil {
		return m.SaveLevelFunc(ctx, name, data)
	}
	return &service.LevelInfo{LevelID: name, Filename: name + ".xml"}, nil
}

func (m *MockGameService) ListProfiles(ctx context.Context) ([]engine.Tuning, error) {
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx)
	}
	return []engine.Tuning{engine.StandardTuning(), engine.LabTuning()}, nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func notFound(ctx context.Context, id string) (*service.SessionInfo, error) {
	return nil, fmt.Errorf("session %s: %w", id, service.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService, *service.CreateOptions)
		expectedStatus int
	}{
		{
			name:           "Create with level and profile",
			body:           map[string]interface{}{"level_id": "intro", "profile": "lab", "realtime": true},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Create with empty body",
			body:           nil,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Unknown level",
			body: map[string]string{"level_id": "moon"},
			setupMock: func(m *MockGameService, _ *service.CreateOptions) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("level %s: %w", opts.LevelID, service.ErrLevelNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Internal failure",
			body: map[string]string{"level_id": "intro"},
			setupMock: func(m *MockGameService, _ *service.CreateOptions) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("disk on fire")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			var got service.CreateOptions
			mockService.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
				got = opts
				return &service.SessionInfo{ID: "abcd", LevelID: opts.LevelID, Profile: opts.Profile, Realtime: opts.Realtime}, nil
			}
			if tt.setupMock != nil {
				tt.setupMock(mockService, &got)
			}

			var req *http.Request
			if tt.body == nil {
				req = httptest.NewRequest("POST", "/api/sessions", nil)
			} else {
				req = makeRequest("POST", "/api/sessions", tt.body)
			}
			w := serve(setupTestServer(mockService), req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusCreated {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["error"] == "" || resp["code"] != float64(tt.expectedStatus) {
					t.Errorf("error body = %v", resp)
				}
				return
			}

			var info service.SessionInfo
			parseResponse(t, w, &info)
			if info.ID != "abcd" {
				t.Errorf("ID = %q", info.ID)
			}
			if body, ok := tt.body.(map[string]interface{}); ok {
				if got.LevelID != body["level_id"] || got.Profile != body["profile"] || !got.Realtime {
					t.Errorf("options = %+v", got)
				}
			}
		})
	}
}

func TestCreateSessionInvalidBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))
	w := serve(setupTestServer(&MockGameService{}), req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "s1", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
				{ID: "s2", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
				{ID: "s3", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		query   string
		wantIDs []string
		total   int
	}{
		{"", []string{"s1", "s3", "s2"}, 3},
		{"?sort=created&order=asc", []string{"s1", "s2", "s3"}, 3},
		{"?sort=created", []string{"s3", "s2", "s1"}, 3},
		{"?sort=created&order=asc&limit=2", []string{"s1", "s2"}, 3},
		{"?limit=abc", []string{"s1", "s3", "s2"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != len(tt.wantIDs) || resp.Total != tt.total {
				t.Errorf("count/total = %d/%d, want %d/%d", resp.Count, resp.Total, len(tt.wantIDs), tt.total)
			}
			for i, id := range tt.wantIDs {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("sessions[%d] mismatch, want %s", i, id)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "sess-123" {
				return notFound(ctx, id)
			}
			return &service.SessionInfo{ID: id}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id != "sess-123" {
				return fmt.Errorf("session %s: %w", id, service.ErrSessionNotFound)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	if w := serve(server, makeRequest("GET", "/api/sessions/sess-123", nil)); w.Code != http.StatusOK {
		t.Errorf("GET existing: %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/sessions/nope", nil)); w.Code != http.StatusNotFound {
		t.Errorf("GET missing: %d", w.Code)
	}

	w := serve(server, makeRequest("DELETE", "/api/sessions/sess-123", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE existing: %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["message"] != "Session sess-123 deleted" {
		t.Errorf("Unexpected message: %s", resp["message"])
	}
	if w := serve(server, makeRequest("DELETE", "/api/sessions/nope", nil)); w.Code != http.StatusNotFound {
		t.Errorf("DELETE missing: %d", w.Code)
	}
}

// Game Operation Tests

func TestGetGameState(t *testing.T) {
	server := setupTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			if id == "gone" {
				return nil, service.ErrSessionNotFound
			}
			return testState(id), nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/s1/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Level != "intro" || state.Character.Current != "a1" {
		t.Errorf("state = %+v", state)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/gone/state", nil)); w.Code != http.StatusNotFound {
		t.Errorf("missing session: %d", w.Code)
	}
}

func TestTick(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		raw            string
		expectedStatus int
	}{
		{"Valid tick", map[string]int{"ticks": 120}, "", http.StatusOK},
		{"Zero ticks", map[string]int{"ticks": 0}, "", http.StatusBadRequest},
		{"Too many ticks", map[string]int{"ticks": engine.MaxBulkTicks + 1}, "", http.StatusBadRequest},
		{"Invalid body", nil, "{", http.StatusBadRequest},
	}

	mockService := &MockGameService{
		TickFunc: func(ctx context.Context, id string, ticks int) (*service.TickResult, error) {
			if ticks < 1 || ticks > engine.MaxBulkTicks {
				return nil, fmt.Errorf("%w: %d", service.ErrInvalidTickCount, ticks)
			}
			return &service.TickResult{
				Requested: ticks,
				Ticks:     ticks,
				GameState: testState(id),
				Events:    []service.GameEvent{{Type: service.EventGoalReached, Count: 1}},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.raw != "" {
				req = httptest.NewRequest("POST", "/api/sessions/s1/tick", strings.NewReader(tt.raw))
			} else {
				req = makeRequest("POST", "/api/sessions/s1/tick", tt.body)
			}
			w := serve(server, req)
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusOK {
				var res service.TickResult
				parseResponse(t, w, &res)
				if res.Ticks != 120 || len(res.Events) != 1 {
					t.Errorf("result = %+v", res)
				}
			}
		})
	}
}

func TestAction(t *testing.T) {
	var gotAction string
	mockService := &MockGameService{
		ActionFunc: func(ctx context.Context, id, action string) (*service.ActionResult, error) {
			gotAction = action
			for _, a := range service.Actions {
				if a == action {
					return &service.ActionResult{Action: action, Message: "done", GameState: testState(id)}, nil
				}
			}
			return nil, fmt.Errorf("%w: %q", service.ErrInvalidAction, action)
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/s1/action", map[string]string{"action": " Pause "}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotAction != "pause" {
		t.Errorf("action normalized to %q, want pause", gotAction)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/s1/action", map[string]string{"action": "jump"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid action: %d", w.Code)
	}
}

func TestSetAngle(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := serve(server, makeRequest("POST", "/api/sessions/s1/angle", map[string]interface{}{"angle": []float64{0, -1, 0}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Angle != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("Angle = %v", state.Angle)
	}

	for _, body := range []interface{}{
		map[string]interface{}{},
		map[string]interface{}{"angle": "down"},
	} {
		if w := serve(server, makeRequest("POST", "/api/sessions/s1/angle", body)); w.Code != http.StatusBadRequest {
			t.Errorf("body %v: %d, want 400", body, w.Code)
		}
	}
}

// Level Tests

func TestLevels(t *testing.T) {
	var saved []byte
	mockService := &MockGameService{
		ListLevelsFunc: func(ctx context.Context) ([]*service.LevelInfo, error) {
			return []*service.LevelInfo{{LevelID: "intro", Name: "Intro Loop", Goals: 3}}, nil
		},
		GetLevelFunc: func(ctx context.Context, name string) (*service.LevelDetail, error) {
			if name != "intro" {
				return nil, fmt.Errorf("%w: %s", service.ErrLevelNotFound, name)
			}
			return &service.LevelDetail{
				LevelInfo: &service.LevelInfo{LevelID: "intro"},
				Report:    &level.Report{Name: "Intro Loop", DeclaredGoals: 3},
				Source:    `<stage name="Intro Loop"/>`,
			}, nil
		},
		SaveLevelFunc: func(ctx context.Context, name string, data []byte) (*service.LevelInfo, error) {
			if !bytes.HasPrefix(data, []byte("<stage")) {
				return nil, fmt.Errorf("%w: not a stage", service.ErrInvalidLevel)
			}
			saved = data
			return &service.LevelInfo{LevelID: name}, nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/levels", nil))
		var levels []*service.LevelInfo
		parseResponse(t, w, &levels)
		if len(levels) != 1 || levels[0].Goals != 3 {
			t.Errorf("levels = %v", levels)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/levels/intro.xml", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var detail map[string]interface{}
		parseResponse(t, w, &detail)
		if detail["level_id"] != "intro" || detail["source"] == nil || detail["report"] == nil {
			t.Errorf("detail = %v", detail)
		}
	})

	t.Run("get raw xml", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/levels/intro?format=xml", nil))
		if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
			t.Errorf("Content-Type = %q", ct)
		}
		if w.Body.String() != `<stage name="Intro Loop"/>` {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("get missing", func(t *testing.T) {
		if w := serve(server, makeRequest("GET", "/api/levels/moon", nil)); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("save", func(t *testing.T) {
		doc := `<stage start="a"><grid id="a"/></stage>`
		req := httptest.NewRequest("PUT", "/api/levels/mine", strings.NewReader(doc))
		w := serve(server, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if string(saved) != doc {
			t.Errorf("saved = %q", saved)
		}
	})

	t.Run("save invalid", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/levels/mine", strings.NewReader("hello"))
		if w := serve(server, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("save empty", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/levels/mine", strings.NewReader(""))
		if w := serve(server, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("save too large", func(t *testing.T) {
		big := "<stage>" + strings.Repeat(" ", maxLevelSize) + "</stage>"
		req := httptest.NewRequest("PUT", "/api/levels/mine", strings.NewReader(big))
		if w := serve(server, req); w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", w.Code)
		}
	})
}

func TestListProfiles(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/api/profiles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var profiles []engine.Tuning
	parseResponse(t, w, &profiles)
	if len(profiles) != 2 || profiles[1].Name != "lab" {
		t.Errorf("profiles = %+v", profiles)
	}
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/health", nil))
	var resp map[string]string
	parseResponse(t, w, &resp)
	if w.Code != http.StatusOK || resp["status"] != "healthy" {
		t.Errorf("health = %d %v", w.Code, resp)
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = notFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Valid session",
			queryParams:    "?session=sess-123",
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// httptest.ResponseRecorder cannot be hijacked, so an attempted
			// upgrade surfaces as a 500
			if tt.expectedStatus == http.StatusSwitchingProtocols && w.Code == http.StatusInternalServerError {
				return
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)
	w := httptest.NewRecorder()
	server.handleWebSocket(w, httptest.NewRequest("GET", "/ws?session=s1", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
}
