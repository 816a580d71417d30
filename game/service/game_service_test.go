package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
	"github.com/chaojikugua/l-echo/game/service"
)

var testLevels = map[string]string{
	// two goals then the end of the track; victory comes before the fall
	"straight": `<stage name="Straight" start="a" goals="2">
	<grid id="a" x="0" y="0" z="0" next="b"/>
	<grid id="b" x="1" y="0" z="0" prev="a" next="c" goal="1"/>
	<grid id="c" x="2" y="0" z="0" prev="b" next="d" goal="1"/>
	<grid id="d" x="3" y="0" z="0" prev="c"/>
</stage>`,
	// one reachable goal of two declared, so the character keeps falling off
	"cliff": `<stage name="Cliff" start="a" goals="2">
	<grid id="a" x="0" y="0" z="0" next="b"/>
	<grid id="b" x="1" y="0" z="0" prev="a" next="c" goal="1"/>
	<grid id="c" x="2" y="0" z="0" prev="b"/>
</stage>`,
}

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    map[string]int
	touches  map[string]int
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		saves:    make(map[string]int),
		touches:  make(map[string]int),
	}
}

func (m *MockSessionManager) Create(id string, setup *service.GameSetup) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	game, err := engine.NewGame(setup.Level, setup.Tuning)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		LevelID:        setup.LevelID,
		Profile:        setup.Profile,
		Realtime:       setup.Realtime,
		Game:           game,
		CreatedAt:      now.Add(time.Duration(len(m.sessions)) * time.Millisecond),
		LastAccessedAt: now,
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return service.ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	m.touches[id]++
	return nil
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id]++
	return nil
}

func (m *MockSessionManager) saveCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[id]
}

// MockConfigManager implements service.ConfigManager over testLevels
type MockConfigManager struct {
	saved map[string][]byte
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{saved: make(map[string][]byte)}
}

func (m *MockConfigManager) LoadLevel(name string) (*level.Level, error) {
	src, err := m.LevelSource(name)
	if err != nil {
		return nil, err
	}
	l, err := level.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidLevel, err)
	}
	l.SetID(name)
	return l, nil
}

func (m *MockConfigManager) LevelSource(name string) ([]byte, error) {
	if src, ok := m.saved[name]; ok {
		return src, nil
	}
	src, ok := testLevels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrLevelNotFound, name)
	}
	return []byte(src), nil
}

func (m *MockConfigManager) ListLevels() ([]*service.LevelInfo, error) {
	var out []*service.LevelInfo
	for name := range testLevels {
		out = append(out, &service.LevelInfo{Filename: name + ".xml", LevelID: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LevelID < out[j].LevelID })
	return out, nil
}

func (m *MockConfigManager) DefaultLevel() string { return "straight" }

func (m *MockConfigManager) SaveLevel(name string, data []byte) (*service.LevelInfo, error) {
	l, err := level.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidLevel, err)
	}
	m.saved[name] = data
	return &service.LevelInfo{Filename: name + ".xml", LevelID: name, Name: l.Name(), Goals: l.GoalCount(), Nodes: len(l.All())}, nil
}

func (m *MockConfigManager) LoadTuning(name string) (engine.Tuning, error) {
	switch name {
	case "standard":
		return engine.StandardTuning(), nil
	case "lab":
		return engine.LabTuning(), nil
	}
	return engine.Tuning{}, fmt.Errorf("%w: %s", service.ErrProfileNotFound, name)
}

func (m *MockConfigManager) ListTunings() []engine.Tuning {
	return []engine.Tuning{engine.StandardTuning(), engine.LabTuning()}
}

// MockPublisher records every broadcast
type MockPublisher struct {
	states []string
	events []string
	mu     sync.Mutex
}

func (p *MockPublisher) BroadcastToSession(sessionID string, state *engine.GameState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, sessionID)
}

func (p *MockPublisher) BroadcastEvent(sessionID string, event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *MockPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newTestService() (service.GameService, *MockSessionManager, *MockPublisher) {
	sessions := NewMockSessionManager()
	pub := &MockPublisher{}
	svc := service.NewGameService(sessions, NewMockConfigManager(), service.WithPublisher(pub))
	return svc, sessions, pub
}

func createLab(t *testing.T, svc service.GameService, levelID string) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), service.CreateOptions{LevelID: levelID, Profile: "lab"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return info
}

func eventTypes(events []service.GameEvent) map[string]int {
	out := map[string]int{}
	for _, ev := range events {
		out[ev.Type] += ev.Count
		if ev.Count == 0 {
			out[ev.Type]++
		}
	}
	return out
}

func TestCreateSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, service.CreateOptions{})
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		if info.LevelID != "straight" || info.Profile != "standard" {
			t.Errorf("defaults = %s/%s, want straight/standard", info.LevelID, info.Profile)
		}
		if info.GameState == nil || info.GameState.GoalsTotal != 2 {
			t.Errorf("GameState = %+v", info.GameState)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, service.CreateOptions{LevelID: "moon"})
		if !errors.Is(err, service.ErrLevelNotFound) {
			t.Errorf("error = %v, want ErrLevelNotFound", err)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, service.CreateOptions{Profile: "turbo"})
		if !errors.Is(err, service.ErrProfileNotFound) {
			t.Errorf("error = %v, want ErrProfileNotFound", err)
		}
	})
}

func TestGetAndListSessions(t *testing.T) {
	svc, sessions, _ := newTestService()
	ctx := context.Background()

	first := createLab(t, svc, "straight")
	second := createLab(t, svc, "cliff")

	got, err := svc.GetSession(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.LevelID != "straight" {
		t.Errorf("LevelID = %s", got.LevelID)
	}
	if sessions.touches[first.ID] == 0 {
		t.Error("GetSession should update last access")
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("ListSessions() order wrong: %v", list)
	}

	if _, err := svc.GetSession(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetSession(nope) error = %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	info := createLab(t, svc, "straight")

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.GetGameState(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("deleted session still reachable: %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestTickValidation(t *testing.T) {
	svc, _, _ := newTestService()
	info := createLab(t, svc, "straight")

	for _, n := range []int{0, -1, engine.MaxBulkTicks + 1} {
		if _, err := svc.Tick(context.Background(), info.ID, n); !errors.Is(err, service.ErrInvalidTickCount) {
			t.Errorf("Tick(%d) error = %v, want ErrInvalidTickCount", n, err)
		}
	}
	if _, err := svc.Tick(context.Background(), "nope", 1); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Tick on missing session error = %v", err)
	}
}

func TestTickToVictory(t *testing.T) {
	svc, sessions, pub := newTestService()
	info := createLab(t, svc, "straight")

	res, err := svc.Tick(context.Background(), info.ID, 500)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !res.Victory || !res.GameState.Victory {
		t.Fatalf("expected victory, state = %+v", res.GameState)
	}
	if res.Ticks >= res.Requested {
		t.Errorf("ticks = %d, want the game to stop early at victory", res.Ticks)
	}

	types := eventTypes(res.Events)
	if types[service.EventGoalReached] != 2 {
		t.Errorf("goal events = %d, want 2", types[service.EventGoalReached])
	}
	if types[service.EventVictory] != 1 {
		t.Errorf("victory events = %d, want 1", types[service.EventVictory])
	}
	if types[service.EventDied] != 0 {
		t.Error("victory should stop the game before the fall")
	}
	if sessions.saveCount(info.ID) != 1 {
		t.Errorf("saves = %d, want 1", sessions.saveCount(info.ID))
	}

	published := pub.eventTypes()
	if len(published) != len(res.Events) {
		t.Errorf("published %v, want one per event", published)
	}

	again, err := svc.Tick(context.Background(), info.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if again.Ticks != 0 || len(again.Events) != 0 {
		t.Errorf("tick after victory = %+v", again)
	}
	if sessions.saveCount(info.ID) != 1 {
		t.Error("uneventful tick must not persist")
	}
}

func TestTickDeathAndRespawn(t *testing.T) {
	svc, _, _ := newTestService()
	info := createLab(t, svc, "cliff")

	res, err := svc.Tick(context.Background(), info.ID, 300)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	types := eventTypes(res.Events)
	if types[service.EventDied] == 0 || types[service.EventRespawned] == 0 {
		t.Errorf("events = %v, want died and respawned", types)
	}
	if res.Victory {
		t.Error("cliff cannot be won")
	}
	if res.GameState.Character.Deaths == 0 {
		t.Error("deaths should be counted")
	}
}

func TestAction(t *testing.T) {
	svc, sessions, _ := newTestService()
	ctx := context.Background()
	info := createLab(t, svc, "straight")

	tests := []struct {
		action    string
		wantEvent string
	}{
		{service.ActionPause, service.EventPaused},
		{service.ActionPause, service.EventResumed},
		{service.ActionRun, ""},
		{service.ActionWalk, ""},
		{service.ActionKill, service.EventDied},
		{service.ActionReset, service.EventReset},
		{service.ActionRestart, service.EventRestart},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			res, err := svc.Action(ctx, info.ID, tt.action)
			if err != nil {
				t.Fatalf("Action(%s) error = %v", tt.action, err)
			}
			if res.Action != tt.action || res.Message == "" || res.GameState == nil {
				t.Errorf("result = %+v", res)
			}
			if tt.wantEvent == "" {
				if len(res.Events) != 0 {
					t.Errorf("events = %v, want none", res.Events)
				}
				return
			}
			if len(res.Events) != 1 || res.Events[0].Type != tt.wantEvent {
				t.Errorf("events = %v, want %s", res.Events, tt.wantEvent)
			}
		})
	}

	if sessions.touches[info.ID] < len(tests) {
		t.Errorf("touches = %d, want at least %d", sessions.touches[info.ID], len(tests))
	}

	if _, err := svc.Action(ctx, info.ID, "jump"); !errors.Is(err, service.ErrInvalidAction) {
		t.Errorf("Action(jump) error = %v, want ErrInvalidAction", err)
	}
}

func TestActionPauseStopsMovement(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	info := createLab(t, svc, "straight")

	// leave the spawn arc first
	if _, err := svc.Tick(ctx, info.ID, 12); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Action(ctx, info.ID, service.ActionPause); err != nil {
		t.Fatal(err)
	}
	before, _ := svc.GetGameState(ctx, info.ID)
	svc.Tick(ctx, info.ID, 20)
	after, _ := svc.GetGameState(ctx, info.ID)

	if before.Character.Current != after.Character.Current || before.Character.GoalsReached != after.Character.GoalsReached {
		t.Errorf("paused character moved: %s -> %s", before.Character.Current, after.Character.Current)
	}
	if after.Tick != before.Tick+20 {
		t.Errorf("Tick = %d, want %d", after.Tick, before.Tick+20)
	}
}

func TestSetAngle(t *testing.T) {
	svc, _, pub := newTestService()
	info := createLab(t, svc, "straight")

	state, err := svc.SetAngle(context.Background(), info.ID, mgl64.Vec3{0, -1, 0})
	if err != nil {
		t.Fatalf("SetAngle() error = %v", err)
	}
	if state.Angle != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("Angle = %v", state.Angle)
	}
	events := pub.eventTypes()
	if len(events) == 0 || events[len(events)-1] != service.EventAngle {
		t.Errorf("published events = %v, want trailing angle", events)
	}

	if _, err := svc.SetAngle(context.Background(), "nope", mgl64.Vec3{}); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("SetAngle(nope) error = %v", err)
	}
}

func TestRealtimeSessions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	createLab(t, svc, "straight")
	rt, err := svc.CreateSession(ctx, service.CreateOptions{LevelID: "cliff", Profile: "lab", Realtime: true})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := svc.RealtimeSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != rt.ID {
		t.Errorf("RealtimeSessions() = %v, want [%s]", ids, rt.ID)
	}
}

func TestLevels(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	levels, err := svc.ListLevels(ctx)
	if err != nil || len(levels) != 2 {
		t.Fatalf("ListLevels() = %v, %v", levels, err)
	}

	detail, err := svc.GetLevel(ctx, "cliff")
	if err != nil {
		t.Fatalf("GetLevel() error = %v", err)
	}
	if detail.Name != "Cliff" || detail.Nodes != 3 || detail.Source == "" {
		t.Errorf("detail = %+v", detail.LevelInfo)
	}
	if detail.Report == nil || detail.Report.Solvable() {
		t.Error("cliff declares more goals than it flags and should not be solvable")
	}

	if _, err := svc.GetLevel(ctx, "moon"); !errors.Is(err, service.ErrLevelNotFound) {
		t.Errorf("GetLevel(moon) error = %v", err)
	}

	info, err := svc.SaveLevel(ctx, "mine", []byte(testLevels["straight"]))
	if err != nil {
		t.Fatalf("SaveLevel() error = %v", err)
	}
	if info.Goals != 2 {
		t.Errorf("saved info = %+v", info)
	}
	if _, err := svc.SaveLevel(ctx, "bad", []byte("<stage")); !errors.Is(err, service.ErrInvalidLevel) {
		t.Errorf("SaveLevel(bad) error = %v", err)
	}
}

func TestListProfiles(t *testing.T) {
	svc, _, _ := newTestService()
	profiles, err := svc.ListProfiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 || profiles[0].Name != "standard" {
		t.Errorf("ListProfiles() = %+v", profiles)
	}
}
