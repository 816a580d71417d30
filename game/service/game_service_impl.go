package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
)

// gameServiceImpl implements the GameService interface. One mutex guards
// every game so a character is only ever advanced by one goroutine.
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	publisher Publisher
	log       *logrus.Entry
	mu        sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithPublisher broadcasts state and events after every change
func WithPublisher(p Publisher) Option {
	return func(s *gameServiceImpl) {
		s.publisher = p
	}
}

// WithLogger replaces the default logger
func WithLogger(log *logrus.Entry) Option {
	return func(s *gameServiceImpl) {
		s.log = log
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      logrus.WithField("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	levelID := opts.LevelID
	if levelID == "" {
		levelID = s.configs.DefaultLevel()
	}
	profile := opts.Profile
	if profile == "" {
		profile = engine.StandardTuning().Name
	}

	lvl, err := s.configs.LoadLevel(levelID)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			return nil, fmt.Errorf("level '%s' not found. Available levels: %v: %w", levelID, s.levelIDs(), err)
		}
		return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
	}
	tuning, err := s.configs.LoadTuning(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Create("", &GameSetup{
		LevelID:  levelID,
		Profile:  profile,
		Realtime: opts.Realtime,
		Level:    lvl,
		Tuning:   tuning,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"level_id":   levelID,
		"profile":    profile,
		"realtime":   opts.Realtime,
	}).Info("session created")

	return toSessionInfo(session), nil
}

func (s *gameServiceImpl) levelIDs() []string {
	levels, err := s.configs.ListLevels()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(levels))
	for _, l := range levels {
		ids = append(ids, l.LevelID)
	}
	return ids
}

func toSessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		LevelID:        session.LevelID,
		Profile:        session.Profile,
		Realtime:       session.Realtime,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Game.State(),
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return toSessionInfo(session), nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return session, nil
}

// ListSessions returns all active sessions ordered by creation time
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}
	return result, nil
}

// RealtimeSessions returns the IDs of sessions driven by the clock
func (s *gameServiceImpl) RealtimeSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, sess := range s.sessions.List() {
		if sess.Realtime {
			ids = append(ids, sess.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.log.WithField("session_id", sessionID).Info("session deleted")
	return nil
}

// Tick advances a game. Progress is persisted only when something
// happened, so realtime sessions do not hit storage every frame.
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, ticks int) (*TickResult, error) {
	if ticks < 1 || ticks > engine.MaxBulkTicks {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidTickCount, ticks, engine.MaxBulkTicks)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	wasWon := session.Game.IsVictory()
	res := session.Game.Tick(ticks)
	state := session.Game.State()
	events := tickEvents(res, wasWon, state)

	if len(events) > 0 {
		if err := s.sessions.Save(sessionID); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session")
		}
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"events":     len(events),
			"goals":      state.GoalsReached,
		}).Debug("tick produced events")
	}
	s.publish(sessionID, state, events)

	return &TickResult{
		Requested: ticks,
		Ticks:     res.Ticks,
		GameState: state,
		Events:    events,
		Victory:   state.Victory,
	}, nil
}

func tickEvents(res engine.TickResult, wasWon bool, state *engine.GameState) []GameEvent {
	now := time.Now()
	node := state.Character.Current
	events := []GameEvent{}

	if res.Goals > 0 {
		events = append(events, GameEvent{
			Type:      EventGoalReached,
			Message:   fmt.Sprintf("Goal reached! %d/%d", state.GoalsReached, state.GoalsTotal),
			Timestamp: now,
			Node:      node,
			Count:     res.Goals,
		})
	}
	if res.Deaths > 0 {
		events = append(events, GameEvent{
			Type:      EventDied,
			Message:   "Fell off the level",
			Timestamp: now,
			Node:      node,
			Count:     res.Deaths,
		})
	}
	if res.Respawns > 0 {
		events = append(events, GameEvent{
			Type:      EventRespawned,
			Message:   "Respawned at the start",
			Timestamp: now,
			Node:      state.Character.Start,
			Count:     res.Respawns,
		})
	}
	if res.Victory && !wasWon {
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   fmt.Sprintf("Victory! All %d goals reached", state.GoalsTotal),
			Timestamp: now,
		})
	}
	return events
}

// Action applies a player action to a game
func (s *gameServiceImpl) Action(ctx context.Context, sessionID, action string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	g := session.Game

	var event, message string
	switch action {
	case ActionPause:
		if g.TogglePause() {
			event, message = EventPaused, "Paused"
		} else {
			event, message = EventResumed, "Resumed"
		}
	case ActionRun:
		g.StartRunning()
		message = "Running"
		if !g.Character().Running() {
			message = "Cannot start running right now"
		}
	case ActionWalk:
		g.StartWalking()
		message = "Walking"
		if g.Character().Running() {
			message = "Cannot slow down right now"
		}
	case ActionKill:
		g.Kill()
		event, message = EventDied, "Character killed"
	case ActionReset:
		g.Reset()
		event, message = EventReset, "Character returned to the start"
	case ActionRestart:
		g.Restart()
		event, message = EventRestart, "Level restarted"
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidAction, action, Actions)
	}

	state := g.State()
	var events []GameEvent
	if event != "" {
		events = append(events, GameEvent{
			Type:      event,
			Message:   message,
			Timestamp: time.Now(),
			Node:      state.Character.Current,
		})
	}

	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to touch session")
	}
	s.publish(sessionID, state, events)

	return &ActionResult{
		Action:    action,
		Message:   message,
		GameState: state,
		Events:    events,
	}, nil
}

// SetAngle changes the camera angle a game is traversed with
func (s *gameServiceImpl) SetAngle(ctx context.Context, sessionID string, angle mgl64.Vec3) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.Game.SetAngle(angle)
	state := session.Game.State()

	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to touch session")
	}
	s.publish(sessionID, state, []GameEvent{{
		Type:      EventAngle,
		Message:   fmt.Sprintf("Angle set to %v", angle),
		Timestamp: time.Now(),
	}})

	return state, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return session.Game.State(), nil
}

// ListLevels returns all available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.configs.ListLevels()
}

// GetLevel returns a level with its analysis
func (s *gameServiceImpl) GetLevel(ctx context.Context, name string) (*LevelDetail, error) {
	src, err := s.configs.LevelSource(name)
	if err != nil {
		return nil, err
	}
	lvl, err := s.configs.LoadLevel(name)
	if err != nil {
		return nil, err
	}

	return &LevelDetail{
		LevelInfo: &LevelInfo{
			Filename: name + ".xml",
			LevelID:  name,
			Name:     lvl.Name(),
			Goals:    lvl.GoalCount(),
			Nodes:    len(lvl.All()),
		},
		Report: level.Analyze(lvl),
		Source: string(src),
	}, nil
}

// SaveLevel validates and stores a level document
func (s *gameServiceImpl) SaveLevel(ctx context.Context, name string, data []byte) (*LevelInfo, error) {
	info, err := s.configs.SaveLevel(name, data)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"level_id": name, "nodes": info.Nodes}).Info("level saved")
	return info, nil
}

// ListProfiles returns the tuning profiles sessions can use
func (s *gameServiceImpl) ListProfiles(ctx context.Context) ([]engine.Tuning, error) {
	return s.configs.ListTunings(), nil
}

func (s *gameServiceImpl) publish(sessionID string, state *engine.GameState, events []GameEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.BroadcastToSession(sessionID, state)
	for _, ev := range events {
		s.publisher.BroadcastEvent(sessionID, ev.Type, ev)
	}
}
