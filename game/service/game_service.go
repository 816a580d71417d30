package service

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	RealtimeSessions(ctx context.Context) ([]string, error)

	// Game Operations
	Tick(ctx context.Context, sessionID string, ticks int) (*TickResult, error)
	Action(ctx context.Context, sessionID, action string) (*ActionResult, error)
	SetAngle(ctx context.Context, sessionID string, angle mgl64.Vec3) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Levels and profiles
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, name string) (*LevelDetail, error)
	SaveLevel(ctx context.Context, name string, data []byte) (*LevelInfo, error)
	ListProfiles(ctx context.Context) ([]engine.Tuning, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, setup *GameSetup) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager provides level files and tuning profiles
type ConfigManager interface {
	// LoadLevel parses a fresh graph; levels carry mutable goal flags so
	// every game gets its own copy
	LoadLevel(name string) (*level.Level, error)
	LevelSource(name string) ([]byte, error)
	ListLevels() ([]*LevelInfo, error)
	DefaultLevel() string
	SaveLevel(name string, data []byte) (*LevelInfo, error)

	LoadTuning(name string) (engine.Tuning, error)
	ListTunings() []engine.Tuning
}

// Publisher pushes game updates to connected clients
type Publisher interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// GameSetup is everything needed to start a game
type GameSetup struct {
	LevelID  string
	Profile  string
	Realtime bool
	Level    *level.Level
	Tuning   engine.Tuning
}

// Session represents an active game session
type Session struct {
	ID             string
	LevelID        string
	Profile        string
	Realtime       bool
	Game           *engine.Game
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
