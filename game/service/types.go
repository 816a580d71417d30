package service

import (
	"time"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
)

// Event types published while a game runs
const (
	EventGoalReached = "goal_reached"
	EventDied        = "died"
	EventRespawned   = "respawned"
	EventVictory     = "victory"
	EventPaused      = "paused"
	EventResumed     = "resumed"
	EventReset       = "reset"
	EventRestart     = "restart"
	EventAngle       = "angle"
)

// Actions accepted by GameService.Action
const (
	ActionPause   = "pause"
	ActionRun     = "run"
	ActionWalk    = "walk"
	ActionKill    = "kill"
	ActionReset   = "reset"
	ActionRestart = "restart"
)

// Actions lists every accepted action name
var Actions = []string{ActionPause, ActionRun, ActionWalk, ActionKill, ActionReset, ActionRestart}

// CreateOptions selects what a new session plays. Empty fields fall back to
// the default level and the standard profile.
type CreateOptions struct {
	LevelID  string `json:"level_id"`
	Profile  string `json:"profile"`
	Realtime bool   `json:"realtime"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	LevelID        string            `json:"level_id"`
	Profile        string            `json:"profile"`
	Realtime       bool              `json:"realtime"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// TickResult contains the result of advancing a game
type TickResult struct {
	Requested int               `json:"requested"`
	Ticks     int               `json:"ticks"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events"`
	Victory   bool              `json:"victory"`
}

// ActionResult contains the result of a player action
type ActionResult struct {
	Action    string            `json:"action"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Node      string    `json:"node,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename string `json:"filename"`
	LevelID  string `json:"level_id"` // The identifier to use for session creation
	Name     string `json:"name"`     // Display name
	Goals    int    `json:"goals"`
	Nodes    int    `json:"nodes"`
}

// LevelDetail is a level with its static analysis and source document
type LevelDetail struct {
	*LevelInfo
	Report *level.Report `json:"report"`
	Source string        `json:"source"`
}
