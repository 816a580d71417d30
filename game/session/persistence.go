package session

import (
	"time"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON document written per session. The
// level itself is not stored; it is reloaded by ID and the progress is
// replayed on top of it.
type PersistedSessionData struct {
	ID             string          `json:"id"`
	LevelID        string          `json:"level_id"`
	Profile        string          `json:"profile"`
	Realtime       bool            `json:"realtime"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Progress       engine.Progress `json:"progress"`
}
