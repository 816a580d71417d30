package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// AccelMode selects the acceleration formula applied each tick
type AccelMode int

const (
	AccelNone AccelMode = iota
	AccelFromHole
	AccelFromLauncher
)

func (m AccelMode) String() string {
	switch m {
	case AccelNone:
		return "none"
	case AccelFromHole:
		return "falling_from_hole"
	case AccelFromLauncher:
		return "falling_from_launcher"
	}
	return fmt.Sprintf("accel(%d)", int(m))
}

// MarshalText renders the mode by name in JSON
func (m AccelMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Phase is the animation state a character is in
type Phase int

const (
	// PhaseIdle is a character without a start node
	PhaseIdle Phase = iota
	PhaseSpawning
	PhaseNormal
	PhaseDying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSpawning:
		return "spawning"
	case PhaseNormal:
		return "normal"
	case PhaseDying:
		return "dying"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText renders the phase by name in JSON
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Pose is a draw request: where the character is and which way it faces.
// Yaw is in degrees around the vertical axis.
type Pose struct {
	Pos mgl64.Vec3 `json:"pos"`
	Yaw float64    `json:"yaw"`
}

// CharacterState is a serializable snapshot of a character
type CharacterState struct {
	Phase           Phase     `json:"phase"`
	Start           string    `json:"start,omitempty"`
	Current         string    `json:"current,omitempty"`
	Next            string    `json:"next"`
	CurrentFraction float64   `json:"current_fraction"`
	NextFraction    float64   `json:"next_fraction"`
	FallFromSky     float64   `json:"fall_from_sky"`
	Speed           float64   `json:"speed"`
	AccelSpeed      float64   `json:"accel_speed"`
	AccelMode       AccelMode `json:"accel_mode"`
	Running         bool      `json:"running"`
	Paused          bool      `json:"paused"`
	GoalsReached    int       `json:"goals_reached"`
	Deaths          int       `json:"deaths"`
	Respawns        int       `json:"respawns"`
	Pose            *Pose     `json:"pose,omitempty"`
}

// GameState is the snapshot transports publish for a game
type GameState struct {
	Level          string         `json:"level"`
	LevelName      string         `json:"level_name"`
	Profile        string         `json:"profile"`
	Tick           int64          `json:"tick"`
	Angle          mgl64.Vec3     `json:"angle"`
	GoalsTotal     int            `json:"goals_total"`
	GoalsReached   int            `json:"goals_reached"`
	RemainingGoals []string       `json:"remaining_goals"`
	Victory        bool           `json:"victory"`
	Character      CharacterState `json:"character"`
}

// TickResult reports what happened while a game advanced
type TickResult struct {
	Ticks    int  `json:"ticks"`
	Goals    int  `json:"goals"`
	Deaths   int  `json:"deaths"`
	Respawns int  `json:"respawns"`
	Victory  bool `json:"victory"`
}

// Progress is the persisted part of a game: enough to rebuild it from the
// level file
type Progress struct {
	Tick         int64      `json:"tick"`
	Angle        mgl64.Vec3 `json:"angle"`
	ClearedGoals []string   `json:"cleared_goals"`
	GoalsReached int        `json:"goals_reached"`
	Deaths       int        `json:"deaths"`
	Running      bool       `json:"running"`
	Paused       bool       `json:"paused"`
}
