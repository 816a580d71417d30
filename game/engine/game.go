package engine

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/level"
)

// Engine is the set of game operations transports drive
type Engine interface {
	Tick(n int) TickResult
	SetAngle(angle mgl64.Vec3)
	Angle() mgl64.Vec3

	TogglePause() bool
	StartRunning()
	StartWalking()
	Kill()
	Reset()
	Restart()

	State() *GameState
	IsVictory() bool

	Progress() Progress
	RestoreProgress(p Progress)
}

// Game couples one character to one level
type Game struct {
	level  *level.Level
	tuning Tuning
	camera *Camera
	poses  *PoseRecorder
	char   *Character

	// goalKeys are the nodes flagged as goals when the level was loaded
	goalKeys []string
	ticks    int64
}

var _ Engine = (*Game)(nil)

// NewGame starts a game on l with the given speed profile
func NewGame(l *level.Level, tuning Tuning) (*Game, error) {
	if l == nil {
		return nil, errors.New("game: level is required")
	}
	if l.Start() == nil {
		return nil, fmt.Errorf("game: level %q has no start node", l.ID())
	}
	tuning = tuning.WithDefaults()
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g := &Game{
		level:  l,
		tuning: tuning,
		camera: NewCamera(mgl64.Vec3{}),
		poses:  &PoseRecorder{},
	}
	for _, n := range l.All() {
		if n.Goal(g.camera.Angle()) {
			g.goalKeys = append(g.goalKeys, n.Key())
		}
	}
	g.char = NewCharacter(l.Start(), tuning, g.camera, g.poses)
	return g, nil
}

// Level returns the level being played
func (g *Game) Level() *level.Level { return g.level }

// Tuning returns the speed profile in use
func (g *Game) Tuning() Tuning { return g.tuning }

// Character exposes the game's character
func (g *Game) Character() *Character { return g.char }

// Tick advances up to n ticks, stopping early once the game is won
func (g *Game) Tick(n int) TickResult {
	before := g.char.Snapshot()

	var res TickResult
	for i := 0; i < n && !g.IsVictory(); i++ {
		g.char.Tick()
		g.ticks++
		res.Ticks++
	}

	after := g.char.Snapshot()
	res.Goals = after.GoalsReached - before.GoalsReached
	res.Deaths = after.Deaths - before.Deaths
	res.Respawns = after.Respawns - before.Respawns
	res.Victory = g.IsVictory()
	return res
}

func (g *Game) SetAngle(angle mgl64.Vec3) { g.camera.SetAngle(angle) }
func (g *Game) Angle() mgl64.Vec3         { return g.camera.Angle() }

// TogglePause flips the pause flag and returns the new value
func (g *Game) TogglePause() bool {
	g.char.TogglePause()
	return g.char.Paused()
}

func (g *Game) StartRunning() { g.char.StartRunning() }
func (g *Game) StartWalking() { g.char.StartWalking() }
func (g *Game) Kill()         { g.char.Kill() }

// Reset respawns the character; collected goals stay collected
func (g *Game) Reset() { g.char.Reset() }

// Restart restores every goal and replaces the character with a fresh one
func (g *Game) Restart() {
	g.level.ResetGoals()
	g.poses = &PoseRecorder{}
	g.char = NewCharacter(g.level.Start(), g.tuning, g.camera, g.poses)
	g.ticks = 0
}

// IsVictory reports whether the character has reached the level's goal count
func (g *Game) IsVictory() bool {
	total := g.level.GoalCount()
	return total > 0 && g.char.GoalsReached() >= total
}

// State returns a snapshot of the game
func (g *Game) State() *GameState {
	cs := g.char.Snapshot()
	if pose, ok := g.poses.Last(); ok {
		cs.Pose = &pose
	}

	return &GameState{
		Level:          g.level.ID(),
		LevelName:      g.level.Name(),
		Profile:        g.tuning.Name,
		Tick:           g.ticks,
		Angle:          g.camera.Angle(),
		GoalsTotal:     g.level.GoalCount(),
		GoalsReached:   cs.GoalsReached,
		RemainingGoals: g.remainingGoals(),
		Victory:        g.IsVictory(),
		Character:      cs,
	}
}

func (g *Game) remainingGoals() []string {
	angle := g.camera.Angle()
	remaining := []string{}
	for _, n := range g.level.All() {
		if n.Goal(angle) {
			remaining = append(remaining, n.Key())
		}
	}
	return remaining
}

// Progress captures what must survive a restart of the process
func (g *Game) Progress() Progress {
	angle := g.camera.Angle()
	open := make(map[string]bool)
	for _, n := range g.level.All() {
		if n.Goal(angle) {
			open[n.Key()] = true
		}
	}
	cleared := []string{}
	for _, key := range g.goalKeys {
		if !open[key] {
			cleared = append(cleared, key)
		}
	}

	return Progress{
		Tick:         g.ticks,
		Angle:        angle,
		ClearedGoals: cleared,
		GoalsReached: g.char.GoalsReached(),
		Deaths:       g.char.Deaths(),
		Running:      g.char.Running(),
		Paused:       g.char.Paused(),
	}
}

// RestoreProgress rebuilds the game from saved progress. The character
// respawns at the start node with the saved counters.
func (g *Game) RestoreProgress(p Progress) {
	g.Restart()
	g.camera.SetAngle(p.Angle)
	g.ticks = p.Tick

	cleared := make(map[string]bool, len(p.ClearedGoals))
	for _, key := range p.ClearedGoals {
		cleared[key] = true
	}
	for _, n := range g.level.All() {
		if cleared[n.Key()] {
			n.ClearGoal(p.Angle)
		}
	}

	g.char.goalsReached = p.GoalsReached
	g.char.deaths = p.Deaths
	if p.Running {
		g.char.StartRunning()
	}
	if p.Paused {
		g.char.TogglePause()
	}
}
