package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/grid"
)

// Character moves along the grid graph by interpolating between its current
// node and the next one. The fallFromSky field drives two animations: it
// counts down from 1 to 0 while spawning, and from a small negative value
// down past -1 while dying.
type Character struct {
	tuning   Tuning
	angles   AngleSource
	renderer Renderer

	start   grid.Node
	current grid.Node
	next    grid.Successor

	currentFraction float64
	nextFraction    float64
	fallFromSky     float64

	speed      float64
	accelSpeed float64
	accelMode  AccelMode
	running    bool
	paused     bool

	goalsReached int
	deaths       int
	respawns     int

	yaw float64
}

// NewCharacter places a character at start. A nil start yields an idle
// placeholder that ignores ticks. Nil angles and renderer default to a
// fixed zero angle and a discarding renderer.
func NewCharacter(start grid.Node, tuning Tuning, angles AngleSource, renderer Renderer) *Character {
	if angles == nil {
		angles = NewCamera(mgl64.Vec3{})
	}
	if renderer == nil {
		renderer = RendererFunc(func(Pose) {})
	}
	c := &Character{
		tuning:   tuning,
		angles:   angles,
		renderer: renderer,
	}
	c.init(start)
	return c
}

func (c *Character) init(start grid.Node) {
	c.start = start
	c.current = start
	c.next = grid.Unresolved()
	if start != nil {
		c.next = start.Next(c.angles.Angle(), start)
	}

	c.paused = false
	c.currentFraction = 1
	c.nextFraction = 0
	c.fallFromSky = 1
	c.speed = c.tuning.Step
	c.accelSpeed = 0
	c.running = false
	c.accelMode = AccelNone
	c.recomputeSpeed()
}

// recomputeSpeed picks the speed regime from the kinds of the current pair.
// Pairs matching no rule keep the speed they had.
func (c *Character) recomputeSpeed() {
	if c.current == nil || c.next.IsUnresolved() {
		return
	}

	from := c.current.Kind()
	to, resolved := c.next.Node()
	nowhere := c.next.IsNowhere()

	switch {
	case from.IsHoleLike() && (nowhere || to.Kind().IsChooserLike()):
		c.speed = c.tuning.Fall
		if c.tuning.Accel {
			c.accelMode = AccelFromHole
		}

	case from.IsLauncher() && (nowhere || to.Kind().IsGroundedLike()):
		c.speed = c.tuning.Launch
		c.accelSpeed = c.tuning.Launch
		if c.tuning.Accel {
			c.accelMode = AccelFromLauncher
		}

	case from.IsChooserLike() &&
		(nowhere || (resolved && !to.Kind().IsChooserLike() && !to.Kind().IsGroundedLike())):
		if c.running {
			c.speed = c.tuning.Run
		} else {
			c.speed = c.tuning.Step
		}
		c.accelMode = AccelNone
	}
}

// Phase reports which animation the character is in
func (c *Character) Phase() Phase {
	switch {
	case c.current == nil:
		return PhaseIdle
	case c.fallFromSky > 0:
		return PhaseSpawning
	case c.fallFromSky < 0:
		return PhaseDying
	}
	return PhaseNormal
}

func (c *Character) Paused() bool      { return c.paused }
func (c *Character) GoalsReached() int { return c.goalsReached }
func (c *Character) Deaths() int       { return c.deaths }
func (c *Character) Respawns() int     { return c.respawns }
func (c *Character) Speed() float64    { return c.speed }
func (c *Character) Running() bool     { return c.running }
func (c *Character) Start() grid.Node  { return c.start }

// Current returns the node the character is leaving
func (c *Character) Current() grid.Node { return c.current }

// Next returns the node the character is heading to
func (c *Character) Next() grid.Successor { return c.next }

// TogglePause flips the pause flag. Spawn and death animations keep running
// while paused; only stepping along the track stops.
func (c *Character) TogglePause() {
	c.paused = !c.paused
}

// StartRunning switches to run speed; it has no effect mid-air
func (c *Character) StartRunning() {
	if c.speed == c.tuning.Step {
		c.running = true
		c.speed = c.tuning.Run
	}
}

// StartWalking switches back to step speed; it has no effect mid-air
func (c *Character) StartWalking() {
	if c.speed == c.tuning.Run {
		c.running = false
		c.speed = c.tuning.Step
	}
}

// Kill starts the death animation where the character stands. Killing a
// dying character restarts its death arc.
func (c *Character) Kill() {
	if c.fallFromSky >= 0 {
		c.deaths++
	}
	c.fallFromSky = -c.tuning.FallFromSky
}

// Reset puts the character back on its start node immediately
func (c *Character) Reset() {
	c.init(c.start)
}

// Tick advances the character by one time step and issues at most one draw
func (c *Character) Tick() {
	switch c.Phase() {
	case PhaseIdle:
		return

	case PhaseSpawning:
		c.fallFromSky -= c.tuning.FallFromSky
		if c.fallFromSky < 0 {
			c.fallFromSky = 0
		}
		c.drawAbove(c.start)

	case PhaseDying:
		c.fallFromSky -= c.tuning.FallFromSky
		if c.fallFromSky < -1 {
			c.init(c.start)
			c.respawns++
		}
		c.drawAbove(c.current)

	case PhaseNormal:
		c.step()
	}
}

func (c *Character) step() {
	angle := c.angles.Angle()

	if c.next.IsNowhere() {
		c.Kill()
		return
	}
	c.collectGoal(angle)

	next, ok := c.next.Node()
	if !ok {
		c.next = c.current.Next(angle, c.current)
		c.recomputeSpeed()
		if info := c.current.Info(angle); info != nil {
			c.draw(info.Pos)
		}
		return
	}

	i1 := c.current.Info(angle)
	if i1 == nil {
		return
	}
	i2 := next.Info(angle)
	if i2 == nil {
		c.draw(i1.Pos)
		return
	}
	p1, p2 := i1.Pos, i2.Pos

	if !c.paused {
		if dist := p2.Sub(p1).Len(); dist > 0 {
			c.currentFraction -= c.speed / dist
			c.nextFraction += c.speed / dist
		} else {
			c.currentFraction = 0
			c.nextFraction = 1
		}
		c.accelerate()

		if c.currentFraction <= 0 {
			c.Advance()
			p1 = p2
			if n, ok := c.next.Node(); ok {
				if info := n.Info(angle); info != nil {
					p2 = info.Pos
				}
			}
		}
	}

	c.draw(c.lerp(p1, p2))
}

func (c *Character) accelerate() {
	if !c.tuning.Accel {
		return
	}
	switch c.accelMode {
	case AccelFromHole:
		c.speed += c.tuning.Gravity
	case AccelFromLauncher:
		c.accelSpeed -= c.tuning.Gravity
		c.speed = math.Abs(c.accelSpeed)
	}
}

// Advance moves the character onto its next node and asks the graph for
// the one after. Interpolation restarts from the new current node even
// when there is nothing to advance to.
func (c *Character) Advance() {
	if c.current == nil {
		return
	}
	angle := c.angles.Angle()
	c.collectGoal(angle)

	switch {
	case c.next.IsResolved():
		arrived, _ := c.next.Node()
		c.next = arrived.Next(angle, c.current)
		if c.next.IsNowhere() {
			c.Kill()
		}
		c.current = arrived
		c.recomputeSpeed()
	case c.next.IsNowhere():
		c.Kill()
	default:
		c.next = grid.Unresolved()
	}

	c.currentFraction = 1
	c.nextFraction = 0
}

func (c *Character) collectGoal(angle mgl64.Vec3) {
	if c.current.Goal(angle) && c.current.ClearGoal(angle) {
		c.goalsReached++
	}
}

func (c *Character) lerp(p1, p2 mgl64.Vec3) mgl64.Vec3 {
	return p1.Mul(c.currentFraction).Add(p2.Mul(c.nextFraction))
}

// drawAbove draws the character hovering over n at the fall-from-sky height
func (c *Character) drawAbove(n grid.Node) {
	info := n.Info(c.angles.Angle())
	if info == nil {
		return
	}
	c.draw(info.Pos.Add(mgl64.Vec3{0, c.tuning.StartHeight * c.fallFromSky, 0}))
}

func (c *Character) draw(pos mgl64.Vec3) {
	angle := c.angles.Angle()
	if next, ok := c.next.Node(); ok && c.current != nil {
		i1, i2 := c.current.Info(angle), next.Info(angle)
		if i1 != nil && i2 != nil {
			d := i2.Pos.Sub(i1.Pos)
			c.yaw = 90 - mgl64.RadToDeg(math.Atan2(d.Z(), d.X()))
		}
	}
	c.renderer.Draw(Pose{Pos: pos, Yaw: c.yaw})
}

// Snapshot captures the character's state
func (c *Character) Snapshot() CharacterState {
	s := CharacterState{
		Phase:           c.Phase(),
		Next:            c.next.String(),
		CurrentFraction: c.currentFraction,
		NextFraction:    c.nextFraction,
		FallFromSky:     c.fallFromSky,
		Speed:           c.speed,
		AccelSpeed:      c.accelSpeed,
		AccelMode:       c.accelMode,
		Running:         c.running,
		Paused:          c.paused,
		GoalsReached:    c.goalsReached,
		Deaths:          c.deaths,
		Respawns:        c.respawns,
	}
	if c.start != nil {
		s.Start = c.start.Key()
	}
	if c.current != nil {
		s.Current = c.current.Key()
	}
	return s
}
