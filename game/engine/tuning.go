package engine

import "fmt"

const (
	// DefaultFPS is the tick rate the speed constants are expressed against
	DefaultFPS = 60

	// DefaultStartHeight is how far above the start node a character spawns
	DefaultStartHeight = 30

	// MaxBulkTicks caps the ticks a single request may advance a game
	MaxBulkTicks = 3600

	// gravityPerSecond is the acceleration applied per tick squared
	gravityPerSecond = 1.75
)

// Tuning holds the speed constants the motion engine runs with.
// Speeds are world units per tick.
type Tuning struct {
	Name        string  `json:"name" yaml:"-"`
	Step        float64 `json:"step" yaml:"step"`
	Run         float64 `json:"run" yaml:"run"`
	Fall        float64 `json:"fall" yaml:"fall"`
	Launch      float64 `json:"launch" yaml:"launch"`
	FallFromSky float64 `json:"fall_from_sky" yaml:"fall_from_sky"`
	StartHeight float64 `json:"start_height" yaml:"start_height"`
	Accel       bool    `json:"accel" yaml:"accel"`
	Gravity     float64 `json:"gravity" yaml:"gravity"`
	FPS         int     `json:"fps" yaml:"fps"`
}

// StandardTuning returns the regular speed profile
func StandardTuning() Tuning {
	return Tuning{
		Name:        "standard",
		Step:        0.08,
		Run:         0.25,
		Fall:        0.50,
		Launch:      0.30,
		FallFromSky: 0.05,
		StartHeight: DefaultStartHeight,
		Gravity:     gravityPerSecond / DefaultFPS / DefaultFPS,
		FPS:         DefaultFPS,
	}
}

// LabTuning returns the fast profile used for level design sessions
func LabTuning() Tuning {
	t := StandardTuning()
	t.Name = "lab"
	t.Step = 0.24
	t.Run = 0.75
	t.Fall = 1.50
	t.Launch = 0.10
	t.FallFromSky = 0.15
	return t
}

// WithDefaults fills zero FPS, start height and gravity from the standard
// profile; speeds are left alone so Validate can reject them
func (t Tuning) WithDefaults() Tuning {
	if t.FPS == 0 {
		t.FPS = DefaultFPS
	}
	if t.StartHeight == 0 {
		t.StartHeight = DefaultStartHeight
	}
	if t.Gravity == 0 {
		t.Gravity = gravityPerSecond / float64(t.FPS) / float64(t.FPS)
	}
	return t
}

// Validate checks that every speed and the tick rate are usable
func (t Tuning) Validate() error {
	speeds := []struct {
		name  string
		value float64
	}{
		{"step", t.Step},
		{"run", t.Run},
		{"fall", t.Fall},
		{"launch", t.Launch},
		{"fall_from_sky", t.FallFromSky},
	}
	for _, s := range speeds {
		if s.value <= 0 {
			return fmt.Errorf("tuning %q: %s must be positive, got %v", t.Name, s.name, s.value)
		}
	}
	if t.Step == t.Run {
		return fmt.Errorf("tuning %q: step and run must differ", t.Name)
	}
	if t.FPS <= 0 {
		return fmt.Errorf("tuning %q: fps must be positive, got %d", t.Name, t.FPS)
	}
	if t.StartHeight < 0 {
		return fmt.Errorf("tuning %q: start_height cannot be negative", t.Name)
	}
	if t.Gravity < 0 {
		return fmt.Errorf("tuning %q: gravity cannot be negative", t.Name)
	}
	return nil
}
