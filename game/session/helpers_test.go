package session

import (
	"fmt"
	"testing"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
	"github.com/chaojikugua/l-echo/game/service"
)

const testLevel = `<stage name="Straight" start="a" goals="2">
	<grid id="a" x="0" y="0" z="0" next="b"/>
	<grid id="b" x="1" y="0" z="0" prev="a" next="c" goal="1"/>
	<grid id="c" x="2" y="0" z="0" prev="b" next="d" goal="1"/>
	<grid id="d" x="3" y="0" z="0" prev="c"/>
</stage>`

// stubConfigs serves testLevel under the ID "straight"
type stubConfigs struct {
	loads int
}

var _ service.ConfigManager = (*stubConfigs)(nil)

func (s *stubConfigs) LoadLevel(name string) (*level.Level, error) {
	if name != "straight" {
		return nil, fmt.Errorf("%w: %s", service.ErrLevelNotFound, name)
	}
	s.loads++
	l, err := level.ParseBytes([]byte(testLevel))
	if err != nil {
		return nil, err
	}
	l.SetID(name)
	return l, nil
}

func (s *stubConfigs) LevelSource(name string) ([]byte, error) {
	if name != "straight" {
		return nil, service.ErrLevelNotFound
	}
	return []byte(testLevel), nil
}

func (s *stubConfigs) ListLevels() ([]*service.LevelInfo, error) {
	return []*service.LevelInfo{{Filename: "straight.xml", LevelID: "straight", Name: "Straight", Goals: 2, Nodes: 4}}, nil
}

func (s *stubConfigs) DefaultLevel() string { return "straight" }

func (s *stubConfigs) SaveLevel(name string, data []byte) (*service.LevelInfo, error) {
	return nil, fmt.Errorf("read only")
}

func (s *stubConfigs) LoadTuning(name string) (engine.Tuning, error) {
	switch name {
	case "", "standard":
		return engine.StandardTuning(), nil
	case "lab":
		return engine.LabTuning(), nil
	}
	return engine.Tuning{}, service.ErrProfileNotFound
}

func (s *stubConfigs) ListTunings() []engine.Tuning {
	return []engine.Tuning{engine.StandardTuning(), engine.LabTuning()}
}

func newTestSetup(t *testing.T) *service.GameSetup {
	t.Helper()
	configs := &stubConfigs{}
	l, err := configs.LoadLevel("straight")
	if err != nil {
		t.Fatalf("LoadLevel() error = %v", err)
	}
	return &service.GameSetup{
		LevelID: "straight",
		Profile: "lab",
		Level:   l,
		Tuning:  engine.LabTuning(),
	}
}
