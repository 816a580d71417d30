package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/elliotchance/orderedmap/v2"
	"gopkg.in/yaml.v3"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/service"
)

// ErrProfileNotFound is returned for an unknown tuning profile name
var ErrProfileNotFound = service.ErrProfileNotFound

// tuningFile is the YAML layout of the tuning file:
//
//	default_level: intro
//	profiles:
//	  - name: slow
//	    base: standard
//	    step: 0.04
type tuningFile struct {
	DefaultLevel string      `yaml:"default_level"`
	Profiles     []yaml.Node `yaml:"profiles"`
}

type profileHeader struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
}

// LoadTuning returns the named profile; an empty name is the standard one
func (m *Manager) LoadTuning(name string) (engine.Tuning, error) {
	if name == "" {
		name = engine.StandardTuning().Name
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tunings.Get(name)
	if !ok {
		return engine.Tuning{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return t, nil
}

// ListTunings returns the built-in profiles followed by those from the
// tuning file, in file order
func (m *Manager) ListTunings() []engine.Tuning {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Tuning, 0, m.tunings.Len())
	for _, key := range m.tunings.Keys() {
		t, _ := m.tunings.Get(key)
		out = append(out, t)
	}
	return out
}

func (m *Manager) loadTunings() error {
	tunings := orderedmap.NewOrderedMap[string, engine.Tuning]()
	for _, t := range []engine.Tuning{engine.StandardTuning(), engine.LabTuning()} {
		tunings.Set(t.Name, t)
	}

	var defaultLevel string
	if m.tuningFile != "" {
		data, err := os.ReadFile(m.tuningFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			m.log.WithField("file", m.tuningFile).Warn("tuning file not found, using built-in profiles")
		case err != nil:
			return fmt.Errorf("read %s: %w", m.tuningFile, err)
		default:
			defaultLevel, err = parseTunings(data, tunings)
			if err != nil {
				return fmt.Errorf("parse %s: %w", m.tuningFile, err)
			}
		}
	}

	m.mu.Lock()
	m.tunings = tunings
	if defaultLevel != "" {
		m.defaultLevel = normalizeName(defaultLevel)
	}
	m.mu.Unlock()
	return nil
}

// parseTunings decodes each profile over its base, which must be a
// built-in or an earlier profile
func parseTunings(data []byte, into *orderedmap.OrderedMap[string, engine.Tuning]) (string, error) {
	var file tuningFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", err
	}

	for i := range file.Profiles {
		node := &file.Profiles[i]

		var header profileHeader
		if err := node.Decode(&header); err != nil {
			return "", fmt.Errorf("profile %d: %w", i, err)
		}
		if header.Name == "" {
			return "", fmt.Errorf("profile %d: name is required", i)
		}
		if _, exists := into.Get(header.Name); exists {
			return "", fmt.Errorf("profile %q: duplicate name", header.Name)
		}
		if header.Base == "" {
			header.Base = engine.StandardTuning().Name
		}
		base, ok := into.Get(header.Base)
		if !ok {
			return "", fmt.Errorf("profile %q: unknown base %q", header.Name, header.Base)
		}

		t := base
		if err := node.Decode(&t); err != nil {
			return "", fmt.Errorf("profile %q: %w", header.Name, err)
		}
		t.Name = header.Name
		// gravity is per tick squared, so a new rate needs a new default
		if t.FPS != base.FPS && t.Gravity == base.Gravity {
			t.Gravity = 0
		}
		t = t.WithDefaults()
		if err := t.Validate(); err != nil {
			return "", err
		}
		into.Set(t.Name, t)
	}

	return file.DefaultLevel, nil
}
