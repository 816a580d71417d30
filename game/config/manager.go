package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/sirupsen/logrus"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
	"github.com/chaojikugua/l-echo/game/service"
)

// DefaultLevelID is preferred as the default level when present
const DefaultLevelID = "intro"

const levelExt = ".xml"

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = service.ErrInvalidLevel
	ErrInvalidName   = errors.New("invalid level name")
)

var levelNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// cachedLevel keeps the raw document so every session parses its own graph;
// goal flags live on the nodes and must not be shared between games
type cachedLevel struct {
	source []byte
	info   *service.LevelInfo
}

// Manager handles level discovery, caching and saving, plus tuning profiles
type Manager struct {
	levelDir     string
	tuningFile   string
	defaultLevel string
	levels       map[string]*cachedLevel
	tunings      *orderedmap.OrderedMap[string, engine.Tuning]
	log          *logrus.Entry
	mu           sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a manager over levelDir. tuningFile may be empty, in
// which case only the built-in profiles are available.
func NewManager(levelDir, tuningFile string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir:   levelDir,
		tuningFile: tuningFile,
		levels:     make(map[string]*cachedLevel),
		log:        logrus.WithField("component", "config"),
	}

	if err := m.loadTunings(); err != nil {
		return nil, fmt.Errorf("failed to load tuning profiles: %w", err)
	}
	m.pickDefaultLevel()

	return m, nil
}

// LoadLevel parses a fresh copy of the named level
func (m *Manager) LoadLevel(name string) (*level.Level, error) {
	name = normalizeName(name)
	cached, err := m.cached(name)
	if err != nil {
		return nil, err
	}

	l, err := level.ParseBytes(cached.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	l.SetID(name)
	return l, nil
}

// LevelSource returns the XML the level was loaded from
func (m *Manager) LevelSource(name string) ([]byte, error) {
	cached, err := m.cached(normalizeName(name))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(cached.source))
	copy(out, cached.source)
	return out, nil
}

// ListLevels returns information about every parseable level in the
// directory, sorted by ID
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), levelExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), levelExt)
		cached, err := m.cached(name)
		if err != nil {
			m.log.WithError(err).WithField("level_id", name).Warn("skipping invalid level")
			continue
		}
		levels = append(levels, cached.info)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

// DefaultLevel returns the ID used when a session names no level
func (m *Manager) DefaultLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by ID
func (m *Manager) SetDefault(name string) error {
	name = normalizeName(name)
	if _, err := m.cached(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = name
	return nil
}

// RefreshCache drops every cached level and rereads the tuning file
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*cachedLevel)
	m.mu.Unlock()

	if err := m.loadTunings(); err != nil {
		return err
	}
	m.pickDefaultLevel()
	return nil
}

// SaveLevel validates data as a level document and writes it to the
// directory under name
func (m *Manager) SaveLevel(name string, data []byte) (*service.LevelInfo, error) {
	name = normalizeName(name)
	if !levelNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	cached, err := m.parse(name, data)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(m.levelDir, name+levelExt)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[name] = cached
	if m.defaultLevel == "" {
		m.defaultLevel = name
	}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"level_id": name, "nodes": cached.info.Nodes}).Info("level saved")
	return cached.info, nil
}

func (m *Manager) cached(name string) (*cachedLevel, error) {
	m.mu.RLock()
	if c, ok := m.levels[name]; ok {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()

	if !levelNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}

	data, err := os.ReadFile(filepath.Join(m.levelDir, name+levelExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	c, err := m.parse(name, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.levels[name]; ok {
		return existing, nil
	}
	m.levels[name] = c
	return c, nil
}

func (m *Manager) parse(name string, data []byte) (*cachedLevel, error) {
	l, err := level.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	if l.Start() == nil {
		return nil, fmt.Errorf("%w: level %s has no start node", ErrInvalidLevel, name)
	}

	levelName := l.Name()
	if levelName == "" {
		levelName = name
	}
	return &cachedLevel{
		source: data,
		info: &service.LevelInfo{
			Filename: name + levelExt,
			LevelID:  name,
			Name:     levelName,
			Goals:    l.GoalCount(),
			Nodes:    len(l.All()),
		},
	}, nil
}

// pickDefaultLevel keeps a default from the tuning file if it loads, then
// falls back to DefaultLevelID and finally the first level on disk
func (m *Manager) pickDefaultLevel() {
	m.mu.RLock()
	current := m.defaultLevel
	m.mu.RUnlock()

	for _, candidate := range []string{current, DefaultLevelID} {
		if candidate == "" {
			continue
		}
		if _, err := m.cached(candidate); err == nil {
			m.setDefaultLevel(candidate)
			return
		}
	}

	levels, err := m.ListLevels()
	if err != nil || len(levels) == 0 {
		m.setDefaultLevel("")
		return
	}
	m.setDefaultLevel(levels[0].LevelID)
}

func (m *Manager) setDefaultLevel(name string) {
	m.mu.Lock()
	m.defaultLevel = name
	m.mu.Unlock()
}

func normalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), levelExt)
}
