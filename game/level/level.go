package level

import (
	"github.com/chaojikugua/l-echo/game/grid"
)

// Level is a loaded track graph with its start node and goal count
type Level struct {
	id        string
	name      string
	start     grid.Node
	goalCount int
	nodes     map[string]grid.Node
	order     []string
}

// New creates an empty level
func New() *Level {
	return &Level{
		nodes: make(map[string]grid.Node),
	}
}

// Get returns the node registered under key, or nil
func (l *Level) Get(key string) grid.Node {
	return l.nodes[key]
}

// Add registers a node under key. Re-adding a key replaces the node but keeps
// its original position in Nodes.
func (l *Level) Add(key string, n grid.Node) {
	if _, exists := l.nodes[key]; !exists {
		l.order = append(l.order, key)
	}
	l.nodes[key] = n
}

// SetStart sets the respawn node
func (l *Level) SetStart(n grid.Node) {
	l.start = n
}

// SetName sets the display name
func (l *Level) SetName(name string) {
	l.name = name
}

// SetGoalCount sets the number of goals needed to finish the level
func (l *Level) SetGoalCount(n int) {
	l.goalCount = n
}

// SetID sets the identifier the level was loaded under
func (l *Level) SetID(id string) {
	l.id = id
}

// ID returns the identifier the level was loaded under
func (l *Level) ID() string {
	return l.id
}

// Start returns the respawn node
func (l *Level) Start() grid.Node {
	return l.start
}

// Name returns the display name
func (l *Level) Name() string {
	return l.name
}

// GoalCount returns the declared number of goals
func (l *Level) GoalCount() int {
	return l.goalCount
}

// Len returns the number of top-level nodes
func (l *Level) Len() int {
	return len(l.order)
}

// Nodes returns top-level nodes in the order they were added
func (l *Level) Nodes() []grid.Node {
	out := make([]grid.Node, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.nodes[key])
	}
	return out
}

// All returns every node reachable from the level, nested escape nodes
// included, each exactly once
func (l *Level) All() []grid.Node {
	return l.walk()
}

// ResetGoals restores every goal flag reachable from the level's nodes,
// including nodes only reachable through escape tables
func (l *Level) ResetGoals() {
	for _, n := range l.walk() {
		n.ResetGoal()
	}
}

// walk returns every node reachable from the top-level set through links,
// each exactly once, top-level nodes first
func (l *Level) walk() []grid.Node {
	seen := make(map[grid.Node]bool)
	var out []grid.Node
	queue := l.Nodes()
	if l.start != nil {
		queue = append(queue, l.start)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		for _, link := range n.Links() {
			if next, ok := link.Node(); ok && !seen[next] {
				queue = append(queue, next)
			}
		}
	}
	return out
}
