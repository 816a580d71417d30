package level

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chaojikugua/l-echo/game/grid"
)

// Report summarizes the static shape of a level
type Report struct {
	Name          string         `json:"name"`
	Start         string         `json:"start"`
	TopLevel      int            `json:"top_level"`
	Total         int            `json:"total"`
	Kinds         map[string]int `json:"kinds"`
	DeclaredGoals int            `json:"declared_goals"`
	FlaggedGoals  []string       `json:"flagged_goals"`
	Reachable     int            `json:"reachable"`
	Unreachable   []string       `json:"unreachable,omitempty"`
	DeadEnds      []string       `json:"dead_ends,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// Solvable reports whether enough goals are reachable from the start node
// to satisfy the declared goal count
func (r *Report) Solvable() bool {
	return r.DeclaredGoals > 0 && len(r.FlaggedGoals) >= r.DeclaredGoals &&
		len(r.Unreachable) == 0
}

// Analyze inspects l without mutating it
func Analyze(l *Level) *Report {
	var zero mgl64.Vec3
	r := &Report{
		Name:          l.Name(),
		TopLevel:      l.Len(),
		Kinds:         make(map[string]int),
		DeclaredGoals: l.GoalCount(),
	}
	if l.Start() != nil {
		r.Start = l.Start().Key()
	}

	all := l.walk()
	r.Total = len(all)

	reachable := reachableFrom(l.Start())
	r.Reachable = len(reachable)

	for _, n := range all {
		r.Kinds[n.Kind().String()]++

		if n.Goal(zero) {
			if reachable[n] {
				r.FlaggedGoals = append(r.FlaggedGoals, n.Key())
			} else {
				r.Warnings = append(r.Warnings, fmt.Sprintf("goal on %s is unreachable from start", n.Key()))
			}
		}
		if !reachable[n] {
			r.Unreachable = append(r.Unreachable, n.Key())
		}
		if isDeadEnd(n) {
			r.DeadEnds = append(r.DeadEnds, n.Key())
		}
	}

	switch {
	case r.DeclaredGoals == 0:
		r.Warnings = append(r.Warnings, "level declares no goals; victory is unreachable")
	case len(r.FlaggedGoals) < r.DeclaredGoals:
		r.Warnings = append(r.Warnings, fmt.Sprintf("declares %d goals but only %d are reachable",
			r.DeclaredGoals, len(r.FlaggedGoals)))
	}
	if r.Start == "" {
		r.Warnings = append(r.Warnings, "level has no start node")
	}

	return r
}

// isDeadEnd reports non-hole nodes with no resolved outgoing link; holes
// always drop and are excluded
func isDeadEnd(n grid.Node) bool {
	if n.Kind().IsHoleLike() {
		return false
	}
	for _, link := range n.Links() {
		if link.IsResolved() {
			return false
		}
	}
	return true
}

func reachableFrom(start grid.Node) map[grid.Node]bool {
	seen := make(map[grid.Node]bool)
	if start == nil {
		return seen
	}
	queue := []grid.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, link := range n.Links() {
			if next, ok := link.Node(); ok && !seen[next] {
				queue = append(queue, next)
			}
		}
	}
	return seen
}
