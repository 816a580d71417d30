package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind is the explicit discriminant of a node variant
type Kind int

const (
	KindSegment Kind = iota
	KindBranch
	KindChooser
	KindHole
	KindStair
	KindLauncher
)

// AngleTolerance is the per-component slack used when matching an angle
// against an escape table entry
const AngleTolerance = 1e-3

var kindNames = map[Kind]string{
	KindSegment:  "grid",
	KindBranch:   "t_grid",
	KindChooser:  "escgrid",
	KindHole:     "hole",
	KindStair:    "stair",
	KindLauncher: "launcher",
}

// String returns the level-file element name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsHoleLike reports whether the character drops through nodes of this kind
func (k Kind) IsHoleLike() bool {
	return k == KindHole
}

// IsChooserLike reports whether nodes of this kind pick a successor from an
// angle-indexed table
func (k Kind) IsChooserLike() bool {
	return k == KindChooser
}

// IsGroundedLike reports whether this is plain track (segment or stair)
func (k Kind) IsGroundedLike() bool {
	return k == KindSegment || k == KindStair
}

// IsLauncher reports whether nodes of this kind launch the character
func (k Kind) IsLauncher() bool {
	return k == KindLauncher
}

// Info is the positional information a node exposes for one angle
type Info struct {
	Pos mgl64.Vec3 `json:"pos"`

	// Stair geometry; zero for every other kind
	Dir   mgl64.Vec3 `json:"dir,omitempty"`
	Width mgl64.Vec3 `json:"width,omitempty"`
}

// Node is the traversal contract every grid variant satisfies
type Node interface {
	// Key is the node's identifier from the level file
	Key() string
	Kind() Kind

	// Info returns the node's position for angle, or nil when the node
	// cannot be seen from that angle
	Info(angle mgl64.Vec3) *Info

	// Next names the node to move toward after arriving here from `from`
	Next(angle mgl64.Vec3, from Node) Successor

	Goal(angle mgl64.Vec3) bool
	// ClearGoal lowers the goal flag and reports whether it was raised
	ClearGoal(angle mgl64.Vec3) bool
	SetGoal()
	// ResetGoal restores the flag to its value at load time
	ResetGoal()

	// Links lists every outgoing link, in declaration order
	Links() []Successor
}

type successorState int

const (
	unresolved successorState = iota
	resolved
	nowhere
)

// Successor is the answer to "where next": a node, Nowhere, or Unresolved.
// The zero value is Unresolved.
type Successor struct {
	state successorState
	node  Node
}

// Unresolved returns the "not known yet" successor
func Unresolved() Successor {
	return Successor{}
}

// Nowhere returns the off-the-level successor
func Nowhere() Successor {
	return Successor{state: nowhere}
}

// To returns a resolved successor; a nil node yields Unresolved
func To(n Node) Successor {
	if n == nil {
		return Successor{}
	}
	return Successor{state: resolved, node: n}
}

// Node returns the successor's node when it is resolved
func (s Successor) Node() (Node, bool) {
	if s.state != resolved {
		return nil, false
	}
	return s.node, true
}

func (s Successor) IsResolved() bool   { return s.state == resolved }
func (s Successor) IsNowhere() bool    { return s.state == nowhere }
func (s Successor) IsUnresolved() bool { return s.state == unresolved }

// Is reports whether the successor resolves to n
func (s Successor) Is(n Node) bool {
	return s.state == resolved && n != nil && s.node == n
}

// String renders the successor for logs and snapshots
func (s Successor) String() string {
	switch s.state {
	case resolved:
		return s.node.Key()
	case nowhere:
		return "<nowhere>"
	default:
		return "<unresolved>"
	}
}

// AngleMatches reports whether two camera angles are the same within AngleTolerance
func AngleMatches(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > AngleTolerance {
			return false
		}
	}
	return true
}
