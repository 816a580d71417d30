package grid

import (
	"github.com/go-gl/mathgl/mgl64"
)

// base carries what every variant shares: identity, position and goal flag
type base struct {
	key        string
	info       Info
	goal       bool
	loadedGoal bool
}

// Key returns the node identifier
func (b *base) Key() string {
	return b.key
}

// Info returns a copy of the node's position info. Plain nodes look the same
// from every angle.
func (b *base) Info(angle mgl64.Vec3) *Info {
	info := b.info
	return &info
}

// Goal reports whether the goal flag is raised
func (b *base) Goal(angle mgl64.Vec3) bool {
	return b.goal
}

// ClearGoal lowers the goal flag, returning true only on a raised→lowered transition
func (b *base) ClearGoal(angle mgl64.Vec3) bool {
	if !b.goal {
		return false
	}
	b.goal = false
	return true
}

// SetGoal marks the node as a goal
func (b *base) SetGoal() {
	b.goal = true
	b.loadedGoal = true
}

// ResetGoal restores the flag set at load time
func (b *base) ResetGoal() {
	b.goal = b.loadedGoal
}

// Segment is plain pass-through track with a prev and a next neighbor
type Segment struct {
	base
	kind Kind
	prev Successor
	next Successor
}

// NewSegment creates an unlinked plain segment at pos
func NewSegment(key string, pos mgl64.Vec3) *Segment {
	return newSegment(key, pos, KindSegment)
}

func newSegment(key string, pos mgl64.Vec3, kind Kind) *Segment {
	return &Segment{
		base: base{key: key, info: Info{Pos: pos}},
		kind: kind,
	}
}

// Kind returns the segment's discriminant
func (s *Segment) Kind() Kind {
	return s.kind
}

// PrevLink returns the prev neighbor link
func (s *Segment) PrevLink() Successor {
	return s.prev
}

// NextLink returns the next neighbor link
func (s *Segment) NextLink() Successor {
	return s.next
}

// SetPrev links the prev neighbor
func (s *Segment) SetPrev(link Successor) {
	s.prev = link
}

// SetNext links the next neighbor
func (s *Segment) SetNext(link Successor) {
	s.next = link
}

// Next passes the character through: coming from prev leads to next, coming
// from next leads back to prev, anything else (e.g. a spawn) heads to next
func (s *Segment) Next(angle mgl64.Vec3, from Node) Successor {
	return s.pass(from)
}

func (s *Segment) pass(from Node) Successor {
	switch {
	case s.prev.Is(from):
		return s.next
	case s.next.Is(from):
		return s.prev
	}
	return s.next
}

// Links returns prev then next
func (s *Segment) Links() []Successor {
	return []Successor{s.prev, s.next}
}

// Stair is a segment drawn as steps; direction and width only affect drawing
type Stair struct {
	Segment
}

// NewStair creates an unlinked stair at pos with the given step geometry
func NewStair(key string, pos, dir, width mgl64.Vec3) *Stair {
	st := &Stair{Segment: *newSegment(key, pos, KindStair)}
	st.info.Dir = dir
	st.info.Width = width
	return st
}

// Launcher is a segment that throws the character toward its next node
type Launcher struct {
	Segment
}

// NewLauncher creates an unlinked launcher at pos
func NewLauncher(key string, pos mgl64.Vec3) *Launcher {
	return &Launcher{Segment: *newSegment(key, pos, KindLauncher)}
}

// Branch is a T junction: prev is the stem, next and next2 are the arms
type Branch struct {
	Segment
	next2 Successor
}

// NewBranch creates an unlinked T junction at pos
func NewBranch(key string, pos mgl64.Vec3) *Branch {
	return &Branch{Segment: *newSegment(key, pos, KindBranch)}
}

// Next2Link returns the second arm link
func (b *Branch) Next2Link() Successor {
	return b.next2
}

// SetNext2 links the second arm
func (b *Branch) SetNext2(link Successor) {
	b.next2 = link
}

// Next turns through the junction: stem → next → next2 → stem.
// Unknown arrivals head to next.
func (b *Branch) Next(angle mgl64.Vec3, from Node) Successor {
	switch {
	case b.prev.Is(from):
		return b.next
	case b.next.Is(from):
		return b.next2
	case b.next2.Is(from):
		return b.prev
	}
	return b.next
}

// Links returns prev, next, next2
func (b *Branch) Links() []Successor {
	return []Successor{b.prev, b.next, b.next2}
}
