package grid

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Escape is one entry of an angle-indexed branch table
type Escape struct {
	Angle mgl64.Vec3
	Node  Node
}

// escapeTable maps camera angles to the node reached from that angle.
// Entries keep their declaration order so the first match wins.
type escapeTable struct {
	entries *orderedmap.OrderedMap[mgl64.Vec3, Node]
}

func newEscapeTable() escapeTable {
	return escapeTable{entries: orderedmap.NewOrderedMap[mgl64.Vec3, Node]()}
}

func (t escapeTable) add(angle mgl64.Vec3, n Node) {
	t.entries.Set(angle, n)
}

func (t escapeTable) lookup(angle mgl64.Vec3) (Node, bool) {
	if n, ok := t.entries.Get(angle); ok {
		return n, true
	}
	for el := t.entries.Front(); el != nil; el = el.Next() {
		if AngleMatches(el.Key, angle) {
			return el.Value, true
		}
	}
	return nil, false
}

func (t escapeTable) list() []Escape {
	out := make([]Escape, 0, t.entries.Len())
	for el := t.entries.Front(); el != nil; el = el.Next() {
		out = append(out, Escape{Angle: el.Key, Node: el.Value})
	}
	return out
}

// Chooser is a segment whose successor can be overridden per camera angle.
// When the angle matches an escape entry the character leaves to that entry's
// node; otherwise it passes through like a plain segment.
type Chooser struct {
	Segment
	escapes escapeTable
}

// NewChooser creates an unlinked chooser at pos with an empty escape table
func NewChooser(key string, pos mgl64.Vec3) *Chooser {
	return &Chooser{
		Segment: *newSegment(key, pos, KindChooser),
		escapes: newEscapeTable(),
	}
}

// AddEscape routes the character to n when seen from angle
func (c *Chooser) AddEscape(angle mgl64.Vec3, n Node) {
	c.escapes.add(angle, n)
}

// Escape returns the node reached from angle, if any
func (c *Chooser) Escape(angle mgl64.Vec3) (Node, bool) {
	return c.escapes.lookup(angle)
}

// Escapes lists the escape table in declaration order
func (c *Chooser) Escapes() []Escape {
	return c.escapes.list()
}

// Next takes the escape for angle when there is one
func (c *Chooser) Next(angle mgl64.Vec3, from Node) Successor {
	if n, ok := c.escapes.lookup(angle); ok {
		return To(n)
	}
	return c.pass(from)
}

// Links returns prev, next, then every escape node
func (c *Chooser) Links() []Successor {
	links := c.Segment.Links()
	for _, esc := range c.escapes.list() {
		links = append(links, To(esc.Node))
	}
	return links
}

// Hole drops the character. Its escape table names where the fall lands for
// each angle; with no matching entry the character falls off the level.
type Hole struct {
	Chooser
}

// NewHole creates an unlinked hole at pos
func NewHole(key string, pos mgl64.Vec3) *Hole {
	h := &Hole{Chooser: *NewChooser(key, pos)}
	h.kind = KindHole
	return h
}

// Next returns the landing node for angle, or Nowhere
func (h *Hole) Next(angle mgl64.Vec3, from Node) Successor {
	if n, ok := h.escapes.lookup(angle); ok {
		return To(n)
	}
	return Nowhere()
}
