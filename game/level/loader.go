package level

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/chaojikugua/l-echo/game/grid"
)

// element is a generic XML node; level files are walked structurally
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// patch completes a node once the node it references has been built
type patch func(target grid.Node)

type loader struct {
	path    string
	level   *Level
	known   map[string]grid.Node
	pending *orderedmap.OrderedMap[string, []patch]
	log     *logrus.Entry
}

// Load reads and parses the level file at path
func Load(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	defer f.Close()

	return parse(path, f)
}

// Parse parses a level document from r
func Parse(r io.Reader) (*Level, error) {
	return parse("", r)
}

// ParseBytes parses an in-memory level document
func ParseBytes(data []byte) (*Level, error) {
	return parse("", bytes.NewReader(data))
}

func parse(path string, r io.Reader) (*Level, error) {
	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	ld := &loader{
		path:    path,
		level:   New(),
		known:   make(map[string]grid.Node),
		pending: orderedmap.NewOrderedMap[string, []patch](),
		log:     logrus.WithField("path", path),
	}

	for i := range root.Children {
		if _, err := ld.parseNode(&root.Children[i], true); err != nil {
			return nil, err
		}
	}

	if ld.pending.Len() > 0 {
		return nil, &LoadError{Path: path, Unresolved: ld.pending.Keys(), Err: ErrUnresolved}
	}

	startID, _ := root.attr("start")
	start := ld.level.Get(startID)
	if start == nil {
		start = ld.known[startID]
	}
	if start == nil {
		return nil, &LoadError{Path: path, Unresolved: []string{"start=" + startID}, Err: ErrUnresolved}
	}
	ld.level.SetStart(start)

	name, _ := root.attr("name")
	ld.level.SetName(name)

	if raw, ok := root.attr("goals"); ok {
		goals, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: goals=%q is not an integer", ErrMalformed, raw)}
		}
		ld.level.SetGoalCount(goals)
	}

	ld.log.WithFields(logrus.Fields{
		"name":  name,
		"nodes": ld.level.Len(),
		"goals": ld.level.GoalCount(),
	}).Debug("level loaded")

	return ld.level, nil
}

// linker is satisfied by every variant with prev/next neighbors
type linker interface {
	grid.Node
	SetPrev(grid.Successor)
	SetNext(grid.Successor)
}

// parseNode builds the node described by el. Top-level nodes are added to
// the level; nested escape nodes are only made resolvable by id.
func (ld *loader) parseNode(el *element, top bool) (grid.Node, error) {
	kind := el.XMLName.Local
	id, _ := el.attr("id")
	if id == "" {
		return nil, ld.malformed("", "<%s> without id", kind)
	}
	if _, dup := ld.known[id]; dup {
		return nil, ld.malformed(id, "duplicate id")
	}

	pos, err := ld.vector(id, el)
	if err != nil {
		return nil, err
	}

	var node linker
	switch kind {
	case "grid":
		node = grid.NewSegment(id, pos)

	case "launcher":
		node = grid.NewLauncher(id, pos)

	case "t_grid":
		b := grid.NewBranch(id, pos)
		ld.link(id, el, "next2", b.SetNext2)
		node = b

	case "escgrid":
		c := grid.NewChooser(id, pos)
		if err := ld.escapes(id, el, c.AddEscape); err != nil {
			return nil, err
		}
		node = c

	case "hole":
		h := grid.NewHole(id, pos)
		if err := ld.escapes(id, el, h.AddEscape); err != nil {
			return nil, err
		}
		node = h

	case "stair":
		if len(el.Children) < 2 {
			return nil, ld.malformed(id, "stair needs direction and width vectors")
		}
		dir, err := ld.vector(id, &el.Children[0])
		if err != nil {
			return nil, err
		}
		width, err := ld.vector(id, &el.Children[1])
		if err != nil {
			return nil, err
		}
		node = grid.NewStair(id, pos, dir, width)

	default:
		return nil, ld.malformed(id, "unknown element <%s>", kind)
	}

	ld.link(id, el, "prev", node.SetPrev)
	ld.link(id, el, "next", node.SetNext)

	if raw, ok := el.attr("goal"); ok {
		goal, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, ld.malformed(id, "goal=%q is not an integer", raw)
		}
		if goal != 0 {
			node.SetGoal()
		}
	}

	ld.known[id] = node
	ld.resolve(id, node)

	if top {
		ld.level.Add(id, node)
	}
	return node, nil
}

// link sets a neighbor reference. A missing attribute is a dead end; a
// reference to a node not built yet is patched when that node appears.
func (ld *loader) link(id string, el *element, attr string, set func(grid.Successor)) {
	ref, ok := el.attr(attr)
	if !ok || ref == "" {
		set(grid.Nowhere())
		return
	}
	if target, ok := ld.known[ref]; ok {
		set(grid.To(target))
		return
	}

	set(grid.Unresolved())
	patches, _ := ld.pending.Get(ref)
	ld.pending.Set(ref, append(patches, func(target grid.Node) {
		set(grid.To(target))
	}))
	ld.log.WithFields(logrus.Fields{"node": id, attr: ref}).Debug("deferring reference")
}

// resolve runs and discards every patch waiting on id
func (ld *loader) resolve(id string, target grid.Node) {
	patches, ok := ld.pending.Get(id)
	if !ok {
		return
	}
	for _, p := range patches {
		p(target)
	}
	ld.pending.Delete(id)
	ld.log.WithFields(logrus.Fields{"node": id, "patches": len(patches)}).Debug("resolved deferred references")
}

// escapes parses <esc x y z><node .../></esc> children into an escape table
func (ld *loader) escapes(id string, el *element, add func(mgl64.Vec3, grid.Node)) error {
	for i := range el.Children {
		esc := &el.Children[i]
		angle, err := ld.vector(id, esc)
		if err != nil {
			return err
		}
		if len(esc.Children) == 0 {
			return ld.malformed(id, "escape entry without a node")
		}
		target, err := ld.parseNode(&esc.Children[0], false)
		if err != nil {
			return err
		}
		add(angle, target)
	}
	return nil
}

// vector reads the x, y, z attributes of el; missing components are zero
func (ld *loader) vector(id string, el *element) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i, axis := range []string{"x", "y", "z"} {
		raw, ok := el.attr(axis)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return v, ld.malformed(id, "%s=%q is not a number", axis, raw)
		}
		v[i] = f
	}
	return v, nil
}

func (ld *loader) malformed(id, format string, args ...any) error {
	return &LoadError{
		Path: ld.path,
		Node: id,
		Err:  fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)),
	}
}
