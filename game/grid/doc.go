// Package grid provides the track graph the character walks on.
//
// A level is a directed graph of grid nodes positioned in 3D space. Every node
// variant implements the same traversal contract (Node): given the current
// camera angle and the node the character is arriving from, it names the next
// node to move toward. The answer is a Successor, which is one of three
// states:
//   - Resolved: a concrete node to interpolate toward
//   - Nowhere: off the level, the character falls to its death
//   - Unresolved: no successor known yet (only while a level is being built)
//
// Variants:
//
//	Segment   plain pass-through track ("grid")
//	Branch    T junction with a second arm ("t_grid")
//	Chooser   segment with an angle-indexed escape table ("escgrid")
//	Hole      drops the character, landing depends on the angle
//	Stair     segment with direction/width vectors for drawing
//	Launcher  propels the character toward its next node
//
// Usage:
//
//	a := grid.NewSegment("a", mgl64.Vec3{0, 0, 0})
//	b := grid.NewSegment("b", mgl64.Vec3{1, 0, 0})
//	a.SetPrev(grid.Nowhere())
//	a.SetNext(grid.To(b))
//	b.SetPrev(grid.To(a))
//	b.SetNext(grid.Nowhere())
//
//	next := a.Next(angle, a) // resolves to b
//
// The graph is built once per level and is read-mostly afterwards: goal flags
// are the only state that changes during play.
package grid
