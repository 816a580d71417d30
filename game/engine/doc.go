// Package engine implements character motion over a level's grid graph.
//
// A Character is always between two nodes: the one it is leaving and the
// one it is heading to. Each tick it moves by its current speed along that
// edge, asks the graph for the following node when it arrives, collects
// goals it passes and emits one draw request. Falling into nothing starts
// a death animation, after which the character respawns on its start node.
//
// Speed regimes:
//
//   - leaving a hole toward an escgrid (or nothing): fall speed, with
//     gravity added every tick when acceleration is enabled
//   - leaving a launcher toward grounded track (or nothing): launch speed,
//     decelerating and then accelerating back down
//   - leaving an escgrid toward anything but escgrid or grounded track:
//     walking or running speed
//
// Any other pair keeps the previous speed, so a character stays at fall
// speed while it drops through several nodes.
//
// Game wraps one character and one level with a camera, a pose recorder
// and victory bookkeeping:
//
//	lvl, err := level.Load("levels/intro.xml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g, err := engine.NewGame(lvl, engine.StandardTuning())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g.StartRunning()
//	res := g.Tick(60)
//	state := g.State()
package engine
