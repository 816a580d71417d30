// Package level holds a level's track graph and loads it from XML.
//
// A level file is a tree of typed node elements under a root carrying the
// start node id, the level name and the number of goals:
//
//	<stage name="first steps" start="a" goals="1">
//	  <grid id="a" x="0" y="0" z="0" next="b"/>
//	  <grid id="b" x="1" y="0" z="0" prev="a" next="c" goal="1"/>
//	  <hole id="c" x="2" y="0" z="0" prev="b">
//	    <esc x="1" y="0" z="0">
//	      <escgrid id="c_land" x="2" y="-5" z="0" next="d"/>
//	    </esc>
//	  </hole>
//	  <grid id="d" x="3" y="-5" z="0" prev="c_land"/>
//	</stage>
//
// Element types: grid, t_grid (adds next2), escgrid and hole (angle-indexed
// <esc> children holding one nested node each), stair (two vector children:
// direction then width) and launcher.
//
// References may point forward. When a node names a neighbor that does not
// exist yet, the loader queues a patch under the missing id; the moment a
// node with that id is built every queued patch runs and the queue is
// dropped. A document that ends with queued patches is rejected with
// ErrUnresolved, so callers never receive a partial graph.
package level
