// Package websocket fans game updates out to browser clients.
//
// A Hub keeps, per session ID, the set of connected clients. Everything
// that touches that set runs on the goroutine started with Run, so
// BroadcastToSession and BroadcastEvent only enqueue. The hub satisfies
// service.Publisher and is normally handed to the game service with
// service.WithPublisher.
//
// Frames are JSON objects, one per WebSocket text message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "goal_reached", "data": {"type": "goal_reached", ...}}
//
// Clients never send commands over the socket; they use the REST API. A
// client whose queue fills up is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID)
package websocket
