// Package service is the layer every transport talks to.
//
// GameService wraps the session store and the level/tuning configuration
// behind context-aware operations: creating sessions, advancing games in
// bulk, applying player actions, changing the camera angle and managing
// level files. All access to a game goes through one mutex, so a character
// is only ever advanced by one goroutine at a time.
//
// State changes are pushed to an optional Publisher (the WebSocket hub in
// the server) as a full GameState followed by one message per GameEvent.
//
// Clock drives sessions created with Realtime set, ticking each of them once
// per frame. A panic inside one session's tick is recovered and reported to
// Sentry without stopping the clock.
package service
