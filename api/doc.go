// Package api exposes the game service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session: {"level_id", "profile", "realtime"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/tick - Advance the game: {"ticks": 120}
//   - POST /api/sessions/{id}/action - {"action": "pause|run|walk|kill|reset|restart"}
//   - POST /api/sessions/{id}/angle - Set the camera angle: {"angle": [0, -1, 0]}
//
// Levels:
//   - GET /api/levels - List levels
//   - GET /api/levels/{name} - Level summary, analysis and source (?format=xml for the raw document)
//   - PUT /api/levels/{name} - Validate and store an XML level document
//   - GET /api/profiles - Tuning profiles
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket state stream for one session
//
// Errors are returned as JSON with the HTTP status repeated in the body:
//
//	{
//	  "error": "session ab12: session not found",
//	  "code": 404
//	}
//
// Missing sessions, levels and profiles map to 404; invalid actions, tick
// counts and level documents to 400.
package api
