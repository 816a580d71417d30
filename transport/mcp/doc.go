// Package mcp provides the Model Context Protocol server for the L-Echo track server.
//
// The server is a thin client over the REST API: every tool call becomes one
// HTTP request and the JSON response is rendered as plain text for the agent.
//
// MCP Tools:
//   - create_session: Start a game on a level with an optional tuning profile
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Get the current game state
//   - tick: Advance a game by a number of frames
//   - action: Pause, run, walk, kill, reset or restart
//   - set_angle: Turn the camera
//   - list_levels: List the levels on the server
//   - game_instructions: Read the rules
//
// Transport Modes:
//   - Stdio: pass GetMCPServer to server.ServeStdio for local MCP clients
//   - HTTP: feed request bodies to the server's HandleMessage from an /mcp endpoint
package mcp
