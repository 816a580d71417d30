package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"L-Echo Track Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`L-Echo Track Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guide the walker along a network of floating track segments and step on every goal.
Which segments connect depends on the camera angle, so turning the view changes the path.

AVAILABLE TOOLS:
- create_session: Start a game on a level (optional level_id, profile, realtime)
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the current game state
- tick: Advance a non-realtime game by a number of frames
- action: pause, run, walk, kill, reset or restart
- set_angle: Turn the camera (x, y, z in degrees)
- list_levels: List the levels on the server
- game_instructions: Read the full rules

Call game_instructions first if this is your first game.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session on a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (optional, defaults to the server's default level)",
				},
				"profile": map[string]interface{}{
					"type":        "string",
					"description": "Tuning profile (optional, defaults to standard)",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server clock advance the game instead of explicit ticks",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the game by a number of frames. Stops early on victory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Frames to advance (1-%d, %d frames is one second)", engine.MaxBulkTicks, engine.DefaultFPS),
					"minimum":     1,
					"maximum":     engine.MaxBulkTicks,
				},
			},
			Required: []string{"session_id", "ticks"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action",
		Description: "Apply a player action to the walker",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        service.Actions,
					"description": "pause toggles pause, run/walk change pace, kill drops the walker, reset respawns it, restart replays the level",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_angle",
		Description: "Set the camera angle in degrees. The angle decides which segments line up.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x":          map[string]interface{}{"type": "number", "description": "Pitch in degrees"},
				"y":          map[string]interface{}{"type": "number", "description": "Yaw in degrees"},
				"z":          map[string]interface{}{"type": "number", "description": "Roll in degrees (optional)"},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleSetAngle)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the levels available for new sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok && msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// numberArg reads a JSON number, which arrives as float64 off the wire
func numberArg(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func requireSessionID(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := service.CreateOptions{}
	body.LevelID, _ = args["level_id"].(string)
	body.Profile, _ = args["profile"].(string)
	body.Realtime, _ = args["realtime"].(bool)

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\nProfile: %s\n\n%s",
		session.ID, session.LevelID, session.Profile, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		goals := "?"
		if s.GameState != nil {
			goals = fmt.Sprintf("%d/%d", s.GameState.GoalsReached, s.GameState.GoalsTotal)
		}
		mode := "stepped"
		if s.Realtime {
			mode = "realtime"
		}
		fmt.Fprintf(&result, "- %s (Level: %s, Goals: %s, %s, Created: %s)\n",
			s.ID, s.LevelID, goals, mode, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	ticks, ok := numberArg(args, "ticks")
	if !ok {
		return mcp.NewToolResultError("ticks must be a number"), nil
	}

	body := map[string]interface{}{"ticks": int(ticks)}

	var result service.TickResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/tick"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTickResult(&result)), nil
}

func (c *Client) handleAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	action, _ := args["action"].(string)
	if action == "" {
		return mcp.NewToolResultError("action is required"), nil
	}

	var result service.ActionResult
	body := map[string]string{"action": action}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/action"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleSetAngle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	x, okX := numberArg(args, "x")
	y, okY := numberArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be numbers"), nil
	}
	z, _ := numberArg(args, "z")

	body := map[string]interface{}{"angle": mgl64.Vec3{x, y, z}}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/angle"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Available Levels (%d):\n\n", len(levels))
	for _, l := range levels {
		fmt.Fprintf(&result, "- %s: %s (%d goals, %d segments)\n", l.LevelID, l.Name, l.Goals, l.Nodes)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `L-ECHO TRACK SERVER - GAME INSTRUCTIONS

THE WORLD
A level is a set of track segments floating in 3D space. Each segment links to a previous
and a next segment. The walker moves from segment to segment on its own; you never steer
it directly.

PERSPECTIVE
Where a segment appears, and whether it exists at all, depends on the camera angle.
Some segments only show up when viewed from a particular angle. Use set_angle to line
segments up so the walker's path continues where you want it to go.

SEGMENT TYPES
- grid: plain track
- t_grid: an intersection; each pass sends the walker down a different branch
- stair: climbing track
- launcher: throws the walker upward; it lands wherever the view puts track below it
- hole: the walker falls through and lands on whatever segment lines up underneath
- escgrid: track that swaps in alternate segments depending on the angle

GOALS AND DEATH
Stepping on a goal segment collects it. Collect the level's goal count to win.
Walking off the end of the track or falling into nothing kills the walker. It then
respawns at the start; collected goals are kept.

CONTROLS
- tick: advance N frames (60 frames per second on the standard profile)
- action pause: toggle pause
- action run / walk: change pace
- action kill: drop the walker on purpose
- action reset: respawn at the start, goals kept
- action restart: replay the level from scratch, goals cleared

SUGGESTED LOOP
1. create_session, then game_state to see where the walker stands
2. set_angle to align a path toward the next goal
3. tick in small steps (30-120 frames) and check game_state after each
4. if the walker dies, review the angle and try again`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	mode := "stepped"
	if session.Realtime {
		mode = "realtime"
	}
	return fmt.Sprintf("Session: %s\nLevel: %s\nProfile: %s\nMode: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID, session.Profile, mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	ch := state.Character

	name := state.Level
	if state.LevelName != "" && state.LevelName != state.Level {
		name = fmt.Sprintf("%s (%s)", state.LevelName, state.Level)
	}
	fmt.Fprintf(&result, "Level: %s | Tick: %d | Goals: %d/%d | Deaths: %d\n",
		name, state.Tick, state.GoalsReached, state.GoalsTotal, ch.Deaths)
	fmt.Fprintf(&result, "Angle: (%.0f, %.0f, %.0f)\n", state.Angle[0], state.Angle[1], state.Angle[2])

	pace := "walking"
	if ch.Running {
		pace = "running"
	}
	if ch.Paused {
		pace += ", paused"
	}
	fmt.Fprintf(&result, "Phase: %s (%s)\n", ch.Phase, pace)

	current := ch.Current
	if current == "" {
		current = "-"
	}
	next := ch.Next
	if next == "" {
		next = "-"
	}
	fmt.Fprintf(&result, "Node: %s -> %s (%.0f%%)\n", current, next, ch.NextFraction*100)

	if ch.AccelMode != engine.AccelNone {
		fmt.Fprintf(&result, "Falling: %s at speed %.3f\n", ch.AccelMode, ch.AccelSpeed)
	}
	if ch.Pose != nil {
		fmt.Fprintf(&result, "Position: (%.2f, %.2f, %.2f) facing %.0f°\n",
			ch.Pose.Pos[0], ch.Pose.Pos[1], ch.Pose.Pos[2], ch.Pose.Yaw)
	}

	if len(state.RemainingGoals) > 0 {
		fmt.Fprintf(&result, "Remaining goals: %s\n", strings.Join(state.RemainingGoals, ", "))
	}

	if state.Victory {
		result.WriteString("\n🎉 VICTORY!")
	}

	return strings.TrimRight(result.String(), "\n")
}

func formatEvents(result *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	result.WriteString("\nEvents:\n")
	for _, e := range events {
		fmt.Fprintf(result, "- %s: %s\n", e.Type, e.Message)
	}
}

func formatTickResult(tick *service.TickResult) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Advanced %d/%d frames", tick.Ticks, tick.Requested)
	if tick.Ticks < tick.Requested {
		result.WriteString(" (stopped early)")
	}
	result.WriteString("\n")

	formatEvents(&result, tick.Events)

	result.WriteString("\n")
	result.WriteString(formatGameState(tick.GameState))
	return result.String()
}

func formatActionResult(action *service.ActionResult) string {
	var result strings.Builder
	fmt.Fprintf(&result, "%s: %s\n", action.Action, action.Message)
	formatEvents(&result, action.Events)
	result.WriteString("\n")
	result.WriteString(formatGameState(action.GameState))
	return result.String()
}
