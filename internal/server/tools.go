package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Inspection
		{
			Name:        "frame_load",
			Description: "Load a camera frame and return its dimensions and format. The frame stays cached for the other frame_* tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_edge_mask",
			Description: "Return the binary rail edge mask of a frame as base64-encoded PNG: horizontal Sobel gradient, threshold, horizon and corner wedges cleared.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Override the 8-bit edge threshold (default from the tuning, 200)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_detect_segments",
			Description: "Extract the straight line segments of a frame's edge mask, the raw material the rails are grown from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
					"max_lines": map[string]interface{}{
						"type":        "integer",
						"description": "Override the maximum number of segments returned",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_track_candidates",
			Description: "Scan the bottom of a frame for rail starts and report the candidates, the selected rail pair and why a pair was rejected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_stamp_regions",
			Description: "Locate the camera's burnt-in date and time stamp in the top or bottom band of a frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum confidence threshold 0-1 (default 0.3)",
						"default":     0.3,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_release",
			Description: "Drop a frame from the server's frame cache, or every cached frame when no path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path of the cached frame to drop"),
				},
			},
		},

		// Track Detection
		{
			Name:        "track_detect_frame",
			Description: "Detect the tram tracks, the tram ahead and pedestrians in the next frame of a session. Tracks missing in this frame are carried over from recent frames until they expire. Omit session_id to start a new session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the frame image"),
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session returned by an earlier call. Frames of one video must share a session.",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with tracks and detections drawn on it",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "track_process_sequence",
			Description: "Run every frame of a directory of images (or a video file when built with OpenCV) through a fresh session and return a summary report. The session ends with the run.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to a frame directory or video file"),
					"include_frames": map[string]interface{}{
						"type":        "boolean",
						"description": "Include one record per frame in the report",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "track_session_reset",
			Description: "Forget the frame history of a session, as when a different video is opened.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session to reset",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "track_session_close",
			Description: "End a session and free its frame history. The session id is unknown to the server afterwards.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session to close",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "track_config",
			Description: "Show the effective detection tunables and which optional detectors are enabled.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
