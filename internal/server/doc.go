// Package server implements the MCP (Model Context Protocol) server for the
// tram track detector.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// chain through the MCP protocol, so an MCP client can inspect camera
// frames step by step or follow the tracks through a recorded run.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Inspection (stateless, frames are cached by path):
//   - frame_load: Load a frame and get metadata
//   - frame_edge_mask: Binary rail edge mask as PNG
//   - frame_detect_segments: Straight segments of the edge mask
//   - frame_track_candidates: Rail starts and the selected pair
//   - frame_stamp_regions: Location of the burnt-in timestamp
//   - frame_release: Drop one or all cached frames
//
// Track Detection (stateful, per session):
//   - track_detect_frame: Process the next frame of a session
//   - track_process_sequence: Process a whole directory or video
//   - track_session_reset: Forget a session's history
//   - track_session_close: End a session and free it
//   - track_config: Show the effective tunables
//
// # Sessions
//
// Features missing from a frame are carried over from earlier frames of
// the same session until they expire, so frames of one video must be sent
// in order with the same session_id. A call without session_id starts a
// new session and returns its id. A session lives until track_session_close
// is called for it. track_process_sequence runs on a session of its own
// that ends with the run.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A frame without a detectable rail pair is not an error; the result
// carries the failure kind and the carried-over tracks instead.
//
// # Usage
//
//	proc, err := pipeline.NewProcessor(params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(proc)
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
