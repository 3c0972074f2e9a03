package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/geometry"
	"github.com/ironsheep/tram-track-mcp/internal/imaging"
	"github.com/ironsheep/tram-track-mcp/internal/log"
	"github.com/ironsheep/tram-track-mcp/internal/pipeline"
	"github.com/ironsheep/tram-track-mcp/internal/source"
)

// errUnknownSession is returned for session ids the server never issued.
var errUnknownSession = errors.New("unknown session")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_load", "track_detect_frame").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies overrides to the processor's tunables
//  3. Loads frames (from cache for the frame_* tools)
//  4. Calls the appropriate imaging/detection/pipeline function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Frame Inspection
	case "frame_load":
		return s.handleFrameLoad(args)
	case "frame_edge_mask":
		return s.handleFrameEdgeMask(args)
	case "frame_detect_segments":
		return s.handleFrameDetectSegments(args)
	case "frame_track_candidates":
		return s.handleFrameTrackCandidates(args)
	case "frame_stamp_regions":
		return s.handleFrameStampRegions(args)
	case "frame_release":
		return s.handleFrameRelease(args)

	// Track Detection
	case "track_detect_frame":
		return s.handleTrackDetectFrame(ctx, args)
	case "track_process_sequence":
		return s.handleTrackProcessSequence(ctx, args)
	case "track_session_reset":
		return s.handleTrackSessionReset(args)
	case "track_session_close":
		return s.handleTrackSessionClose(args)
	case "track_config":
		return s.handleTrackConfig()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Frame Inspection Handlers ===

type framePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameLoad(args json.RawMessage) (interface{}, error) {
	var a framePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// edgeMask loads a cached frame and reduces it to its edge mask.
func (s *Server) edgeMask(path string, opts imaging.EdgeOptions) (*image.Gray, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeMask(img, opts)
}

type frameEdgeMaskArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
}

func (s *Server) handleFrameEdgeMask(args json.RawMessage) (interface{}, error) {
	var a frameEdgeMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := s.proc.Params().Edge
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold must be within [0, 255], got %d", *a.Threshold)
		}
		opts.Threshold = uint8(*a.Threshold)
	}
	mask, err := s.edgeMask(a.Path, opts)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeEdgeMask(mask)
}

type frameDetectSegmentsArgs struct {
	Path     string `json:"path"`
	MaxLines *int   `json:"max_lines"`
}

func (s *Server) handleFrameDetectSegments(args json.RawMessage) (interface{}, error) {
	var a frameDetectSegmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := s.proc.Params()
	if a.MaxLines != nil {
		if *a.MaxLines < 0 {
			return nil, fmt.Errorf("max_lines must not be negative, got %d", *a.MaxLines)
		}
		params.Hough.MaxLines = *a.MaxLines
	}
	mask, err := s.edgeMask(a.Path, params.Edge)
	if err != nil {
		return nil, err
	}
	segs := detection.DetectSegments(mask, params.Hough)
	if segs == nil {
		segs = []geometry.Segment{}
	}
	return &detection.SegmentsResult{Segments: segs, Count: len(segs)}, nil
}

// TrackCandidatesResult explains the rail start search on one frame.
type TrackCandidatesResult struct {
	Segments   int                        `json:"segments"`
	Candidates []detection.TrackCandidate `json:"candidates"`
	Failure    detection.FailureKind      `json:"failure"`
	Left       *detection.TrackCandidate  `json:"left,omitempty"`
	Right      *detection.TrackCandidate  `json:"right,omitempty"`
	Spacing    float64                    `json:"spacing,omitempty"`
}

func (s *Server) handleFrameTrackCandidates(args json.RawMessage) (interface{}, error) {
	var a framePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := s.proc.Params()
	mask, err := s.edgeMask(a.Path, params.Edge)
	if err != nil {
		return nil, err
	}

	segs := detection.DetectSegments(mask, params.Hough)
	res := &TrackCandidatesResult{
		Segments:   len(segs),
		Candidates: []detection.TrackCandidate{},
		Failure:    detection.FailureNoSegments,
	}
	if len(segs) == 0 {
		return res, nil
	}

	b := mask.Bounds()
	if cands := detection.NewLocator(params.Locator).Locate(b.Dx(), b.Dy(), segs); cands != nil {
		res.Candidates = cands
	}
	left, right, kind := detection.SelectRailPair(res.Candidates, params.SpacingMin, params.SpacingMax)
	res.Failure = kind
	if kind == detection.FailureNone {
		res.Left, res.Right = &left, &right
		res.Spacing = right.Point.X - left.Point.X
	}
	return res, nil
}

type frameStampRegionsArgs struct {
	Path          string   `json:"path"`
	MinConfidence *float64 `json:"min_confidence"`
}

func (s *Server) handleFrameStampRegions(args json.RawMessage) (interface{}, error) {
	var a frameStampRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := s.proc.Params().Stamp
	if a.MinConfidence != nil {
		opts.MinConfidence = *a.MinConfidence
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	regions := detection.LocateStamps(img, opts)
	if regions == nil {
		regions = []detection.StampRegion{}
	}
	return map[string]interface{}{
		"regions": regions,
		"count":   len(regions),
	}, nil
}

type frameReleaseArgs struct {
	Path string `json:"path"`
}

// handleFrameRelease drops one cached frame, or every cached frame when no
// path is given.
func (s *Server) handleFrameRelease(args json.RawMessage) (interface{}, error) {
	var a frameReleaseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	before := s.cache.Len()
	if a.Path == "" {
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
	}
	cached := s.cache.Len()
	released := before - cached
	if released < 0 {
		released = 0
	}
	return map[string]interface{}{
		"released": released,
		"cached":   cached,
	}, nil
}

// === Track Detection Handlers ===

// session returns the session with the given id.
func (s *Server) session(id string) (*pipeline.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownSession, id)
	}
	return sess, nil
}

// newSession starts and registers a session.
func (s *Server) newSession() (*pipeline.Session, error) {
	sess, err := pipeline.NewSession(s.proc)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

type trackDetectFrameArgs struct {
	Path      string `json:"path"`
	SessionID string `json:"session_id"`
	Overlay   bool   `json:"overlay"`
}

// TrackDetectFrameResult is a frame result tagged with its session.
type TrackDetectFrameResult struct {
	SessionID string `json:"session_id"`
	*pipeline.FrameResult
	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`
}

func (s *Server) handleTrackDetectFrame(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a trackDetectFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var sess *pipeline.Session
	if a.SessionID != "" {
		var err error
		if sess, err = s.session(a.SessionID); err != nil {
			return nil, err
		}
	}

	// Session frames are seen once, so they bypass the cache.
	img, err := imaging.OpenFrame(a.Path)
	if err != nil {
		if sess != nil {
			sess.Skip(err)
		}
		return nil, err
	}

	if sess == nil {
		if sess, err = s.newSession(); err != nil {
			return nil, err
		}
	}

	res, err := sess.Process(ctx, img)
	if err != nil {
		return nil, err
	}

	out := &TrackDetectFrameResult{SessionID: sess.ID, FrameResult: res}
	if a.Overlay {
		if out.Overlay, err = imaging.EncodeOverlay(img, res.OverlayData()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type trackProcessSequenceArgs struct {
	Path          string `json:"path"`
	IncludeFrames bool   `json:"include_frames"`
}

// SequenceResult summarizes a processed frame sequence.
type SequenceResult struct {
	Summary pipeline.Summary       `json:"summary"`
	Frames  []pipeline.FrameRecord `json:"frames,omitempty"`
}

func (s *Server) handleTrackProcessSequence(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a trackProcessSequenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	frames, err := source.Open(a.Path)
	if err != nil {
		return nil, err
	}
	defer frames.Close()

	// The run owns its session; it is never registered with the server.
	sess, err := pipeline.NewSession(s.proc)
	if err != nil {
		return nil, err
	}
	rep, err := pipeline.Run(ctx, sess, frames, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", a.Path, err)
	}

	out := &SequenceResult{Summary: rep.Summary()}
	if a.IncludeFrames {
		out.Frames = rep.Records
	}
	return out, nil
}

type trackSessionResetArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleTrackSessionReset(args json.RawMessage) (interface{}, error) {
	var a trackSessionResetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.session(a.SessionID)
	if err != nil {
		return nil, err
	}
	sess.Reset()
	return map[string]interface{}{
		"session_id": sess.ID,
		"frames":     sess.Frames(),
	}, nil
}

type trackSessionCloseArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleTrackSessionClose(args json.RawMessage) (interface{}, error) {
	var a trackSessionCloseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.mu.Lock()
	sess, ok := s.sessions[a.SessionID]
	delete(s.sessions, a.SessionID)
	open := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownSession, a.SessionID)
	}
	log.Debug("session closed", "session", sess.ID, "frames", sess.Frames())
	return map[string]interface{}{
		"session_id": sess.ID,
		"frames":     sess.Frames(),
		"sessions":   open,
	}, nil
}

// ConfigResult shows the processor's effective settings.
type ConfigResult struct {
	Params             pipeline.Params `json:"params"`
	TramEnabled        bool            `json:"tram_enabled"`
	PedestriansEnabled bool            `json:"pedestrians_enabled"`
	Sessions           int             `json:"sessions"`
}

func (s *Server) handleTrackConfig() (interface{}, error) {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	return &ConfigResult{
		Params:             s.proc.Params(),
		TramEnabled:        s.proc.TramEnabled(),
		PedestriansEnabled: s.proc.PedestriansEnabled(),
		Sessions:           n,
	}, nil
}
