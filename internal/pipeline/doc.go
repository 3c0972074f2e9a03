// Package pipeline runs the per-frame detection chain and keeps the state
// that lives across frames.
//
// A [Processor] is stateless between frames: it turns one image into a
// [FrameResult] holding the edge mask, the line segments, the rail start
// candidates, the grown rails and the object detections. Rail preprocessing,
// tram detection and stamp reading run in parallel and are joined before the
// rail search continues. A [Session] owns the frame counter and the
// [features.Aggregator], so it decides which features are fresh, stale or
// lost. A [Report] collects per-frame records of a session, and [Run] drives
// a session over a whole frame source.
package pipeline
