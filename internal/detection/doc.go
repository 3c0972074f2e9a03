// Package detection finds rails and obstacles in a preprocessed tram camera
// frame.
//
// The rail search runs in three stages, each a plain function of its inputs:
//
//  1. Segment extraction: [DetectSegments] runs a probabilistic Hough
//     transform over a binary edge mask and returns straight line segments.
//  2. Seeding: a [Locator] scans a single row just above the bottom of the
//     frame for the positions crossed by the most segments and returns at
//     most [RailCount] candidates. [SelectRailPair] accepts them as a rail
//     pair when exactly two are found at a plausible gauge.
//  3. Growth: a [Grower] follows each rail from its seed. Every step sweeps
//     a rectangular [Gate] over a range of angles and lengths, keeps the
//     gate covering the most segment length, and moves to the gate's far
//     end. Growth stops when nothing is covered or the track would turn
//     too sharply.
//
// Failures of the rail search are values ([FailureKind], [StopReason]), not
// errors: a frame without visible rails is an ordinary outcome.
//
// # Objects
//
// [TramDetector] and [PedestrianDetector] wrap a [Classifier]. The OpenCV
// cascade implementation is only compiled with the gocv build tag; without it
// [NewCascadeClassifier] returns [ErrClassifierUnavailable]. Pedestrians are
// searched in a band around the rails, downscaled to a fixed height first.
//
// [LocateStamps] finds burnt-in date and time text at the top or bottom of a
// frame so it can be read by the OCR package.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward, so a rail grows towards smaller Y
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
package detection
