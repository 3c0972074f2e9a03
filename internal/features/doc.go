// Package features merges the per-frame detections into one record and
// decides how long a feature may be reused when its detector misses.
//
// Each feature kind (the rail pair, the tram body, the pedestrians) has its
// own [Tracker]. A miss may fall back on the last successful value while the
// frame gap stays within the expiry window and the age budget, which is
// spent one frame at a time, lasts. After that the feature is reported as
// lost and its value is dropped; it only comes back with a fresh detection.
package features
