package detection

// FailureKind classifies why a frame produced no rail pair. Failures are
// frame-local and recoverable; they are values, not errors.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureNoSegments means the line extractor found nothing in the mask.
	FailureNoSegments
	// FailureNoCandidates means no scan position crossed any segment.
	FailureNoCandidates
	// FailureRailPair means the candidates did not form two rails with a
	// plausible gauge.
	FailureRailPair
)

var failureNames = map[FailureKind]string{
	FailureNone:         "none",
	FailureNoSegments:   "no_segments_found",
	FailureNoCandidates: "no_track_candidates",
	FailureRailPair:     "rail_pair_rejected",
}

func (k FailureKind) String() string {
	if s, ok := failureNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// StopReason records why the grower stopped extending a track. Stopping is
// the normal end of growth, never an error.
type StopReason int

const (
	// StopNoOverlap means no candidate gate covered any segment.
	StopNoOverlap StopReason = iota
	// StopTurnLimit means the best next step turned too sharply.
	StopTurnLimit
)

func (r StopReason) String() string {
	switch r {
	case StopNoOverlap:
		return "no_overlap"
	case StopTurnLimit:
		return "turn_limit"
	default:
		return "unknown"
	}
}

// MarshalText encodes the reason by name.
func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
