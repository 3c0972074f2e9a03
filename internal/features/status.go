package features

// Status describes where a reported feature value came from.
type Status int

const (
	// StatusFresh means the feature was detected in this frame.
	StatusFresh Status = iota
	// StatusStale means detection failed and an earlier value is reused.
	StatusStale
	// StatusLost means detection failed and no earlier value may be used.
	StatusLost
	// StatusDisabled means no detector is configured for the feature.
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusLost:
		return "lost"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
