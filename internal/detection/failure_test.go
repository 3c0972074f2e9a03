package detection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureKind_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]any{
		"failure": FailureRailPair,
		"stop":    StopTurnLimit,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"failure":"rail_pair_rejected","stop":"turn_limit"}`, string(out))
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "none", FailureNone.String())
	assert.Equal(t, "no_segments_found", FailureNoSegments.String())
	assert.Equal(t, "no_track_candidates", FailureNoCandidates.String())
	assert.Equal(t, "unknown", FailureKind(42).String())
	assert.Equal(t, "no_overlap", StopNoOverlap.String())
	assert.Equal(t, "unknown", StopReason(9).String())
}
