package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tram-track-mcp/internal/features"
)

func TestReport_Summary(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	report := NewReport(s.ID)

	for i, frame := range []string{"rails", "rails", "dark", "broken"} {
		var (
			res *FrameResult
			err error
		)
		switch frame {
		case "rails":
			res, err = s.Process(ctx, railFrame())
		case "dark":
			res, err = s.Process(ctx, darkFrame())
		default:
			err = errors.New("decode failed")
		}
		report.Add(i+1, frame+".png", res, err)
	}

	sum := report.Summary()
	assert.Equal(t, 4, sum.Frames)
	assert.Equal(t, 1, sum.Errors)
	assert.Equal(t, 2, sum.Fresh)
	assert.Equal(t, 1, sum.Stale)
	assert.Equal(t, 0, sum.Lost)
	assert.Equal(t, map[string]int{"no_segments_found": 1}, sum.Failures)
	assert.InDelta(t, 140, sum.MeanSpacing, 1e-9)
	assert.InDelta(t, 0, sum.SpacingStdDev, 1e-9)
	assert.Greater(t, sum.MeanTrackLength, 0.0)

	rec := report.Records[0]
	assert.Equal(t, features.StatusFresh, rec.TrackStatus)
	assert.InDelta(t, 140, rec.Spacing, 1e-9)
	assert.Equal(t, "decode failed", report.Records[3].Error)
}

func TestReport_Empty(t *testing.T) {
	sum := NewReport("x").Summary()
	assert.Zero(t, sum.Frames)
	assert.Zero(t, sum.MeanSpacing)
	assert.Empty(t, sum.Failures)
}

func TestReport_WriteJSON(t *testing.T) {
	report := NewReport("abc")
	report.Add(1, "f.png", nil, errors.New("boom"))

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded["session_id"])
	assert.Len(t, decoded["frames"], 1)
	require.Contains(t, decoded, "summary")
	assert.EqualValues(t, 1, decoded["summary"].(map[string]any)["errors"])
}
