package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRailFrames(t *testing.T, dir string, n int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			c := color.RGBA{20, 20, 20, 255}
			if (x >= 250 && x < 255) || (x >= 390 && x < 395) {
				c = color.RGBA{240, 240, 240, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	for i := 1; i <= n; i++ {
		f, err := os.Create(filepath.Join(dir, "frame_"+string(rune('0'+i))+".png"))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Equal(t, "tramtrack dev\n", out.String())
}

func TestRun_SourceRequired(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "-frames or -video")

	err = run(context.Background(), []string{"-frames", t.TempDir(), "-video", "x.mp4"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "not both")
}

func TestRun_UnexpectedArguments(t *testing.T) {
	err := run(context.Background(), []string{"-frames", t.TempDir(), "extra"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unexpected arguments")
}

func TestRun_BadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"gateWidth": -1}`), 0o644))

	err := run(context.Background(), []string{"-frames", t.TempDir(), "-config", cfg}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_FramesToStdoutReport(t *testing.T) {
	dir := t.TempDir()
	writeRailFrames(t, dir, 3)
	outDir := filepath.Join(t.TempDir(), "overlays")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-frames", dir, "-report", "-", "-out", outDir, "-log-level", "error"}, &out)
	require.NoError(t, err)

	var rep struct {
		SessionID string `json:"session_id"`
		Frames    []struct {
			Frame       int    `json:"frame"`
			Source      string `json:"source"`
			TrackStatus string `json:"track_status"`
		} `json:"frames"`
		Summary struct {
			Frames int `json:"frames"`
			Fresh  int `json:"fresh"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))

	assert.NotEmpty(t, rep.SessionID)
	require.Len(t, rep.Frames, 3)
	assert.Equal(t, "frame_1.png", rep.Frames[0].Source)
	assert.Equal(t, 3, rep.Frames[2].Frame)
	assert.Equal(t, 3, rep.Summary.Fresh)

	overlays, err := filepath.Glob(filepath.Join(outDir, "*.png"))
	require.NoError(t, err)
	assert.Len(t, overlays, 3)
	assert.FileExists(t, filepath.Join(outDir, "000001.png"))
}

func TestRun_ReportFile(t *testing.T) {
	dir := t.TempDir()
	writeRailFrames(t, dir, 1)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-frames", dir, "-report", reportPath}, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"summary"`)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeRailFrames(t, dir, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"-frames", dir, "-report", "-"}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), `"frames": []`)
}
