// Package config loads tuning files for the track detection chain.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ironsheep/tram-track-mcp/internal/pipeline"
)

// TuningConfig is a partial override of pipeline.Params read from JSON.
// Every field is optional; absent fields keep their defaults.
type TuningConfig struct {
	// Rail search
	GateWidth         *float64    `json:"gateWidth,omitempty"`
	MinSegmentLength  *float64    `json:"minSegmentLength,omitempty"`
	SegmentLengthStep *float64    `json:"segmentLengthStep,omitempty"`
	AngleRangeRad     *[2]float64 `json:"angleRangeRad,omitempty"`
	AngleStepRad      *float64    `json:"angleStepRad,omitempty"`
	MaxTurnAngleRad   *float64    `json:"maxTurnAngleRad,omitempty"`
	ScanRowOffsetPx   *int        `json:"scanRowOffsetPx,omitempty"`
	TrackSpacingMinPx *float64    `json:"trackSpacingMinPx,omitempty"`
	TrackSpacingMaxPx *float64    `json:"trackSpacingMaxPx,omitempty"`

	// Staleness
	ExpiryFrames *int `json:"expiryFrames,omitempty"`
	AgeBudget    *int `json:"ageBudget,omitempty"`

	// Preprocessing
	EdgeThreshold   *int     `json:"edgeThreshold,omitempty"`
	HorizonFraction *float64 `json:"horizonFraction,omitempty"`
	WedgeFraction   *float64 `json:"wedgeFraction,omitempty"`
	HoughThreshold  *int     `json:"houghThreshold,omitempty"`
	MinLineLength   *int     `json:"minLineLength,omitempty"`
	MaxLineGap      *int     `json:"maxLineGap,omitempty"`
	MaxLines        *int     `json:"maxLines,omitempty"`

	// Object detection
	PedestrianRows        *int    `json:"pedestrianRows,omitempty"`
	TramCascadePath       *string `json:"tramCascadePath,omitempty"`
	PedestrianCascadePath *string `json:"pedestrianCascadePath,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// DefaultTuningConfig returns a config with every field set from
// pipeline.DefaultParams, suitable for writing out as a template.
func DefaultTuningConfig() *TuningConfig {
	p := pipeline.DefaultParams()
	return &TuningConfig{
		GateWidth:             ptrFloat64(p.Grower.GateWidth),
		MinSegmentLength:      ptrFloat64(p.Grower.MinSegmentLength),
		SegmentLengthStep:     ptrFloat64(p.Grower.SegmentLengthStep),
		AngleRangeRad:         &[2]float64{p.Grower.AngleMin, p.Grower.AngleMax},
		AngleStepRad:          ptrFloat64(p.Grower.AngleStep),
		MaxTurnAngleRad:       ptrFloat64(p.Grower.MaxTurnAngle),
		ScanRowOffsetPx:       ptrInt(p.Locator.ScanRowOffset),
		TrackSpacingMinPx:     ptrFloat64(p.SpacingMin),
		TrackSpacingMaxPx:     ptrFloat64(p.SpacingMax),
		ExpiryFrames:          ptrInt(p.Features.ExpiryFrames),
		AgeBudget:             ptrInt(p.Features.AgeBudget),
		EdgeThreshold:         ptrInt(int(p.Edge.Threshold)),
		HorizonFraction:       ptrFloat64(p.Edge.HorizonFraction),
		WedgeFraction:         ptrFloat64(p.Edge.WedgeFraction),
		HoughThreshold:        ptrInt(p.Hough.Threshold),
		MinLineLength:         ptrInt(p.Hough.MinLineLength),
		MaxLineGap:            ptrInt(p.Hough.MaxLineGap),
		MaxLines:              ptrInt(p.Hough.MaxLines),
		PedestrianRows:        ptrInt(p.Pedestrian.Rows),
		TramCascadePath:       ptrString(p.TramCascade),
		PedestrianCascadePath: ptrString(p.PedestrianCascade),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1 MiB. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := &TuningConfig{}
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set, then the combination with the
// defaults.
func (c *TuningConfig) Validate() error {
	if c.GateWidth != nil && *c.GateWidth <= 0 {
		return fmt.Errorf("gateWidth must be positive, got %g", *c.GateWidth)
	}
	if c.MinSegmentLength != nil && *c.MinSegmentLength < 0 {
		return fmt.Errorf("minSegmentLength must not be negative, got %g", *c.MinSegmentLength)
	}
	if c.SegmentLengthStep != nil && *c.SegmentLengthStep <= 0 {
		return fmt.Errorf("segmentLengthStep must be positive, got %g", *c.SegmentLengthStep)
	}
	if c.AngleStepRad != nil && *c.AngleStepRad <= 0 {
		return fmt.Errorf("angleStepRad must be positive, got %g", *c.AngleStepRad)
	}
	if r := c.AngleRangeRad; r != nil {
		if r[0] > r[1] {
			return fmt.Errorf("angleRangeRad is inverted: [%g, %g]", r[0], r[1])
		}
		if r[0] <= -math.Pi/2 || r[1] >= math.Pi/2 {
			return fmt.Errorf("angleRangeRad must stay within (-pi/2, pi/2), got [%g, %g]", r[0], r[1])
		}
	}
	if c.MaxTurnAngleRad != nil && *c.MaxTurnAngleRad < 0 {
		return fmt.Errorf("maxTurnAngleRad must not be negative, got %g", *c.MaxTurnAngleRad)
	}
	if c.ScanRowOffsetPx != nil && *c.ScanRowOffsetPx < 0 {
		return fmt.Errorf("scanRowOffsetPx must not be negative, got %d", *c.ScanRowOffsetPx)
	}
	if c.ExpiryFrames != nil && *c.ExpiryFrames < 0 {
		return fmt.Errorf("expiryFrames must not be negative, got %d", *c.ExpiryFrames)
	}
	if c.AgeBudget != nil && *c.AgeBudget < 0 {
		return fmt.Errorf("ageBudget must not be negative, got %d", *c.AgeBudget)
	}
	if c.EdgeThreshold != nil && (*c.EdgeThreshold < 0 || *c.EdgeThreshold > 255) {
		return fmt.Errorf("edgeThreshold must be between 0 and 255, got %d", *c.EdgeThreshold)
	}
	if c.HorizonFraction != nil && (*c.HorizonFraction < 0 || *c.HorizonFraction > 1) {
		return fmt.Errorf("horizonFraction must be between 0 and 1, got %g", *c.HorizonFraction)
	}
	if c.WedgeFraction != nil && (*c.WedgeFraction < 0 || *c.WedgeFraction > 1) {
		return fmt.Errorf("wedgeFraction must be between 0 and 1, got %g", *c.WedgeFraction)
	}

	p := pipeline.DefaultParams()
	c.Apply(&p)
	return p.Validate()
}

// Apply overwrites the fields of p that are set in c.
//
// gateWidth sets both the growth gate and the rail start probe, which have
// the same width. When expiryFrames is set without ageBudget, the budget
// follows the expiry window.
func (c *TuningConfig) Apply(p *pipeline.Params) {
	if c.GateWidth != nil {
		p.Grower.GateWidth = *c.GateWidth
		p.Locator.WindowWidth = *c.GateWidth
	}
	if c.MinSegmentLength != nil {
		p.Grower.MinSegmentLength = *c.MinSegmentLength
	}
	if c.SegmentLengthStep != nil {
		p.Grower.SegmentLengthStep = *c.SegmentLengthStep
	}
	if c.AngleRangeRad != nil {
		p.Grower.AngleMin, p.Grower.AngleMax = c.AngleRangeRad[0], c.AngleRangeRad[1]
	}
	if c.AngleStepRad != nil {
		p.Grower.AngleStep = *c.AngleStepRad
	}
	if c.MaxTurnAngleRad != nil {
		p.Grower.MaxTurnAngle = *c.MaxTurnAngleRad
	}
	if c.ScanRowOffsetPx != nil {
		p.Locator.ScanRowOffset = *c.ScanRowOffsetPx
	}
	if c.TrackSpacingMinPx != nil {
		p.SpacingMin = *c.TrackSpacingMinPx
	}
	if c.TrackSpacingMaxPx != nil {
		p.SpacingMax = *c.TrackSpacingMaxPx
	}
	if c.ExpiryFrames != nil {
		p.Features.ExpiryFrames = *c.ExpiryFrames
		p.Features.AgeBudget = *c.ExpiryFrames
	}
	if c.AgeBudget != nil {
		p.Features.AgeBudget = *c.AgeBudget
	}
	if c.EdgeThreshold != nil {
		p.Edge.Threshold = uint8(*c.EdgeThreshold)
	}
	if c.HorizonFraction != nil {
		p.Edge.HorizonFraction = *c.HorizonFraction
	}
	if c.WedgeFraction != nil {
		p.Edge.WedgeFraction = *c.WedgeFraction
	}
	if c.HoughThreshold != nil {
		p.Hough.Threshold = *c.HoughThreshold
	}
	if c.MinLineLength != nil {
		p.Hough.MinLineLength = *c.MinLineLength
	}
	if c.MaxLineGap != nil {
		p.Hough.MaxLineGap = *c.MaxLineGap
	}
	if c.MaxLines != nil {
		p.Hough.MaxLines = *c.MaxLines
	}
	if c.PedestrianRows != nil {
		p.Pedestrian.Rows = *c.PedestrianRows
	}
	if c.TramCascadePath != nil {
		p.TramCascade = *c.TramCascadePath
	}
	if c.PedestrianCascadePath != nil {
		p.PedestrianCascade = *c.PedestrianCascadePath
	}
}

// Params returns pipeline.DefaultParams with c applied.
func (c *TuningConfig) Params() pipeline.Params {
	p := pipeline.DefaultParams()
	if c != nil {
		c.Apply(&p)
	}
	return p
}

// LoadParams reads a tuning file and returns the resulting parameters. An
// empty path yields the defaults.
func LoadParams(path string) (pipeline.Params, error) {
	if path == "" {
		return pipeline.DefaultParams(), nil
	}
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		return pipeline.Params{}, err
	}
	return cfg.Params(), nil
}
