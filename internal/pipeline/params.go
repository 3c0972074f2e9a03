package pipeline

import (
	"fmt"

	"github.com/ironsheep/tram-track-mcp/internal/detection"
	"github.com/ironsheep/tram-track-mcp/internal/features"
	"github.com/ironsheep/tram-track-mcp/internal/imaging"
)

// Params holds every tunable of the detection chain.
type Params struct {
	Edge    imaging.EdgeOptions     `json:"edge"`
	Hough   detection.HoughOptions  `json:"hough"`
	Locator detection.LocatorConfig `json:"locator"`
	Grower  detection.GrowerConfig  `json:"grower"`

	// SpacingMin and SpacingMax bound the accepted distance between the two
	// rail starts, exclusive.
	SpacingMin float64 `json:"track_spacing_min"`
	SpacingMax float64 `json:"track_spacing_max"`

	Features   features.Config            `json:"features"`
	Pedestrian detection.PedestrianConfig `json:"pedestrian"`
	Stamp      detection.StampOptions     `json:"stamp"`

	// TramCascade and PedestrianCascade are Haar cascade files. An empty
	// path disables that detector.
	TramCascade       string `json:"tram_cascade,omitempty"`
	PedestrianCascade string `json:"pedestrian_cascade,omitempty"`
}

// DefaultParams returns the settings tuned for the tram camera.
func DefaultParams() Params {
	return Params{
		Edge:       imaging.DefaultEdgeOptions(),
		Hough:      detection.DefaultHoughOptions(),
		Locator:    detection.DefaultLocatorConfig(),
		Grower:     detection.DefaultGrowerConfig(),
		SpacingMin: 100,
		SpacingMax: 175,
		Features:   features.DefaultConfig(),
		Pedestrian: detection.DefaultPedestrianConfig(),
		Stamp:      detection.DefaultStampOptions(),
	}
}

// Validate checks the settings for values the detection chain cannot use.
func (p Params) Validate() error {
	if err := p.Grower.Validate(); err != nil {
		return err
	}
	if err := p.Features.Validate(); err != nil {
		return err
	}
	if p.Edge.GradientScale <= 0 {
		return fmt.Errorf("gradient scale must be positive, got %g", p.Edge.GradientScale)
	}
	if !unit(p.Edge.HorizonFraction) || !unit(p.Edge.WedgeFraction) {
		return fmt.Errorf("horizon and wedge fractions must be within [0, 1], got %g and %g",
			p.Edge.HorizonFraction, p.Edge.WedgeFraction)
	}
	if p.Hough.ThetaBins <= 0 || p.Hough.Threshold <= 0 {
		return fmt.Errorf("hough theta bins and threshold must be positive, got %d and %d",
			p.Hough.ThetaBins, p.Hough.Threshold)
	}
	if p.Hough.MinLineLength < 0 || p.Hough.MaxLineGap < 0 || p.Hough.MaxLines < 0 {
		return fmt.Errorf("hough line length, gap and cap must not be negative")
	}
	if p.Locator.WindowWidth <= 0 {
		return fmt.Errorf("locator window width must be positive, got %g", p.Locator.WindowWidth)
	}
	if p.Locator.ScanRowOffset < 0 {
		return fmt.Errorf("scan row offset must not be negative, got %d", p.Locator.ScanRowOffset)
	}
	if p.SpacingMin >= p.SpacingMax {
		return fmt.Errorf("track spacing range is empty: (%g, %g)", p.SpacingMin, p.SpacingMax)
	}
	if p.Pedestrian.Rows < 0 {
		return fmt.Errorf("pedestrian rows must not be negative, got %d", p.Pedestrian.Rows)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
