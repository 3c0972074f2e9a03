package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/tram-track-mcp/internal/geometry"
)

// HoughOptions tunes line segment extraction.
type HoughOptions struct {
	// ThetaBins is the number of angle bins over [0, pi).
	ThetaBins int `json:"theta_bins"`
	// Threshold is the minimum number of votes for a line.
	Threshold int `json:"threshold"`
	// MinLineLength is the shortest segment reported, in pixels.
	MinLineLength int `json:"min_line_length"`
	// MaxLineGap is the longest run of missing pixels bridged within one
	// segment.
	MaxLineGap int `json:"max_line_gap"`
	// MaxLines caps the number of segments returned.
	MaxLines int `json:"max_lines"`
}

// DefaultHoughOptions returns the extractor settings used for rail edges.
func DefaultHoughOptions() HoughOptions {
	return HoughOptions{
		ThetaBins:     180,
		Threshold:     20,
		MinLineLength: 50,
		MaxLineGap:    3,
		MaxLines:      100,
	}
}

// lineTolerance is how far, in pixels, an edge pixel may sit from a peak's
// line and still be attributed to it.
const lineTolerance = 2.0

// SegmentsResult contains extracted segments.
type SegmentsResult struct {
	Segments []geometry.Segment `json:"segments"`
	Count    int                `json:"count"`
}

type houghPeak struct {
	rho   int
	theta int
	votes int
}

// DetectSegments extracts straight segments from a binary edge mask.
//
// Edge pixels vote in a (rho, theta) accumulator. Local maxima with at least
// Threshold votes are visited strongest first; each one collects the not yet
// used edge pixels near its line, splits them into runs wherever more than
// MaxLineGap pixels are missing, and reports every run of at least
// MinLineLength pixels as a segment with endpoints snapped onto the line and
// rounded to whole pixels. Pixels of reported runs are consumed so one edge
// never yields two segments. The result is deterministic.
func DetectSegments(mask *image.Gray, opts HoughOptions) []geometry.Segment {
	if opts.ThetaBins <= 0 {
		opts.ThetaBins = 180
	}
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()

	type edgePoint struct{ x, y int }
	points := make([]edgePoint, 0)
	for y := 0; y < height; y++ {
		row := mask.Pix[(y)*mask.Stride : (y)*mask.Stride+width]
		for x, v := range row {
			if v != 0 {
				points = append(points, edgePoint{x, y})
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	cosT := make([]float64, opts.ThetaBins)
	sinT := make([]float64, opts.ThetaBins)
	for t := range cosT {
		angle := float64(t) * math.Pi / float64(opts.ThetaBins)
		sinT[t], cosT[t] = math.Sincos(angle)
	}

	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	rhoBins := 2*maxDist + 1
	accumulator := make([]int, rhoBins*opts.ThetaBins)
	for _, p := range points {
		for t := 0; t < opts.ThetaBins; t++ {
			rho := int(math.Round(float64(p.x)*cosT[t]+float64(p.y)*sinT[t])) + maxDist
			accumulator[rho*opts.ThetaBins+t]++
		}
	}
	votes := func(r, t int) int { return accumulator[r*opts.ThetaBins+t] }

	peaks := make([]houghPeak, 0)
	for r := 0; r < rhoBins; r++ {
		for t := 0; t < opts.ThetaBins; t++ {
			v := votes(r, t)
			if v < opts.Threshold || v == 0 {
				continue
			}
			// Check if local maximum in a 5x5 neighbourhood
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					nr, nt := r+dr, t+dt
					if (dr == 0 && dt == 0) || nr < 0 || nr >= rhoBins || nt < 0 || nt >= opts.ThetaBins {
						continue
					}
					if votes(nr, nt) > v {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, houghPeak{rho: r - maxDist, theta: t, votes: v})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	used := make([]bool, len(points))
	segments := make([]geometry.Segment, 0)

	type onLine struct {
		idx int
		t   float64
	}
	for _, peak := range peaks {
		if opts.MaxLines > 0 && len(segments) >= opts.MaxLines {
			break
		}
		cosA, sinA := cosT[peak.theta], sinT[peak.theta]
		rho := float64(peak.rho)

		near := make([]onLine, 0)
		for i, p := range points {
			if used[i] {
				continue
			}
			x, y := float64(p.x), float64(p.y)
			if math.Abs(x*cosA+y*sinA-rho) < lineTolerance {
				near = append(near, onLine{idx: i, t: -x*sinA + y*cosA})
			}
		}
		if len(near) < opts.Threshold || len(near) == 0 {
			continue
		}
		sort.SliceStable(near, func(i, j int) bool { return near[i].t < near[j].t })

		emit := func(run []onLine) {
			if opts.MaxLines > 0 && len(segments) >= opts.MaxLines {
				return
			}
			t0, t1 := run[0].t, run[len(run)-1].t
			if t1-t0 < float64(opts.MinLineLength) {
				return
			}
			for _, o := range run {
				used[o.idx] = true
			}
			at := func(t float64) geometry.Point {
				return geometry.Pt(rho*cosA-t*sinA, rho*sinA+t*cosA).Round()
			}
			segments = append(segments, geometry.Segment{P1: at(t0), P2: at(t1)})
		}

		start := 0
		for i := 1; i < len(near); i++ {
			if near[i].t-near[i-1].t > float64(opts.MaxLineGap)+1 {
				emit(near[start:i])
				start = i
			}
		}
		emit(near[start:])
	}

	return segments
}
