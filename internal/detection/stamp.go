package detection

import (
	"image"
	"math"
	"sort"
)

// StampRegion is a frame area that likely holds burnt-in camera text such
// as a date and time stamp.
type StampRegion struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
}

// StampOptions limits where stamps are looked for.
type StampOptions struct {
	// BandFraction is the share of frame height, at the top and at the
	// bottom, that is searched.
	BandFraction float64 `json:"band_fraction"`
	// MinConfidence discards weaker regions.
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultStampOptions searches the top and bottom sixth of the frame.
func DefaultStampOptions() StampOptions {
	return StampOptions{BandFraction: 1.0 / 6, MinConfidence: 0.3}
}

// LocateStamps finds text-like regions in the top and bottom bands of a
// frame, strongest first.
//
// Windows of several text sizes slide over each band. A window qualifies
// when its edge density is moderate and its edge runs are mostly horizontal;
// overlapping windows are merged.
func LocateStamps(img image.Image, opts StampOptions) []StampRegion {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	edges := stampEdges(img, width, height)

	band := int(math.Ceil(opts.BandFraction * float64(height)))
	bands := [][2]int{{0, band}, {height - band, height}}

	windowSizes := []struct{ w, h int }{
		{80, 16},
		{120, 24},
		{160, 32},
	}

	candidates := make([]StampRegion, 0)
	for _, rows := range bands {
		for _, ws := range windowSizes {
			if ws.h > rows[1]-rows[0] {
				continue
			}
			stepX, stepY := ws.w/2, ws.h/2
			for y := rows[0]; y <= rows[1]-ws.h; y += stepY {
				for x := 0; x <= width-ws.w; x += stepX {
					edgeCount := 0
					for wy := 0; wy < ws.h; wy++ {
						for wx := 0; wx < ws.w; wx++ {
							if edges[y+wy][x+wx] {
								edgeCount++
							}
						}
					}

					density := float64(edgeCount) / float64(ws.w*ws.h)
					if density < 0.05 || density > 0.4 {
						continue
					}
					confidence := horizontalScore(edges, x, y, ws.w, ws.h) * (1.0 - math.Abs(density-0.2)/0.2)
					if confidence < opts.MinConfidence {
						continue
					}
					candidates = append(candidates, StampRegion{
						Bounds: Bounds{
							X1: x + bounds.Min.X,
							Y1: y + bounds.Min.Y,
							X2: x + ws.w + bounds.Min.X,
							Y2: y + ws.h + bounds.Min.Y,
						},
						Confidence: math.Round(confidence*1000) / 1000,
					})
				}
			}
		}
	}

	merged := mergeStampRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// stampEdges marks pixels whose gray level differs from the right or lower
// neighbour by more than 30.
func stampEdges(img image.Image, width, height int) [][]bool {
	bounds := img.Bounds()
	edges := make([][]bool, height)
	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width-1; x++ {
			if y == height-1 {
				continue
			}
			c := grayValue(img, x+bounds.Min.X, y+bounds.Min.Y)
			cx := grayValue(img, x+1+bounds.Min.X, y+bounds.Min.Y)
			cy := grayValue(img, x+bounds.Min.X, y+1+bounds.Min.Y)
			if math.Abs(c-cx) > 30 || math.Abs(c-cy) > 30 {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 weights.
func grayValue(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114
}

// horizontalScore is the share of edge runs that are horizontal.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns, verticalRuns := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

func mergeStampRegions(regions []StampRegion) []StampRegion {
	merged := make([]StampRegion, 0, len(regions))
	for _, r := range regions {
		found := false
		for i := range merged {
			if regionsOverlap(r.Bounds, merged[i].Bounds) {
				merged[i].Bounds = mergeBounds(r.Bounds, merged[i].Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, r)
		}
	}
	return merged
}
