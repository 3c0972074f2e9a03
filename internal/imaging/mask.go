package imaging

import "image"

// ApplyDeadZones clears the parts of a mask where a rail can never start.
//
// Rows above horizon*H are cleared entirely. Two triangles are cleared at the
// bottom corners: the left one has vertices (0,H), (wedge*W,H), (0,0) and the
// right one (W,H), ((1-wedge)*W,H), (W,0). Fractions outside [0,1] are
// clamped.
func ApplyDeadZones(mask *image.Gray, horizon, wedge float64) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	horizon = clampUnit(horizon)
	wedge = clampUnit(wedge)

	horizonRows := int(horizon * float64(h))
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		if y < horizonRows {
			clear(row)
			continue
		}
		if wedge == 0 {
			continue
		}
		// Both wedge hypotenuses run from a top corner to the wedge foot.
		reach := wedge * float64(w) * float64(y) / float64(h)
		for x := range row {
			fx := float64(x)
			if fx < reach || fx > float64(w)-reach {
				row[x] = 0
			}
		}
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
