package ui

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	// Template images are PNG screenshots of the target controls.
	_ "image/png"
)

// loadImage reads and decodes a template image into RGBA form.
func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding template %s: %w", path, err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return rgba, nil
}

// findTemplate scans haystack for the first window matching needle.
//
// The score for a window is the mean absolute per-channel difference over
// RGB, normalised to [0, 1]; a window matches when 1 - score >= confidence.
// The scan walks row-major and returns the first match, with the running
// difference compared against the confidence budget so non-matching
// windows are abandoned early. Deliberately no scaling, rotation or
// multi-scale pyramids: the templates are pixel-exact screenshots of the
// application being driven.
func findTemplate(haystack, needle *image.RGBA, confidence float64) (Match, bool) {
	hb := haystack.Bounds()
	nb := needle.Bounds()
	hw, hh := hb.Dx(), hb.Dy()
	nw, nh := nb.Dx(), nb.Dy()

	if nw == 0 || nh == 0 || nw > hw || nh > hh {
		return Match{}, false
	}

	// Total absolute difference allowed for a window to still match.
	budget := int64((1.0 - confidence) * 255.0 * float64(nw*nh*3))

	for y := 0; y <= hh-nh; y++ {
		for x := 0; x <= hw-nw; x++ {
			if windowWithinBudget(haystack, needle, x, y, nw, nh, budget) {
				return Match{Left: hb.Min.X + x, Top: hb.Min.Y + y, Width: nw, Height: nh}, true
			}
		}
	}
	return Match{}, false
}

// windowWithinBudget accumulates the RGB difference of one candidate
// window, bailing out as soon as the budget is exceeded.
func windowWithinBudget(haystack, needle *image.RGBA, x, y, nw, nh int, budget int64) bool {
	hb := haystack.Bounds()
	nb := needle.Bounds()

	var diff int64
	for ty := 0; ty < nh; ty++ {
		hOff := haystack.PixOffset(hb.Min.X+x, hb.Min.Y+y+ty)
		nOff := needle.PixOffset(nb.Min.X, nb.Min.Y+ty)
		hRow := haystack.Pix[hOff:]
		nRow := needle.Pix[nOff:]

		for tx := 0; tx < nw; tx++ {
			// Alpha is ignored: captures are opaque.
			diff += absDiff(hRow[tx*4], nRow[tx*4])
			diff += absDiff(hRow[tx*4+1], nRow[tx*4+1])
			diff += absDiff(hRow[tx*4+2], nRow[tx*4+2])
		}
		if diff > budget {
			return false
		}
	}
	return true
}

func absDiff(a, b uint8) int64 {
	if a > b {
		return int64(a - b)
	}
	return int64(b - a)
}
