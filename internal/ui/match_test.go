package ui

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// ─── Test Helpers ────────────────────────────────────────────────────────

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func blit(dst, src *image.RGBA, x, y int) {
	r := src.Bounds().Add(image.Pt(x, y))
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

var (
	gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	red  = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// ─── Tests ───────────────────────────────────────────────────────────────

func TestFindTemplateExactMatch(t *testing.T) {
	haystack := solid(100, 80, gray)
	needle := solid(10, 10, red)
	blit(haystack, needle, 30, 20)

	m, found := findTemplate(haystack, needle, 1.0)
	if !found {
		t.Fatal("findTemplate() found = false, want true")
	}
	want := Match{Left: 30, Top: 20, Width: 10, Height: 10}
	if m != want {
		t.Errorf("findTemplate() = %+v, want %+v", m, want)
	}
	if x, y := m.Center(); x != 35 || y != 25 {
		t.Errorf("Center() = (%d, %d), want (35, 25)", x, y)
	}
}

func TestFindTemplateAbsent(t *testing.T) {
	haystack := solid(100, 80, gray)
	needle := solid(10, 10, red)

	if _, found := findTemplate(haystack, needle, 0.8); found {
		t.Error("findTemplate() found a template that is not present")
	}
}

func TestFindTemplateConfidenceThreshold(t *testing.T) {
	// The on-screen region differs from the template by 10 in the red
	// channel only: a faint mismatch that a loose threshold accepts and
	// a strict one rejects.
	haystack := solid(100, 80, gray)
	patch := solid(10, 10, color.RGBA{R: 210, G: 30, B: 30, A: 255})
	blit(haystack, patch, 30, 20)
	needle := solid(10, 10, red)

	if _, found := findTemplate(haystack, needle, 0.95); !found {
		t.Error("findTemplate(0.95) found = false, want true")
	}
	if _, found := findTemplate(haystack, needle, 0.995); found {
		t.Error("findTemplate(0.995) found = true, want false")
	}
}

func TestFindTemplateNeedleLargerThanHaystack(t *testing.T) {
	haystack := solid(10, 10, gray)
	needle := solid(20, 20, gray)

	if _, found := findTemplate(haystack, needle, 0.8); found {
		t.Error("findTemplate() matched a needle larger than the haystack")
	}
}

func TestFindTemplateReturnsFirstMatch(t *testing.T) {
	haystack := solid(100, 20, gray)
	needle := solid(5, 5, red)
	blit(haystack, needle, 60, 5)
	blit(haystack, needle, 20, 5)

	m, found := findTemplate(haystack, needle, 1.0)
	if !found {
		t.Fatal("findTemplate() found = false, want true")
	}
	if m.Left != 20 {
		t.Errorf("Left = %d, want 20 (row-major first match)", m.Left)
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating file: %v", err)
	}
	if err := png.Encode(f, solid(8, 6, red)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing file: %v", err)
	}

	img, err := loadImage(path)
	if err != nil {
		t.Fatalf("loadImage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("bounds = %v, want 8x6", b)
	}
	if got := img.RGBAAt(3, 3); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	if _, err := loadImage(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("loadImage() error = nil, want error")
	}
}
