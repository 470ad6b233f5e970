package capture

import (
	"errors"
	"image"
	"testing"

	"inkwell/internal/domain"
)

func TestDrawStrokesKeepsFullSurface(t *testing.T) {
	strokes := []Stroke{
		{{X: 50, Y: 50}, {X: 300, Y: 120}, {X: 550, Y: 60}},
	}
	img, err := DrawStrokes(strokes)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, DrawSurfaceWidth, DrawSurfaceHeight) {
		t.Errorf("bounds = %v, drawn strokes must not be cropped", img.Bounds())
	}
	if img.NRGBAAt(300, 120).A == 0 {
		t.Error("stroke sample point should be inked")
	}
	if img.NRGBAAt(10, 10).A != 0 {
		t.Error("area away from the strokes should stay transparent")
	}
}

func TestDrawStrokesSinglePointLeavesDot(t *testing.T) {
	img, err := DrawStrokes([]Stroke{{{X: 100, Y: 100}}})
	if err != nil {
		t.Fatal(err)
	}
	if img.NRGBAAt(100, 100).A == 0 {
		t.Error("single tap should leave a dot")
	}
}

func TestDrawStrokesRejectsOutOfBoundsPoints(t *testing.T) {
	cases := []Stroke{
		{{X: -1, Y: 10}},
		{{X: 10, Y: -1}},
		{{X: DrawSurfaceWidth + 1, Y: 10}},
		{{X: 10, Y: DrawSurfaceHeight + 1}},
	}
	for _, s := range cases {
		if _, err := DrawStrokes([]Stroke{s}); !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("stroke %v: got %v, want ErrInvalidImage", s, err)
		}
	}
}

func TestDrawStrokesEmptyInputYieldsBlankSurface(t *testing.T) {
	img, err := DrawStrokes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := contentBounds(img); ok {
		t.Error("no strokes should leave the surface fully transparent")
	}
}
