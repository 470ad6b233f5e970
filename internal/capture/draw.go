// Package capture turns signer input into the transparent raster image stored
// for a field: freehand strokes rendered onto a fixed-size surface, or typed
// text rasterized onto an oversized canvas and autocropped.
package capture

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"inkwell/internal/domain"
)

// Draw-mode capture surface. Stroke coordinates arrive in this space.
const (
	DrawSurfaceWidth  = 600
	DrawSurfaceHeight = 200

	strokeRadius = 1.8
)

// ink is the pen color used for both drawn strokes and typed glyphs.
var ink = color.NRGBA{R: 0x10, G: 0x10, B: 0x2e, A: 0xff}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen-down movement: an ordered sequence of
// pointer positions on the capture surface.
type Stroke []Point

// DrawStrokes renders the strokes with round caps and joins at a fixed width
// and returns the full capture surface verbatim. Drawn signatures are never
// cropped; the surrounding whitespace is part of the artifact.
func DrawStrokes(strokes []Stroke) (*image.NRGBA, error) {
	for _, s := range strokes {
		for _, p := range s {
			if p.X < 0 || p.Y < 0 || p.X > DrawSurfaceWidth || p.Y > DrawSurfaceHeight {
				return nil, domain.ErrInvalidImage
			}
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, DrawSurfaceWidth, DrawSurfaceHeight))
	z := vector.NewRasterizer(DrawSurfaceWidth, DrawSurfaceHeight)
	z.DrawOp = draw.Over

	for _, s := range strokes {
		if len(s) == 0 {
			continue
		}
		// A dot at every sample gives round caps and round joins; the
		// capsule body fills the segment between consecutive samples.
		addDisc(z, s[0].X, s[0].Y, strokeRadius)
		for i := 1; i < len(s); i++ {
			addDisc(z, s[i].X, s[i].Y, strokeRadius)
			addSegmentBody(z, s[i-1], s[i], strokeRadius)
		}
	}

	z.Draw(dst, dst.Bounds(), image.NewUniform(ink), image.Point{})
	return dst, nil
}

// addDisc appends a filled circle to the path using four cubic arcs.
func addDisc(z *vector.Rasterizer, cx, cy, r float64) {
	const k = 0.551784777
	x, y, kr := float32(cx), float32(cy), float32(k*r)
	rr := float32(r)
	z.MoveTo(x+rr, y)
	z.CubeTo(x+rr, y+kr, x+kr, y+rr, x, y+rr)
	z.CubeTo(x-kr, y+rr, x-rr, y+kr, x-rr, y)
	z.CubeTo(x-rr, y-kr, x-kr, y-rr, x, y-rr)
	z.CubeTo(x+kr, y-rr, x+rr, y-kr, x+rr, y)
	z.ClosePath()
}

// addSegmentBody appends the rectangular body of the stroke between two
// sample points. Degenerate (zero-length) segments are covered by the discs.
func addSegmentBody(z *vector.Rasterizer, p1, p2 Point, r float64) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*r, dx/length*r
	z.MoveTo(float32(p1.X+nx), float32(p1.Y+ny))
	z.LineTo(float32(p2.X+nx), float32(p2.Y+ny))
	z.LineTo(float32(p2.X-nx), float32(p2.Y-ny))
	z.LineTo(float32(p1.X-nx), float32(p1.Y-ny))
	z.ClosePath()
}
