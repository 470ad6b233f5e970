package capture

import "image"

// Autocrop padding: 2% of the content bounding box per side, at least 4px,
// clamped to the surface bounds.
const (
	autocropPadRatio = 0.02
	autocropPadMin   = 4
)

// Autocrop trims src to the minimal bounding rectangle of its non-transparent
// pixels plus symmetric padding, copied into a new minimally sized surface.
// A surface with no content pixels is returned unchanged.
func Autocrop(src *image.NRGBA) *image.NRGBA {
	bbox, ok := contentBounds(src)
	if !ok {
		return src
	}

	padX := int(float64(bbox.Dx()) * autocropPadRatio)
	padY := int(float64(bbox.Dy()) * autocropPadRatio)
	if padX < autocropPadMin {
		padX = autocropPadMin
	}
	if padY < autocropPadMin {
		padY = autocropPadMin
	}

	padded := image.Rect(bbox.Min.X-padX, bbox.Min.Y-padY, bbox.Max.X+padX, bbox.Max.Y+padY)
	padded = padded.Intersect(src.Bounds())

	dst := image.NewNRGBA(image.Rect(0, 0, padded.Dx(), padded.Dy()))
	for y := 0; y < padded.Dy(); y++ {
		srcOff := src.PixOffset(padded.Min.X, padded.Min.Y+y)
		dstOff := dst.PixOffset(0, y)
		copy(dst.Pix[dstOff:dstOff+padded.Dx()*4], src.Pix[srcOff:srcOff+padded.Dx()*4])
	}
	return dst
}

// contentBounds scans every pixel and returns the tight bounding box of all
// pixels with non-zero alpha.
func contentBounds(src *image.NRGBA) (image.Rectangle, bool) {
	b := src.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := b.Min.X + x
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
