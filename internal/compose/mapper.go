// Package compose maps normalized field rectangles into PDF page space and
// stamps captured field images onto the source document.
package compose

import "inkwell/internal/domain"

// PageRect is an absolute rectangle in a PDF page's native coordinate system:
// units are points, origin at the page's bottom-left, y increasing upward.
type PageRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MapToPage converts a field's normalized rectangle (top-left origin, y down)
// to the page's native space (bottom-left origin, y up). This is the single
// place where the two coordinate conventions meet; everything above works in
// screen space and everything below in page space.
func MapToPage(f domain.SignatureField, pageWidth, pageHeight float64) PageRect {
	yFromTop := f.Y + f.Height // bottom edge of the field, measured from the top
	return PageRect{
		X:      f.X * pageWidth,
		Y:      (1 - yFromTop) * pageHeight,
		Width:  f.Width * pageWidth,
		Height: f.Height * pageHeight,
	}
}

// MapFromPage is the inverse of MapToPage. It recovers the normalized
// screen-space rectangle from an absolute page rectangle.
func MapFromPage(r PageRect, pageWidth, pageHeight float64) domain.SignatureField {
	h := r.Height / pageHeight
	return domain.SignatureField{
		X:      r.X / pageWidth,
		Y:      1 - r.Y/pageHeight - h,
		Width:  r.Width / pageWidth,
		Height: h,
	}
}

// ClampPage resolves a field's declared page against the actual page count.
// A field pointing past the end of a shorter document lands on the last page
// instead of failing the whole composition.
func ClampPage(pageNumber, pageCount int) int {
	if pageNumber < 1 {
		return 1
	}
	if pageNumber > pageCount {
		return pageCount
	}
	return pageNumber
}
