package capture

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"inkwell/internal/domain"
)

// Type-mode working canvas. Deliberately oversized: layout happens here and
// the autocrop pass trims the result down to the rendered glyphs, so the
// stamped image is framed identically for short and long input.
const (
	textSurfaceWidth  = 2000
	textSurfaceHeight = 320

	textFontSize = 120
	textBaseline = 210
	textLeftPad  = 40
)

var (
	faceOnce        sync.Once
	handwritingFace font.Face
	plainFace       font.Face
	faceErr         error
)

func loadFaces() {
	italic, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		faceErr = err
		return
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		faceErr = err
		return
	}
	opts := &opentype.FaceOptions{Size: textFontSize, DPI: 72, Hinting: font.HintingFull}
	if handwritingFace, err = opentype.NewFace(italic, opts); err != nil {
		faceErr = err
		return
	}
	plainFace, err = opentype.NewFace(regular, opts)
	faceErr = err
}

// RenderText rasterizes typed input for a field of the given kind and returns
// the autocropped result. Signature fields render in a handwriting-style face,
// data-entry fields in a plain face. Empty or whitespace-only input yields the
// uncropped transparent surface.
func RenderText(text string, kind domain.FieldKind) (*image.NRGBA, error) {
	faceOnce.Do(loadFaces)
	if faceErr != nil {
		return nil, faceErr
	}

	face := plainFace
	if kind.Spec().Handwriting {
		face = handwritingFace
	}

	dst := image.NewNRGBA(image.Rect(0, 0, textSurfaceWidth, textSurfaceHeight))
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(textLeftPad, textBaseline),
	}
	d.DrawString(text)

	return Autocrop(dst), nil
}

// EncodePNG serializes a captured surface as the PNG stored for the field.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePNG parses a stored field image, mapping any decode failure to
// ErrInvalidImage so one bad payload fails only that field's save.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}
	return img, nil
}
