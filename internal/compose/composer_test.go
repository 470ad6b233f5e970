package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"

	"inkwell/internal/domain"
)

// minimalPDF builds a one-page letter-sized PDF with a correct xref table.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	objs := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n",
	}
	offsets := make([]int, len(objs)+1)
	for i, o := range objs {
		offsets[i+1] = buf.Len()
		buf.WriteString(o)
	}
	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xrefOff)
	return buf.Bytes()
}

func stampPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0x10, G: 0x10, B: 0x2e, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func composeFieldSet(t *testing.T, fields ...domain.SignatureField) *domain.FieldSet {
	t.Helper()
	set, err := domain.NewFieldSet(fields)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestPageSizes(t *testing.T) {
	c := NewComposer()
	dims, err := c.PageSizes(minimalPDF())
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 1 {
		t.Fatalf("page count = %d, want 1", len(dims))
	}
	if dims[0].Width != 612 || dims[0].Height != 792 {
		t.Errorf("page dims = %+v, want 612x792", dims[0])
	}
}

func TestComposeRejectsInvalidDocument(t *testing.T) {
	c := NewComposer()
	set := composeFieldSet(t, domain.SignatureField{
		ID: "f1", PageNumber: 1, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature,
	})
	_, err := c.Compose([]byte("not a pdf"), set, nil)
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("got %v, want ErrInvalidDocument", err)
	}
}

func TestComposeNoImagesReturnsSourceCopy(t *testing.T) {
	c := NewComposer()
	source := minimalPDF()
	set := composeFieldSet(t, domain.SignatureField{
		ID: "f1", PageNumber: 1, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature,
	})
	out, err := c.Compose(source, set, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, source) {
		t.Error("composition without images should reproduce the source")
	}
	// The copy must not alias the source buffer.
	out[0] ^= 0xff
	if source[0] == out[0] {
		t.Error("output must be an independent copy")
	}
}

func TestComposeStampsFieldImage(t *testing.T) {
	c := NewComposer()
	source := minimalPDF()
	set := composeFieldSet(t, domain.SignatureField{
		ID: "f1", PageNumber: 1, X: 0.5, Y: 0.88, Width: 0.3, Height: 0.07, Kind: domain.FieldSignature,
	})
	images := map[string]domain.FieldSignatureImage{
		"f1": {FieldID: "f1", PNG: stampPNG(t)},
	}
	out, err := c.Compose(source, set, images)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(out, source) {
		t.Error("stamping should change the document")
	}
	// The stamped artifact must itself be a readable one-page PDF.
	dims, err := c.PageSizes(out)
	if err != nil {
		t.Fatalf("stamped output does not parse: %v", err)
	}
	if len(dims) != 1 {
		t.Errorf("stamped page count = %d, want 1", len(dims))
	}
}

// volatilePDFEntries matches the writer-generated trailer ID and Info
// timestamps, the only parts of the output that vary between runs.
var volatilePDFEntries = regexp.MustCompile(`/(ID\s*\[[^\]]*\]|CreationDate\s*\([^)]*\)|ModDate\s*\([^)]*\))`)

func TestComposeUnchangedInputsPlaceStampsIdentically(t *testing.T) {
	c := NewComposer()
	source := minimalPDF()
	set := composeFieldSet(t,
		domain.SignatureField{ID: "f1", PageNumber: 1, X: 0.5, Y: 0.88, Width: 0.3, Height: 0.07, Kind: domain.FieldSignature},
		domain.SignatureField{ID: "f2", PageNumber: 1, X: 0.1, Y: 0.2, Width: 0.25, Height: 0.05, Kind: domain.FieldDataEntry},
	)
	images := map[string]domain.FieldSignatureImage{
		"f1": {FieldID: "f1", PNG: stampPNG(t)},
		"f2": {FieldID: "f2", PNG: stampPNG(t)},
	}
	first, err := c.Compose(source, set, images)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compose(source, set, images)
	if err != nil {
		t.Fatal(err)
	}
	a := volatilePDFEntries.ReplaceAll(first, nil)
	b := volatilePDFEntries.ReplaceAll(second, nil)
	if !bytes.Equal(a, b) {
		t.Error("recomposing with an unchanged field/image set must place stamps identically")
	}
}

func TestComposeClampsOutOfRangePage(t *testing.T) {
	c := NewComposer()
	set := composeFieldSet(t, domain.SignatureField{
		ID: "f1", PageNumber: 9, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature,
	})
	images := map[string]domain.FieldSignatureImage{
		"f1": {FieldID: "f1", PNG: stampPNG(t)},
	}
	// Page 9 of a one-page document lands on page 1 instead of failing.
	if _, err := c.Compose(minimalPDF(), set, images); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComposeRejectsBrokenImage(t *testing.T) {
	c := NewComposer()
	set := composeFieldSet(t, domain.SignatureField{
		ID: "f1", PageNumber: 1, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature,
	})
	images := map[string]domain.FieldSignatureImage{
		"f1": {FieldID: "f1", PNG: []byte("not a png")},
	}
	_, err := c.Compose(minimalPDF(), set, images)
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("got %v, want ErrInvalidImage", err)
	}
}
