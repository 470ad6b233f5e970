package compose

import (
	"bytes"
	"fmt"
	"image/png"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"inkwell/internal/domain"
)

// Composer flattens field images into the source PDF. It is stateless: every
// call re-derives the complete artifact from the full field-to-image map, so
// repeated saves can never double-stamp or mix stale partial edits.
type Composer struct {
	conf *model.Configuration
}

func NewComposer() *Composer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Composer{conf: conf}
}

// Compose stamps every field that has an image onto its page and returns the
// new document bytes. Fields without an image are skipped, so a partially
// signed request still yields a best-effort artifact. A source document that
// does not parse fails the whole operation; no partial output is produced.
func (c *Composer) Compose(source []byte, fields *domain.FieldSet, images map[string]domain.FieldSignatureImage) ([]byte, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(source), c.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	pageCount := len(dims)
	if pageCount == 0 {
		return nil, domain.ErrInvalidDocument
	}

	// Deterministic stamp order keeps recomposition reproducible.
	all := fields.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	stamps := make(map[int][]*model.Watermark)
	for _, f := range all {
		img, ok := images[f.ID]
		if !ok {
			continue
		}
		page := ClampPage(f.PageNumber, pageCount)
		dim := dims[page-1]
		wm, err := c.stampFor(f, img, dim.Width, dim.Height)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.ID, err)
		}
		stamps[page] = append(stamps[page], wm)
	}

	if len(stamps) == 0 {
		out := make([]byte, len(source))
		copy(out, source)
		return out, nil
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(source), &out, stamps, c.conf); err != nil {
		return nil, fmt.Errorf("stamp document: %w", err)
	}
	return out.Bytes(), nil
}

// stampFor embeds one field image as an on-top (flattened) stamp, scaled to
// fit the field rectangle and centered inside it.
func (c *Composer) stampFor(f domain.SignatureField, img domain.FieldSignatureImage, pageWidth, pageHeight float64) (*model.Watermark, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(img.PNG))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, domain.ErrInvalidImage
	}

	rect := MapToPage(f, pageWidth, pageHeight)

	// Image pixels map 1:1 to points before scaling; fit the image inside
	// the field rectangle preserving its aspect ratio.
	scale := rect.Width / float64(cfg.Width)
	if s := rect.Height / float64(cfg.Height); s < scale {
		scale = s
	}
	scaledW := float64(cfg.Width) * scale
	scaledH := float64(cfg.Height) * scale
	offX := rect.X + (rect.Width-scaledW)/2
	offY := rect.Y + (rect.Height-scaledH)/2

	desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scalefactor:%.4f abs, rot:0", offX, offY, scale)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img.PNG), desc, true, false, types.POINTS)
	if err != nil {
		return nil, domain.ErrInvalidImage
	}
	return wm, nil
}

// PageSizes returns the dimensions of every page in points. Used to expose
// page metadata to callers rendering the on-screen overlay.
func (c *Composer) PageSizes(source []byte) ([]types.Dim, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(source), c.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return dims, nil
}
