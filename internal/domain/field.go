package domain

import "sort"

type FieldKind string

const (
	FieldSignature FieldKind = "signature"
	FieldDataEntry FieldKind = "data_entry"
)

// KindSpec is the per-kind behavior table. Capture-mode defaults, consent
// requirements and rasterization style are decided here once, not by scattered
// kind checks.
type KindSpec struct {
	Kind            FieldKind
	AllowsDrawing   bool
	RequiresConsent bool
	Handwriting     bool
}

var kindSpecs = map[FieldKind]KindSpec{
	FieldSignature: {
		Kind:            FieldSignature,
		AllowsDrawing:   true,
		RequiresConsent: true,
		Handwriting:     true,
	},
	FieldDataEntry: {
		Kind:            FieldDataEntry,
		AllowsDrawing:   false,
		RequiresConsent: false,
		Handwriting:     false,
	},
}

func (k FieldKind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

func (k FieldKind) Spec() KindSpec {
	return kindSpecs[k]
}

// SignatureField is one fillable region on one page. Coordinates are
// normalized to the page dimensions with the origin at the page's top-left
// and y increasing downward, matching on-screen rendering.
type SignatureField struct {
	ID         string
	RequestID  string
	PageNumber int
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Kind       FieldKind
	Label      string
}

// Validate checks the normalized geometry: every coordinate in [0,1], the
// rectangle fully inside the unit square, and a 1-indexed page number.
func (f SignatureField) Validate() error {
	if f.PageNumber < 1 {
		return ErrInvalidField
	}
	if !f.Kind.Valid() {
		return ErrInvalidField
	}
	if f.X < 0 || f.Y < 0 || f.Width <= 0 || f.Height <= 0 {
		return ErrInvalidField
	}
	if f.X+f.Width > 1 || f.Y+f.Height > 1 {
		return ErrInvalidField
	}
	return nil
}

// FieldSet is a read-only view over the fields of one request.
type FieldSet struct {
	fields []SignatureField
	byID   map[string]SignatureField
}

// NewFieldSet validates every field and rejects an empty set: a request with
// nothing to fill can never reach completed, so it is refused up front.
func NewFieldSet(fields []SignatureField) (*FieldSet, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	byID := make(map[string]SignatureField, len(fields))
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	out := make([]SignatureField, len(fields))
	copy(out, fields)
	return &FieldSet{fields: out, byID: byID}, nil
}

func (s *FieldSet) Len() int {
	return len(s.fields)
}

func (s *FieldSet) All() []SignatureField {
	out := make([]SignatureField, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *FieldSet) ByID(id string) (SignatureField, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// ByPage groups the fields by page number for rendering.
func (s *FieldSet) ByPage() map[int][]SignatureField {
	pages := make(map[int][]SignatureField)
	for _, f := range s.fields {
		pages[f.PageNumber] = append(pages[f.PageNumber], f)
	}
	return pages
}

// MissingFieldIDs returns the IDs of fields without an image, sorted for
// stable error reporting.
func (s *FieldSet) MissingFieldIDs(images map[string]FieldSignatureImage) []string {
	var missing []string
	for _, f := range s.fields {
		if _, ok := images[f.ID]; !ok {
			missing = append(missing, f.ID)
		}
	}
	sort.Strings(missing)
	return missing
}
