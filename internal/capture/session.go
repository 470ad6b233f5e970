package capture

import (
	"image"
	"sync"

	"inkwell/internal/domain"
)

type Mode string

const (
	ModeDraw Mode = "draw"
	ModeType Mode = "type"
)

// Input is one field's capture payload as submitted by the signer.
type Input struct {
	Mode    Mode
	Strokes []Stroke
	Text    string
	Consent bool
}

// Render produces the field image for the given input. Draw mode is only
// available to field kinds that allow it, and kinds that require consent
// reject a capture without it.
func Render(kind domain.FieldKind, in Input) (*image.NRGBA, error) {
	spec := kind.Spec()
	if spec.RequiresConsent && !in.Consent {
		return nil, domain.ErrInvalidImage
	}
	switch in.Mode {
	case ModeDraw:
		if !spec.AllowsDrawing {
			return nil, domain.ErrInvalidImage
		}
		if len(in.Strokes) == 0 {
			return nil, domain.ErrInvalidImage
		}
		return DrawStrokes(in.Strokes)
	case ModeType:
		return RenderText(in.Text, kind)
	}
	return nil, domain.ErrInvalidImage
}

// Session models the shared drawing surface. The surface is owned by exactly
// one field at a time; switching the active field clears any accumulated
// strokes so stale input from a previous field can never leak into a capture.
type Session struct {
	mu      sync.Mutex
	fieldID string
	strokes []Stroke
}

func NewSession() *Session {
	return &Session{}
}

// Activate makes fieldID the owner of the surface. Re-activating the current
// field keeps its strokes; activating any other field resets the surface.
func (s *Session) Activate(fieldID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fieldID != fieldID {
		s.fieldID = fieldID
		s.strokes = nil
	}
}

// Extend appends a stroke for the active field.
func (s *Session) Extend(fieldID string, stroke Stroke) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fieldID != fieldID {
		return domain.ErrInvalidImage
	}
	s.strokes = append(s.strokes, stroke)
	return nil
}

// Strokes returns a copy of the accumulated strokes for the active field.
func (s *Session) Strokes(fieldID string) ([]Stroke, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fieldID != fieldID {
		return nil, domain.ErrInvalidImage
	}
	out := make([]Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out, nil
}

// Clear resets the surface regardless of owner.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldID = ""
	s.strokes = nil
}
