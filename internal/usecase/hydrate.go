package usecase

import (
	"context"

	"inkwell/internal/domain"
)

// SignerState is the fully hydrated signing state for one request: the
// request, its field set, and every stored field image, rebuilt from
// persistence alone. Nothing about field-image association survives in
// memory between calls; every signer interaction starts from a hydrate.
type SignerState struct {
	Request domain.SignatureRequest
	Fields  *domain.FieldSet
	Images  map[string]domain.FieldSignatureImage
}

// AllFilled reports whether every field has a stored image.
func (s *SignerState) AllFilled() bool {
	return len(s.Fields.MissingFieldIDs(s.Images)) == 0
}

// HydrateSigner resolves a public token to the signing state. An unknown
// token is a plain not-found; the caller cannot distinguish a token that
// never existed from one that no longer resolves.
type HydrateSigner struct {
	Requests RequestRepository
	Fields   FieldRepository
	Images   ImageRepository
}

func (uc *HydrateSigner) Execute(ctx context.Context, publicToken string) (*SignerState, error) {
	if publicToken == "" {
		return nil, domain.ErrNotFound
	}
	req, err := uc.Requests.GetByToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.StatusDraft {
		// A draft is not yet visible to its signer.
		return nil, domain.ErrNotFound
	}

	fields, err := uc.Fields.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	fieldSet, err := domain.NewFieldSet(fields)
	if err != nil {
		return nil, err
	}

	stored, err := uc.Images.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	images := make(map[string]domain.FieldSignatureImage, len(stored))
	for _, img := range stored {
		images[img.FieldID] = img
	}

	return &SignerState{Request: *req, Fields: fieldSet, Images: images}, nil
}
