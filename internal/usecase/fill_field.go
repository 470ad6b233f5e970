package usecase

import (
	"context"
	"log"
	"time"

	"inkwell/internal/capture"
	"inkwell/internal/domain"
)

type FillFieldInput struct {
	PublicToken string
	FieldID     string
	Capture     capture.Input
	SignerName  string
	SignerEmail string
	SignerIP    string
}

type FillFieldResult struct {
	Request         domain.SignatureRequest
	AllFilled       bool
	MissingFieldIDs []string
}

// FillField is the signer-side save of one field: rasterize the capture,
// recompose the whole document with the candidate image in place, publish the
// new artifact, and only then persist the image and republish the request
// pointer. Composing first means a failed save leaves both the stored images
// and the previously published artifact untouched.
//
// The per-save "is everything filled now" answer is informational only; it
// never advances the request status. Only an explicit submission completes.
type FillField struct {
	Hydrate  *HydrateSigner
	Requests RequestRepository
	Images   ImageRepository
	Objects  ObjectStore
	Composer DocumentComposer
	Audit    *AuditEmitter
	Clock    Clock
}

func (uc *FillField) Execute(ctx context.Context, in FillFieldInput) (*FillFieldResult, error) {
	state, err := uc.Hydrate.Execute(ctx, in.PublicToken)
	if err != nil {
		return nil, err
	}
	req := state.Request
	if req.Locked() {
		return nil, domain.ErrRequestLocked
	}
	field, ok := state.Fields.ByID(in.FieldID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	surface, err := capture.Render(field.Kind, in.Capture)
	if err != nil {
		uc.Audit.EmitFieldFilled(ctx, req.ID, field.ID, in.SignerName, in.SignerEmail, in.SignerIP, err)
		return nil, err
	}
	pngBytes, err := capture.EncodePNG(surface)
	if err != nil {
		return nil, err
	}

	img := domain.FieldSignatureImage{
		FieldID:     field.ID,
		RequestID:   req.ID,
		PNG:         pngBytes,
		SignerName:  in.SignerName,
		SignerEmail: in.SignerEmail,
		SignerIP:    in.SignerIP,
		CapturedAt:  uc.now(),
	}

	// Last write wins: the candidate image replaces any previous capture for
	// this field in the composition input.
	images := make(map[string]domain.FieldSignatureImage, len(state.Images)+1)
	for id, existing := range state.Images {
		images[id] = existing
	}
	images[field.ID] = img

	source, err := uc.Objects.Get(ctx, req.SourcePDFRef)
	if err != nil {
		return nil, err
	}
	composed, err := uc.Composer.Compose(source, state.Fields, images)
	if err != nil {
		uc.Audit.EmitFieldFilled(ctx, req.ID, field.ID, in.SignerName, in.SignerEmail, in.SignerIP, err)
		return nil, err
	}

	newRef, err := uc.Objects.Put(ctx, composed, "application/pdf")
	if err != nil {
		return nil, err
	}
	if err := uc.Images.Upsert(ctx, img); err != nil {
		return nil, err
	}

	previousRef := req.SignedPDFRef
	req.SignedPDFRef = newRef
	req.UpdatedAt = uc.now()
	if err := uc.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	// Deleting the superseded artifact is best effort; a failure only leaks
	// an unreferenced blob and must not fail the save that replaced it.
	if previousRef != "" && previousRef != newRef {
		if err := uc.Objects.Delete(ctx, previousRef); err != nil {
			log.Printf("delete superseded artifact %s: %v", previousRef, err)
		}
	}

	uc.Audit.EmitFieldFilled(ctx, req.ID, field.ID, in.SignerName, in.SignerEmail, in.SignerIP, nil)

	missing := state.Fields.MissingFieldIDs(images)
	return &FillFieldResult{
		Request:         req,
		AllFilled:       len(missing) == 0,
		MissingFieldIDs: missing,
	}, nil
}

func (uc *FillField) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
