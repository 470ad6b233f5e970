package usecase

import (
	"context"
	"log"
	"time"

	"inkwell/internal/domain"
)

// SubmitRequest is the signer's explicit final submission. It requires every
// field to carry an image, recomposes the document one last time so the
// artifact reflects the very latest edits, and then freezes the request.
// There is no way out of completed; corrections need a new request.
type SubmitRequest struct {
	Hydrate  *HydrateSigner
	Requests RequestRepository
	Objects  ObjectStore
	Composer DocumentComposer
	Audit    *AuditEmitter
	Clock    Clock
}

func (uc *SubmitRequest) Execute(ctx context.Context, publicToken string) (*domain.SignatureRequest, error) {
	state, err := uc.Hydrate.Execute(ctx, publicToken)
	if err != nil {
		return nil, err
	}
	req := state.Request
	if req.Status != domain.StatusSent {
		return nil, domain.ErrRequestLocked
	}

	if missing := state.Fields.MissingFieldIDs(state.Images); len(missing) > 0 {
		return nil, &domain.MissingFieldsError{FieldIDs: missing}
	}

	source, err := uc.Objects.Get(ctx, req.SourcePDFRef)
	if err != nil {
		return nil, err
	}
	composed, err := uc.Composer.Compose(source, state.Fields, state.Images)
	if err != nil {
		return nil, err
	}
	newRef, err := uc.Objects.Put(ctx, composed, "application/pdf")
	if err != nil {
		return nil, err
	}

	previousRef := req.SignedPDFRef
	req.SignedPDFRef = newRef
	req.Status = domain.StatusCompleted
	req.UpdatedAt = uc.now()
	if err := uc.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	if previousRef != "" && previousRef != newRef {
		if err := uc.Objects.Delete(ctx, previousRef); err != nil {
			log.Printf("delete superseded artifact %s: %v", previousRef, err)
		}
	}

	uc.Audit.EmitRequestCompleted(ctx, req.ID, state.Fields.Len())
	return &req, nil
}

func (uc *SubmitRequest) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
