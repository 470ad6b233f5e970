package usecase

import (
	"context"
	"time"

	"inkwell/internal/domain"
)

// ReplaceFields swaps a draft request's field set wholesale. Fields are never
// patched one at a time; once the request leaves draft the set is frozen.
type ReplaceFields struct {
	Requests RequestRepository
	Fields   FieldRepository
	Audit    *AuditEmitter
	Clock    Clock
}

func (uc *ReplaceFields) Execute(ctx context.Context, requestID string, fields []domain.SignatureField) ([]domain.SignatureField, error) {
	req, err := uc.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusDraft {
		return nil, domain.ErrRequestLocked
	}

	assigned, err := assignFieldIDs(requestID, fields)
	if err != nil {
		return nil, err
	}
	if _, err := domain.NewFieldSet(assigned); err != nil {
		return nil, err
	}
	if err := uc.Fields.ReplaceForRequest(ctx, requestID, assigned); err != nil {
		return nil, err
	}

	req.UpdatedAt = uc.now()
	if err := uc.Requests.Update(ctx, *req); err != nil {
		return nil, err
	}

	uc.Audit.EmitFieldsReplaced(ctx, requestID, len(assigned))
	return assigned, nil
}

func (uc *ReplaceFields) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
