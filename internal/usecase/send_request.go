package usecase

import (
	"context"
	"time"

	"inkwell/internal/domain"
)

// SendRequest dispatches a draft request to its signer: the field set becomes
// immutable and the public token becomes live. If a signer address is given
// the token link is emailed fire-and-forget; a delivery failure is reported
// alongside the (already committed) transition, never rolled back.
type SendRequest struct {
	Requests RequestRepository
	Fields   FieldRepository
	Notify   Notifier
	Audit    *AuditEmitter
	Clock    Clock
}

type SendRequestResult struct {
	Request     domain.SignatureRequest
	NotifyError error
}

func (uc *SendRequest) Execute(ctx context.Context, requestID, signerEmail string) (*SendRequestResult, error) {
	req, err := uc.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(domain.StatusSent) {
		return nil, domain.ErrInvalidStatus
	}

	fields, err := uc.Fields.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.NewFieldSet(fields); err != nil {
		return nil, err
	}

	req.Status = domain.StatusSent
	req.UpdatedAt = uc.now()
	if err := uc.Requests.Update(ctx, *req); err != nil {
		return nil, err
	}
	uc.Audit.EmitRequestSent(ctx, req.ID)

	result := &SendRequestResult{Request: *req}
	if signerEmail != "" && uc.Notify != nil {
		result.NotifyError = uc.Notify.SendDocument(ctx, signerEmail, req.Title, req.PublicToken)
		uc.Audit.EmitDocumentEmailed(ctx, req.ID, signerEmail, result.NotifyError)
	}
	return result, nil
}

func (uc *SendRequest) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}
