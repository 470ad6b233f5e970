package usecase

import (
	"context"

	"inkwell/internal/domain"
)

// EmailDocument sends the current signed artifact (or, before any fill, the
// source document) to an address. Fire and forget: a delivery failure is
// returned to the caller but changes no signing state.
type EmailDocument struct {
	Requests RequestRepository
	Notify   Notifier
	Audit    *AuditEmitter
}

func (uc *EmailDocument) Execute(ctx context.Context, requestID, to string) error {
	if to == "" {
		return domain.ErrInvalidDocument
	}
	req, err := uc.Requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	ref := req.SignedPDFRef
	if ref == "" {
		ref = req.SourcePDFRef
	}
	err = uc.Notify.SendDocument(ctx, to, req.Title, ref)
	uc.Audit.EmitDocumentEmailed(ctx, req.ID, to, err)
	return err
}
