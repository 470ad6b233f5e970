package usecase

import (
	"context"
	"time"

	"inkwell/internal/domain"
)

type CreateRequestInput struct {
	Title     string
	SourcePDF []byte
	Fields    []domain.SignatureField
}

type CreateRequestResult struct {
	Request domain.SignatureRequest
	Fields  []domain.SignatureField
}

// CreateRequest stores the source PDF, creates a draft request with a fresh
// public token, and installs the initial field set. A request with zero
// fields is rejected outright; it could never be completed.
type CreateRequest struct {
	Requests RequestRepository
	Fields   FieldRepository
	Objects  ObjectStore
	Audit    *AuditEmitter
	Clock    Clock
}

func (uc *CreateRequest) Execute(ctx context.Context, in CreateRequestInput) (*CreateRequestResult, error) {
	if in.Title == "" || len(in.SourcePDF) == 0 {
		return nil, domain.ErrInvalidDocument
	}

	requestID, err := newUUID()
	if err != nil {
		return nil, err
	}
	fields, err := assignFieldIDs(requestID, in.Fields)
	if err != nil {
		return nil, err
	}
	if _, err := domain.NewFieldSet(fields); err != nil {
		return nil, err
	}

	token, err := newPublicToken()
	if err != nil {
		return nil, err
	}
	sourceRef, err := uc.Objects.Put(ctx, in.SourcePDF, "application/pdf")
	if err != nil {
		return nil, err
	}

	now := uc.now()
	req := domain.SignatureRequest{
		ID:           requestID,
		Title:        in.Title,
		SourcePDFRef: sourceRef,
		Status:       domain.StatusDraft,
		PublicToken:  token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Requests.Create(ctx, req); err != nil {
		return nil, err
	}
	if err := uc.Fields.ReplaceForRequest(ctx, requestID, fields); err != nil {
		return nil, err
	}

	uc.Audit.EmitRequestCreated(ctx, req.ID, len(fields))
	return &CreateRequestResult{Request: req, Fields: fields}, nil
}

func (uc *CreateRequest) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock().UTC()
	}
	return time.Now().UTC()
}

func assignFieldIDs(requestID string, fields []domain.SignatureField) ([]domain.SignatureField, error) {
	out := make([]domain.SignatureField, len(fields))
	for i, f := range fields {
		id, err := newUUID()
		if err != nil {
			return nil, err
		}
		f.ID = id
		f.RequestID = requestID
		out[i] = f
	}
	return out, nil
}
