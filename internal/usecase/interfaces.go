package usecase

import (
	"context"
	"time"

	"inkwell/internal/domain"
)

type Clock func() time.Time

type RequestRepository interface {
	Create(ctx context.Context, req domain.SignatureRequest) error
	GetByID(ctx context.Context, id string) (*domain.SignatureRequest, error)
	GetByToken(ctx context.Context, token string) (*domain.SignatureRequest, error)
	Update(ctx context.Context, req domain.SignatureRequest) error
}

type FieldRepository interface {
	ReplaceForRequest(ctx context.Context, requestID string, fields []domain.SignatureField) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.SignatureField, error)
}

type ImageRepository interface {
	Upsert(ctx context.Context, img domain.FieldSignatureImage) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.FieldSignatureImage, error)
}

type AuditEventRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	ListByRequest(ctx context.Context, requestID string) ([]domain.AuditEvent, error)
}

// ObjectStore holds the original PDF and every composed artifact. Put returns
// an opaque reference usable with Get and Delete.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// Notifier is the fire-and-forget document email sink. Failures surface to
// the caller but never roll back signing state.
type Notifier interface {
	SendDocument(ctx context.Context, to, subject, documentRef string) error
}

// DocumentComposer derives the signed artifact from the source PDF and the
// current field-to-image map.
type DocumentComposer interface {
	Compose(source []byte, fields *domain.FieldSet, images map[string]domain.FieldSignatureImage) ([]byte, error)
}
