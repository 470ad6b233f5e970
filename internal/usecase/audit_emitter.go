package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"inkwell/internal/domain"
)

// AuditEmitter appends audit events for request and field activity. It is
// optional everywhere: a nil emitter (or nil repository) drops events, and an
// append failure is logged, never propagated into the operation it records.
type AuditEmitter struct {
	Repo  AuditEventRepository
	Clock Clock
}

func NewAuditEmitter(repo AuditEventRepository, clock Clock) *AuditEmitter {
	return &AuditEmitter{Repo: repo, Clock: clock}
}

func (e *AuditEmitter) emit(ctx context.Context, event domain.AuditEvent) {
	if e == nil || e.Repo == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = e.now().UTC()
	}
	if _, err := e.Repo.Append(ctx, event); err != nil {
		log.Printf("audit append %s: %v", event.EventType, err)
	}
}

func (e *AuditEmitter) EmitRequestCreated(ctx context.Context, requestID string, fieldCount int) {
	e.emit(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventRequestCreated,
		Payload:    map[string]any{"field_count": fieldCount},
		ActorType:  domain.AuditActorAdminAPIKey,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
	})
}

func (e *AuditEmitter) EmitFieldsReplaced(ctx context.Context, requestID string, fieldCount int) {
	e.emit(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventFieldsReplaced,
		Payload:    map[string]any{"field_count": fieldCount},
		ActorType:  domain.AuditActorAdminAPIKey,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
	})
}

func (e *AuditEmitter) EmitRequestSent(ctx context.Context, requestID string) {
	e.emit(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventRequestSent,
		ActorType:  domain.AuditActorAdminAPIKey,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
	})
}

// EmitFieldFilled records a field save with the signer provenance captured
// alongside the image. The raw signer email is kept only in the payload;
// the actor identifier is stored hashed.
func (e *AuditEmitter) EmitFieldFilled(ctx context.Context, requestID, fieldID, signerName, signerEmail, signerIP string, opErr error) {
	event := domain.AuditEvent{
		RequestID: requestID,
		EventType: domain.AuditEventFieldFilled,
		Payload: map[string]any{
			"signer_name":  signerName,
			"signer_email": signerEmail,
			"signer_ip":    signerIP,
		},
		ActorType:   domain.AuditActorSigner,
		ActorIDHash: hashString(signerEmail),
		TargetType:  domain.AuditTargetField,
		TargetID:    fieldID,
		Result:      domain.AuditResultSuccess,
	}
	if opErr != nil {
		event.Result = domain.AuditResultFailure
		event.ErrorCode = opErr.Error()
	}
	e.emit(ctx, event)
}

func (e *AuditEmitter) EmitRequestCompleted(ctx context.Context, requestID string, fieldCount int) {
	e.emit(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventRequestCompleted,
		Payload:    map[string]any{"field_count": fieldCount},
		ActorType:  domain.AuditActorSigner,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
	})
}

func (e *AuditEmitter) EmitDocumentEmailed(ctx context.Context, requestID, to string, opErr error) {
	event := domain.AuditEvent{
		RequestID:   requestID,
		EventType:   domain.AuditEventDocumentEmailed,
		Payload:     map[string]any{"to": to},
		ActorType:   domain.AuditActorSystem,
		ActorIDHash: hashString(to),
		TargetType:  domain.AuditTargetRequest,
		TargetID:    requestID,
		Result:      domain.AuditResultSuccess,
	}
	if opErr != nil {
		event.Result = domain.AuditResultFailure
		event.ErrorCode = opErr.Error()
	}
	e.emit(ctx, event)
}

func (e *AuditEmitter) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func hashString(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
