package domain

import "time"

type AuditActorType string

const (
	AuditActorSystem      AuditActorType = "system"
	AuditActorAdminAPIKey AuditActorType = "admin_api_key"
	AuditActorSigner      AuditActorType = "signer"
)

type AuditEventType string

const (
	AuditEventRequestCreated   AuditEventType = "request_created"
	AuditEventFieldsReplaced   AuditEventType = "fields_replaced"
	AuditEventRequestSent      AuditEventType = "request_sent"
	AuditEventFieldFilled      AuditEventType = "field_filled"
	AuditEventRequestCompleted AuditEventType = "request_completed"
	AuditEventDocumentEmailed  AuditEventType = "document_emailed"
)

type AuditTargetType string

const (
	AuditTargetRequest AuditTargetType = "request"
	AuditTargetField   AuditTargetType = "field"
)

type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
)

// AuditEvent records who did what to a request or field. For signer actions
// the payload carries the signer provenance (name, email, IP) captured with
// the field image; the actor identifier itself is stored hashed.
type AuditEvent struct {
	ID          string
	RequestID   string
	EventType   AuditEventType
	Payload     any
	ActorType   AuditActorType
	ActorIDHash string
	TargetType  AuditTargetType
	TargetID    string
	Result      AuditResult
	ErrorCode   string
	CreatedAt   time.Time
}
