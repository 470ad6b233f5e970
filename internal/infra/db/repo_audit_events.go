package db

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/domain"
)

type AuditEventRepository struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

func (r *AuditEventRepository) Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if r.db == nil {
		return domain.AuditEvent{}, errDBUnavailable
	}
	if event.ID == "" {
		id, err := newUUID()
		if err != nil {
			return domain.AuditEvent{}, err
		}
		event.ID = id
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var payloadJSON []byte
	if event.Payload != nil {
		encoded, err := json.Marshal(event.Payload)
		if err != nil {
			return domain.AuditEvent{}, err
		}
		payloadJSON = encoded
	}

	model := AuditEventModel{
		ID:          event.ID,
		RequestID:   event.RequestID,
		EventType:   string(event.EventType),
		PayloadJSON: payloadJSON,
		ActorType:   string(event.ActorType),
		ActorIDHash: event.ActorIDHash,
		TargetType:  string(event.TargetType),
		TargetID:    event.TargetID,
		Result:      string(event.Result),
		ErrorCode:   event.ErrorCode,
		CreatedAt:   event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.AuditEvent{}, err
	}
	return event, nil
}

func (r *AuditEventRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.AuditEvent, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AuditEventModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	events := make([]domain.AuditEvent, 0, len(models))
	for _, m := range models {
		event := domain.AuditEvent{
			ID:          m.ID,
			RequestID:   m.RequestID,
			EventType:   domain.AuditEventType(m.EventType),
			ActorType:   domain.AuditActorType(m.ActorType),
			ActorIDHash: m.ActorIDHash,
			TargetType:  domain.AuditTargetType(m.TargetType),
			TargetID:    m.TargetID,
			Result:      domain.AuditResult(m.Result),
			ErrorCode:   m.ErrorCode,
			CreatedAt:   m.CreatedAt,
		}
		if len(m.PayloadJSON) > 0 {
			var payload map[string]any
			if err := json.Unmarshal(m.PayloadJSON, &payload); err == nil {
				event.Payload = payload
			}
		}
		events = append(events, event)
	}
	return events, nil
}
