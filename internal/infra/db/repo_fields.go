package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"inkwell/internal/domain"
)

type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// ReplaceForRequest swaps the full field set in one transaction. Fields are
// only ever written as a complete set while the request is in draft.
func (r *FieldRepository) ReplaceForRequest(ctx context.Context, requestID string, fields []domain.SignatureField) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if requestID == "" {
		return errors.New("request id is required")
	}
	models := make([]FieldModel, 0, len(fields))
	for _, f := range fields {
		models = append(models, fieldToModel(f))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).Delete(&FieldModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
}

func (r *FieldRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.SignatureField, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []FieldModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("page_number, y, x").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	fields := make([]domain.SignatureField, 0, len(models))
	for _, m := range models {
		fields = append(fields, fieldFromModel(m))
	}
	return fields, nil
}

func fieldToModel(f domain.SignatureField) FieldModel {
	return FieldModel{
		ID:         f.ID,
		RequestID:  f.RequestID,
		PageNumber: f.PageNumber,
		X:          f.X,
		Y:          f.Y,
		Width:      f.Width,
		Height:     f.Height,
		Kind:       string(f.Kind),
		Label:      f.Label,
	}
}

func fieldFromModel(m FieldModel) domain.SignatureField {
	return domain.SignatureField{
		ID:         m.ID,
		RequestID:  m.RequestID,
		PageNumber: m.PageNumber,
		X:          m.X,
		Y:          m.Y,
		Width:      m.Width,
		Height:     m.Height,
		Kind:       domain.FieldKind(m.Kind),
		Label:      m.Label,
	}
}
