package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/domain"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Upsert stores the capture for one field, replacing any previous capture.
// The last write for a field wins.
func (r *ImageRepository) Upsert(ctx context.Context, img domain.FieldSignatureImage) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if img.FieldID == "" || img.RequestID == "" {
		return errors.New("field id and request id are required")
	}
	if len(img.PNG) == 0 {
		return domain.ErrInvalidImage
	}
	model := FieldImageModel{
		FieldID:     img.FieldID,
		RequestID:   img.RequestID,
		PNG:         copyBytes(img.PNG),
		SignerName:  img.SignerName,
		SignerEmail: img.SignerEmail,
		SignerIP:    img.SignerIP,
		CapturedAt:  img.CapturedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"png", "signer_name", "signer_email", "signer_ip", "captured_at"}),
		}).
		Create(&model).Error
}

func (r *ImageRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.FieldSignatureImage, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []FieldImageModel
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).Find(&models).Error
	if err != nil {
		return nil, err
	}
	images := make([]domain.FieldSignatureImage, 0, len(models))
	for _, m := range models {
		images = append(images, domain.FieldSignatureImage{
			FieldID:     m.FieldID,
			RequestID:   m.RequestID,
			PNG:         copyBytes(m.PNG),
			SignerName:  m.SignerName,
			SignerEmail: m.SignerEmail,
			SignerIP:    m.SignerIP,
			CapturedAt:  m.CapturedAt,
		})
	}
	return images, nil
}
