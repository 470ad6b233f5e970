package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"inkwell/internal/domain"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req domain.SignatureRequest) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if req.ID == "" || req.PublicToken == "" {
		return errors.New("request id and public token are required")
	}
	return r.db.WithContext(ctx).Create(requestToModel(req)).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.SignatureRequest, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RequestModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	req := requestFromModel(model)
	return &req, nil
}

func (r *RequestRepository) GetByToken(ctx context.Context, token string) (*domain.SignatureRequest, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RequestModel
	err := r.db.WithContext(ctx).Where("public_token = ?", token).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	req := requestFromModel(model)
	return &req, nil
}

func (r *RequestRepository) Update(ctx context.Context, req domain.SignatureRequest) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&RequestModel{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"title":          req.Title,
			"source_pdf_ref": req.SourcePDFRef,
			"signed_pdf_ref": req.SignedPDFRef,
			"status":         string(req.Status),
			"updated_at":     req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func requestToModel(req domain.SignatureRequest) *RequestModel {
	return &RequestModel{
		ID:           req.ID,
		Title:        req.Title,
		SourcePDFRef: req.SourcePDFRef,
		SignedPDFRef: req.SignedPDFRef,
		Status:       string(req.Status),
		PublicToken:  req.PublicToken,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
}

func requestFromModel(m RequestModel) domain.SignatureRequest {
	return domain.SignatureRequest{
		ID:           m.ID,
		Title:        m.Title,
		SourcePDFRef: m.SourcePDFRef,
		SignedPDFRef: m.SignedPDFRef,
		Status:       domain.RequestStatus(m.Status),
		PublicToken:  m.PublicToken,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
