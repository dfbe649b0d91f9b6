package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnavailabilityRepository struct {
	db *gorm.DB
}

func NewUnavailabilityRepo(db *gorm.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: db}
}

func (r *UnavailabilityRepository) WithTx(tx *gorm.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: tx}
}

func (r *UnavailabilityRepository) Create(ctx context.Context, req *models.UnavailabilityRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *UnavailabilityRepository) GetByID(ctx context.Context, id uint) (*models.UnavailabilityRequest, error) {
	var req models.UnavailabilityRequest
	if err := r.db.WithContext(ctx).Preload("Staff").First(&req, id).Error; err != nil {
		return nil, translate(err, "unavailability request")
	}
	return &req, nil
}

func (r *UnavailabilityRepository) GetForUpdate(ctx context.Context, id uint) (*models.UnavailabilityRequest, error) {
	var req models.UnavailabilityRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, id).Error
	if err != nil {
		return nil, translate(err, "unavailability request")
	}
	return &req, nil
}

// List retrieves requests newest first, optionally for one staff member
func (r *UnavailabilityRepository) List(ctx context.Context, staffID *uint) ([]models.UnavailabilityRequest, error) {
	var reqs []models.UnavailabilityRequest
	q := r.db.WithContext(ctx).Preload("Staff")
	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	}
	err := q.Order("created_at DESC, id DESC").Find(&reqs).Error
	return reqs, err
}

func (r *UnavailabilityRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.UnavailabilityRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}
