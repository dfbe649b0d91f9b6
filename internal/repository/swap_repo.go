package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SwapRepository struct {
	db *gorm.DB
}

func NewSwapRepo(db *gorm.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

func (r *SwapRepository) WithTx(tx *gorm.DB) *SwapRepository {
	return &SwapRepository{db: tx}
}

// Create inserts a swap request
func (r *SwapRepository) Create(ctx context.Context, swap *models.ShiftSwapRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(swap).Error
}

// GetByID retrieves a swap request with both parties and shifts
func (r *SwapRepository) GetByID(ctx context.Context, id uint) (*models.ShiftSwapRequest, error) {
	var swap models.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("RequesterShift").
		Preload("Recipient").
		Preload("RecipientShift").
		First(&swap, id).Error
	if err != nil {
		return nil, translate(err, "swap request")
	}
	return &swap, nil
}

// GetForUpdate loads a bare swap request under a row lock
func (r *SwapRepository) GetForUpdate(ctx context.Context, id uint) (*models.ShiftSwapRequest, error) {
	var swap models.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&swap, id).Error
	if err != nil {
		return nil, translate(err, "swap request")
	}
	return &swap, nil
}

// List retrieves swap requests, newest first. A non-nil involving limits results to requests
// where that staff member is requester or recipient.
func (r *SwapRepository) List(ctx context.Context, involving *uint, status models.RequestStatus) ([]models.ShiftSwapRequest, error) {
	var swaps []models.ShiftSwapRequest
	q := r.db.WithContext(ctx).
		Preload("RequesterShift").
		Preload("RecipientShift")
	if involving != nil {
		q = q.Where("requester_id = ? OR recipient_id = ?", *involving, *involving)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").Find(&swaps).Error
	return swaps, err
}

// UpdateFields writes the given columns of one swap request
func (r *SwapRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.ShiftSwapRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// CountByStatus counts swap requests in one state
func (r *SwapRepository) CountByStatus(ctx context.Context, status models.RequestStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ShiftSwapRequest{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
