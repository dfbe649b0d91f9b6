package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) WithTx(tx *gorm.DB) *StaffRepository {
	return &StaffRepository{db: tx}
}

// GetByID retrieves a staff member by ID
func (r *StaffRepository) GetByID(ctx context.Context, id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, id).Error; err != nil {
		return nil, translate(err, "staff member")
	}
	return &staff, nil
}

// GetByUsername retrieves a staff member by username
func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&staff).Error; err != nil {
		return nil, translate(err, "staff member")
	}
	return &staff, nil
}

// List retrieves active staff, optionally restricted to one role
func (r *StaffRepository) List(ctx context.Context, role models.Role) ([]models.Staff, error) {
	var staff []models.Staff
	q := r.db.WithContext(ctx).Where("archived = ?", false)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Order("full_name ASC").Find(&staff).Error
	return staff, err
}

// Create creates a new staff member
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	return translate(r.db.WithContext(ctx).Create(staff).Error, "staff member")
}
