package repository

import (
	"context"
	"fmt"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
)

type ProcedureRepository struct {
	db *gorm.DB
}

func NewProcedureRepo(db *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{db: db}
}

func (r *ProcedureRepository) WithTx(tx *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{db: tx}
}

// GetAll retrieves the procedure catalog
func (r *ProcedureRepository) GetAll(ctx context.Context) ([]models.Procedure, error) {
	var procedures []models.Procedure
	err := r.db.WithContext(ctx).Order("name ASC").Find(&procedures).Error
	return procedures, err
}

// GetByIDs retrieves the given procedures; every id must exist.
func (r *ProcedureRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Procedure, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var procedures []models.Procedure
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&procedures).Error; err != nil {
		return nil, err
	}

	found := make(map[uint]bool, len(procedures))
	for _, p := range procedures {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("procedure %d %w", id, ErrNotFound)
		}
	}
	return procedures, nil
}

// Create creates a catalog entry
func (r *ProcedureRepository) Create(ctx context.Context, procedure *models.Procedure) error {
	return r.db.WithContext(ctx).Create(procedure).Error
}
