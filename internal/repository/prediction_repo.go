package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
)

type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepo(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create appends a prediction to the patient timeline
func (r *PredictionRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByPatient retrieves a patient's predictions, most recent first
func (r *PredictionRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.PredictionRecord, error) {
	var records []models.PredictionRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

// CountHighRisk counts patients whose latest prediction is high risk
func (r *PredictionRepository) CountHighRisk(ctx context.Context) (int64, error) {
	var n int64
	latest := r.db.Model(&models.PredictionRecord{}).
		Select("MAX(id)").
		Group("patient_id")
	err := r.db.WithContext(ctx).Model(&models.PredictionRecord{}).
		Where("id IN (?) AND risk_level = ?", latest, models.RiskHigh).
		Count(&n).Error
	return n, err
}
