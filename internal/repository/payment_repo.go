package repository

import (
	"context"

	"hospital-operations-backend/internal/database"
	"hospital-operations-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// CreateIfAbsent inserts the payment unless the admission already has one.
// It reports false, leaving payment unsaved, when the unique admission_id index skipped the insert.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, payment *models.Payment, procedureIDs []uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "admission_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(payment)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if len(procedureIDs) > 0 {
		rows := make([]models.PaymentProcedure, 0, len(procedureIDs))
		for _, pid := range procedureIDs {
			rows = append(rows, models.PaymentProcedure{PaymentID: payment.ID, ProcedureID: pid})
		}
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

// GetByAdmissionID retrieves the payment of an admission
func (r *PaymentRepository) GetByAdmissionID(ctx context.Context, admissionID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Procedures", func(db *gorm.DB) *gorm.DB { return db.Order("procedures.id ASC") }).
		Where("admission_id = ?", admissionID).
		First(&payment).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

// List retrieves payments, newest first
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&payments).Error
	return payments, err
}

// SumFinalAmount totals every payment ever issued
func (r *PaymentRepository) SumFinalAmount(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Row().
		Scan(&total)
	return total, err
}
