package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) WithTx(tx *gorm.DB) *PatientRepository {
	return &PatientRepository{db: tx}
}

// GetByID retrieves a patient by ID, archived or not
func (r *PatientRepository) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, translate(err, "patient")
	}
	return &patient, nil
}

// GetForUpdate loads a patient under a row lock, serialising admissions of the same patient
func (r *PatientRepository) GetForUpdate(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&patient, id).Error
	if err != nil {
		return nil, translate(err, "patient")
	}
	return &patient, nil
}

// List retrieves patients filtered by archive flag
func (r *PatientRepository) List(ctx context.Context, archived bool) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).
		Where("archived = ?", archived).
		Order("name ASC").
		Find(&patients).Error
	return patients, err
}

// ListAdmittable retrieves active patients without an open admission
func (r *PatientRepository) ListAdmittable(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	open := r.db.Model(&models.Admission{}).
		Select("1").
		Where("admissions.patient_id = patients.id AND admissions.status <> ?", models.AdmissionDischarged)
	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Where("NOT EXISTS (?)", open).
		Order("name ASC").
		Find(&patients).Error
	return patients, err
}

// Create creates a new patient
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return translate(r.db.WithContext(ctx).Create(patient).Error, "patient")
}

// UpdateDetails writes the mutable demographic and medical fields.
// Identity (id, created_at) and the archive flag are left untouched.
func (r *PatientRepository) UpdateDetails(ctx context.Context, patient *models.Patient) error {
	err := r.db.WithContext(ctx).Model(patient).
		Select("name", "age", "gender", "contact", "nhs_number", "insured", "handicapped", "lab_features").
		Updates(patient).Error
	return translate(err, "patient")
}

// SetArchived flips the soft-delete flag
func (r *PatientRepository) SetArchived(ctx context.Context, id uint, archived bool) error {
	return r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ?", id).
		Update("archived", archived).Error
}

// CountActive counts non-archived patients
func (r *PatientRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).Where("archived = ?", false).Count(&n).Error
	return n, err
}
