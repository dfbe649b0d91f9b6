package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdmissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepo(db *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

func (r *AdmissionRepository) WithTx(tx *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: tx}
}

// AdmissionFilter narrows List results; zero values match everything.
type AdmissionFilter struct {
	Status    models.AdmissionStatus
	PatientID uint
}

// Create inserts a new admission row
func (r *AdmissionRepository) Create(ctx context.Context, admission *models.Admission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(admission).Error
}

// GetByID retrieves an admission with its patient, staff, room and procedures
func (r *AdmissionRepository) GetByID(ctx context.Context, id uint) (*models.Admission, error) {
	var admission models.Admission
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Preload("Nurse").
		Preload("CurrentRoom").
		Preload("Procedures", func(db *gorm.DB) *gorm.DB { return db.Order("procedures.id ASC") }).
		First(&admission, id).Error
	if err != nil {
		return nil, translate(err, "admission")
	}
	return &admission, nil
}

// GetForUpdate loads the bare admission row under a row lock
func (r *AdmissionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Admission, error) {
	var admission models.Admission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&admission, id).Error
	if err != nil {
		return nil, translate(err, "admission")
	}
	return &admission, nil
}

// List retrieves admissions, newest first
func (r *AdmissionRepository) List(ctx context.Context, filter AdmissionFilter) ([]models.Admission, error) {
	var admissions []models.Admission
	q := r.db.WithContext(ctx).Preload("Patient").Preload("CurrentRoom")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PatientID != 0 {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	err := q.Order("admission_date DESC, id DESC").Find(&admissions).Error
	return admissions, err
}

// HasOpenAdmission reports whether the patient has an admission that is not discharged
func (r *AdmissionRepository) HasOpenAdmission(ctx context.Context, patientID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Admission{}).
		Where("patient_id = ? AND status <> ?", patientID, models.AdmissionDischarged).
		Count(&n).Error
	return n > 0, err
}

// UpdateFields writes the given columns of one admission
func (r *AdmissionRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Admission{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// AddProcedures unions procedure ids into the admission's procedure set
func (r *AdmissionRepository) AddProcedures(ctx context.Context, admissionID uint, procedureIDs []uint) error {
	if len(procedureIDs) == 0 {
		return nil
	}
	rows := make([]models.AdmissionProcedure, 0, len(procedureIDs))
	for _, pid := range procedureIDs {
		rows = append(rows, models.AdmissionProcedure{AdmissionID: admissionID, ProcedureID: pid})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// GetProcedures retrieves the admission's accumulated procedures
func (r *AdmissionRepository) GetProcedures(ctx context.Context, admissionID uint) ([]models.Procedure, error) {
	var procedures []models.Procedure
	err := r.db.WithContext(ctx).
		Joins("JOIN admission_procedures ON admission_procedures.procedure_id = procedures.id").
		Where("admission_procedures.admission_id = ?", admissionID).
		Order("procedures.id ASC").
		Find(&procedures).Error
	return procedures, err
}

// StatusCount is one row of CountByStatus
type StatusCount struct {
	Status models.AdmissionStatus `json:"status"`
	Count  int64                  `json:"count"`
}

// CountByStatus groups admissions by workflow state
func (r *AdmissionRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Admission{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&counts).Error
	return counts, err
}
