package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PatientInput carries the editable patient fields
type PatientInput struct {
	Name        string                 `json:"name" binding:"required"`
	Age         int                    `json:"age" binding:"gte=0,lte=150"`
	Gender      string                 `json:"gender"`
	Contact     string                 `json:"contact"`
	NHSNumber   *string                `json:"nhs_number"`
	Insured     bool                   `json:"insured"`
	Handicapped bool                   `json:"handicapped"`
	LabFeatures map[string]interface{} `json:"lab_features"`
}

type PatientService struct {
	db            *gorm.DB
	patientRepo   *repository.PatientRepository
	admissionRepo *repository.AdmissionRepository
	auditRepo     *repository.AuditRepository
	log           *zap.Logger
}

func NewPatientService(
	db *gorm.DB,
	patientRepo *repository.PatientRepository,
	admissionRepo *repository.AdmissionRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *PatientService {
	return &PatientService{
		db:            db,
		patientRepo:   patientRepo,
		admissionRepo: admissionRepo,
		auditRepo:     auditRepo,
		log:           log,
	}
}

// Create registers a patient
func (s *PatientService) Create(ctx context.Context, actor Actor, in PatientInput) (*models.Patient, error) {
	patient := &models.Patient{}
	if err := applyPatientInput(patient, in); err != nil {
		return nil, err
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("nhs_number already registered")
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "create", "patient", patient.ID, "Created patient: "+patient.Name)
	return patient, nil
}

// Update replaces the patient's editable fields
func (s *PatientService) Update(ctx context.Context, actor Actor, id uint, in PatientInput) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPatientInput(patient, in); err != nil {
		return nil, err
	}

	if err := s.patientRepo.UpdateDetails(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("nhs_number already registered")
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "update", "patient", id, "Updated patient: "+patient.Name)
	return s.patientRepo.GetByID(ctx, id)
}

// Get retrieves a patient by ID
func (s *PatientService) Get(ctx context.Context, id uint) (*models.Patient, error) {
	return s.patientRepo.GetByID(ctx, id)
}

// List retrieves active or archived patients
func (s *PatientService) List(ctx context.Context, archived bool) ([]models.Patient, error) {
	return s.patientRepo.List(ctx, archived)
}

// Admittable lists active patients with no open admission
func (s *PatientService) Admittable(ctx context.Context) ([]models.Patient, error) {
	return s.patientRepo.ListAdmittable(ctx)
}

// Archive hides a patient from active lists; refused while an admission is open.
func (s *PatientService) Archive(ctx context.Context, actor Actor, id uint) (*models.Patient, error) {
	return s.setArchived(ctx, actor, id, true)
}

// Restore brings an archived patient back
func (s *PatientService) Restore(ctx context.Context, actor Actor, id uint) (*models.Patient, error) {
	return s.setArchived(ctx, actor, id, false)
}

func (s *PatientService) setArchived(ctx context.Context, actor Actor, id uint, archived bool) (*models.Patient, error) {
	if err := actor.require("archive patient", models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patients := s.patientRepo.WithTx(tx)
		patient, err := patients.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if archived {
			open, err := s.admissionRepo.WithTx(tx).HasOpenAdmission(ctx, patient.ID)
			if err != nil {
				return err
			}
			if open {
				return fmt.Errorf("%w: patient %d", ErrActiveAdmission, patient.ID)
			}
		}
		return patients.SetArchived(ctx, id, archived)
	})
	if err != nil {
		return nil, err
	}

	action := "restore"
	if archived {
		action = "archive"
	}
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), action, "patient", id, "")
	s.log.Info("patient "+action+"d", zap.Uint("patient_id", id))
	return s.patientRepo.GetByID(ctx, id)
}

func applyPatientInput(p *models.Patient, in PatientInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return validationf("name is required")
	}
	if in.Age < 0 || in.Age > 150 {
		return validationf("age %d out of range", in.Age)
	}
	if in.NHSNumber != nil {
		nhs := strings.TrimSpace(*in.NHSNumber)
		if nhs == "" {
			in.NHSNumber = nil
		} else if len(nhs) != 10 || strings.Trim(nhs, "0123456789") != "" {
			return validationf("nhs_number must be 10 digits")
		} else {
			in.NHSNumber = &nhs
		}
	}

	p.Name = name
	p.Age = in.Age
	p.Gender = in.Gender
	p.Contact = in.Contact
	p.NHSNumber = in.NHSNumber
	p.Insured = in.Insured
	p.Handicapped = in.Handicapped
	if in.LabFeatures != nil {
		p.LabFeatures = datatypes.JSONMap(in.LabFeatures)
	}
	return nil
}
