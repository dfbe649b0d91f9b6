package service

import (
	"context"
	"fmt"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"
	"hospital-operations-backend/internal/riskscorer"

	"go.uber.org/zap"
)

// Scorer is the readmission model behind RiskService
type Scorer interface {
	Predict(ctx context.Context, req riskscorer.PredictRequest) (*riskscorer.PredictResponse, error)
}

type RiskService struct {
	scorer         Scorer
	patientRepo    *repository.PatientRepository
	predictionRepo *repository.PredictionRepository
	auditRepo      *repository.AuditRepository
	log            *zap.Logger
}

func NewRiskService(
	scorer Scorer,
	patientRepo *repository.PatientRepository,
	predictionRepo *repository.PredictionRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *RiskService {
	return &RiskService{
		scorer:         scorer,
		patientRepo:    patientRepo,
		predictionRepo: predictionRepo,
		auditRepo:      auditRepo,
		log:            log,
	}
}

// Predict scores the patient's readmission risk and appends it to their timeline.
func (s *RiskService) Predict(ctx context.Context, actor Actor, patientID uint, notes string) (*models.PredictionRecord, error) {
	if err := actor.require("predict readmission risk", models.RoleDoctor, models.RoleNurse); err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Archived {
		return nil, validationf("patient %d is archived", patientID)
	}

	resp, err := s.scorer.Predict(ctx, riskscorer.PredictRequest{
		PatientID: patient.ID,
		Features:  featuresOf(patient),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	if resp.Risk == nil {
		return nil, fmt.Errorf("%w: response carries no risk value", ErrScorerUnavailable)
	}
	risk := *resp.Risk
	if risk != models.RiskLow && risk != models.RiskHigh {
		return nil, fmt.Errorf("%w: unexpected risk value %d", ErrScorerUnavailable, risk)
	}

	record := &models.PredictionRecord{
		PatientID:   patient.ID,
		PredictedBy: actor.IDPtr(),
		RiskLevel:   risk,
		Notes:       notes,
	}
	if err := s.predictionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "predict", "patient", patient.ID,
		fmt.Sprintf("Readmission risk %d", risk))
	s.log.Info("risk predicted", zap.Uint("patient_id", patient.ID), zap.Int("risk", risk))
	return record, nil
}

// Timeline lists a patient's predictions, newest first
func (s *RiskService) Timeline(ctx context.Context, patientID uint) ([]models.PredictionRecord, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.predictionRepo.ListByPatient(ctx, patientID)
}

// featuresOf merges stored lab features with demographics. Missing lab values are sent as absent.
func featuresOf(p *models.Patient) map[string]interface{} {
	features := make(map[string]interface{}, len(p.LabFeatures)+3)
	for k, v := range p.LabFeatures {
		features[k] = v
	}
	features["age"] = p.Age
	features["gender"] = p.Gender
	features["insured"] = p.Insured
	return features
}
