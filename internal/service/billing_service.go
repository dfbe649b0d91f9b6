package service

import (
	"context"
	"errors"
	"fmt"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BillingService persists the calculator's result as the admission's one Payment.
type BillingService struct {
	db            *gorm.DB
	calc          Calculator
	defaultMethod string
	admissionRepo *repository.AdmissionRepository
	patientRepo   *repository.PatientRepository
	procedureRepo *repository.ProcedureRepository
	paymentRepo   *repository.PaymentRepository
	auditRepo     *repository.AuditRepository
	log           *zap.Logger
	now           Clock
}

func NewBillingService(
	db *gorm.DB,
	calc Calculator,
	defaultMethod string,
	admissionRepo *repository.AdmissionRepository,
	patientRepo *repository.PatientRepository,
	procedureRepo *repository.ProcedureRepository,
	paymentRepo *repository.PaymentRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *BillingService {
	return &BillingService{
		db:            db,
		calc:          calc,
		defaultMethod: defaultMethod,
		admissionRepo: admissionRepo,
		patientRepo:   patientRepo,
		procedureRepo: procedureRepo,
		paymentRepo:   paymentRepo,
		auditRepo:     auditRepo,
		log:           log,
		now:           systemClock,
	}
}

// SetClock replaces the time source.
func (s *BillingService) SetClock(now Clock) {
	s.now = now
}

// ComputePayment bills an admission awaiting discharge. Repeated calls return the
// original Payment with created=false instead of writing a second row.
// An empty procedureIDs bills the procedures accumulated on the admission.
func (s *BillingService) ComputePayment(ctx context.Context, actor Actor, admissionID uint, procedureIDs []uint, method string) (*models.Payment, bool, error) {
	if err := actor.require("compute payment", models.RoleAdmin); err != nil {
		return nil, false, err
	}

	var payment *models.Payment
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admission, err := s.admissionRepo.WithTx(tx).GetForUpdate(ctx, admissionID)
		if err != nil {
			return err
		}

		existing, err := s.paymentRepo.WithTx(tx).GetByAdmissionID(ctx, admissionID)
		if err == nil {
			payment = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if admission.Status != models.AdmissionPendingDischarge {
			return validationf("admission %d is %s; only pending_discharge admissions can be billed", admission.ID, admission.Status)
		}

		payment, created, err = s.ensurePayment(ctx, tx, admission, procedureIDs, method)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.afterBilling(ctx, actor, payment)
	}
	return payment, created, nil
}

// GetByAdmission returns the Payment of an admission
func (s *BillingService) GetByAdmission(ctx context.Context, admissionID uint) (*models.Payment, error) {
	return s.paymentRepo.GetByAdmissionID(ctx, admissionID)
}

// List returns all payments
func (s *BillingService) List(ctx context.Context) ([]models.Payment, error) {
	return s.paymentRepo.List(ctx)
}

// Procedures returns the billable procedure catalog
func (s *BillingService) Procedures(ctx context.Context) ([]models.Procedure, error) {
	return s.procedureRepo.GetAll(ctx)
}

// ensurePayment creates the admission's Payment inside tx unless one exists.
// The unique admission_id index settles concurrent callers: the loser re-reads the winner's row.
func (s *BillingService) ensurePayment(ctx context.Context, tx *gorm.DB, admission *models.Admission, procedureIDs []uint, method string) (*models.Payment, bool, error) {
	payments := s.paymentRepo.WithTx(tx)

	existing, err := payments.GetByAdmissionID(ctx, admission.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	patient, err := s.patientRepo.WithTx(tx).GetByID(ctx, admission.PatientID)
	if err != nil {
		return nil, false, err
	}

	var procedures []models.Procedure
	if len(procedureIDs) == 0 {
		procedures, err = s.admissionRepo.WithTx(tx).GetProcedures(ctx, admission.ID)
	} else {
		procedures, err = s.procedureRepo.WithTx(tx).GetByIDs(ctx, uniqueIDs(procedureIDs))
	}
	if err != nil {
		return nil, false, err
	}

	breakdown := s.calc.Calculate(BillingInput{
		Procedures:    procedures,
		AdmissionDate: admission.AdmissionDate,
		DischargeDate: admission.DischargeDate,
		Now:           s.now(),
		Insured:       patient.Insured,
		Handicapped:   patient.Handicapped,
	})

	if method == "" {
		method = s.defaultMethod
	}
	paymentType := models.PaymentOutpatient
	if admission.RequiresInpatient {
		paymentType = models.PaymentInpatient
	}

	payment := &models.Payment{
		AdmissionID:         admission.ID,
		PatientID:           admission.PatientID,
		ReceiptNumber:       uuid.NewString(),
		PaymentType:         paymentType,
		ProcedureCost:       breakdown.ProcedureCost,
		LengthOfStayDays:    breakdown.LengthOfStayDays,
		DailyCareCost:       breakdown.DailyCareCost,
		TotalBeforeDiscount: breakdown.TotalBeforeDiscount,
		DiscountPercent:     breakdown.DiscountPercent,
		FinalAmount:         breakdown.FinalAmount,
		Method:              method,
	}

	ids := make([]uint, 0, len(procedures))
	for _, p := range procedures {
		ids = append(ids, p.ID)
	}

	created, err := payments.CreateIfAbsent(ctx, payment, ids)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create payment: %w", err)
	}
	if !created {
		existing, err := payments.GetByAdmissionID(ctx, admission.ID)
		return existing, false, err
	}

	payment.Procedures = procedures
	return payment, true, nil
}

func (s *BillingService) afterBilling(ctx context.Context, actor Actor, payment *models.Payment) {
	details := fmt.Sprintf("Billed admission %d: %s (%s%% discount), receipt %s",
		payment.AdmissionID, payment.FinalAmount.StringFixed(2), payment.DiscountPercent.String(), payment.ReceiptNumber)
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "payment_create", "admission", payment.AdmissionID, details)
	s.log.Info("payment created",
		zap.Uint("admission_id", payment.AdmissionID),
		zap.String("final_amount", payment.FinalAmount.StringFixed(2)),
		zap.String("receipt_number", payment.ReceiptNumber))
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
