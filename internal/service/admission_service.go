package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateAdmissionInput opens an encounter. Doctor, nurse and room can all be attached later.
type CreateAdmissionInput struct {
	PatientID uint  `json:"patient_id" binding:"required"`
	DoctorID  *uint `json:"doctor_id"`
	NurseID   *uint `json:"nurse_id"`
	RoomID    *uint `json:"room_id"`
}

// ExamineInput is a doctor's examination outcome.
type ExamineInput struct {
	RequiresInpatient bool   `json:"requires_inpatient"`
	Notes             string `json:"notes"`
	ProcedureIDs      []uint `json:"procedure_ids"`
}

// AdmissionService drives the admission state machine.
// Every transition commits its state change, bed counter and payment row together or not at all.
type AdmissionService struct {
	db             *gorm.DB
	admissionRepo  *repository.AdmissionRepository
	patientRepo    *repository.PatientRepository
	staffRepo      *repository.StaffRepository
	roomRepo       *repository.RoomRepository
	procedureRepo  *repository.ProcedureRepository
	auditRepo      *repository.AuditRepository
	billing        *BillingService
	schedules      *ScheduleService
	requireOnShift bool
	log            *zap.Logger
	now            Clock
}

func NewAdmissionService(
	db *gorm.DB,
	admissionRepo *repository.AdmissionRepository,
	patientRepo *repository.PatientRepository,
	staffRepo *repository.StaffRepository,
	roomRepo *repository.RoomRepository,
	procedureRepo *repository.ProcedureRepository,
	auditRepo *repository.AuditRepository,
	billing *BillingService,
	schedules *ScheduleService,
	requireOnShift bool,
	log *zap.Logger,
) *AdmissionService {
	return &AdmissionService{
		db:             db,
		admissionRepo:  admissionRepo,
		patientRepo:    patientRepo,
		staffRepo:      staffRepo,
		roomRepo:       roomRepo,
		procedureRepo:  procedureRepo,
		auditRepo:      auditRepo,
		billing:        billing,
		schedules:      schedules,
		requireOnShift: requireOnShift,
		log:            log,
		now:            systemClock,
	}
}

// SetClock replaces the time source of the admission workflow and its billing step.
func (s *AdmissionService) SetClock(now Clock) {
	s.now = now
	s.billing.SetClock(now)
}

// Create opens a pending admission, reserving a bed when a room is given.
func (s *AdmissionService) Create(ctx context.Context, actor Actor, in CreateAdmissionInput) (*models.Admission, error) {
	if err := actor.require("create admission", models.RoleAdmin, models.RoleDoctor, models.RoleNurse); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, in.DoctorID, models.RoleDoctor); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, in.NurseID, models.RoleNurse); err != nil {
		return nil, err
	}

	var admission *models.Admission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := s.patientRepo.WithTx(tx).GetForUpdate(ctx, in.PatientID)
		if err != nil {
			return err
		}
		if patient.Archived {
			return validationf("patient %d is archived", patient.ID)
		}

		admissions := s.admissionRepo.WithTx(tx)
		open, err := admissions.HasOpenAdmission(ctx, patient.ID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("%w: patient %d", ErrActiveAdmission, patient.ID)
		}

		admission = &models.Admission{
			PatientID:     patient.ID,
			DoctorID:      in.DoctorID,
			NurseID:       in.NurseID,
			Status:        models.AdmissionPending,
			AdmissionDate: s.now(),
		}
		if in.RoomID != nil {
			room, err := s.takeBed(ctx, tx, *in.RoomID)
			if err != nil {
				return err
			}
			admission.CurrentRoomID = &room.ID
			admission.LastRoomNumber = room.RoomNumber
		}
		return admissions.Create(ctx, admission)
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Admitted patient %d", admission.PatientID)
	if admission.CurrentRoomID != nil {
		details += fmt.Sprintf(" to room %s", admission.LastRoomNumber)
	}
	s.record(ctx, actor, "admission_create", admission.ID, details)
	return s.admissionRepo.GetByID(ctx, admission.ID)
}

// Examine records a doctor's findings, unions the procedures into the admission and moves it
// to admitted or pending_discharge. Reaching pending_discharge bills the admission once.
func (s *AdmissionService) Examine(ctx context.Context, actor Actor, id uint, in ExamineInput) (*models.Admission, error) {
	if err := actor.require("examine admission", models.RoleDoctor, models.RoleAdmin); err != nil {
		return nil, err
	}
	procedureIDs := uniqueIDs(in.ProcedureIDs)

	var from, target models.AdmissionStatus
	var payment *models.Payment
	var billed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admissions := s.admissionRepo.WithTx(tx)
		admission, err := admissions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		from = admission.Status
		target = models.AdmissionAdmitted
		if !in.RequiresInpatient {
			target = models.AdmissionPendingDischarge
		}
		// Re-examining in place merges findings without a state change.
		if from != target {
			if err := checkTransition(from, target); err != nil {
				return err
			}
		}

		if _, err := s.procedureRepo.WithTx(tx).GetByIDs(ctx, procedureIDs); err != nil {
			return err
		}
		if err := admissions.AddProcedures(ctx, admission.ID, procedureIDs); err != nil {
			return fmt.Errorf("failed to add procedures: %w", err)
		}

		// Once admitted, the encounter stays inpatient when the patient is sent home.
		requiresInpatient := in.RequiresInpatient || admission.RequiresInpatient
		fields := map[string]interface{}{
			"status":             target,
			"requires_inpatient": requiresInpatient,
		}
		if strings.TrimSpace(in.Notes) != "" {
			fields["doctor_notes"] = in.Notes
		}
		if admission.DoctorID == nil && actor.Role == models.RoleDoctor {
			fields["doctor_id"] = actor.StaffID
		}
		if err := admissions.UpdateFields(ctx, admission.ID, fields); err != nil {
			return fmt.Errorf("failed to update admission: %w", err)
		}

		if target == models.AdmissionPendingDischarge {
			admission.Status = target
			admission.RequiresInpatient = requiresInpatient
			payment, billed, err = s.billing.ensurePayment(ctx, tx, admission, nil, "")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, "admission_examine", id,
		fmt.Sprintf("Examined: %s -> %s, %d procedures added", from, target, len(procedureIDs)))
	if billed {
		s.billing.afterBilling(ctx, actor, payment)
	}
	return s.admissionRepo.GetByID(ctx, id)
}

// AssignRoom puts an admitted patient in a room, releasing any bed held elsewhere.
// A full room leaves the admission, and its current bed, unchanged.
func (s *AdmissionService) AssignRoom(ctx context.Context, actor Actor, id, roomID uint) (*models.Admission, error) {
	if err := actor.require("assign room", models.RoleAdmin); err != nil {
		return nil, err
	}

	var previous string
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admissions := s.admissionRepo.WithTx(tx)
		admission, err := admissions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if admission.Status != models.AdmissionAdmitted {
			return &InvalidTransitionError{Entity: "admission", From: string(admission.Status), To: "assign_room"}
		}
		if admission.CurrentRoomID != nil && *admission.CurrentRoomID == roomID {
			return nil
		}

		if admission.CurrentRoomID != nil {
			if err := s.roomRepo.WithTx(tx).ReleaseBed(ctx, *admission.CurrentRoomID); err != nil {
				return fmt.Errorf("failed to release bed: %w", err)
			}
		}
		room, err := s.takeBed(ctx, tx, roomID)
		if err != nil {
			return err
		}

		previous = admission.LastRoomNumber
		changed = true
		return admissions.UpdateFields(ctx, admission.ID, map[string]interface{}{
			"current_room_id":  room.ID,
			"last_room_number": room.RoomNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	admission, err := s.admissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		details := fmt.Sprintf("Assigned room %s", admission.LastRoomNumber)
		if previous != "" {
			details += fmt.Sprintf(" (was %s)", previous)
		}
		s.record(ctx, actor, "admission_assign_room", id, details)
	}
	return admission, nil
}

// ApproveDischarge closes a billed admission and frees its bed.
func (s *AdmissionService) ApproveDischarge(ctx context.Context, actor Actor, id uint) (*models.Admission, error) {
	if err := actor.require("approve discharge", models.RoleAdmin); err != nil {
		return nil, err
	}

	var payment *models.Payment
	var billed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admissions := s.admissionRepo.WithTx(tx)
		admission, err := admissions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(admission.Status, models.AdmissionDischarged); err != nil {
			return err
		}

		payment, billed, err = s.billing.ensurePayment(ctx, tx, admission, nil, "")
		if err != nil {
			return err
		}

		if admission.CurrentRoomID != nil {
			if err := s.roomRepo.WithTx(tx).ReleaseBed(ctx, *admission.CurrentRoomID); err != nil {
				return fmt.Errorf("failed to release bed: %w", err)
			}
		}
		return admissions.UpdateFields(ctx, admission.ID, map[string]interface{}{
			"status":          models.AdmissionDischarged,
			"discharge_date":  s.now(),
			"current_room_id": nil,
		})
	})
	if err != nil {
		return nil, err
	}

	if billed {
		s.billing.afterBilling(ctx, actor, payment)
	}
	s.record(ctx, actor, "admission_discharge", id, "Discharge approved")
	return s.admissionRepo.GetByID(ctx, id)
}

// RejectDischarge keeps the admission in pending_discharge and records why.
func (s *AdmissionService) RejectDischarge(ctx context.Context, actor Actor, id uint, reason string) (*models.Admission, error) {
	if err := actor.require("reject discharge", models.RoleAdmin); err != nil {
		return nil, err
	}
	admission, err := s.admissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admission.Status != models.AdmissionPendingDischarge {
		return nil, &InvalidTransitionError{Entity: "admission", From: string(admission.Status), To: "reject_discharge"}
	}

	details := "Discharge rejected"
	if reason = strings.TrimSpace(reason); reason != "" {
		details += ": " + reason
	}
	if err := s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "admission_reject_discharge", "admission", id, details); err != nil {
		return nil, fmt.Errorf("failed to record discharge rejection: %w", err)
	}
	s.log.Info("discharge rejected", zap.Uint("admission_id", id), zap.Uint("actor_id", actor.StaffID))
	return admission, nil
}

// Get returns one admission with its relations
func (s *AdmissionService) Get(ctx context.Context, id uint) (*models.Admission, error) {
	return s.admissionRepo.GetByID(ctx, id)
}

// List returns admissions matching filter
func (s *AdmissionService) List(ctx context.Context, filter repository.AdmissionFilter) ([]models.Admission, error) {
	return s.admissionRepo.List(ctx, filter)
}

// History returns the audit trail of one admission, including rejected discharges
func (s *AdmissionService) History(ctx context.Context, id uint) ([]models.AuditLog, error) {
	if _, err := s.admissionRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByEntity(ctx, "admission", id)
}

// takeBed reserves a bed in roomID inside tx, reporting a full room as ErrRoomUnavailable.
func (s *AdmissionService) takeBed(ctx context.Context, tx *gorm.DB, roomID uint) (*models.Room, error) {
	rooms := s.roomRepo.WithTx(tx)
	if err := reserveBed(ctx, rooms, roomID); err != nil {
		if errors.Is(err, ErrRoomFull) {
			return nil, fmt.Errorf("%w: %w", ErrRoomUnavailable, err)
		}
		return nil, err
	}
	return rooms.GetRoomByID(ctx, roomID)
}

// checkStaff verifies an optional staff reference holds role, and is on shift when that is enforced.
func (s *AdmissionService) checkStaff(ctx context.Context, id *uint, role models.Role) error {
	if id == nil {
		return nil
	}
	staff, err := s.staffRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if staff.Role != role || staff.Archived {
		return validationf("staff %d is not an active %s", staff.ID, role)
	}
	if !s.requireOnShift {
		return nil
	}
	working, err := s.schedules.IsWorking(ctx, staff.ID, role, s.now())
	if err != nil {
		return err
	}
	if !working {
		return validationf("%s %d is not currently on shift", role, staff.ID)
	}
	return nil
}

func (s *AdmissionService) record(ctx context.Context, actor Actor, action string, id uint, details string) {
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), action, "admission", id, details)
	s.log.Info(action, zap.Uint("admission_id", id), zap.Uint("actor_id", actor.StaffID))
}
