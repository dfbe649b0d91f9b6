package service

import (
	"sync"
	"testing"
	"time"

	"hospital-operations-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdmissionCreate_ReservesBed(t *testing.T) {
	f := newFixture(t)
	room := f.newRoom(t, "301", 2, 0)
	patient := f.newPatient(t, true, false)

	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID, RoomID: &room.ID})
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionPending, admission.Status)
	require.NotNil(t, admission.CurrentRoomID)
	assert.Equal(t, room.ID, *admission.CurrentRoomID)
	assert.Equal(t, "301", admission.LastRoomNumber)
	assert.Equal(t, 1, f.room(t, room.ID).OccupiedBeds)
	assert.True(t, admission.AdmissionDate.Equal(fixedNow))
}

func TestAdmissionCreate_FullRoomRollsBack(t *testing.T) {
	f := newFixture(t)
	room := f.newRoom(t, "301", 1, 1)
	patient := f.newPatient(t, false, false)

	_, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID, RoomID: &room.ID})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.ErrorIs(t, err, ErrRoomFull)

	var n int64
	require.NoError(t, f.db.Model(&models.Admission{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.room(t, room.ID).OccupiedBeds)
}

func TestAdmissionCreate_RejectsSecondOpenAdmission(t *testing.T) {
	f := newFixture(t)
	patient := f.newPatient(t, true, false)

	_, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)

	_, err = f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	assert.ErrorIs(t, err, ErrActiveAdmission)
}

func TestAdmissionCreate_Validation(t *testing.T) {
	f := newFixture(t)
	nurse := f.newStaff(t, models.RoleNurse)
	patient := f.newPatient(t, true, false)

	_, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID, DoctorID: &nurse.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.patients.Archive(f.ctx, f.admin, patient.ID)
	require.NoError(t, err)
	_, err = f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	assert.ErrorIs(t, err, ErrValidation)

	pharmacist := f.newStaff(t, models.RolePharmacyStaff)
	_, err = f.admissions.Create(f.ctx, f.actorFor(pharmacist), CreateAdmissionInput{PatientID: patient.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExamine_OutpatientBillsOnce(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	patient := f.newPatient(t, true, false)

	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)

	admission, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{Notes: "Sent home"})
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionPendingDischarge, admission.Status)
	assert.False(t, admission.RequiresInpatient)
	assert.Equal(t, "Sent home", admission.DoctorNotes)
	require.NotNil(t, admission.DoctorID)
	assert.Equal(t, doctor.ID, *admission.DoctorID)

	payment, err := f.billing.GetByAdmission(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, payment.LengthOfStayDays)
	assert.Equal(t, models.PaymentOutpatient, payment.PaymentType)
	assert.Equal(t, "unspecified", payment.Method)
	assert.NotEmpty(t, payment.ReceiptNumber)
	assert.Equal(t, int64(1), f.countPayments(t, admission.ID))
}

func TestExamine_InsuredBill(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	procedure := f.newProcedure(t, "Chest X-Ray", "500.00")
	patient := f.newPatient(t, true, false)

	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)
	_, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{ProcedureIDs: []uint{procedure.ID}})
	require.NoError(t, err)

	payment, err := f.billing.GetByAdmission(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", payment.ProcedureCost.StringFixed(2))
	assert.Equal(t, "530.00", payment.TotalBeforeDiscount.StringFixed(2))
	assert.Equal(t, "20.00", payment.DiscountPercent.StringFixed(2))
	assert.Equal(t, "424.00", payment.FinalAmount.StringFixed(2))
}

func TestExamine_UnionsProcedures(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	p1 := f.newProcedure(t, "Blood Work", "50.00")
	p2 := f.newProcedure(t, "Chest X-Ray", "120.00")
	p3 := f.newProcedure(t, "MRI Scan", "400.00")
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID,
		ExamineInput{RequiresInpatient: true, ProcedureIDs: []uint{p1.ID, p2.ID, p2.ID}})
	require.NoError(t, err)
	got, err := f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID,
		ExamineInput{RequiresInpatient: false, ProcedureIDs: []uint{p2.ID, p3.ID}})
	require.NoError(t, err)

	require.Len(t, got.Procedures, 3)
	assert.Equal(t, []uint{p1.ID, p2.ID, p3.ID}, []uint{got.Procedures[0].ID, got.Procedures[1].ID, got.Procedures[2].ID})

	payment, err := f.billing.GetByAdmission(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, "570.00", payment.ProcedureCost.StringFixed(2))
	assert.Equal(t, models.PaymentInpatient, payment.PaymentType)
}

func TestExamine_UnknownProcedureChangesNothing(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{ProcedureIDs: []uint{404}})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.admissions.Get(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionAdmitted, got.Status)
	assert.Zero(t, f.countPayments(t, admission.ID))
}

func TestExamine_RejectsIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{})
	require.NoError(t, err)

	_, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{RequiresInpatient: true})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.admissions.ApproveDischarge(f.ctx, f.admin, admission.ID)
	require.NoError(t, err)

	_, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExamine_NurseForbidden(t *testing.T) {
	f := newFixture(t)
	nurse := f.newStaff(t, models.RoleNurse)
	patient := f.newPatient(t, true, false)

	admission, err := f.admissions.Create(f.ctx, f.actorFor(nurse), CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)

	_, err = f.admissions.Examine(f.ctx, f.actorFor(nurse), admission.ID, ExamineInput{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExamine_ConcurrentCallsBillOnce(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	admission := f.admit(t, doctor, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), f.countPayments(t, admission.ID))
}

func TestAssignRoom_FullRoom(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	full := f.newRoom(t, "302", 2, 2)
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.AssignRoom(f.ctx, f.admin, admission.ID, full.ID)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	got, err := f.admissions.Get(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentRoomID)
	assert.Equal(t, 2, f.room(t, full.ID).OccupiedBeds)
}

func TestAssignRoom_MovesBed(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	first := f.newRoom(t, "301", 2, 0)
	second := f.newRoom(t, "302", 2, 0)
	admission := f.admit(t, doctor, &first.ID)
	require.Equal(t, 1, f.room(t, first.ID).OccupiedBeds)

	got, err := f.admissions.AssignRoom(f.ctx, f.admin, admission.ID, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentRoomID)
	assert.Equal(t, second.ID, *got.CurrentRoomID)
	assert.Equal(t, "302", got.LastRoomNumber)
	assert.Equal(t, 0, f.room(t, first.ID).OccupiedBeds)
	assert.Equal(t, 1, f.room(t, second.ID).OccupiedBeds)

	// same room again is a no-op
	_, err = f.admissions.AssignRoom(f.ctx, f.admin, admission.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.room(t, second.ID).OccupiedBeds)
}

func TestAssignRoom_FullTargetKeepsCurrentBed(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	first := f.newRoom(t, "301", 2, 0)
	full := f.newRoom(t, "302", 1, 1)
	admission := f.admit(t, doctor, &first.ID)

	_, err := f.admissions.AssignRoom(f.ctx, f.admin, admission.ID, full.ID)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	got, err := f.admissions.Get(f.ctx, admission.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentRoomID)
	assert.Equal(t, first.ID, *got.CurrentRoomID)
	assert.Equal(t, 1, f.room(t, first.ID).OccupiedBeds)
}

func TestAssignRoom_RequiresAdmittedAdmission(t *testing.T) {
	f := newFixture(t)
	room := f.newRoom(t, "301", 2, 0)
	patient := f.newPatient(t, true, false)
	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)

	_, err = f.admissions.AssignRoom(f.ctx, f.admin, admission.ID, room.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	doctor := f.newStaff(t, models.RoleDoctor)
	_, err = f.admissions.AssignRoom(f.ctx, f.actorFor(doctor), admission.ID, room.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApproveDischarge_ReleasesBed(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	room := f.newRoom(t, "301", 2, 0)
	admission := f.admit(t, doctor, &room.ID)

	_, err := f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{})
	require.NoError(t, err)

	later := fixedNow.Add(50 * time.Hour)
	f.admissions.SetClock(func() time.Time { return later })

	got, err := f.admissions.ApproveDischarge(f.ctx, f.admin, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionDischarged, got.Status)
	assert.Nil(t, got.CurrentRoomID)
	assert.Equal(t, "301", got.LastRoomNumber)
	require.NotNil(t, got.DischargeDate)
	assert.True(t, got.DischargeDate.Equal(later))
	assert.Equal(t, 0, f.room(t, room.ID).OccupiedBeds)

	// billed when examined, so the stay is still one day
	payment, err := f.billing.GetByAdmission(f.ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, payment.LengthOfStayDays)
	assert.Equal(t, int64(1), f.countPayments(t, admission.ID))

	_, err = f.admissions.ApproveDischarge(f.ctx, f.admin, admission.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveDischarge_RequiresPendingDischarge(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.ApproveDischarge(f.ctx, f.admin, admission.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.admissions.ApproveDischarge(f.ctx, f.actorFor(doctor), admission.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRejectDischarge_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	admission := f.admit(t, doctor, nil)

	_, err := f.admissions.RejectDischarge(f.ctx, f.admin, admission.ID, "too early")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{})
	require.NoError(t, err)

	got, err := f.admissions.RejectDischarge(f.ctx, f.admin, admission.ID, "awaiting lab results")
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionPendingDischarge, got.Status)

	history, err := f.admissions.History(f.ctx, admission.ID)
	require.NoError(t, err)
	var found bool
	for _, entry := range history {
		if entry.Action == "admission_reject_discharge" {
			found = true
			assert.Contains(t, entry.Details, "awaiting lab results")
		}
	}
	assert.True(t, found, "rejection missing from history")
}

func TestComputePayment(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	procedure := f.newProcedure(t, "Appendectomy", "1800.00")
	admission := f.admit(t, doctor, nil)

	_, _, err := f.billing.ComputePayment(f.ctx, f.admin, admission.ID, nil, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = f.billing.ComputePayment(f.ctx, f.actorFor(doctor), admission.ID, nil, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{ProcedureIDs: []uint{procedure.ID}})
	require.NoError(t, err)

	first, created, err := f.billing.ComputePayment(f.ctx, f.admin, admission.ID, nil, "card")
	require.NoError(t, err)
	assert.False(t, created)

	again, created, err := f.billing.ComputePayment(f.ctx, f.admin, admission.ID, []uint{procedure.ID}, "cash")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ReceiptNumber, again.ReceiptNumber)
	assert.Equal(t, int64(1), f.countPayments(t, admission.ID))
}

func TestComputePayment_CreatesMissingPayment(t *testing.T) {
	f := newFixture(t)
	procedure := f.newProcedure(t, "MRI Scan", "400.00")
	patient := f.newPatient(t, false, false)
	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID})
	require.NoError(t, err)

	// an admission left in pending_discharge without a bill
	require.NoError(t, f.admissionRepo.UpdateFields(f.ctx, admission.ID, map[string]interface{}{
		"status": models.AdmissionPendingDischarge,
	}))

	payment, created, err := f.billing.ComputePayment(f.ctx, f.admin, admission.ID, []uint{procedure.ID, procedure.ID}, "card")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "card", payment.Method)
	assert.Equal(t, "430.00", payment.FinalAmount.StringFixed(2))
	require.Len(t, payment.Procedures, 1)

	_, created, err = f.billing.ComputePayment(f.ctx, f.admin, admission.ID, nil, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), f.countPayments(t, admission.ID))
}

func TestAdmissionCreate_RequireOnShiftFollowsNightShift(t *testing.T) {
	f := newFixture(t)
	doctor := f.newStaff(t, models.RoleDoctor)
	onDuty := f.newStaff(t, models.RoleNurse)
	startsTonight := f.newStaff(t, models.RoleNurse)
	f.schedule(t, doctor, "2025-03-09", models.ShiftNight)
	f.schedule(t, onDuty, "2025-03-09", models.ShiftNight)
	f.schedule(t, startsTonight, "2025-03-10", models.ShiftNight)

	gated := NewAdmissionService(f.db, f.admissionRepo, f.patientRepo, f.staffRepo, f.roomRepo,
		f.procedureRepo, f.auditRepo, f.billing, f.schedules, true, zap.NewNop())
	gated.SetClock(func() time.Time { return time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC) })

	first := f.newPatient(t, false, false)
	_, err := gated.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: first.ID, DoctorID: &doctor.ID, NurseID: &onDuty.ID})
	require.NoError(t, err)

	second := f.newPatient(t, false, false)
	_, err = gated.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: second.ID, DoctorID: &doctor.ID, NurseID: &startsTonight.ID})
	assert.ErrorIs(t, err, ErrValidation)
}
