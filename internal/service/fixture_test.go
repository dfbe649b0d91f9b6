package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"hospital-operations-backend/internal/config"
	"hospital-operations-backend/internal/database"
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedNow is a Monday morning
var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	ctx context.Context

	staffRepo          *repository.StaffRepository
	patientRepo        *repository.PatientRepository
	roomRepo           *repository.RoomRepository
	procedureRepo      *repository.ProcedureRepository
	admissionRepo      *repository.AdmissionRepository
	paymentRepo        *repository.PaymentRepository
	scheduleRepo       *repository.ScheduleRepository
	swapRepo           *repository.SwapRepository
	unavailabilityRepo *repository.UnavailabilityRepository
	predictionRepo     *repository.PredictionRepository
	auditRepo          *repository.AuditRepository

	rooms          *RoomService
	billing        *BillingService
	schedules      *ScheduleService
	admissions     *AdmissionService
	swaps          *SwapService
	unavailability *UnavailabilityService
	patients       *PatientService

	admin Actor
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	f := &fixture{
		db:                 db,
		ctx:                context.Background(),
		staffRepo:          repository.NewStaffRepo(db),
		patientRepo:        repository.NewPatientRepo(db),
		roomRepo:           repository.NewRoomRepo(db),
		procedureRepo:      repository.NewProcedureRepo(db),
		admissionRepo:      repository.NewAdmissionRepo(db),
		paymentRepo:        repository.NewPaymentRepo(db),
		scheduleRepo:       repository.NewScheduleRepo(db),
		swapRepo:           repository.NewSwapRepo(db),
		unavailabilityRepo: repository.NewUnavailabilityRepo(db),
		predictionRepo:     repository.NewPredictionRepo(db),
		auditRepo:          repository.NewAuditRepo(db),
	}

	cfg := config.DefaultBillingConfig()
	f.rooms = NewRoomService(f.roomRepo, f.auditRepo, log)
	f.billing = NewBillingService(db, NewCalculator(cfg), cfg.DefaultMethod,
		f.admissionRepo, f.patientRepo, f.procedureRepo, f.paymentRepo, f.auditRepo, log)
	f.schedules = NewScheduleService(f.scheduleRepo, f.staffRepo, f.auditRepo, log)
	f.admissions = NewAdmissionService(db, f.admissionRepo, f.patientRepo, f.staffRepo, f.roomRepo,
		f.procedureRepo, f.auditRepo, f.billing, f.schedules, false, log)
	f.swaps = NewSwapService(db, f.swapRepo, f.scheduleRepo, f.staffRepo, f.auditRepo, log)
	f.unavailability = NewUnavailabilityService(db, f.unavailabilityRepo, f.scheduleRepo, f.auditRepo, log)
	f.patients = NewPatientService(db, f.patientRepo, f.admissionRepo, f.auditRepo, log)

	clock := func() time.Time { return fixedNow }
	f.admissions.SetClock(clock)
	f.schedules.SetClock(clock)
	f.swaps.SetClock(clock)
	f.unavailability.SetClock(clock)

	admin := f.newStaff(t, models.RoleAdmin)
	f.admin = Actor{StaffID: admin.ID, Role: models.RoleAdmin}
	return f
}

func (f *fixture) newStaff(t *testing.T, role models.Role) *models.Staff {
	t.Helper()
	var n int64
	f.db.Model(&models.Staff{}).Count(&n)
	staff := &models.Staff{
		Username: fmt.Sprintf("%s%d", role, n+1),
		FullName: fmt.Sprintf("Staff %s %d", role, n+1),
		Role:     role,
	}
	require.NoError(t, f.staffRepo.Create(f.ctx, staff))
	return staff
}

func (f *fixture) actorFor(s *models.Staff) Actor {
	return Actor{StaffID: s.ID, Role: s.Role}
}

func (f *fixture) newPatient(t *testing.T, insured, handicapped bool) *models.Patient {
	t.Helper()
	patient := &models.Patient{Name: "Alice Thompson", Age: 65, Gender: "female", Insured: insured, Handicapped: handicapped}
	require.NoError(t, f.patientRepo.Create(f.ctx, patient))
	return patient
}

func (f *fixture) newRoom(t *testing.T, number string, capacity, occupied int) *models.Room {
	t.Helper()
	room := &models.Room{RoomNumber: number, RoomType: "General", BedCapacity: capacity, OccupiedBeds: occupied}
	require.NoError(t, f.roomRepo.CreateRoom(f.ctx, room))
	return room
}

func (f *fixture) newProcedure(t *testing.T, name, cost string) *models.Procedure {
	t.Helper()
	p := &models.Procedure{Name: name, Cost: decimal.RequireFromString(cost), ProcedureType: models.ProcedureNonSurgical}
	require.NoError(t, f.procedureRepo.Create(f.ctx, p))
	return p
}

func (f *fixture) room(t *testing.T, id uint) *models.Room {
	t.Helper()
	room, err := f.roomRepo.GetRoomByID(f.ctx, id)
	require.NoError(t, err)
	return room
}

// admit creates an admission for a fresh patient and examines it into the admitted state
func (f *fixture) admit(t *testing.T, doctor *models.Staff, roomID *uint) *models.Admission {
	t.Helper()
	patient := f.newPatient(t, true, false)
	admission, err := f.admissions.Create(f.ctx, f.admin, CreateAdmissionInput{PatientID: patient.ID, RoomID: roomID})
	require.NoError(t, err)
	admission, err = f.admissions.Examine(f.ctx, f.actorFor(doctor), admission.ID, ExamineInput{RequiresInpatient: true})
	require.NoError(t, err)
	require.Equal(t, models.AdmissionAdmitted, admission.Status)
	return admission
}

func (f *fixture) countPayments(t *testing.T, admissionID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Where("admission_id = ?", admissionID).Count(&n).Error)
	return n
}
