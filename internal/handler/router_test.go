package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hospital-operations-backend/internal/config"
	"hospital-operations-backend/internal/database"
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"
	"hospital-operations-backend/internal/riskscorer"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("handler-test-secret", time.Hour)
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

type envelope struct {
	Success   bool            `json:"success"`
	Created   *bool           `json:"created"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	scorerAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"risk":1,"probability":0.9}`))
	}))
	t.Cleanup(scorerAPI.Close)

	log := zap.NewNop()
	cfg := &config.Config{Billing: config.DefaultBillingConfig()}

	staffRepo := repository.NewStaffRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	procedureRepo := repository.NewProcedureRepo(db)
	admissionRepo := repository.NewAdmissionRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	swapRepo := repository.NewSwapRepo(db)
	unavailabilityRepo := repository.NewUnavailabilityRepo(db)
	predictionRepo := repository.NewPredictionRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	roomService := service.NewRoomService(roomRepo, auditRepo, log)
	billingService := service.NewBillingService(db, service.NewCalculator(cfg.Billing), cfg.Billing.DefaultMethod,
		admissionRepo, patientRepo, procedureRepo, paymentRepo, auditRepo, log)
	scheduleService := service.NewScheduleService(scheduleRepo, staffRepo, auditRepo, log)
	admissionService := service.NewAdmissionService(db, admissionRepo, patientRepo, staffRepo, roomRepo, procedureRepo,
		auditRepo, billingService, scheduleService, false, log)
	scorer := riskscorer.NewClient(scorerAPI.URL, time.Second, 0, log)

	router := NewRouter(cfg, log, Handlers{
		Admission: NewAdmissionHandler(admissionService, billingService),
		Billing: NewBillingHandler(billingService,
			service.NewDashboardService(patientRepo, admissionRepo, roomRepo, paymentRepo, swapRepo, predictionRepo)),
		Patient: NewPatientHandler(service.NewPatientService(db, patientRepo, admissionRepo, auditRepo, log),
			service.NewRiskService(scorer, patientRepo, predictionRepo, auditRepo, log)),
		Room:           NewRoomHandler(roomService),
		Schedule:       NewScheduleHandler(scheduleService),
		Staff:          NewStaffHandler(service.NewStaffService(staffRepo, auditRepo)),
		Swap:           NewSwapHandler(service.NewSwapService(db, swapRepo, scheduleRepo, staffRepo, auditRepo, log)),
		Unavailability: NewUnavailabilityHandler(service.NewUnavailabilityService(db, unavailabilityRepo, scheduleRepo, auditRepo, log)),
	})

	return &testServer{t: t, db: db, router: router}
}

// staff creates a staff member and returns a bearer token for them
func (s *testServer) staff(role models.Role) (uint, string) {
	s.t.Helper()
	member := &models.Staff{Username: fmt.Sprintf("%s-%d", role, time.Now().UnixNano()), FullName: "Test " + string(role), Role: role}
	require.NoError(s.t, s.db.Create(member).Error)
	token, err := utils.GenerateAccessToken(member.ID, string(role))
	require.NoError(s.t, err)
	return member.ID, token
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newTestServer(t)
	_, nurse := s.staff(models.RoleNurse)
	_, admin := s.staff(models.RoleAdmin)

	w, _ := s.do(http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/rooms", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/rooms", nurse, gin.H{"room_number": "101", "bed_capacity": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/dashboard/stats", nurse, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/rooms", admin, gin.H{"room_number": "101", "bed_capacity": 2})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/rooms", nurse, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmissionLifecycle(t *testing.T) {
	s := newTestServer(t)
	doctorID, doctor := s.staff(models.RoleDoctor)
	_, admin := s.staff(models.RoleAdmin)

	w, env := s.do(http.MethodPost, "/api/rooms", admin, gin.H{"room_number": "201", "room_type": "ICU", "bed_capacity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var room models.Room
	decode(t, env, &room)

	w, env = s.do(http.MethodPost, "/api/patients", doctor, gin.H{"name": "Ada Byron", "age": 36, "insured": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var patient models.Patient
	decode(t, env, &patient)

	w, env = s.do(http.MethodPost, "/api/admissions", doctor, gin.H{"patient_id": patient.ID, "doctor_id": doctorID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var admission models.Admission
	decode(t, env, &admission)
	assert.Equal(t, models.AdmissionPending, admission.Status)

	w, env = s.do(http.MethodPost, "/api/admissions", doctor, gin.H{"patient_id": patient.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "active_admission", env.Code)
	assert.NotEmpty(t, env.RequestID)

	path := fmt.Sprintf("/api/admissions/%d", admission.ID)

	w, _ = s.do(http.MethodPost, path+"/examine", doctor, gin.H{"requires_inpatient": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, path+"/assign-room", admin, gin.H{"room_id": room.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, path+"/approve-discharge", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, path+"/examine", doctor, gin.H{"requires_inpatient": false, "notes": "stable"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, path+"/payment", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, env.Created)
	assert.False(t, *env.Created)
	var payment models.Payment
	decode(t, env, &payment)
	// one day of inpatient care, insured
	assert.Equal(t, models.PaymentInpatient, payment.PaymentType)
	assert.Equal(t, "24.00", payment.FinalAmount.StringFixed(2))

	w, _ = s.do(http.MethodPost, path+"/reject-discharge", admin, gin.H{"reason": "await bloods"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, path+"/approve-discharge", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, env, &admission)
	assert.Equal(t, models.AdmissionDischarged, admission.Status)
	assert.Nil(t, admission.CurrentRoomID)
	assert.Equal(t, "201", admission.LastRoomNumber)

	w, env = s.do(http.MethodGet, path+"/history", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.AuditLog
	decode(t, env, &history)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Contains(t, actions, "admission_reject_discharge")
	assert.Contains(t, actions, "admission_discharge")
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	_, doctor := s.staff(models.RoleDoctor)
	_, nurse := s.staff(models.RoleNurse)

	w, env := s.do(http.MethodGet, "/api/admissions/999", doctor, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/admissions/abc", doctor, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/patients", doctor, gin.H{"age": 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/patients", nurse, gin.H{"name": "Tim Berners", "age": 68})
	require.Equal(t, http.StatusCreated, w.Code)
	var patient models.Patient
	decode(t, env, &patient)

	w, env = s.do(http.MethodPost, fmt.Sprintf("/api/patients/%d/predict", patient.ID), nurse, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record models.PredictionRecord
	decode(t, env, &record)
	assert.Equal(t, models.RiskHigh, record.RiskLevel)

	w, _ = s.do(http.MethodGet, "/api/schedules/working?role=admin", nurse, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportWeekly(t *testing.T) {
	s := newTestServer(t)
	_, nurse := s.staff(models.RoleNurse)

	w, _ := s.do(http.MethodGet, "/api/schedules/weekly/export?start_date=2025-03-12", nurse, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule_2025-03-10_2025-03-16.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
