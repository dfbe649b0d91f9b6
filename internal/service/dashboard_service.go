package service

import (
	"context"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardStats is the admin overview
type DashboardStats struct {
	ActivePatients   int64                            `json:"active_patients"`
	Admissions       map[models.AdmissionStatus]int64 `json:"admissions"`
	OpenAdmissions   int64                            `json:"open_admissions"`
	BedCapacity      int64                            `json:"bed_capacity"`
	OccupiedBeds     int64                            `json:"occupied_beds"`
	FreeBeds         int64                            `json:"free_beds"`
	PaymentsTotal    decimal.Decimal                  `json:"payments_total"`
	PendingSwaps     int64                            `json:"pending_swaps"`
	HighRiskPatients int64                            `json:"high_risk_patients"`
}

type DashboardService struct {
	patientRepo    *repository.PatientRepository
	admissionRepo  *repository.AdmissionRepository
	roomRepo       *repository.RoomRepository
	paymentRepo    *repository.PaymentRepository
	swapRepo       *repository.SwapRepository
	predictionRepo *repository.PredictionRepository
}

func NewDashboardService(
	patientRepo *repository.PatientRepository,
	admissionRepo *repository.AdmissionRepository,
	roomRepo *repository.RoomRepository,
	paymentRepo *repository.PaymentRepository,
	swapRepo *repository.SwapRepository,
	predictionRepo *repository.PredictionRepository,
) *DashboardService {
	return &DashboardService{
		patientRepo:    patientRepo,
		admissionRepo:  admissionRepo,
		roomRepo:       roomRepo,
		paymentRepo:    paymentRepo,
		swapRepo:       swapRepo,
		predictionRepo: predictionRepo,
	}
}

// Stats gathers every dashboard counter concurrently; the first failure cancels the rest.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Admissions: make(map[models.AdmissionStatus]int64)}
	var byStatus []repository.StatusCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.ActivePatients, err = s.patientRepo.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.admissionRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.BedCapacity, stats.OccupiedBeds, err = s.roomRepo.BedTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PaymentsTotal, err = s.paymentRepo.SumFinalAmount(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingSwaps, err = s.swapRepo.CountByStatus(gctx, models.RequestPending)
		return err
	})
	g.Go(func() (err error) {
		stats.HighRiskPatients, err = s.predictionRepo.CountHighRisk(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, status := range []models.AdmissionStatus{
		models.AdmissionPending, models.AdmissionAdmitted, models.AdmissionPendingDischarge, models.AdmissionDischarged,
	} {
		stats.Admissions[status] = 0
	}
	for _, c := range byStatus {
		stats.Admissions[c.Status] = c.Count
		if c.Status.Open() {
			stats.OpenAdmissions += c.Count
		}
	}
	stats.FreeBeds = stats.BedCapacity - stats.OccupiedBeds
	return stats, nil
}
