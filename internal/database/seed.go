package database

import (
	"fmt"

	"hospital-operations-backend/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seedProcedures = []models.Procedure{
	{Name: "Cardiac Catheterization", Description: "Invasive procedure to examine heart function", Cost: decimal.RequireFromString("2500.00"), ProcedureType: models.ProcedureSurgical},
	{Name: "Appendectomy", Description: "Surgical removal of the appendix", Cost: decimal.RequireFromString("1800.00"), ProcedureType: models.ProcedureSurgical},
	{Name: "Blood Work", Description: "Standard blood work analysis", Cost: decimal.RequireFromString("50.00"), ProcedureType: models.ProcedureNonSurgical},
	{Name: "Chest X-Ray", Description: "Two-view chest radiograph", Cost: decimal.RequireFromString("120.00"), ProcedureType: models.ProcedureNonSurgical},
	{Name: "MRI Scan", Description: "Magnetic resonance imaging", Cost: decimal.RequireFromString("400.00"), ProcedureType: models.ProcedureNonSurgical},
}

var seedRooms = []models.Room{
	{RoomNumber: "101", RoomType: "General", BedCapacity: 4},
	{RoomNumber: "102", RoomType: "General", BedCapacity: 4},
	{RoomNumber: "201", RoomType: "ICU", BedCapacity: 1},
	{RoomNumber: "202", RoomType: "ICU", BedCapacity: 1},
}

// Seed inserts the procedure catalog, sample rooms and an admin account. Existing rows are left alone.
func Seed(db *gorm.DB, log *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range seedProcedures {
			p := p
			if err := tx.Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("failed to seed procedure %s: %w", p.Name, err)
			}
		}
		for _, r := range seedRooms {
			r := r
			if err := tx.Where("room_number = ?", r.RoomNumber).FirstOrCreate(&r).Error; err != nil {
				return fmt.Errorf("failed to seed room %s: %w", r.RoomNumber, err)
			}
		}
		admin := models.Staff{Username: "admin", FullName: "System Administrator", Role: models.RoleAdmin}
		if err := tx.Where("username = ?", admin.Username).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}

		log.Info("seed data ensured",
			zap.Int("procedures", len(seedProcedures)),
			zap.Int("rooms", len(seedRooms)),
			zap.Uint("admin_id", admin.ID),
		)
		return nil
	})
}
