package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentInpatient  = "inpatient"
	PaymentOutpatient = "outpatient"
)

// Payment is the single, append-only bill of an admission.
// The unique index on admission_id is the double billing guard.
type Payment struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	AdmissionID         uint            `gorm:"not null;uniqueIndex" json:"admission_id"`
	PatientID           uint            `gorm:"not null;index" json:"patient_id"`
	ReceiptNumber       string          `gorm:"size:36;uniqueIndex;not null" json:"receipt_number"`
	PaymentType         string          `gorm:"size:20;not null" json:"payment_type"`
	ProcedureCost       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"procedure_cost"`
	LengthOfStayDays    int             `gorm:"not null" json:"length_of_stay_days"`
	DailyCareCost       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"daily_care_cost"`
	TotalBeforeDiscount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_before_discount"`
	DiscountPercent     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	FinalAmount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_amount"`
	Method              string          `gorm:"size:50;not null" json:"method"`
	Notes               string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time       `json:"created_at"`

	Procedures []Procedure `gorm:"many2many:payment_procedures" json:"procedures,omitempty"`
}

// TableName specifies the table name for Payment model
func (Payment) TableName() string {
	return "payments"
}

// PaymentProcedure snapshots the procedures a payment was computed from.
type PaymentProcedure struct {
	PaymentID   uint `gorm:"primaryKey"`
	ProcedureID uint `gorm:"primaryKey"`
}

// TableName specifies the table name for PaymentProcedure model
func (PaymentProcedure) TableName() string {
	return "payment_procedures"
}
