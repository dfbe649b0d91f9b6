package models

import "time"

const (
	RiskLow  = 0
	RiskHigh = 1
)

// PredictionRecord is a readmission risk result on the patient timeline
type PredictionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PatientID   uint      `gorm:"not null;index" json:"patient_id"`
	PredictedBy *uint     `gorm:"index" json:"predicted_by"`
	RiskLevel   int       `gorm:"not null" json:"risk_level"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for PredictionRecord model
func (PredictionRecord) TableName() string {
	return "prediction_records"
}
