package models

import (
	"time"

	"gorm.io/datatypes"
)

// UnavailabilityRequest is a staff member's leave request over a date range
type UnavailabilityRequest struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	StaffID    uint           `gorm:"not null;index" json:"staff_id"`
	StartDate  datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate    datatypes.Date `gorm:"not null" json:"end_date"`
	Reason     string         `gorm:"type:text;not null" json:"reason"`
	Status     RequestStatus  `gorm:"size:20;not null;index" json:"status"`
	AdminNotes string         `gorm:"type:text" json:"admin_notes"`
	ReviewedBy *uint          `json:"reviewed_by"`
	ReviewedAt *time.Time     `json:"reviewed_at"`
	CreatedAt  time.Time      `json:"created_at"`

	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

// TableName specifies the table name for UnavailabilityRequest model
func (UnavailabilityRequest) TableName() string {
	return "unavailability_requests"
}
