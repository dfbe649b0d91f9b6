package models

import "time"

// RequestStatus is shared by the staff request workflows.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// ShiftSwapRequest asks an operator to hand a shift to a colleague, or to the open pool
type ShiftSwapRequest struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	RequesterID      uint          `gorm:"not null;index" json:"requester_id"`
	RequesterShiftID uint          `gorm:"not null;index" json:"requester_shift_id"`
	RecipientID      *uint         `gorm:"index" json:"recipient_id"`
	RecipientShiftID *uint         `gorm:"index" json:"recipient_shift_id"`
	Reason           string        `gorm:"type:text;not null" json:"reason"`
	Status           RequestStatus `gorm:"size:20;not null;index" json:"status"`
	AdminNotes       string        `gorm:"type:text" json:"admin_notes"`
	ReviewedBy       *uint         `json:"reviewed_by"`
	ReviewedAt       *time.Time    `json:"reviewed_at"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Requester      *Staff         `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	RequesterShift *ShiftSchedule `gorm:"foreignKey:RequesterShiftID" json:"requester_shift,omitempty"`
	Recipient      *Staff         `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	RecipientShift *ShiftSchedule `gorm:"foreignKey:RecipientShiftID" json:"recipient_shift,omitempty"`
}

// TableName specifies the table name for ShiftSwapRequest model
func (ShiftSwapRequest) TableName() string {
	return "shift_swap_requests"
}
