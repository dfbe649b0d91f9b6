package models

import (
	"time"

	"gorm.io/datatypes"
)

// ShiftName is a named time-of-day work window.
type ShiftName string

const (
	ShiftMorning   ShiftName = "morning"
	ShiftAfternoon ShiftName = "afternoon"
	ShiftNight     ShiftName = "night"
)

// Valid reports whether s is a known shift.
func (s ShiftName) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return true
	}
	return false
}

// DefaultWindow returns the standard hours of the shift.
func (s ShiftName) DefaultWindow() (start, end datatypes.Time) {
	switch s {
	case ShiftMorning:
		return datatypes.NewTime(8, 0, 0, 0), datatypes.NewTime(16, 0, 0, 0)
	case ShiftAfternoon:
		return datatypes.NewTime(12, 0, 0, 0), datatypes.NewTime(20, 0, 0, 0)
	default:
		return datatypes.NewTime(20, 0, 0, 0), datatypes.NewTime(8, 0, 0, 0)
	}
}

// ShiftSchedule is one dated shift of one staff member.
// A nil StaffID marks a shift released to the open coverage pool.
type ShiftSchedule struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StaffID     *uint          `gorm:"uniqueIndex:idx_schedule_slot" json:"staff_id"`
	Role        Role           `gorm:"size:20;not null;index" json:"role"`
	Date        datatypes.Date `gorm:"uniqueIndex:idx_schedule_slot;index;not null" json:"date"`
	Shift       ShiftName      `gorm:"size:20;uniqueIndex:idx_schedule_slot;not null" json:"shift"`
	StartTime   datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime     datatypes.Time `gorm:"not null" json:"end_time"`
	IsAvailable bool           `gorm:"not null" json:"is_available"`
	IsLocked    bool           `gorm:"not null" json:"is_locked"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

// TableName specifies the table name for ShiftSchedule model
func (ShiftSchedule) TableName() string {
	return "shift_schedules"
}

// CrossesMidnight reports whether the shift ends on the following day.
func (s ShiftSchedule) CrossesMidnight() bool {
	return s.EndTime < s.StartTime
}

// OpenCoverage reports whether nobody currently owns the shift.
func (s ShiftSchedule) OpenCoverage() bool {
	return s.StaffID == nil
}

// StartsAt returns the shift start as an instant in UTC.
func (s ShiftSchedule) StartsAt() time.Time {
	return time.Time(s.Date).UTC().Add(time.Duration(s.StartTime))
}

// OwnedBy reports whether staffID holds the shift.
func (s ShiftSchedule) OwnedBy(staffID uint) bool {
	return s.StaffID != nil && *s.StaffID == staffID
}
