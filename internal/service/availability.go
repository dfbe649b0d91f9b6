package service

import (
	"hospital-operations-backend/internal/models"

	"gorm.io/datatypes"
)

// IsTimeInShift reports whether t falls inside the window [start, end].
// A window whose end precedes its start runs past midnight.
func IsTimeInShift(t, start, end datatypes.Time) bool {
	if end >= start {
		return start <= t && t <= end
	}
	return t >= start || t <= end
}

// shiftCovers reports whether sch is running at clock on date.
// A shift that crosses midnight covers the evening of its own date and the morning after.
func shiftCovers(sch models.ShiftSchedule, date datatypes.Date, clock datatypes.Time) bool {
	if !IsTimeInShift(clock, sch.StartTime, sch.EndTime) {
		return false
	}
	switch models.FormatDate(sch.Date) {
	case models.FormatDate(date):
		return !sch.CrossesMidnight() || clock >= sch.StartTime
	case models.FormatDate(models.DayBefore(date)):
		return sch.CrossesMidnight() && clock <= sch.EndTime
	}
	return false
}
