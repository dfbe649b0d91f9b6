package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) WithTx(tx *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: tx}
}

// ScheduleFilter narrows schedule queries; nil and zero values match everything.
type ScheduleFilter struct {
	From    *datatypes.Date
	To      *datatypes.Date
	StaffID *uint
	Role    models.Role
	Shift   models.ShiftName
}

// Create inserts one shift; a taken (staff, date, shift) slot yields ErrDuplicate
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.ShiftSchedule) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(schedule).Error
	return translate(err, "shift")
}

// GetByID retrieves a shift with its owner
func (r *ScheduleRepository) GetByID(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	var schedule models.ShiftSchedule
	if err := r.db.WithContext(ctx).Preload("Staff").First(&schedule, id).Error; err != nil {
		return nil, translate(err, "shift")
	}
	return &schedule, nil
}

// GetForUpdate loads a shift under a row lock
func (r *ScheduleRepository) GetForUpdate(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	var schedule models.ShiftSchedule
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&schedule, id).Error
	if err != nil {
		return nil, translate(err, "shift")
	}
	return &schedule, nil
}

// List retrieves shifts ordered by date, start time and owner
func (r *ScheduleRepository) List(ctx context.Context, filter ScheduleFilter) ([]models.ShiftSchedule, error) {
	var schedules []models.ShiftSchedule
	q := r.db.WithContext(ctx).Preload("Staff")
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if filter.StaffID != nil {
		q = q.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Shift != "" {
		q = q.Where("shift = ?", filter.Shift)
	}
	err := q.Order("date ASC, start_time ASC, id ASC").Find(&schedules).Error
	return schedules, err
}

// ListStaffedBetween retrieves available, owned shifts of one role dated within [from, to]
func (r *ScheduleRepository) ListStaffedBetween(ctx context.Context, from, to datatypes.Date, role models.Role) ([]models.ShiftSchedule, error) {
	var schedules []models.ShiftSchedule
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND role = ? AND is_available = ? AND staff_id IS NOT NULL", from, to, role, true).
		Order("staff_id ASC, date ASC").
		Find(&schedules).Error
	return schedules, err
}

// UpdateFields writes the given columns of one shift
func (r *ScheduleRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&models.ShiftSchedule{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err, "shift")
}

// SetOwner moves a shift to another staff member, or to the open pool when staffID is nil
func (r *ScheduleRepository) SetOwner(ctx context.Context, id uint, staffID *uint, available bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"staff_id":     staffID,
		"is_available": available,
	})
}

// Delete removes a shift
func (r *ScheduleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ShiftSchedule{}, id).Error
}

// MarkUnavailable flags a staff member's shifts within [from, to] as unavailable
func (r *ScheduleRepository) MarkUnavailable(ctx context.Context, staffID uint, from, to datatypes.Date) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ShiftSchedule{}).
		Where("staff_id = ? AND date >= ? AND date <= ?", staffID, from, to).
		Update("is_available", false)
	return result.RowsAffected, result.Error
}

// LockBefore locks every unlocked shift dated before the given day
func (r *ScheduleRepository) LockBefore(ctx context.Context, date datatypes.Date) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ShiftSchedule{}).
		Where("date < ? AND is_locked = ?", date, false).
		Update("is_locked", true)
	return result.RowsAffected, result.Error
}

// ShiftCount is the number of shifts one staff member holds
type ShiftCount struct {
	StaffID uint  `json:"staff_id"`
	Count   int64 `json:"count"`
}

// CountShifts counts owned shifts per staff member in [from, to], fewest first
func (r *ScheduleRepository) CountShifts(ctx context.Context, from, to datatypes.Date, role models.Role, shift models.ShiftName) ([]ShiftCount, error) {
	var counts []ShiftCount
	err := r.db.WithContext(ctx).Model(&models.ShiftSchedule{}).
		Select("staff_id, COUNT(*) AS count").
		Where("date >= ? AND date <= ? AND role = ? AND shift = ? AND staff_id IS NOT NULL", from, to, role, shift).
		Group("staff_id").
		Order("count ASC, staff_id ASC").
		Scan(&counts).Error
	return counts, err
}
