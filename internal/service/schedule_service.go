package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ScheduleEntry is one shift to schedule. Empty times take the shift's standard hours.
type ScheduleEntry struct {
	StaffID     uint             `json:"staff_id" binding:"required"`
	Date        string           `json:"date" binding:"required"`
	Shift       models.ShiftName `json:"shift" binding:"required"`
	StartTime   string           `json:"start_time"`
	EndTime     string           `json:"end_time"`
	IsAvailable *bool            `json:"is_available"`
	Notes       string           `json:"notes"`
}

// ScheduleUpdate carries the editable fields of a shift; nil leaves a field unchanged.
type ScheduleUpdate struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsAvailable *bool   `json:"is_available"`
	Notes       *string `json:"notes"`
}

// BulkError reports why one entry of a batch was not scheduled.
type BulkError struct {
	Index int    `json:"index"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// BulkResult is the outcome of a batch; a failed entry never undoes the others.
type BulkResult struct {
	Created []models.ShiftSchedule `json:"created"`
	Errors  []BulkError            `json:"errors"`
}

// WeeklySchedule is the Monday to Sunday view of the roster.
type WeeklySchedule struct {
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Schedules []models.ShiftSchedule `json:"schedules"`
}

// RotationSuggestion ranks staff for the next night shift, fewest nights first.
type RotationSuggestion struct {
	StaffID     uint   `json:"staff_id"`
	FullName    string `json:"full_name"`
	NightShifts int64  `json:"night_shifts"`
}

// Coverage answers whether a booking at Date and Time would be staffed.
// With StaffID set, Covered refers to that staff member and Shifts lists their shifts that day.
type Coverage struct {
	Date     string                 `json:"date"`
	Time     string                 `json:"time"`
	Role     models.Role            `json:"role"`
	StaffIDs []uint                 `json:"staff_ids"`
	Covered  bool                   `json:"covered"`
	Warning  string                 `json:"warning,omitempty"`
	Shifts   []models.ShiftSchedule `json:"scheduled_shifts,omitempty"`
}

type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	staffRepo    *repository.StaffRepository
	auditRepo    *repository.AuditRepository
	log          *zap.Logger
	now          Clock
}

func NewScheduleService(
	scheduleRepo *repository.ScheduleRepository,
	staffRepo *repository.StaffRepository,
	auditRepo *repository.AuditRepository,
	log *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		staffRepo:    staffRepo,
		auditRepo:    auditRepo,
		log:          log,
		now:          systemClock,
	}
}

// SetClock replaces the time source.
func (s *ScheduleService) SetClock(now Clock) {
	s.now = now
}

// Create schedules one shift (admin only)
func (s *ScheduleService) Create(ctx context.Context, actor Actor, entry ScheduleEntry) (*models.ShiftSchedule, error) {
	if err := actor.require("create schedule", models.RoleAdmin); err != nil {
		return nil, err
	}

	schedule, err := s.insert(ctx, entry)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Scheduled staff %d for %s %s", entry.StaffID, schedule.Shift, models.FormatDate(schedule.Date))
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "schedule_create", "shift_schedule", schedule.ID, details)
	return schedule, nil
}

// BulkCreate schedules each entry independently and reports per-entry failures.
func (s *ScheduleService) BulkCreate(ctx context.Context, actor Actor, entries []ScheduleEntry) (*BulkResult, error) {
	if err := actor.require("create schedules", models.RoleAdmin); err != nil {
		return nil, err
	}

	result := &BulkResult{
		Created: []models.ShiftSchedule{},
		Errors:  []BulkError{},
	}
	for i, entry := range entries {
		schedule, err := s.insert(ctx, entry)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Code: errorCode(err), Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *schedule)
	}

	details := fmt.Sprintf("Bulk scheduled %d shifts, %d rejected", len(result.Created), len(result.Errors))
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "schedule_bulk_create", "shift_schedule", 0, details)
	s.log.Info("bulk schedule processed", zap.Int("created", len(result.Created)), zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// Get returns one shift
func (s *ScheduleService) Get(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	return s.scheduleRepo.GetByID(ctx, id)
}

// QueryByDateRange returns every shift dated within [start, end], optionally for one role
func (s *ScheduleService) QueryByDateRange(ctx context.Context, start, end datatypes.Date, role models.Role) ([]models.ShiftSchedule, error) {
	if time.Time(end).Before(time.Time(start)) {
		return nil, validationf("end date is before start date")
	}
	return s.scheduleRepo.List(ctx, repository.ScheduleFilter{From: &start, To: &end, Role: role})
}

// QueryByStaff returns one staff member's shifts, optionally bounded by date
func (s *ScheduleService) QueryByStaff(ctx context.Context, staffID uint, from, to *datatypes.Date) ([]models.ShiftSchedule, error) {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.List(ctx, repository.ScheduleFilter{StaffID: &staffID, From: from, To: to})
}

// MySchedule returns the actor's shifts in the month containing day, or the current month when day is nil.
func (s *ScheduleService) MySchedule(ctx context.Context, actor Actor, day *datatypes.Date) ([]models.ShiftSchedule, error) {
	ref := s.now()
	if day != nil {
		ref = time.Time(*day)
	}
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := models.DateOf(first)
	to := models.DateOf(first.AddDate(0, 1, -1))
	staffID := actor.StaffID
	return s.scheduleRepo.List(ctx, repository.ScheduleFilter{StaffID: &staffID, From: &from, To: &to})
}

// Weekly returns the week starting on the Monday on or before start; nil means the current week.
func (s *ScheduleService) Weekly(ctx context.Context, start *datatypes.Date) (*WeeklySchedule, error) {
	ref := s.now()
	if start != nil {
		ref = time.Time(*start)
	}
	monday := mondayOf(ref)
	from := models.DateOf(monday)
	to := models.DateOf(monday.AddDate(0, 0, 6))

	schedules, err := s.scheduleRepo.List(ctx, repository.ScheduleFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	return &WeeklySchedule{
		StartDate: models.FormatDate(from),
		EndDate:   models.FormatDate(to),
		Schedules: schedules,
	}, nil
}

// Update edits a shift that has not been locked (admin only)
func (s *ScheduleService) Update(ctx context.Context, actor Actor, id uint, in ScheduleUpdate) (*models.ShiftSchedule, error) {
	if err := actor.require("update schedule", models.RoleAdmin); err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.IsLocked {
		return nil, fmt.Errorf("%w: shift %d", ErrShiftLocked, id)
	}

	fields := map[string]interface{}{}
	if in.StartTime != nil {
		t, err := models.ParseClock(*in.StartTime)
		if err != nil {
			return nil, validationf("%v", err)
		}
		fields["start_time"] = t
	}
	if in.EndTime != nil {
		t, err := models.ParseClock(*in.EndTime)
		if err != nil {
			return nil, validationf("%v", err)
		}
		fields["end_time"] = t
	}
	if in.IsAvailable != nil {
		fields["is_available"] = *in.IsAvailable
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if len(fields) > 0 {
		if err := s.scheduleRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "schedule_update", "shift_schedule", id, fmt.Sprintf("Updated fields %v", keys(fields)))
	}
	return s.scheduleRepo.GetByID(ctx, id)
}

// Delete removes a shift that has not been locked (admin only)
func (s *ScheduleService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := actor.require("delete schedule", models.RoleAdmin); err != nil {
		return err
	}
	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if schedule.IsLocked {
		return fmt.Errorf("%w: shift %d", ErrShiftLocked, id)
	}
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	details := fmt.Sprintf("Deleted %s shift on %s", schedule.Shift, models.FormatDate(schedule.Date))
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "schedule_delete", "shift_schedule", id, details)
	return nil
}

// ListCurrentlyWorking returns the ids of staff of role on an available shift running at clock on date.
// Night shifts dated the previous day are still running until their end time.
func (s *ScheduleService) ListCurrentlyWorking(ctx context.Context, date datatypes.Date, clock datatypes.Time, role models.Role) ([]uint, error) {
	if role != models.RoleDoctor && role != models.RoleNurse {
		return nil, validationf("role must be doctor or nurse")
	}
	schedules, err := s.scheduleRepo.ListStaffedBetween(ctx, models.DayBefore(date), date, role)
	if err != nil {
		return nil, err
	}

	seen := map[uint]bool{}
	ids := []uint{}
	for _, sch := range schedules {
		if sch.OpenCoverage() || !shiftCovers(sch, date, clock) || seen[*sch.StaffID] {
			continue
		}
		seen[*sch.StaffID] = true
		ids = append(ids, *sch.StaffID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// IsWorking reports whether staffID is on shift at the given instant.
func (s *ScheduleService) IsWorking(ctx context.Context, staffID uint, role models.Role, at time.Time) (bool, error) {
	ids, err := s.ListCurrentlyWorking(ctx, models.DateOf(at), models.ClockOf(at), role)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == staffID {
			return true, nil
		}
	}
	return false, nil
}

// Coverage checks who of role is on shift at date and clock. A zero staffID asks whether anyone is.
func (s *ScheduleService) Coverage(ctx context.Context, date datatypes.Date, clock datatypes.Time, role models.Role, staffID uint) (*Coverage, error) {
	ids, err := s.ListCurrentlyWorking(ctx, date, clock, role)
	if err != nil {
		return nil, err
	}
	cov := &Coverage{
		Date:     models.FormatDate(date),
		Time:     clock.String(),
		Role:     role,
		StaffIDs: ids,
	}

	if staffID == 0 {
		cov.Covered = len(ids) > 0
		if !cov.Covered {
			cov.Warning = fmt.Sprintf("no %s is scheduled at %s on %s", role, cov.Time, cov.Date)
		}
		return cov, nil
	}

	for _, id := range ids {
		if id == staffID {
			cov.Covered = true
			return cov, nil
		}
	}
	shifts, err := s.QueryByStaff(ctx, staffID, &date, &date)
	if err != nil {
		return nil, err
	}
	cov.Shifts = shifts
	if len(shifts) == 0 {
		cov.Warning = fmt.Sprintf("staff %d is not scheduled on %s", staffID, cov.Date)
	} else {
		cov.Warning = fmt.Sprintf("%s is outside the scheduled shifts of staff %d", cov.Time, staffID)
	}
	return cov, nil
}

// NightShiftRotation ranks every active staff member of role by night shifts held in [from, to].
func (s *ScheduleService) NightShiftRotation(ctx context.Context, from, to datatypes.Date, role models.Role) ([]RotationSuggestion, error) {
	if !role.Clinical() {
		return nil, validationf("role must be doctor or nurse")
	}
	staff, err := s.staffRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	counts, err := s.scheduleRepo.CountShifts(ctx, from, to, role, models.ShiftNight)
	if err != nil {
		return nil, err
	}

	byStaff := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byStaff[c.StaffID] = c.Count
	}
	suggestions := make([]RotationSuggestion, 0, len(staff))
	for _, member := range staff {
		suggestions = append(suggestions, RotationSuggestion{
			StaffID:     member.ID,
			FullName:    member.FullName,
			NightShifts: byStaff[member.ID],
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].NightShifts != suggestions[j].NightShifts {
			return suggestions[i].NightShifts < suggestions[j].NightShifts
		}
		return suggestions[i].StaffID < suggestions[j].StaffID
	})
	return suggestions, nil
}

func (s *ScheduleService) insert(ctx context.Context, entry ScheduleEntry) (*models.ShiftSchedule, error) {
	schedule, err := s.build(ctx, entry)
	if err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: staff %d already has the %s shift on %s",
				ErrDuplicateShift, entry.StaffID, entry.Shift, models.FormatDate(schedule.Date))
		}
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return schedule, nil
}

func (s *ScheduleService) build(ctx context.Context, entry ScheduleEntry) (*models.ShiftSchedule, error) {
	if !entry.Shift.Valid() {
		return nil, validationf("unknown shift %q", entry.Shift)
	}
	date, err := models.ParseDate(entry.Date)
	if err != nil {
		return nil, validationf("%v", err)
	}

	staff, err := s.staffRepo.GetByID(ctx, entry.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.Role.Clinical() || staff.Archived {
		return nil, validationf("staff %d cannot hold shifts", staff.ID)
	}

	start, end := entry.Shift.DefaultWindow()
	if entry.StartTime != "" {
		if start, err = models.ParseClock(entry.StartTime); err != nil {
			return nil, validationf("%v", err)
		}
	}
	if entry.EndTime != "" {
		if end, err = models.ParseClock(entry.EndTime); err != nil {
			return nil, validationf("%v", err)
		}
	}

	available := true
	if entry.IsAvailable != nil {
		available = *entry.IsAvailable
	}

	staffID := staff.ID
	return &models.ShiftSchedule{
		StaffID:     &staffID,
		Role:        staff.Role,
		Date:        date,
		Shift:       entry.Shift,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: available,
		Notes:       entry.Notes,
	}, nil
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// errorCode classifies err for batch reports.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateShift):
		return "duplicate_shift"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
