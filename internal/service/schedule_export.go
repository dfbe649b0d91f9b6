package service

import (
	"bytes"
	"context"
	"fmt"

	"hospital-operations-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

var weeklyExportHeaders = []string{"Date", "Shift", "Start", "End", "Staff ID", "Staff Name", "Role", "Available", "Locked", "Notes"}

// ExportWeekly renders the week containing start as an xlsx workbook.
// It returns the file bytes and a suggested file name.
func (s *ScheduleService) ExportWeekly(ctx context.Context, start *datatypes.Date) ([]byte, string, error) {
	week, err := s.Weekly(ctx, start)
	if err != nil {
		return nil, "", err
	}
	data, err := weeklyWorkbook(week)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("schedule_%s_%s.xlsx", week.StartDate, week.EndDate), nil
}

func weeklyWorkbook(week *WeeklySchedule) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Week " + week.StartDate
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range weeklyExportHeaders {
		if err := setCell(f, sheetName, col+1, 1, header); err != nil {
			f.Close()
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(weeklyExportHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 12); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "F", "F", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, sch := range week.Schedules {
		row := i + 2
		staffID, staffName := "", "OPEN"
		if sch.StaffID != nil {
			staffID = fmt.Sprint(*sch.StaffID)
			staffName = ""
			if sch.Staff != nil {
				staffName = sch.Staff.FullName
			}
		}
		values := []interface{}{
			models.FormatDate(sch.Date),
			string(sch.Shift),
			sch.StartTime.String(),
			sch.EndTime.String(),
			staffID,
			staffName,
			string(sch.Role),
			yesNo(sch.IsAvailable),
			yesNo(sch.IsLocked),
			sch.Notes,
		}
		for col, v := range values {
			if err := setCell(f, sheetName, col+1, row, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
