package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lockwise/internal/models"
	"lockwise/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Schedule"

// Exporter writes booking reports as xlsx files for the office.
type Exporter struct {
	path   string
	grid   *schedule.Grid
	logger *zerolog.Logger
}

func NewExporter(path string, grid *schedule.Grid, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, grid: grid, logger: logger}
}

// ExportSchedule renders a day planner: one column per date, one row per
// grid slot, each cell listing the bookings that occupy that slot.
func (e *Exporter) ExportSchedule(startDate, endDate time.Time, dailyBookings map[string][]*models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(scheduleSheet, "A1", fmt.Sprintf("Schedule: %s to %s",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	dateCols := e.writeDateHeaders(f, startDate, endDate)
	e.writeSlotRows(f)
	e.writeBookingCells(f, dailyBookings, dateCols)

	_ = f.SetColWidth(scheduleSheet, "A", "A", 10)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(scheduleSheet, string(i), string(i), 28)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(scheduleSheet, "A1", "A1", headerStyle)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("schedule export created")
	return filePath, nil
}

func (e *Exporter) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	col := 2
	dateCols := make(map[string]int)

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(scheduleSheet, cell, current.Format("Mon 01-02"))
		_ = f.SetCellStyle(scheduleSheet, cell, cell, style)
		dateCols[current.Format("2006-01-02")] = col
		col++
	}
	return dateCols
}

func (e *Exporter) writeSlotRows(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, start := range e.grid.Starts() {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(scheduleSheet, cell, schedule.FormatClock(start))
		_ = f.SetCellStyle(scheduleSheet, cell, cell, style)
		row++
	}
}

func (e *Exporter) writeBookingCells(f *excelize.File, dailyBookings map[string][]*models.Booking, dateCols map[string]int) {
	starts := e.grid.Starts()

	for dateKey, bookings := range dailyBookings {
		col, ok := dateCols[dateKey]
		if !ok {
			continue
		}

		for rowIdx, slotStart := range starts {
			slot := schedule.Interval{Start: slotStart, End: slotStart + e.grid.Step()}

			var cellValue string
			var slotBookings []*models.Booking
			for _, b := range bookings {
				start, err := schedule.ParseClock(b.Time)
				if err != nil {
					continue
				}
				if slot.Overlaps(schedule.Interval{Start: start, End: start + b.Duration}) {
					slotBookings = append(slotBookings, b)
				}
			}

			for _, b := range slotBookings {
				cellValue += fmt.Sprintf("%s #%s %s (%s)\n", statusIcon(b.Status), b.Reference, b.CustomerName, b.ServiceName)
				if b.Technician != "" {
					cellValue += fmt.Sprintf("   tech: %s\n", b.Technician)
				}
			}

			cell, _ := excelize.CoordinatesToCellName(col, rowIdx+3)
			if cellValue != "" {
				_ = f.SetCellValue(scheduleSheet, cell, cellValue)
			}
			if styleID, err := e.cellStyle(f, slotBookings); err == nil {
				_ = f.SetCellStyle(scheduleSheet, cell, cell, styleID)
			}
		}
	}
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusInProgress:
		return "🔧"
	case models.StatusCancelled, models.StatusNoShow:
		return "❌"
	default:
		return "❓"
	}
}

func (e *Exporter) cellStyle(f *excelize.File, slotBookings []*models.Booking) (int, error) {
	fillColor := "#FFFFFF"
	if len(slotBookings) > 0 {
		fillColor = "#C6EFCE"
		for _, b := range slotBookings {
			if b.Status == models.StatusPending {
				fillColor = "#FFEB9C"
				break
			}
		}
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
}

// ExportBookingsList writes a flat table of bookings in a date range.
func (e *Exporter) ExportBookingsList(bookings []*models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Reference", "Service", "Date", "Time", "Duration",
		"Status", "Priority", "Customer", "Phone", "Address",
		"Technician", "Estimated", "Actual",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Reference)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.ServiceName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.Time)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.Duration)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), b.Status)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), b.Priority)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), b.CustomerName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("J%d", row), b.CustomerPhone)
		_ = f.SetCellValue(sheet, fmt.Sprintf("K%d", row), b.Address)
		_ = f.SetCellValue(sheet, fmt.Sprintf("L%d", row), b.Technician)
		if b.EstimatedCost != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("M%d", row), *b.EstimatedCost)
		}
		if b.ActualCost != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("N%d", row), *b.ActualCost)
		}
	}

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("bookings export created")
	return filePath, nil
}
