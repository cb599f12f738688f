package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/timetag/internal/entry"
)

type ExcelWriter struct {
	Options Options
}

func (w *ExcelWriter) Extension() string { return "xlsx" }

func (w *ExcelWriter) Write(path string, entries []entry.TimeEntry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{"ID", "Date", "Category", "Time (seconds)", "Time (min)", "Duration", "TimeZone"}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, e := range entries {
		local, err := w.Options.localTime(e)
		if err != nil {
			return err
		}
		row := i + 2
		values := []any{
			e.ID,
			local,
			w.Options.label(e.Category),
			e.DurationSeconds,
			e.DurationSeconds / 60,
			FormatDuration(e.DurationSeconds),
			e.OriginTimeZone,
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel export %s: %w", path, err)
	}
	return nil
}
