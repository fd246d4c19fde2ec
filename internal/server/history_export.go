package server

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const historySheetName = "History"

var historyExportHeaders = []string{
	"id",
	"created_at_utc",
	"input_kind",
	"query",
	"detected_condition",
	"urgency",
	"suggested_doctor",
	"immediate_action",
	"remedies",
	"medicines",
}

var historyColumnWidths = []float64{38, 22, 12, 40, 28, 12, 22, 40, 30, 30}

func buildHistoryWorkbook(records []HistoryRecord) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(historySheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range historyExportHeaders {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(historySheetName, name, name, historyColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(historyExportHeaders), 1)
	if err := f.SetCellStyle(historySheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("set header style: %w", err)
	}

	for i, record := range records {
		row := i + 2
		values := []any{
			record.ID,
			record.CreatedAt.UTC().Format(time.RFC3339),
			record.InputKind,
			record.Query,
			record.DetectedCondition,
			record.Urgency,
			record.Result.SuggestedDoctor,
			record.Result.ImmediateAction,
			strings.Join(record.Result.Remedies, ", "),
			strings.Join(record.Result.Medicines, ", "),
		}
		for col, value := range values {
			if err := setCellValue(f, col+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.SetPanes(historySheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(historySheetName, cell, value)
}
