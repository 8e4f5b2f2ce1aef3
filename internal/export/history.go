package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"weighstation/internal/models"
)

// BuildHistoryXLSX renders the weighing history list as a workbook.
func BuildHistoryXLSX(records []models.WeighingHistoryRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "history"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Weighing ID", "Dispatch ID", "Plate", "Company", "Item", "Mode", "Gross (kg)", "Tare (kg)", "Net (kg)", "Weighed At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.WeighingID)
		if rec.DispatchID != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), *rec.DispatchID)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.PlateNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.CompanyName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.ItemName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(rec.Mode))
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), rec.GrossWeight)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), rec.TareWeight)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), rec.NetWeight)
		_ = f.SetCellValue(sheet, fmt.Sprintf("J%d", row), rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
