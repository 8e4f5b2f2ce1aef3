package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"weighstation/internal/models"
)

// BuildSlipPDF renders the weighing slip for one record: the document the
// gate pass is issued against.
func BuildSlipPDF(rec models.WeighingHistoryRecord, stationName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 10, "Weighing Slip")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if stationName != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Station: %s", stationName))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Slip No: %d", rec.WeighingID))
	pdf.Ln(5)
	if rec.DispatchID != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Dispatch: %d", *rec.DispatchID))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Plate: %s", rec.PlateNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Company: %s", rec.CompanyName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Item: %s", rec.ItemName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mode: %s", rec.Mode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Weighed: %s", rec.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 7, "Gross (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 7, "Tare (kg)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 7, "Net (kg)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 7, fmt.Sprintf("%.0f", rec.GrossWeight), "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 7, fmt.Sprintf("%.0f", rec.TareWeight), "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 7, fmt.Sprintf("%.0f", rec.NetWeight), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
