package travel

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Statement renders a one-page PDF allowance statement for a travel request.
func Statement(data StatementData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Mileage Allowance Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Request: %s", data.RequestID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", data.EmployeeName, data.EmployeeEmail))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Project: %s / %s", data.ProjectName, data.SubprojectName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Location: %s", data.Address))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Submitted: %s", data.CreatedAt.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", data.Status))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Distance (one way): %.2f km", data.Calculation.DistanceKm))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Rate per km: %.2f", data.Calculation.EffectiveRatePerKm))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days per week: %d", data.DaysPerWeek))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Daily allowance: %.2f", data.Calculation.DailyAllowance))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Weekly allowance: %.2f", data.Calculation.WeeklyAllowance))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
