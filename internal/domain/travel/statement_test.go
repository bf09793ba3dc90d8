package travel

import (
	"bytes"
	"testing"
	"time"

	"mileage/internal/domain/allowance"
)

func TestStatementRendersPDF(t *testing.T) {
	data := StatementData{
		RequestID:      "req-1",
		EmployeeName:   "Erin Muster",
		EmployeeEmail:  "erin@example.com",
		ProjectName:    "Lakeside Build",
		SubprojectName: "Site Office",
		Address:        "Bahnhofstrasse 1, Zurich",
		DaysPerWeek:    4,
		Status:         StatusApproved,
		Calculation: allowance.Result{
			DistanceKm:         224.32,
			DailyAllowance:     224.32,
			WeeklyAllowance:    897.28,
			EffectiveRatePerKm: 0.5,
		},
		CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}

	pdf, err := Statement(data)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected PDF magic header, got %q", pdf[:4])
	}
}
