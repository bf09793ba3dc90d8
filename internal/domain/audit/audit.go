package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/allowance"
)

// Record is one append-only entry capturing a calculation's inputs and
// outputs. Records are never mutated or deleted.
type Record struct {
	ID                 string    `json:"id"`
	TravelRequestID    string    `json:"travelRequestId,omitempty"`
	RequesterID        string    `json:"requesterId"`
	SubprojectID       string    `json:"subprojectId"`
	EmployeeID         string    `json:"employeeId"`
	DaysPerWeek        int       `json:"daysPerWeek"`
	DistanceKm         float64   `json:"distanceKm"`
	DailyAllowance     float64   `json:"dailyAllowance"`
	WeeklyAllowance    float64   `json:"weeklyAllowance"`
	EffectiveRatePerKm float64   `json:"effectiveRatePerKm"`
	CreatedAt          time.Time `json:"createdAt"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) RecordCalculation(ctx context.Context, requesterID, travelRequestID string, req allowance.Request, res allowance.Result) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO calculation_audit
      (travel_request_id, requester_user_id, subproject_id, employee_id, days_per_week,
       distance_km, daily_allowance, weekly_allowance, effective_rate_per_km)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, nullIfEmpty(travelRequestID), requesterID, req.SubprojectID, req.EmployeeID, req.DaysPerWeek,
		res.DistanceKm, res.DailyAllowance, res.WeeklyAllowance, res.EffectiveRatePerKm)
	return err
}

// ListByTravelRequest returns the audit trail for one travel request ordered
// by timestamp ascending. An unknown request yields an empty slice.
func (s *Service) ListByTravelRequest(ctx context.Context, travelRequestID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(travel_request_id::text, ''), COALESCE(requester_user_id::text, ''),
           subproject_id, employee_id, days_per_week,
           distance_km, daily_allowance, weekly_allowance, effective_rate_per_km, created_at
    FROM calculation_audit
    WHERE travel_request_id = $1
    ORDER BY created_at ASC
  `, travelRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.TravelRequestID, &rec.RequesterID,
			&rec.SubprojectID, &rec.EmployeeID, &rec.DaysPerWeek,
			&rec.DistanceKm, &rec.DailyAllowance, &rec.WeeklyAllowance, &rec.EffectiveRatePerKm, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
