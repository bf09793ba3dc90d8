package travel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/allowance"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    id, employee_id, subproject_id, days_per_week,
    COALESCE(purpose, ''), status,
    distance_km, daily_allowance, weekly_allowance, effective_rate_per_km,
    COALESCE(decided_by::text, ''), COALESCE(decision_note, ''), decided_at, created_at`

func (s *Store) Create(ctx context.Context, req Request) error {
	var distance, daily, weekly, rate *float64
	if req.Calculation != nil {
		distance = &req.Calculation.DistanceKm
		daily = &req.Calculation.DailyAllowance
		weekly = &req.Calculation.WeeklyAllowance
		rate = &req.Calculation.EffectiveRatePerKm
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO travel_requests
      (id, employee_id, subproject_id, days_per_week, purpose, status,
       distance_km, daily_allowance, weekly_allowance, effective_rate_per_km)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, req.ID, req.EmployeeID, req.SubprojectID, req.DaysPerWeek, req.Purpose, req.Status,
		distance, daily, weekly, rate)
	return err
}

func (s *Store) Get(ctx context.Context, requestID string) (*Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM travel_requests
    WHERE id = $1
  `, requestID)
	return scanRequest(row)
}

// List returns requests newest first; employeeID narrows to one employee's
// own requests when non-empty.
func (s *Store) List(ctx context.Context, employeeID string, limit, offset int) ([]Request, error) {
	query := `
    SELECT ` + requestColumns + `
    FROM travel_requests`
	args := []any{}
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"
	if employeeID != "" {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// Decide moves a pending request to a terminal status. The WHERE clause on
// the current status makes concurrent decisions lose cleanly.
func (s *Store) Decide(ctx context.Context, requestID, status, deciderUserID, note string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE travel_requests
    SET status = $1, decided_by = $2, decision_note = $3, decided_at = now()
    WHERE id = $4 AND status = $5
  `, status, deciderUserID, note, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Store) EmployeeUserID(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRequestNotFound
	}
	return userID, err
}

func (s *Store) StatementData(ctx context.Context, requestID string) (StatementData, error) {
	var data StatementData
	err := s.DB.QueryRow(ctx, `
    SELECT t.id, e.first_name || ' ' || e.last_name, e.email,
           p.name, sp.name, COALESCE(sp.address, ''),
           t.days_per_week, t.status,
           COALESCE(t.distance_km, 0), COALESCE(t.daily_allowance, 0),
           COALESCE(t.weekly_allowance, 0), COALESCE(t.effective_rate_per_km, 0),
           t.created_at
    FROM travel_requests t
    JOIN employees e ON t.employee_id = e.id
    JOIN subprojects sp ON t.subproject_id = sp.id
    JOIN projects p ON sp.project_id = p.id
    WHERE t.id = $1
  `, requestID).Scan(&data.RequestID, &data.EmployeeName, &data.EmployeeEmail,
		&data.ProjectName, &data.SubprojectName, &data.Address,
		&data.DaysPerWeek, &data.Status,
		&data.Calculation.DistanceKm, &data.Calculation.DailyAllowance,
		&data.Calculation.WeeklyAllowance, &data.Calculation.EffectiveRatePerKm,
		&data.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatementData{}, ErrRequestNotFound
	}
	return data, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var req Request
	var distance, daily, weekly, rate *float64
	err := row.Scan(&req.ID, &req.EmployeeID, &req.SubprojectID, &req.DaysPerWeek,
		&req.Purpose, &req.Status,
		&distance, &daily, &weekly, &rate,
		&req.DecidedBy, &req.DecisionNote, &req.DecidedAt, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if distance != nil && daily != nil && weekly != nil && rate != nil {
		req.Calculation = &allowance.Result{
			DistanceKm:         *distance,
			DailyAllowance:     *daily,
			WeeklyAllowance:    *weekly,
			EffectiveRatePerKm: *rate,
		}
	}
	return &req, nil
}
