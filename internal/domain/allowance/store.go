package allowance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreAPI resolves the entities a calculation depends on. Lookups for
// missing rows return ErrNotFound.
type StoreAPI interface {
	Subproject(ctx context.Context, subprojectID string) (SubprojectInfo, error)
	Project(ctx context.Context, projectID string) (ProjectInfo, error)
	Employee(ctx context.Context, employeeID string) (EmployeeInfo, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Subproject(ctx context.Context, subprojectID string) (SubprojectInfo, error) {
	var info SubprojectInfo
	var lat, lon *float64
	err := s.DB.QueryRow(ctx, `
    SELECT id, project_id, cost_per_km, latitude, longitude
    FROM subprojects
    WHERE id = $1
  `, subprojectID).Scan(&info.ID, &info.ProjectID, &info.CostPerKm, &lat, &lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubprojectInfo{}, ErrNotFound
	}
	if err != nil {
		return SubprojectInfo{}, err
	}
	info.Location = pointFrom(lat, lon)
	return info, nil
}

func (s *Store) Project(ctx context.Context, projectID string) (ProjectInfo, error) {
	var info ProjectInfo
	err := s.DB.QueryRow(ctx, `
    SELECT id, default_cost_per_km
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&info.ID, &info.DefaultCostPerKm)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProjectInfo{}, ErrNotFound
	}
	if err != nil {
		return ProjectInfo{}, err
	}
	return info, nil
}

func (s *Store) Employee(ctx context.Context, employeeID string) (EmployeeInfo, error) {
	var info EmployeeInfo
	var lat, lon *float64
	err := s.DB.QueryRow(ctx, `
    SELECT id, home_latitude, home_longitude
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&info.ID, &lat, &lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeInfo{}, ErrNotFound
	}
	if err != nil {
		return EmployeeInfo{}, err
	}
	info.Home = pointFrom(lat, lon)
	return info, nil
}

// Coordinates are only meaningful as a pair.
func pointFrom(lat, lon *float64) *GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	return &GeoPoint{Latitude: *lat, Longitude: *lon}
}
