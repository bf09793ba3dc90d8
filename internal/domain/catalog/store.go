package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/allowance"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrSubprojectNotFound = errors.New("subproject not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, default_cost_per_km, active, created_at
    FROM projects
    ORDER BY name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.DefaultCostPerKm, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, code, default_cost_per_km, active, created_at
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&p.ID, &p.Name, &p.Code, &p.DefaultCostPerKm, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (name, code, default_cost_per_km)
    VALUES ($1,$2,$3)
    RETURNING id
  `, p.Name, p.Code, p.DefaultCostPerKm).Scan(&id)
	return id, err
}

func (s *Store) UpdateProject(ctx context.Context, p Project) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET name = $1, code = $2, default_cost_per_km = $3, active = $4
    WHERE id = $5
  `, p.Name, p.Code, p.DefaultCostPerKm, p.Active, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

const subprojectColumns = `
    id, project_id, name,
    COALESCE(address, ''),
    cost_per_km, latitude, longitude, created_at`

func (s *Store) ListSubprojects(ctx context.Context, projectID string) ([]Subproject, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+subprojectColumns+`
    FROM subprojects
    WHERE project_id = $1
    ORDER BY name
  `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subproject
	for rows.Next() {
		sp, err := scanSubproject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

func (s *Store) GetSubproject(ctx context.Context, subprojectID string) (*Subproject, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+subprojectColumns+`
    FROM subprojects
    WHERE id = $1
  `, subprojectID)
	return scanSubproject(row)
}

func (s *Store) CreateSubproject(ctx context.Context, sp Subproject) (string, error) {
	var id string
	var lat, lon *float64
	if sp.Location != nil {
		lat, lon = &sp.Location.Latitude, &sp.Location.Longitude
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO subprojects (project_id, name, address, cost_per_km, latitude, longitude)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, sp.ProjectID, sp.Name, sp.Address, sp.CostPerKm, lat, lon).Scan(&id)
	return id, err
}

func (s *Store) UpdateSubproject(ctx context.Context, sp Subproject) error {
	var lat, lon *float64
	if sp.Location != nil {
		lat, lon = &sp.Location.Latitude, &sp.Location.Longitude
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE subprojects
    SET name = $1, address = $2, cost_per_km = $3, latitude = $4, longitude = $5
    WHERE id = $6
  `, sp.Name, sp.Address, sp.CostPerKm, lat, lon, sp.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubprojectNotFound
	}
	return nil
}

func (s *Store) UpdateSubprojectLocation(ctx context.Context, subprojectID string, point allowance.GeoPoint) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE subprojects
    SET latitude = $1, longitude = $2
    WHERE id = $3
  `, point.Latitude, point.Longitude, subprojectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubprojectNotFound
	}
	return nil
}

func (s *Store) SubprojectsWithoutCoordinates(ctx context.Context, limit int) ([]Subproject, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+subprojectColumns+`
    FROM subprojects
    WHERE (latitude IS NULL OR longitude IS NULL)
      AND COALESCE(address, '') <> ''
    ORDER BY created_at
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subproject
	for rows.Next() {
		sp, err := scanSubproject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubproject(row rowScanner) (*Subproject, error) {
	var sp Subproject
	var lat, lon *float64
	err := row.Scan(&sp.ID, &sp.ProjectID, &sp.Name, &sp.Address, &sp.CostPerKm, &lat, &lon, &sp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubprojectNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		sp.Location = &allowance.GeoPoint{Latitude: *lat, Longitude: *lon}
	}
	return &sp, nil
}
