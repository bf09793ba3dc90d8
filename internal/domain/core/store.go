package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/allowance"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions rp
    JOIN permissions p ON rp.permission_id = p.id
    WHERE rp.role_id = $1 AND p.key = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const employeeColumns = `
    id,
    COALESCE(user_id::text, ''),
    first_name, last_name, email,
    COALESCE(home_address, ''),
    home_latitude, home_longitude,
    status, created_at, updated_at`

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID)
	return scanEmployee(row)
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE user_id = $1
  `, userID)
	return scanEmployee(row)
}

func (s *Store) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY last_name, first_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	var id string
	var lat, lon *float64
	if emp.Home != nil {
		lat, lon = &emp.Home.Latitude, &emp.Home.Longitude
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (user_id, first_name, last_name, email, home_address, home_latitude, home_longitude)
    VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, emp.UserID, emp.FirstName, emp.LastName, emp.Email, emp.HomeAddress, lat, lon).Scan(&id)
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, emp Employee) error {
	var lat, lon *float64
	if emp.Home != nil {
		lat, lon = &emp.Home.Latitude, &emp.Home.Longitude
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, email = $3, home_address = $4,
        home_latitude = $5, home_longitude = $6, status = $7, updated_at = now()
    WHERE id = $8
  `, emp.FirstName, emp.LastName, emp.Email, emp.HomeAddress, lat, lon, emp.Status, emp.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// UpdateHomeLocation records the geocoded coordinates for an employee's home
// address. Changing the address clears the coordinates elsewhere, so a
// non-null pair here always belongs to the stored address.
func (s *Store) UpdateHomeLocation(ctx context.Context, employeeID string, point allowance.GeoPoint) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET home_latitude = $1, home_longitude = $2, updated_at = now()
    WHERE id = $3
  `, point.Latitude, point.Longitude, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) EmployeesWithoutCoordinates(ctx context.Context, limit int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE (home_latitude IS NULL OR home_longitude IS NULL)
      AND COALESCE(home_address, '') <> ''
      AND status = 'active'
    ORDER BY updated_at
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.email, u.role_id, r.name, u.status, u.last_login, u.created_at
    FROM users u
    JOIN roles r ON u.role_id = r.id
    ORDER BY u.email
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.RoleID, &u.RoleName, &u.Status, &u.LastLogin, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateUserRole(ctx context.Context, userID, roleID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET role_id = $1 WHERE id = $2", roleID, userID)
	return err
}

func (s *Store) UpdateUserStatus(ctx context.Context, userID, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2", status, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var emp Employee
	var lat, lon *float64
	err := row.Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.HomeAddress, &lat, &lon, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		emp.Home = &allowance.GeoPoint{Latitude: *lat, Longitude: *lon}
	}
	return &emp, nil
}
