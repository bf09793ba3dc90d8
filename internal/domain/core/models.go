package core

import (
	"time"

	"mileage/internal/domain/allowance"
)

type Employee struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId,omitempty"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Email       string              `json:"email"`
	HomeAddress string              `json:"homeAddress"`
	Home        *allowance.GeoPoint `json:"home,omitempty"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	RoleID    string     `json:"roleId"`
	RoleName  string     `json:"roleName"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
