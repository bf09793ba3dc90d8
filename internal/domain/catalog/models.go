package catalog

import (
	"time"

	"mileage/internal/domain/allowance"
)

type Project struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	DefaultCostPerKm float64   `json:"defaultCostPerKm"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Subproject is a work location under a project. CostPerKm overrides the
// project default when set; Location stays nil until the address has been
// geocoded.
type Subproject struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"projectId"`
	Name      string              `json:"name"`
	Address   string              `json:"address"`
	CostPerKm *float64            `json:"costPerKm,omitempty"`
	Location  *allowance.GeoPoint `json:"location,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}
