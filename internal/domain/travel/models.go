package travel

import (
	"errors"
	"time"

	"mileage/internal/domain/allowance"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var (
	ErrRequestNotFound = errors.New("travel request not found")
	ErrInvalidState    = errors.New("travel request is not pending")
	ErrForbidden       = errors.New("forbidden")
)

// Request is one employee's commute claim for a subproject location. The
// allowance snapshot is computed on submission and kept for the approval
// decision and the statement export.
type Request struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employeeId"`
	SubprojectID string            `json:"subprojectId"`
	DaysPerWeek  int               `json:"daysPerWeek"`
	Purpose      string            `json:"purpose"`
	Status       string            `json:"status"`
	Calculation  *allowance.Result `json:"calculation,omitempty"`
	DecidedBy    string            `json:"decidedBy,omitempty"`
	DecisionNote string            `json:"decisionNote,omitempty"`
	DecidedAt    *time.Time        `json:"decidedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type StatementData struct {
	RequestID      string
	EmployeeName   string
	EmployeeEmail  string
	ProjectName    string
	SubprojectName string
	Address        string
	DaysPerWeek    int
	Status         string
	Calculation    allowance.Result
	CreatedAt      time.Time
}
