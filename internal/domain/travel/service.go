package travel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"mileage/internal/domain/allowance"
)

type Notifier interface {
	Create(ctx context.Context, userID, ntype, title, body string) error
}

type Service struct {
	Store  *Store
	Calc   *allowance.Service
	Notify Notifier
}

func NewService(store *Store, calc *allowance.Service, notify Notifier) *Service {
	return &Service{Store: store, Calc: calc, Notify: notify}
}

// Submit creates a pending travel request with its allowance snapshot. The
// calculation runs first so a request can only be filed against a resolvable,
// geocoded subproject/employee pair; its audit record carries the new
// request ID.
func (s *Service) Submit(ctx context.Context, actorUserID string, req Request) (*Request, error) {
	req.ID = uuid.NewString()
	req.Status = StatusPending

	result, _, err := s.Calc.Calculate(ctx, actorUserID, req.ID, allowance.Request{
		SubprojectID: req.SubprojectID,
		EmployeeID:   req.EmployeeID,
		DaysPerWeek:  req.DaysPerWeek,
	})
	if err != nil {
		return nil, err
	}
	req.Calculation = &result

	if err := s.Store.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifyEmployee(ctx, req.EmployeeID, "travel.submitted",
		"Travel request submitted",
		fmt.Sprintf("Your travel request for %d day(s) per week is pending approval.", req.DaysPerWeek))

	return &req, nil
}

// Approve moves a pending request to approved. Only pending requests can be
// decided; a lost race surfaces as ErrInvalidState.
func (s *Service) Approve(ctx context.Context, approverUserID, requestID, note string) (*Request, error) {
	return s.decide(ctx, approverUserID, requestID, StatusApproved, note)
}

func (s *Service) Reject(ctx context.Context, approverUserID, requestID, note string) (*Request, error) {
	return s.decide(ctx, approverUserID, requestID, StatusRejected, note)
}

// Cancel lets the owning employee withdraw a pending request.
func (s *Service) Cancel(ctx context.Context, actorUserID, requestID string) (*Request, error) {
	req, err := s.Store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	ownerUserID, err := s.Store.EmployeeUserID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if ownerUserID == "" || ownerUserID != actorUserID {
		return nil, ErrForbidden
	}
	if err := s.Store.Decide(ctx, requestID, StatusCancelled, actorUserID, ""); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, requestID)
}

func (s *Service) decide(ctx context.Context, deciderUserID, requestID, status, note string) (*Request, error) {
	req, err := s.Store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Decide(ctx, requestID, status, deciderUserID, note); err != nil {
		return nil, err
	}

	title := "Travel request " + status
	body := fmt.Sprintf("Your travel request %s has been %s.", requestID, status)
	if note != "" {
		body += " Note: " + note
	}
	s.notifyEmployee(ctx, req.EmployeeID, "travel."+status, title, body)

	return s.Store.Get(ctx, requestID)
}

func (s *Service) notifyEmployee(ctx context.Context, employeeID, ntype, title, body string) {
	if s.Notify == nil {
		return
	}
	userID, err := s.Store.EmployeeUserID(ctx, employeeID)
	if err != nil || userID == "" {
		return
	}
	if err := s.Notify.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("travel notification failed", "type", ntype, "employeeId", employeeID, "err", err)
	}
}
