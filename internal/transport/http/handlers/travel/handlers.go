package travelhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mileage/internal/domain/allowance"
	"mileage/internal/domain/auth"
	"mileage/internal/domain/core"
	"mileage/internal/domain/travel"
	"mileage/internal/transport/http/api"
	"mileage/internal/transport/http/middleware"
	"mileage/internal/transport/http/shared"
)

type Handler struct {
	Service   *travel.Service
	Employees *core.Store
	Perms     middleware.PermissionStore
}

func NewHandler(service *travel.Service, employees *core.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Employees: employees, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/travel/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTravelRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTravelWrite, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermTravelRead, h.Perms)).Get("/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTravelRead, h.Perms)).Get("/{requestID}/statement.pdf", h.handleStatement)
		r.With(middleware.RequirePermission(auth.PermTravelApprove, h.Perms)).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermTravelApprove, h.Perms)).Post("/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermTravelWrite, h.Perms)).Post("/{requestID}/cancel", h.handleCancel)
	})
}

// ownEmployeeID resolves the employee record behind the authenticated user.
// Employees only ever see their own requests; approvers see everything.
func (h *Handler) ownEmployeeID(r *http.Request, user auth.UserContext) (string, error) {
	if user.RoleName != auth.RoleEmployee {
		return "", nil
	}
	emp, err := h.Employees.GetEmployeeByUserID(r.Context(), user.UserID)
	if err != nil {
		return "", err
	}
	return emp.ID, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	scope, err := h.ownEmployeeID(r, user)
	if err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Success(w, []travel.Request{}, reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "travel_list_failed", "failed to list travel requests", reqID)
		return
	}
	if scope == "" {
		scope = r.URL.Query().Get("employeeId")
	}

	requests, err := h.Service.Store.List(r.Context(), scope, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "travel_list_failed", "failed to list travel requests", reqID)
		return
	}
	if requests == nil {
		requests = []travel.Request{}
	}
	api.Success(w, requests, reqID)
}

type submitPayload struct {
	EmployeeID   string `json:"employeeId"`
	SubprojectID string `json:"subprojectId"`
	DaysPerWeek  int    `json:"daysPerWeek"`
	Purpose      string `json:"purpose"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if user.RoleName == auth.RoleEmployee {
		emp, err := h.Employees.GetEmployeeByUserID(r.Context(), user.UserID)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "no_employee_record", "no employee record for this account", reqID)
			return
		}
		payload.EmployeeID = emp.ID
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Required("subprojectId", payload.SubprojectID, "subproject is required")
	if payload.DaysPerWeek < 1 || payload.DaysPerWeek > 7 {
		v.Add("daysPerWeek", "days per week must be between 1 and 7")
	}
	if v.Reject(w, reqID) {
		return
	}

	req, err := h.Service.Submit(r.Context(), user.UserID, travel.Request{
		EmployeeID:   payload.EmployeeID,
		SubprojectID: payload.SubprojectID,
		DaysPerWeek:  payload.DaysPerWeek,
		Purpose:      payload.Purpose,
	})
	if err != nil {
		writeTravelError(w, err, reqID)
		return
	}
	api.Created(w, req, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.Store.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeTravelError(w, err, reqID)
		return
	}

	scope, err := h.ownEmployeeID(r, user)
	if err != nil || (scope != "" && scope != req.EmployeeID) {
		api.Fail(w, http.StatusNotFound, "not_found", "travel request not found", reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	requestID := chi.URLParam(r, "requestID")

	data, err := h.Service.Store.StatementData(r.Context(), requestID)
	if err != nil {
		writeTravelError(w, err, reqID)
		return
	}

	pdf, err := travel.Statement(data)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to render statement", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "travel-"+requestID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

type decisionPayload struct {
	Note string `json:"note"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, approverUserID, requestID, note string) (*travel.Request, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload decisionPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	req, err := fn(r.Context(), user.UserID, chi.URLParam(r, "requestID"), payload.Note)
	if err != nil {
		writeTravelError(w, err, reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.Cancel(r.Context(), user.UserID, chi.URLParam(r, "requestID"))
	if err != nil {
		writeTravelError(w, err, reqID)
		return
	}
	api.Success(w, req, reqID)
}

func writeTravelError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, travel.ErrRequestNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "travel request not found", reqID)
	case errors.Is(err, travel.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "travel request is not pending", reqID)
	case errors.Is(err, travel.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to modify this travel request", reqID)
	case errors.Is(err, allowance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "subproject or employee not found", reqID)
	case errors.Is(err, allowance.ErrAddressNotGeocoded):
		api.Fail(w, http.StatusConflict, "address_not_geocoded", "both addresses must be geocoded before submitting", reqID)
	case errors.Is(err, allowance.ErrInvalidDaysPerWeek), errors.Is(err, allowance.ErrInvalidRate):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "travel_request_failed", "failed to process travel request", reqID)
	}
}
