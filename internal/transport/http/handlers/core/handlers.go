package corehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mileage/internal/domain/auth"
	"mileage/internal/domain/core"
	"mileage/internal/transport/http/api"
	"mileage/internal/transport/http/middleware"
	"mileage/internal/transport/http/shared"
)

type Handler struct {
	Service   *core.Service
	AuthStore *auth.Store
	Perms     middleware.PermissionStore
}

func NewHandler(service *core.Service, authStore *auth.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, AuthStore: authStore, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/{employeeID}/geocode", h.handleGeocode)
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermUsersManage, h.Perms))
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleCreateUser)
		r.Put("/{userID}/role", h.handleUpdateUserRole)
		r.Put("/{userID}/status", h.handleUpdateUserStatus)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employees, err := h.Service.Store.ListEmployees(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", reqID)
		return
	}
	if employees == nil {
		employees = []core.Employee{}
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	emp, err := h.Service.Store.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

type employeePayload struct {
	UserID      string `json:"userId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	HomeAddress string `json:"homeAddress"`
	Status      string `json:"status"`
}

func (p employeePayload) validate() *shared.Validator {
	v := shared.NewValidator()
	v.Required("firstName", p.FirstName, "first name is required")
	v.Required("lastName", p.LastName, "last name is required")
	v.Required("email", p.Email, "email is required")
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		v.Add("email", "email is not valid")
	}
	return v
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	id, err := h.Service.Store.CreateEmployee(r.Context(), core.Employee{
		UserID:      payload.UserID,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		HomeAddress: payload.HomeAddress,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	current, err := h.Service.Store.GetEmployee(r.Context(), employeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}

	updated := *current
	updated.FirstName = payload.FirstName
	updated.LastName = payload.LastName
	updated.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	updated.HomeAddress = payload.HomeAddress
	if payload.Status != "" {
		updated.Status = payload.Status
	}
	// A changed address invalidates previously geocoded coordinates.
	if updated.HomeAddress != current.HomeAddress {
		updated.Home = nil
	}

	if err := h.Service.Store.UpdateEmployee(r.Context(), updated); err != nil {
		if errors.Is(err, core.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleGeocode(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	point, err := h.Service.GeocodeEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	case errors.Is(err, core.ErrNoAddress):
		api.Fail(w, http.StatusBadRequest, "no_address", "employee has no home address to geocode", reqID)
	case err != nil:
		api.Fail(w, http.StatusBadGateway, "geocode_failed", "failed to geocode home address", reqID)
	default:
		api.Success(w, point, reqID)
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	users, err := h.Service.Store.ListUsers(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", reqID)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	api.Success(w, users, reqID)
}

type createUserPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("role", payload.Role, "role is required")
	if len(payload.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	roleID, err := h.AuthStore.RoleIDByName(r.Context(), payload.Role)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", reqID)
		return
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	id, err := h.AuthStore.CreateUser(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), hash, roleID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Role == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "role is required", reqID)
		return
	}

	roleID, err := h.AuthStore.RoleIDByName(r.Context(), payload.Role)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", reqID)
		return
	}
	if err := h.Service.Store.UpdateUserRole(r.Context(), chi.URLParam(r, "userID"), roleID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user role", reqID)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Status != "active" && payload.Status != "disabled" {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "status must be active or disabled", reqID)
		return
	}

	if err := h.Service.Store.UpdateUserStatus(r.Context(), chi.URLParam(r, "userID"), payload.Status); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user status", reqID)
		return
	}
	api.NoContent(w)
}
