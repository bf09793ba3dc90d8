package cataloghandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mileage/internal/domain/auth"
	"mileage/internal/domain/catalog"
	"mileage/internal/transport/http/api"
	"mileage/internal/transport/http/middleware"
	"mileage/internal/transport/http/shared"
)

type Handler struct {
	Service *catalog.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *catalog.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/", h.handleListProjects)
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/{projectID}", h.handleGetProject)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/", h.handleCreateProject)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/{projectID}", h.handleUpdateProject)
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/{projectID}/subprojects", h.handleListSubprojects)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/{projectID}/subprojects", h.handleCreateSubproject)
	})
	r.Route("/subprojects", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/{subprojectID}", h.handleGetSubproject)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/{subprojectID}", h.handleUpdateSubproject)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/{subprojectID}/geocode", h.handleGeocodeSubproject)
	})
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	projects, err := h.Service.Store.ListProjects(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "projects_list_failed", "failed to list projects", reqID)
		return
	}
	if projects == nil {
		projects = []catalog.Project{}
	}
	api.Success(w, projects, reqID)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	project, err := h.Service.Store.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if errors.Is(err, catalog.ErrProjectNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_get_failed", "failed to load project", reqID)
		return
	}
	api.Success(w, project, reqID)
}

type projectPayload struct {
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	DefaultCostPerKm float64 `json:"defaultCostPerKm"`
	Active           *bool   `json:"active"`
}

func (p projectPayload) validate() *shared.Validator {
	v := shared.NewValidator()
	v.Required("name", p.Name, "name is required")
	v.Required("code", p.Code, "code is required")
	if p.DefaultCostPerKm <= 0 {
		v.Add("defaultCostPerKm", "default cost per km must be positive")
	}
	return v
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	id, err := h.Service.Store.CreateProject(r.Context(), catalog.Project{
		Name:             payload.Name,
		Code:             payload.Code,
		DefaultCostPerKm: payload.DefaultCostPerKm,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_create_failed", "failed to create project", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	err := h.Service.Store.UpdateProject(r.Context(), catalog.Project{
		ID:               projectID,
		Name:             payload.Name,
		Code:             payload.Code,
		DefaultCostPerKm: payload.DefaultCostPerKm,
		Active:           active,
	})
	if errors.Is(err, catalog.ErrProjectNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_update_failed", "failed to update project", reqID)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListSubprojects(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	subprojects, err := h.Service.Store.ListSubprojects(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subprojects_list_failed", "failed to list subprojects", reqID)
		return
	}
	if subprojects == nil {
		subprojects = []catalog.Subproject{}
	}
	api.Success(w, subprojects, reqID)
}

func (h *Handler) handleGetSubproject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	sp, err := h.Service.Store.GetSubproject(r.Context(), chi.URLParam(r, "subprojectID"))
	if errors.Is(err, catalog.ErrSubprojectNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "subproject not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subproject_get_failed", "failed to load subproject", reqID)
		return
	}
	api.Success(w, sp, reqID)
}

type subprojectPayload struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	CostPerKm *float64 `json:"costPerKm"`
}

func (p subprojectPayload) validate() *shared.Validator {
	v := shared.NewValidator()
	v.Required("name", p.Name, "name is required")
	if p.CostPerKm != nil && *p.CostPerKm <= 0 {
		v.Add("costPerKm", "cost per km override must be positive")
	}
	return v
}

func (h *Handler) handleCreateSubproject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	var payload subprojectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	if _, err := h.Service.Store.GetProject(r.Context(), projectID); err != nil {
		if errors.Is(err, catalog.ErrProjectNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "subproject_create_failed", "failed to create subproject", reqID)
		return
	}

	id, err := h.Service.Store.CreateSubproject(r.Context(), catalog.Subproject{
		ProjectID: projectID,
		Name:      payload.Name,
		Address:   payload.Address,
		CostPerKm: payload.CostPerKm,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subproject_create_failed", "failed to create subproject", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdateSubproject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	subprojectID := chi.URLParam(r, "subprojectID")

	var payload subprojectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.validate().Reject(w, reqID) {
		return
	}

	current, err := h.Service.Store.GetSubproject(r.Context(), subprojectID)
	if errors.Is(err, catalog.ErrSubprojectNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "subproject not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subproject_update_failed", "failed to update subproject", reqID)
		return
	}

	updated := *current
	updated.Name = payload.Name
	updated.Address = payload.Address
	updated.CostPerKm = payload.CostPerKm
	// A changed address invalidates previously geocoded coordinates.
	if updated.Address != current.Address {
		updated.Location = nil
	}

	if err := h.Service.Store.UpdateSubproject(r.Context(), updated); err != nil {
		if errors.Is(err, catalog.ErrSubprojectNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "subproject not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "subproject_update_failed", "failed to update subproject", reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleGeocodeSubproject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	point, err := h.Service.GeocodeSubproject(r.Context(), chi.URLParam(r, "subprojectID"))
	switch {
	case errors.Is(err, catalog.ErrSubprojectNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "subproject not found", reqID)
	case errors.Is(err, catalog.ErrNoAddress):
		api.Fail(w, http.StatusBadRequest, "no_address", "subproject has no address to geocode", reqID)
	case err != nil:
		api.Fail(w, http.StatusBadGateway, "geocode_failed", "failed to geocode address", reqID)
	default:
		api.Success(w, point, reqID)
	}
}
