package calculationshandler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mileage/internal/domain/allowance"
	"mileage/internal/domain/audit"
	"mileage/internal/domain/auth"
	"mileage/internal/transport/http/api"
	"mileage/internal/transport/http/middleware"
)

type AuditReader interface {
	ListByTravelRequest(ctx context.Context, travelRequestID string) ([]audit.Record, error)
}

type Handler struct {
	Service *allowance.Service
	Audit   AuditReader
	Perms   middleware.PermissionStore
}

func NewHandler(service *allowance.Service, auditReader AuditReader, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditReader, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCalcRun, h.Perms)).Post("/distance", h.handleDistance)
		r.With(middleware.RequirePermission(auth.PermCalcRun, h.Perms)).Post("/allowance", h.handleAllowance)
		r.With(middleware.RequirePermission(auth.PermCalcRun, h.Perms)).Post("/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/{requestID}", h.handleAudit)
		r.With(middleware.RequirePermission(auth.PermCacheManage, h.Perms)).Post("/cache/invalidate", h.handleCacheInvalidate)
		r.With(middleware.RequirePermission(auth.PermCacheManage, h.Perms)).Delete("/cache/expired", h.handleCacheSweep)
	})
}

type distancePayload struct {
	From *allowance.GeoPoint `json:"from"`
	To   *allowance.GeoPoint `json:"to"`
}

func (h *Handler) handleDistance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload distancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.From == nil || payload.To == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_coordinates", "both from and to points are required", reqID)
		return
	}

	distance, err := allowance.Distance(*payload.From, *payload.To)
	if err != nil {
		writeCalcError(w, err, reqID)
		return
	}
	api.Success(w, map[string]float64{"distanceKm": round2(distance)}, reqID)
}

type allowancePayload struct {
	DistanceKm  float64 `json:"distanceKm"`
	RatePerKm   float64 `json:"ratePerKm"`
	DaysPerWeek int     `json:"daysPerWeek"`
}

func (h *Handler) handleAllowance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload allowancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.DistanceKm < 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_distance", "distance must not be negative", reqID)
		return
	}

	daily, weekly, err := allowance.ComputeAllowance(payload.DistanceKm, payload.RatePerKm, payload.DaysPerWeek)
	if err != nil {
		writeCalcError(w, err, reqID)
		return
	}
	api.Success(w, map[string]float64{
		"dailyAllowance":  daily,
		"weeklyAllowance": weekly,
	}, reqID)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload allowance.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.SubprojectID == "" || payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "subprojectId and employeeId are required", reqID)
		return
	}

	result, _, err := h.Service.Calculate(r.Context(), user.UserID, "", payload)
	if err != nil {
		writeCalcError(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	records, err := h.Audit.ListByTravelRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit records", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var key allowance.CacheKey
	if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if key.SubprojectID == "" || key.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "subprojectId and employeeId are required", reqID)
		return
	}

	if err := h.Service.Invalidate(r.Context(), key); err != nil {
		api.Fail(w, http.StatusInternalServerError, "cache_invalidate_failed", "failed to invalidate cache entry", reqID)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleCacheSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	removed, err := h.Service.SweepExpired(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cache_sweep_failed", "failed to sweep expired cache entries", reqID)
		return
	}
	api.Success(w, map[string]int{"removedCount": removed}, reqID)
}

func writeCalcError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, allowance.ErrInvalidCoordinates):
		api.Fail(w, http.StatusBadRequest, "invalid_coordinates", err.Error(), reqID)
	case errors.Is(err, allowance.ErrInvalidRate):
		api.Fail(w, http.StatusBadRequest, "invalid_rate", err.Error(), reqID)
	case errors.Is(err, allowance.ErrInvalidDaysPerWeek):
		api.Fail(w, http.StatusBadRequest, "invalid_days_per_week", err.Error(), reqID)
	case errors.Is(err, allowance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "subproject or employee not found", reqID)
	case errors.Is(err, allowance.ErrAddressNotGeocoded):
		api.Fail(w, http.StatusConflict, "address_not_geocoded", "both addresses must be geocoded before calculating", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "calculation_failed", "calculation failed", reqID)
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
