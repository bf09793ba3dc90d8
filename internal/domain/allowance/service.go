package allowance

import (
	"context"
	"log/slog"
	"time"

	"mileage/internal/platform/metrics"
)

// Recorder persists one audit record per successful calculation. Writes are
// best-effort: a failure is logged by the caller and never fails the
// calculation itself.
type Recorder interface {
	RecordCalculation(ctx context.Context, requesterID, travelRequestID string, req Request, res Result) error
}

type Service struct {
	Store    StoreAPI
	Cache    Cache
	Audit    Recorder
	Metrics  *metrics.Collector
	CacheTTL time.Duration
}

func NewService(store StoreAPI, cache Cache, recorder Recorder, collector *metrics.Collector, cacheTTL time.Duration) *Service {
	return &Service{
		Store:    store,
		Cache:    cache,
		Audit:    recorder,
		Metrics:  collector,
		CacheTTL: cacheTTL,
	}
}

// Calculate resolves the subproject, its owning project and the employee,
// verifies both ends are geocoded, and produces the allowance figures.
// Cached results short-circuit the lookups; a hit reports cached=true.
// travelRequestID may be empty for ad-hoc previews.
func (s *Service) Calculate(ctx context.Context, requesterID, travelRequestID string, req Request) (Result, bool, error) {
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		return Result{}, false, ErrInvalidDaysPerWeek
	}

	key := CacheKey{
		SubprojectID: req.SubprojectID,
		EmployeeID:   req.EmployeeID,
		DaysPerWeek:  req.DaysPerWeek,
	}
	if cached, ok, err := s.Cache.Get(ctx, key); err != nil {
		slog.Warn("calculation cache get failed", "key", key.Canonical(), "err", err)
	} else if ok {
		if s.Metrics != nil {
			s.Metrics.CacheHit()
		}
		return cached, true, nil
	}
	if s.Metrics != nil {
		s.Metrics.CacheMiss()
	}

	subproject, err := s.Store.Subproject(ctx, req.SubprojectID)
	if err != nil {
		return Result{}, false, err
	}
	project, err := s.Store.Project(ctx, subproject.ProjectID)
	if err != nil {
		return Result{}, false, err
	}
	employee, err := s.Store.Employee(ctx, req.EmployeeID)
	if err != nil {
		return Result{}, false, err
	}

	if subproject.Location == nil || employee.Home == nil {
		return Result{}, false, ErrAddressNotGeocoded
	}

	rate, err := EffectiveRate(subproject.CostPerKm, project.DefaultCostPerKm)
	if err != nil {
		return Result{}, false, err
	}

	distance, err := Distance(*employee.Home, *subproject.Location)
	if err != nil {
		return Result{}, false, err
	}

	daily, weekly, err := ComputeAllowance(distance, rate, req.DaysPerWeek)
	if err != nil {
		return Result{}, false, err
	}

	result := Result{
		DistanceKm:         roundCents(distance),
		DailyAllowance:     daily,
		WeeklyAllowance:    weekly,
		EffectiveRatePerKm: rate,
	}

	if s.Audit != nil {
		if err := s.Audit.RecordCalculation(ctx, requesterID, travelRequestID, req, result); err != nil {
			slog.Warn("calculation audit write failed", "subprojectId", req.SubprojectID, "employeeId", req.EmployeeID, "err", err)
		}
	}
	if err := s.Cache.Put(ctx, key, result, s.CacheTTL); err != nil {
		slog.Warn("calculation cache put failed", "key", key.Canonical(), "err", err)
	}
	if s.Metrics != nil {
		s.Metrics.CalculationDone()
	}

	return result, false, nil
}

// Invalidate removes one cached entry, typically after a rate or address
// change made the memoized result stale.
func (s *Service) Invalidate(ctx context.Context, key CacheKey) error {
	return s.Cache.Invalidate(ctx, key)
}

// SweepExpired removes entries whose TTL elapsed and returns the count.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.Cache.SweepExpired(ctx)
	if err != nil {
		return removed, err
	}
	if s.Metrics != nil {
		s.Metrics.CacheSwept(removed)
	}
	return removed, nil
}
