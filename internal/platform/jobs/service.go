package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/catalog"
	"mileage/internal/domain/core"
	"mileage/internal/platform/config"
)

const (
	JobCacheSweep      = "cache_sweep"
	JobGeocodeBackfill = "geocode_backfill"
)

const backfillBatchSize = 25

type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Sweeper Sweeper
	Core    *core.Service
	Catalog *catalog.Service
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, sweeper Sweeper, coreSvc *core.Service, catalogSvc *catalog.Service) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Sweeper: sweeper,
		Core:    coreSvc,
		Catalog: catalogSvc,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.CacheSweepInterval > 0 {
		go s.scheduleCacheSweeps(ctx, s.Cfg.CacheSweepInterval)
	}
	if s.Cfg.GeocodeBackfillInterval > 0 {
		go s.scheduleGeocodeBackfill(ctx, s.Cfg.GeocodeBackfillInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleCacheSweeps(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobCacheSweep, func(ctx context.Context) (any, error) {
				removed, err := s.Sweeper.SweepExpired(ctx)
				return map[string]any{"removed": removed}, err
			})
		}
	}
}

// scheduleGeocodeBackfill periodically resolves coordinates for employees and
// subprojects that carry an address but no location yet, so calculations stop
// failing with address_not_geocoded without manual intervention.
func (s *Service) scheduleGeocodeBackfill(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobGeocodeBackfill, s.backfillCoordinates)
		}
	}
}

func (s *Service) backfillCoordinates(ctx context.Context) (any, error) {
	employeesDone := 0
	employees, err := s.Core.Store.EmployeesWithoutCoordinates(ctx, backfillBatchSize)
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		if _, err := s.Core.GeocodeEmployee(ctx, emp.ID); err != nil {
			slog.Warn("employee geocode backfill failed", "employeeId", emp.ID, "err", err)
			continue
		}
		employeesDone++
	}

	subprojectsDone := 0
	subprojects, err := s.Catalog.Store.SubprojectsWithoutCoordinates(ctx, backfillBatchSize)
	if err != nil {
		return map[string]any{"employees": employeesDone}, err
	}
	for _, sp := range subprojects {
		if _, err := s.Catalog.GeocodeSubproject(ctx, sp.ID); err != nil {
			slog.Warn("subproject geocode backfill failed", "subprojectId", sp.ID, "err", err)
			continue
		}
		subprojectsDone++
	}

	return map[string]any{
		"employees":   employeesDone,
		"subprojects": subprojectsDone,
	}, nil
}
