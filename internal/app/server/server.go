package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/allowance"
	"mileage/internal/domain/audit"
	"mileage/internal/domain/auth"
	"mileage/internal/domain/catalog"
	"mileage/internal/domain/core"
	"mileage/internal/domain/notifications"
	"mileage/internal/domain/travel"
	"mileage/internal/platform/config"
	"mileage/internal/platform/db"
	"mileage/internal/platform/email"
	"mileage/internal/platform/geocode"
	"mileage/internal/platform/jobs"
	"mileage/internal/platform/metrics"
	"mileage/internal/transport/http/api"
	authhandler "mileage/internal/transport/http/handlers/auth"
	calculationshandler "mileage/internal/transport/http/handlers/calculations"
	cataloghandler "mileage/internal/transport/http/handlers/catalog"
	corehandler "mileage/internal/transport/http/handlers/core"
	notificationshandler "mileage/internal/transport/http/handlers/notifications"
	travelhandler "mileage/internal/transport/http/handlers/travel"
	"mileage/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service

	redisCache *allowance.RedisCache
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, DB: pool}

	var cache allowance.Cache
	if cfg.CacheBackend == config.CacheBackendRedis {
		redisCache, err := allowance.NewRedisCache(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, err
		}
		app.redisCache = redisCache
		cache = redisCache
	} else {
		cache = allowance.NewMemoryCache()
	}

	collector := metrics.New()
	geocoder := geocode.New(cfg.GeocodeBaseURL)
	mailer := email.New(cfg)

	coreStore := core.NewStore(pool)
	coreService := core.NewService(coreStore, geocoder)
	catalogService := catalog.NewService(catalog.NewStore(pool), geocoder)
	auditService := audit.New(pool)
	calcService := allowance.NewService(allowance.NewStore(pool), cache, auditService, collector, cfg.CacheTTL)
	notifyService := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)
	travelService := travel.NewService(travel.NewStore(pool), calcService, notifyService)
	authStore := auth.NewStore(pool)

	app.Jobs = jobs.New(pool, cfg, calcService, coreService, catalogService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL)
		authHandler.RegisterRoutes(r)

		coreHandler := corehandler.NewHandler(coreService, authStore, coreStore)
		coreHandler.RegisterRoutes(r)

		catalogHandler := cataloghandler.NewHandler(catalogService, coreStore)
		catalogHandler.RegisterRoutes(r)

		travelHandler := travelhandler.NewHandler(travelService, coreStore, coreStore)
		travelHandler.RegisterRoutes(r)

		calculationsHandler := calculationshandler.NewHandler(calcService, auditService, coreStore)
		calculationsHandler.RegisterRoutes(r)

		notificationsHandler := notificationshandler.NewHandler(notifyService)
		notificationsHandler.RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			log.Printf("redis close failed: %v", err)
		}
	}
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	log.Printf("mileage server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
