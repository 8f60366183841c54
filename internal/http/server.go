package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"carlog/internal/cache"
	"carlog/internal/core"
	"carlog/internal/log"
	"carlog/internal/middleware/ratelimit"
	"carlog/internal/middleware/security"
	"carlog/internal/middleware/trace"
	"carlog/internal/services"
)

// Journal is the service surface the API needs. services.JournalService
// implements it.
type Journal interface {
	CreateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error)
	GetCar(ctx context.Context, id string) (core.CarProfile, error)
	ListCars(ctx context.Context) ([]core.CarProfile, error)
	UpdateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error)
	DeleteCar(ctx context.Context, id string) error

	CreateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error)
	GetRecord(ctx context.Context, id string) (core.MaintenanceRecord, error)
	ListRecords(ctx context.Context, carID string) ([]core.MaintenanceRecord, error)
	UpdateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error)
	DeleteRecord(ctx context.Context, id string) (string, error)

	NextService(ctx context.Context, carID string, now time.Time) (core.NextServiceInfo, bool, error)
	Stats(ctx context.Context, carID string, months int, now time.Time) (core.SpendingSummary, error)
	ResolvedInterval(ctx context.Context, carID string) (core.ServiceInterval, error)
	ServiceIntervals(ctx context.Context) ([]core.CatalogEntry, error)
	ServiceIntervalForMake(ctx context.Context, carMake string) (core.CatalogEntry, error)
}

var _ Journal = (*services.JournalService)(nil)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	StatsMonths        int
	// Ready backs /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
	// Now overrides the clock (tests).
	Now func() time.Time
}

const (
	analyticsCacheSize = 200
	analyticsCacheTTL  = 5 * time.Minute
	cacheCleanupEvery  = 10 * time.Minute
	maxBodyBytes       = 1 << 20
)

type Server struct {
	http.Server
	journal Journal
	logger  *log.Logger
	events  *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	cacheManager *cache.Manager
	nextCache    *cache.LRUCache[nextServiceResponse]
	statsCache   *cache.LRUCache[core.SpendingSummary]

	appMetrics  appMetrics
	statsMonths int
	ready       func(ctx context.Context) error
	now         func() time.Time

	shutdownOnce sync.Once
}

type appMetrics struct {
	started        time.Time
	recordsWritten atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, journal Journal, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	statsMonths := opts.StatsMonths
	if statsMonths <= 0 {
		statsMonths = services.DefaultStatsMonths
	}

	detector := security.NewDetector()
	s := &Server{
		journal:          journal,
		logger:           logger,
		events:           log.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(rlConfig),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		cacheManager:     cache.NewManager(),
		nextCache:        cache.NewLRUCache[nextServiceResponse](analyticsCacheSize, analyticsCacheTTL),
		statsCache:       cache.NewLRUCache[core.SpendingSummary](analyticsCacheSize, analyticsCacheTTL),
		statsMonths:      statsMonths,
		ready:            opts.Ready,
		now:              now,
	}
	s.appMetrics.started = now()

	s.cacheManager.Register(s.nextCache)
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(cacheCleanupEvery)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/cars", s.handleListCars)
	mux.HandleFunc("POST /api/cars", s.handleCreateCar)
	mux.HandleFunc("GET /api/cars/{id}", s.handleGetCar)
	mux.HandleFunc("PUT /api/cars/{id}", s.handleUpdateCar)
	mux.HandleFunc("DELETE /api/cars/{id}", s.handleDeleteCar)

	mux.HandleFunc("GET /api/cars/{id}/records", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PUT /api/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)

	mux.HandleFunc("GET /api/service-intervals", s.handleListIntervals)
	mux.HandleFunc("GET /api/service-intervals/{make}", s.handleIntervalForMake)
	mux.HandleFunc("GET /api/cars/{id}/next-service", s.handleNextService)
	mux.HandleFunc("GET /api/cars/{id}/stats", s.handleStats)

	return mux
}

// middleware applies, outermost first: tracing, request logger, security
// headers, probe detection and write rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, retry later").Write(w)
	})(h)

	h = s.securityDetector.Middleware(limited)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.Middleware(s.logger, trace.RequestIDFromRequest)(h)
	return s.traceMiddleware.Middleware(h)
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
