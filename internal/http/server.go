package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"joblog/internal/cache"
	"joblog/internal/core"
	"joblog/internal/log"
	"joblog/internal/services"
)

// Jobs is the part of the job store the API needs.
type Jobs interface {
	List() []core.JobRecord
	Sorted(order core.SortOrder) []core.JobRecord
	Current() (uint64, []core.JobRecord)
	Get(id string) (core.JobRecord, error)
	Revision() uint64
	Create(ctx context.Context, draft core.Draft) (core.JobRecord, error)
	Update(ctx context.Context, id string, draft core.Draft) (core.JobRecord, error)
	Delete(ctx context.Context, id string) error
	Status() services.StoreStatus
}

var _ Jobs = (*services.JobStore)(nil)

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	CacheSize    int
	CacheTTL     time.Duration
	SummaryOrder core.SortOrder
	RateLimit    int // mutating requests per client per minute
	Now          func() time.Time
}

type Server struct {
	http.Server
	jobs         Jobs
	logger       *log.Logger
	defaultOrder core.SortOrder
	now          func() time.Time

	// Weekly reports keyed by store revision, order and day.
	weeklyCache  *cache.LRUCache[core.WeeklyReport]
	cacheManager *cache.Manager

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, jobs Jobs, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.SummaryOrder == "" {
		opts.SummaryOrder = core.Descending
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		jobs:         jobs,
		logger:       logger.WithComponent(log.ComponentHTTP),
		defaultOrder: opts.SummaryOrder,
		now:          opts.Now,
		weeklyCache:  cache.NewLRUCache[core.WeeklyReport](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(logger),
		rateLimiter:  newRateLimiter(opts.RateLimit),
		metrics:      &securityMetrics{},
	}
	s.cacheManager.Register(s.weeklyCache)
	s.cacheManager.StartCleanup(opts.CacheTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("GET /summary/weekly", s.handleWeeklySummary)
	mux.HandleFunc("GET /summary/month", s.handleMonthSummary)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(s.logger)(s.withSecurity(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// weeklyReport returns the cached report for the current revision or
// computes it. A mutation bumps the revision, so stale entries are never
// hit and simply age out.
func (s *Server) weeklyReport(r *http.Request, order core.SortOrder, asOf time.Time) (uint64, core.WeeklyReport) {
	rev, jobs := s.jobs.Current()
	key := fmt.Sprintf("%d|%s|%s", rev, order, core.DateOf(asOf))

	if report, ok := s.weeklyCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Weekly report cache hit", log.FieldRevision, rev)
		return rev, report
	}

	report := core.Summarize(jobs, order, asOf)
	s.weeklyCache.Set(key, report)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Weekly report cached",
		log.FieldRevision, rev, "weeks", len(report.Weeks))
	return rev, report
}
