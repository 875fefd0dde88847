package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ricavi/internal/backend"
	"ricavi/internal/cache"
	"ricavi/internal/core"
	"ricavi/internal/log"
	"ricavi/internal/middleware/ratelimit"
	"ricavi/internal/middleware/security"
	"ricavi/internal/middleware/trace"
	"ricavi/internal/services"
	appweb "ricavi/web"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	Ping      backend.PingFunc
	Logger    *log.Logger
	RateLimit ratelimit.Config
	Cache     *cache.LRUCache[core.Period, core.MonthSummary]
}

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.RevenueService
	ping      backend.PingFunc
	cache     *cache.LRUCache[core.Period, core.MonthSummary]

	logger   *log.Logger
	events   *log.StructuredLogger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	now          func() time.Time
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.RevenueService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		svc:      svc,
		ping:     opts.Ping,
		cache:    opts.Cache,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
		now:      time.Now,
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	limited := s.limiter.Middleware(s.detector.ExtractClientIP)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /compare", s.handleCompare)
	mux.Handle("POST /cells", limited(http.HandlerFunc(s.handleFormCell)))

	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/compare", s.handleAPICompare)
	mux.Handle("POST /api/cells", limited(http.HandlerFunc(s.handleAPICell)))

	mux.Handle("GET /export.csv", security.NoStore(http.HandlerFunc(s.handleExportCSV)))
	mux.Handle("GET /export.xlsx", security.NoStore(http.HandlerFunc(s.handleExportXLSX)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var h http.Handler = mux
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(logger)(h)
	h = s.tracer.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// currentPeriod is the default month of every view.
func (s *Server) currentPeriod() core.Period {
	return core.PeriodOf(s.now())
}

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
	"count":  core.FormatCount,
}
