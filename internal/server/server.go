package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"doxydecor/decor"
)

const defaultRoot = "html"

// Config describes server wiring and runtime behaviour.
type Config struct {
	// Root is the Doxygen HTML output directory to serve.
	Root      string
	Decorator *decor.Decorator
	Logger    *log.Logger
	Clock     func() time.Time
	// CacheTTL bounds how long a decorated page is reused; zero disables
	// the cache.
	CacheTTL time.Duration
}

// Server previews a Doxygen tree with every page decorated on the way out.
type Server struct {
	cfg     Config
	router  chi.Router
	handler http.Handler
	files   http.Handler
	logger  *log.Logger
	cache   *pageCache
	clock   func() time.Time
}

// New wires a new preview server with the provided configuration.
func New(cfg Config) *Server {
	if cfg.Root == "" {
		cfg.Root = defaultRoot
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Decorator == nil {
		cfg.Decorator = decor.New(decor.DefaultOptions(), cfg.Logger)
	}
	s := &Server{
		cfg:    cfg,
		files:  http.FileServer(http.Dir(cfg.Root)),
		logger: cfg.Logger,
		cache:  newPageCache(cfg.Clock, cfg.CacheTTL),
		clock:  cfg.Clock,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(withLogging(s.logger, s.clock))

	r.Get("/health", s.handleHealth)
	r.Get("/steps", s.handleSteps)
	r.Get("/*", s.handlePage)

	s.router = r
	s.handler = r
}
