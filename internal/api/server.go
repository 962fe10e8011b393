package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/louisbranch/stagesim/internal/catalog"
)

const (
	defaultMaxRuns = 1000
	maxBodyBytes   = 1 << 20
)

// Config configures a Server.
type Config struct {
	Catalog catalog.Provider
	// Workers bounds concurrent runs per simulation. Zero means GOMAXPROCS.
	Workers int
	// MaxRuns caps the runs of one simulation request.
	MaxRuns int
	Logger  *log.Logger
}

// Server handles API requests.
type Server struct {
	catalog  catalog.Provider
	workers  int
	maxRuns  int
	logger   *log.Logger
	flights  singleflight.Group
	upgrader websocket.Upgrader
}

// New validates cfg and creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	maxRuns := cfg.MaxRuns
	if maxRuns < 1 {
		maxRuns = defaultMaxRuns
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		catalog: cfg.Catalog,
		workers: cfg.Workers,
		maxRuns: maxRuns,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}, nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	// Routes sit on the root router: a path-prefix subrouter reports a
	// method mismatch as 404 instead of 405.
	r.HandleFunc("/api/stages/{id:[0-9]+}", s.handleStage).Methods(http.MethodGet)
	r.HandleFunc("/api/cards/{id:[0-9]+}", s.handleCard).Methods(http.MethodGet)
	r.HandleFunc("/api/strategies", s.handleStrategies).Methods(http.MethodGet)
	r.HandleFunc("/api/simulate", s.handleSimulate).Methods(http.MethodPost)
	r.HandleFunc("/api/simulate/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
