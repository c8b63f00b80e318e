package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/haulstack/supportbot/internal/health"
	"github.com/haulstack/supportbot/pkg/models"
)

// MessageHandler is the bot surface the gateway exposes over HTTP. The
// Discord-facing collaborator calls these routes; this service never talks
// to the chat platform itself.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage) (*models.Reply, error)
	HandleEdit(ctx context.Context, messageID, content string) (*models.Reply, error)
	Stats() models.ServiceStats
}

// GatewayConfig holds the HTTP server settings.
type GatewayConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AllowedMethods []string      `yaml:"allowed_methods"`
	AllowedHeaders []string      `yaml:"allowed_headers"`
	MaxRequestSize int64         `yaml:"max_request_size"`
}

// DefaultGatewayConfig returns the shipped server settings. The write
// timeout leaves room for a slow generation on the messages route.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxRequestSize: 1 << 20,
	}
}

// GatewayMetrics counts requests across the gateway.
type GatewayMetrics struct {
	mu               sync.Mutex
	requestsTotal    int64
	requestsFailed   int64
	averageLatency   time.Duration
	requestsByPath   map[string]int64
	requestsByMethod map[string]int64
	requestsByStatus map[int]int64
	lastRequest      time.Time
}

// MetricsSnapshot is the JSON view of the gateway counters.
type MetricsSnapshot struct {
	RequestsTotal    int64            `json:"requests_total"`
	RequestsFailed   int64            `json:"requests_failed"`
	AverageLatency   time.Duration    `json:"average_latency"`
	RequestsByPath   map[string]int64 `json:"requests_by_path"`
	RequestsByMethod map[string]int64 `json:"requests_by_method"`
	RequestsByStatus map[int]int64    `json:"requests_by_status"`
	LastRequest      time.Time        `json:"last_request"`
}

func newGatewayMetrics() *GatewayMetrics {
	return &GatewayMetrics{
		requestsByPath:   make(map[string]int64),
		requestsByMethod: make(map[string]int64),
		requestsByStatus: make(map[int]int64),
	}
}

// Snapshot copies the counters for serving.
func (m *GatewayMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := MetricsSnapshot{
		RequestsTotal:    m.requestsTotal,
		RequestsFailed:   m.requestsFailed,
		AverageLatency:   m.averageLatency,
		RequestsByPath:   make(map[string]int64, len(m.requestsByPath)),
		RequestsByMethod: make(map[string]int64, len(m.requestsByMethod)),
		RequestsByStatus: make(map[int]int64, len(m.requestsByStatus)),
		LastRequest:      m.lastRequest,
	}
	for path, count := range m.requestsByPath {
		snapshot.RequestsByPath[path] = count
	}
	for method, count := range m.requestsByMethod {
		snapshot.RequestsByMethod[method] = count
	}
	for status, count := range m.requestsByStatus {
		snapshot.RequestsByStatus[status] = count
	}
	return snapshot
}

// Gateway serves the bot over HTTP.
type Gateway struct {
	server  *http.Server
	router  *mux.Router
	handler MessageHandler
	checker *health.Checker
	config  GatewayConfig
	logger  *zap.Logger
	metrics *GatewayMetrics
}

// NewGateway builds the router, middleware, and server.
func NewGateway(config GatewayConfig, handler MessageHandler, checker *health.Checker, logger *zap.Logger) *Gateway {
	router := mux.NewRouter()

	gateway := &Gateway{
		router:  router,
		handler: handler,
		checker: checker,
		config:  config,
		logger:  logger,
		metrics: newGatewayMetrics(),
	}

	gateway.setupRoutes()
	gateway.setupMiddleware()

	gateway.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return gateway
}

func (g *Gateway) setupRoutes() {
	api := g.router.PathPrefix("/api/v1").Subrouter()

	messages := api.PathPrefix("/messages").Subrouter()
	messages.HandleFunc("", g.handleMessage).Methods("POST")
	messages.HandleFunc("/{id}/edit", g.handleEdit).Methods("POST")

	api.HandleFunc("/health", g.checker.HTTPHandler()).Methods("GET")
	api.HandleFunc("/stats", g.handleStats).Methods("GET")
	api.HandleFunc("/metrics", g.handleMetrics).Methods("GET")
}

func (g *Gateway) setupMiddleware() {
	if g.config.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   g.config.AllowedOrigins,
			AllowedMethods:   g.config.AllowedMethods,
			AllowedHeaders:   g.config.AllowedHeaders,
			AllowCredentials: true,
		})
		g.router.Use(c.Handler)
	}

	// Metrics middleware goes last so it captures every request.
	g.router.Use(g.metricsMiddleware)
}

// Start serves until Stop is called. A graceful shutdown is not an error.
func (g *Gateway) Start() error {
	g.logger.Info("starting api gateway", zap.String("addr", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests up to the
// context deadline.
func (g *Gateway) Stop(ctx context.Context) error {
	g.logger.Info("stopping api gateway")
	return g.server.Shutdown(ctx)
}

func (g *Gateway) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		g.updateMetrics(r, wrapped.statusCode, duration)
		g.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", duration))
	})
}

func (g *Gateway) updateMetrics(r *http.Request, statusCode int, duration time.Duration) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()

	g.metrics.requestsTotal++
	g.metrics.requestsByPath[r.URL.Path]++
	g.metrics.requestsByMethod[r.Method]++
	g.metrics.requestsByStatus[statusCode]++
	g.metrics.lastRequest = time.Now()
	if statusCode >= http.StatusInternalServerError {
		g.metrics.requestsFailed++
	}

	if g.metrics.averageLatency == 0 {
		g.metrics.averageLatency = duration
	} else {
		g.metrics.averageLatency = (g.metrics.averageLatency + duration) / 2
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
