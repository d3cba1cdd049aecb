package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/config"
	"github.com/tuanvumaihuynh/ecom/internal/http/apierr"
	"github.com/tuanvumaihuynh/ecom/internal/http/metric"
	"github.com/tuanvumaihuynh/ecom/internal/http/middleware"
	"github.com/tuanvumaihuynh/ecom/internal/http/swagger"
	"github.com/tuanvumaihuynh/ecom/internal/service"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
	"github.com/tuanvumaihuynh/ecom/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metric.Metrics
	validator validator.Validator
	docs      chi.Router

	health     db.HealthChecker
	productSvc service.ProductService
	userSvc    service.UserService
	cartSvc    service.CartService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	health db.HealthChecker,
	productSvc service.ProductService,
	userSvc service.UserService,
	cartSvc service.CartService,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	var docs chi.Router
	if cfg.Swagger {
		if docs, err = swagger.Router(); err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()

	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		registry:   registry,
		metrics:    metric.New(registry),
		validator:  v,
		docs:       docs,
		health:     health,
		productSvc: productSvc,
		userSvc:    userSvc,
		cartSvc:    cartSvc,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler returns the fully wired router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.docs != nil {
		r.Mount(swagger.BasePath, s.docs)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.CorrelationID(),
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.Cors(s.cfg.CorsOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handle(s.listProducts))
			r.Post("/", s.handle(s.createProduct))
			r.Get("/search", s.handle(s.searchProducts))
			r.Get("/{id}", s.handle(s.getProduct))
			r.Put("/{id}", s.handle(s.updateProduct))
			r.Delete("/{id}", s.handle(s.deleteProduct))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handle(s.listUsers))
			r.Post("/", s.handle(s.createUser))
			r.Get("/{id}", s.handle(s.getUser))
			r.Put("/{id}", s.handle(s.updateUser))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handle(s.listCart))
			r.Post("/", s.handle(s.addToCart))
		})
	})

	r.Get("/healthz", s.handle(s.healthz))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.handleResponseError(w, r, apperr.RouteNotFoundErr)
	})
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	if ok, err := s.health.IsHealthy(r.Context()); !ok || err != nil {
		return apperr.StorageUnavailableErr.WrapParent(err)
	}

	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	return nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handler returning an error to http.HandlerFunc. The error
// is rendered as the JSON error body.
func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
