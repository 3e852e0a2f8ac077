package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/config"
	"github.com/tuanvumaihuynh/stockbook/internal/http/metric"
	"github.com/tuanvumaihuynh/stockbook/internal/http/middleware"
	"github.com/tuanvumaihuynh/stockbook/internal/http/swagger"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Services groups the application services exposed over HTTP.
type Services struct {
	Product  service.ProductService
	Customer service.CustomerService
	Sale     service.SaleService
	Report   service.ReportService
	Export   service.ExportService
	Auth     service.AuthService
}

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	authCfg config.Auth
	hookCfg config.Hook
	logger  *slog.Logger
	metrics *metric.Metrics
	health  db.HealthChecker

	svcs Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	authCfg config.Auth,
	hookCfg config.Hook,
	log *slog.Logger,
	health db.HealthChecker,
	svcs Services,
) *Service {
	return &Service{
		cfg:     cfg,
		authCfg: authCfg,
		hookCfg: hookCfg,
		logger:  log.With(slog.String("service", "http")),
		metrics: metric.New(),
		health:  health,
		svcs:    svcs,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			s.logger.Error("api docs disabled", slog.Any("error", err))
		}
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.CorrelationID(),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.Recoverer(s.logger),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := s.newHandler()

	r.Get("/healthz", h.healthz)
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Route("/hooks", func(r chi.Router) {
			r.Use(middleware.RequireHookKey(s.hookCfg.SecretKey, apperr.UnauthorizedErr, h.writeError))
			r.Post("/import", h.importProducts)
			r.Post("/stock", h.adjustStock)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.svcs.Auth, apperr.UnauthorizedErr, h.writeError))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.createProduct)
				r.Get("/sku/{sku}", h.getProductBySku)
				r.Get("/{id}", h.getProduct)
				r.Patch("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.listCustomers)
				r.Post("/", h.createCustomer)
				r.Get("/{id}", h.getCustomer)
				r.Patch("/{id}", h.updateCustomer)
				r.Delete("/{id}", h.deleteCustomer)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", h.listSales)
				r.Post("/", h.createSale)
				r.Get("/{id}", h.getSale)
			})

			r.Get("/dashboard", h.dashboard)
			r.Get("/export/products", h.exportProducts)
			r.Get("/export/customers", h.exportCustomers)
		})
	})
}

type handler struct {
	logger  *slog.Logger
	metrics *metric.Metrics
	health  db.HealthChecker
	authCfg config.Auth
	svcs    Services
}

func (s *Service) newHandler() *handler {
	return &handler{
		logger:  s.logger,
		metrics: s.metrics,
		health:  s.health,
		authCfg: s.authCfg,
		svcs:    s.svcs,
	}
}
