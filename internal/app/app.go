package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/shop"
	"github.com/xenking/storefront/internal/events"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

const (
	serviceName = "storefront-api"
	eventBuffer = 1024
)

// Server holds the wired application: the HTTP handler and the components
// whose lifecycle Run manages.
type Server struct {
	Handler   http.Handler
	Health    *health.Health
	Service   *shop.Service
	Bus       *events.Bus
	Projector *events.Projector
}

// NewServer creates every dependency and assembles the middleware chain.
// The caller owns the returned bus and must run the projector.
func NewServer(ctx context.Context, lg *zap.Logger, m httpmiddleware.TelemetryProvider, cfg *Config) (*Server, error) {
	products, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	percent, err := cfg.DiscountPercent()
	if err != nil {
		return nil, err
	}
	lg.Info("Catalog loaded",
		zap.Int("products", products.Len()),
		zap.String("file", cfg.CatalogFile),
	)

	bus := events.NewBus(lg.Named("bus"), eventBuffer)

	store := shop.NewStore(products, shop.Rules{
		NthOrder:   cfg.Discount.NthOrder,
		CodePrefix: cfg.Discount.Prefix,
		Percent:    percent,
	})
	svc, err := shop.NewService(store,
		shop.WithPublisher(bus),
		shop.WithTracerProvider(m.TracerProvider()),
		shop.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "create shop service")
	}

	admin, err := handler.NewAdminAuth(cfg.Admin.KeyHash, cfg.Admin.Pepper)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "admin auth")
	}
	if admin == nil {
		lg.Warn("Admin key hash not configured, admin endpoints are open")
	}

	healthSvc := health.New()
	healthSvc.Add(health.Readiness, "catalog", time.Second, health.MinCount("products", 1, svc.CatalogSize))
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.MaxGoroutines(10000))
	healthSvc.Add(health.Liveness, "gc_pause", time.Second, health.MaxGCPause(time.Second))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.HandleFunc("GET /health", healthSvc.LiveEndpoint)
	handler.New(svc, admin).Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	h := httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", handler.AdminKeyHeader, httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.Instrument(serviceName, routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
	)

	return &Server{
		Handler:   h,
		Health:    healthSvc,
		Service:   svc,
		Bus:       bus,
		Projector: events.NewProjector(bus),
	}, nil
}

// Run creates all dependencies, starts the HTTP server and the event
// projector, and handles graceful shutdown. It is the single wiring point
// for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))
	ctx = zctx.Base(ctx, lg)

	s, err := NewServer(ctx, lg, m, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Bus.Close(); err != nil {
			lg.Warn("Close event bus", zap.Error(err))
		}
	}()

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           s.Handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Projector.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-s.Projector.Ready():
		case <-gctx.Done():
			return nil
		}
		s.Health.Start(gctx, 10*time.Second)
		s.Health.SetReady(true)

		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Wait for cancellation, drain, then stop.
		<-gctx.Done()
		s.Health.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		s.Health.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	lg.Info("Stopped",
		zap.Int64("orders_projected", s.Projector.Orders()),
		zap.Int64("codes_projected", s.Projector.Codes()),
	)
	return nil
}
