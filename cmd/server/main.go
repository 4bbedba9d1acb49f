package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	authhandler "admintrail/internal/adminauth/handler"
	authmetrics "admintrail/internal/adminauth/metrics"
	"admintrail/internal/adminauth/service"
	"admintrail/internal/audit"
	audithandler "admintrail/internal/audit/handler"
	auditmetrics "admintrail/internal/audit/metrics"
	"admintrail/internal/platform/config"
	"admintrail/internal/platform/health"
	"admintrail/internal/platform/httpserver"
	"admintrail/internal/platform/logger"
	"admintrail/internal/platform/tracer"
	httptransport "admintrail/internal/transport/http"
	"admintrail/pkg/platform/middleware/metadata"
	"admintrail/pkg/platform/middleware/ratelimit"
	"admintrail/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	for _, warning := range cfg.Validate() {
		log.Warn("configuration", "warning", warning)
	}

	log.Info("initializing admintrail",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"ledger_capacity", cfg.LedgerCapacity,
		"audit_require_role", cfg.AuditRequireRole,
		"trusted_proxies", len(cfg.TrustedProxies),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ledger := audit.NewLedger(cfg.LedgerCapacity, audit.WithMetrics(auditmetrics.New(reg)))
	tr := tracer.NewOTel()

	sessions := service.New(
		service.WithLogger(log),
		service.WithMetrics(authmetrics.New(reg)),
		service.WithTracer(tr),
		service.WithAuditRoleEnforcement(cfg.AuditRequireRole),
	)
	recorder := audit.NewRecorder(ledger,
		audit.WithRecorderLogger(log),
		audit.WithRecorderTracer(tr),
	)
	limiter := ratelimit.New(cfg.AuditWriteRate, cfg.AuditWriteBurst, log)

	healthHandler := health.New(cfg.Environment, health.WithLedger(ledger))
	healthHandler.RegisterCheck("ledger", func() error {
		if ledger.Capacity() <= 0 {
			return errors.New("ledger has no capacity")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		Metadata:       metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.TrustedProxies}),
		Latency:        request.NewMetrics(reg),
		Gatherer:       reg,
		Routes: []httptransport.Registrar{
			healthHandler,
			authhandler.New(sessions, log),
			audithandler.New(sessions, recorder, ledger, log,
				audithandler.WithMaxLimit(ledger.Capacity()),
				audithandler.WithWriteMiddleware(limiter.Middleware),
			),
		},
	})

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout+cfg.RequestTimeout/2)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
