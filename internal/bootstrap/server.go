package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	infragin "github.com/jonesrussell/north-cloud/example-api/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	inframetrics "github.com/jonesrussell/north-cloud/example-api/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/example-api/internal/api"
	"github.com/jonesrussell/north-cloud/example-api/internal/config"
	"github.com/jonesrussell/north-cloud/example-api/internal/events"
	"github.com/jonesrussell/north-cloud/example-api/internal/health"
	"github.com/jonesrussell/north-cloud/example-api/internal/service"
	"github.com/jonesrussell/north-cloud/example-api/internal/telemetry"
)

// SetupHTTPServer wires the service, the health reporter and the metrics
// registry into the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	db *sqlx.DB,
	publisher *events.Publisher,
	log infralogger.Logger,
) *infragin.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := inframetrics.NewHTTPMetrics(registry, telemetry.Namespace)

	opts := service.Options{
		Metrics:       telemetry.NewMetrics(registry),
		SlowThreshold: cfg.Service.SlowOperationThreshold,
	}
	// A typed nil *events.Publisher must not become a non-nil interface.
	if publisher != nil {
		opts.Publisher = publisher
	}
	exampleService := service.NewExampleService(db, log, opts)

	reporter := health.NewReporter(
		health.NewSystemSampler(cfg.Health.DiskPath, cfg.Health.CPUSampleInterval),
		cfg.Service.Version,
	)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Server.Port).
		WithLogger(log).
		WithHost(cfg.Server.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithShutdownTimeout(cfg.Server.ShutdownTimeout).
		WithMiddleware(httpMetrics.Middleware()).
		WithDatabaseCheck(db.PingContext).
		WithRoutes(func(router *gin.Engine) {
			api.RegisterRoutes(router, api.Deps{
				Examples: exampleService,
				Health:   reporter,
				Metrics:  inframetrics.Handler(registry),
				Logger:   log,
			})
		})

	if publisher != nil {
		builder = builder.WithRedisCheck(publisher.Ping)
	}

	return builder.Build()
}
