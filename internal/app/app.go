package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/controller"
	"github.com/alimikegami/snowboard-review-service/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/snowboard-review-service/internal/infrastructure/tracing"
	appmiddleware "github.com/alimikegami/snowboard-review-service/internal/middleware"
	"github.com/alimikegami/snowboard-review-service/internal/repository"
	"github.com/alimikegami/snowboard-review-service/internal/service"
)

const reconcileTimeout = 5 * time.Minute

// App wires the HTTP server and background jobs. DB, Redis and Producer may
// be nil; the service then runs without the corresponding backend.
type App struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Producer *kafka.Producer
	Config   *config.Config
	Server   *echo.Echo

	metricsServer  *echo.Echo
	registry       *prometheus.Registry
	scheduler      gocron.Scheduler
	tracerProvider *sdktrace.TracerProvider
	reviewService  service.ReviewService
	events         *service.EventDispatcher
}

func (app *App) Setup() error {
	e := echo.New()
	e.HideBanner = true

	if app.Config.TracingConfig.CollectorHost != "" {
		traceProvider, err := tracing.InitTracing(context.Background(), app.Config.TracingConfig.CollectorHost, app.Config.ServiceName)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize tracing")
		} else {
			app.tracerProvider = traceProvider
			tracer := traceProvider.Tracer(app.Config.ServiceName)

			e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
					defer span.End()

					c.SetRequest(c.Request().WithContext(ctx))

					return next(c)
				}
			})
		}
	}

	// A registry per app keeps repeated Setup calls from colliding on the default registerer.
	app.registry = prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Registerer: app.registry,
	}))

	e.Use(middleware.Recover())
	// Any origin may call with credentials: the request origin is echoed back
	// instead of "*", and requested headers are reflected on preflight.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,

		UnsafeWildcardOriginWithAllowCredentials: true,
	}))
	e.Use(appmiddleware.Logger)

	productRepo := repository.CreateNewMongoDBProductRepository(app.DB, app.Config.MongoDBConfig.UseTransactions)
	reviewRepo := repository.CreateNewMongoDBReviewRepository(app.DB)

	var cache repository.ProductCache
	if app.Redis != nil {
		cache = repository.CreateNewRedisProductCache(app.Redis, app.Config.RedisConfig.CacheTTL)
	}

	var publisher service.EventPublisher
	if app.Producer != nil {
		publisher = app.Producer
	}
	app.events = service.CreateEventDispatcher(publisher, app.Config.KafkaConfig.PublishBackoff)

	var inspector service.DatabaseInspector
	if app.DB != nil {
		inspector = app.DB
	}

	productSvc := service.CreateProductService(productRepo, cache, *app.Config, app.events)
	app.reviewService = service.CreateReviewService(productRepo, reviewRepo, cache, *app.Config, app.events)
	healthSvc := service.CreateHealthService(inspector, *app.Config)

	controller.CreateHealthController(e, healthSvc)
	controller.CreateProductController(e.Group("/api"), productSvc, app.reviewService)

	if err := app.setupScheduler(); err != nil {
		return err
	}

	app.Server = e

	return nil
}

func (app *App) setupScheduler() error {
	if app.DB == nil || app.Config.RatingReconcileInterval <= 0 {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(app.Config.RatingReconcileInterval),
		gocron.NewTask(app.reconcileRatings),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	app.scheduler = s

	return nil
}

func (app *App) reconcileRatings() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	ctx = log.With().Str("job", "reconcile_ratings").Logger().WithContext(ctx)

	if err := app.reviewService.ReconcileRatings(ctx); err != nil {
		log.Error().Err(err).Str("component", "reconcileRatings").Msg("")
	}
}

// Start blocks until the HTTP server stops.
func (app *App) Start() error {
	if app.Server == nil {
		if err := app.Setup(); err != nil {
			return err
		}
	}

	app.metricsServer = echo.New()
	app.metricsServer.HideBanner = true
	app.metricsServer.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: app.registry,
	}))

	go func() {
		if err := app.metricsServer.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to start metrics server")
		}
	}()

	if app.scheduler != nil {
		app.scheduler.Start()
	}

	err := app.Server.Start(fmt.Sprintf(":%s", app.Config.ServicePort))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error

	if app.scheduler != nil {
		errs = append(errs, app.scheduler.Shutdown())
	}

	if app.metricsServer != nil {
		errs = append(errs, app.metricsServer.Shutdown(ctx))
	}

	if app.Server != nil {
		errs = append(errs, app.Server.Shutdown(ctx))
	}

	// in-flight events still need the producer, which main closes afterwards
	app.events.Wait()

	if app.tracerProvider != nil {
		errs = append(errs, app.tracerProvider.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
