package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/notify"
	"github.com/2beens/fittrack/internal/session"
	"github.com/2beens/fittrack/internal/shop"
	"github.com/2beens/fittrack/internal/shop/cart"
	"github.com/2beens/fittrack/internal/shop/checkout"
	"github.com/2beens/fittrack/internal/shop/compare"
	"github.com/2beens/fittrack/internal/shop/orders"
	"github.com/2beens/fittrack/internal/shop/reviews"
	"github.com/2beens/fittrack/internal/shop/wishlist"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config  *config.Config
	storage *Storage

	products  *catalog.Catalog
	sessions  *session.Service
	dashboard *dashboard.Service
	checkout  *checkout.Service
	shop      *shop.Handler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	Secrets                 StorageSecrets
	ResendAPIKey            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := calendar.SystemClock{Location: loc}

	products, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	backend, err := OpenStorage(ctx, cfg, params.Secrets, params.HoneycombTracingEnabled)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	promRegistry := metrics.SetupPrometheus(backend.poolCollector)
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend", backend.redisClient)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	sender, err := notify.NewSender(notify.SenderParams{
		Mode:         cfg.NotifyMode,
		ResendAPIKey: params.ResendAPIKey,
		FromEmail:    cfg.NotifyFromEmail,
		FunctionURL:  cfg.NotifyFunctionURL,
		Timeout:      cfg.NotifyTimeoutDuration(),
	})
	if err != nil {
		log.Errorf("order notifications: %s, falling back to logging them", err)
		sender = notify.NewLogSender()
	}

	store := backend.store
	sessions := session.NewService(store)
	cartStore := cart.NewStore(store)
	ordersStore := orders.NewStore(store, clock)
	checkoutService := checkout.NewService(checkout.NewServiceParams{
		Cart:                cartStore,
		Orders:              ordersStore,
		Customers:           sessions,
		Sender:              sender,
		MetricsManager:      metricsManager,
		NotificationTimeout: cfg.NotifyTimeoutDuration(),
	})

	s := &Server{
		config:      cfg,
		storage:     backend,
		versionInfo: params.VersionInfo,

		products: products,
		sessions: sessions,
		dashboard: dashboard.NewService(dashboard.NewServiceParams{
			Store:          store,
			Clock:          clock,
			Users:          sessions,
			MetricsManager: metricsManager,
		}),
		checkout: checkoutService,
		shop: shop.NewHandler(shop.NewHandlerParams{
			Products: products,
			Cart:     cartStore,
			Wishlist: wishlist.NewStore(store, clock),
			Compare:  compare.NewStore(store),
			Orders:   ordersStore,
			Reviews:  reviews.NewStore(store, clock),
			Checkout: checkoutService,
			Users:    sessions,
		}),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	sessionHandler := session.NewHandler(s.sessions)
	sessionHandler.SetupRoutes(r)

	// login is only rate limited when there is a redis to count in
	var rateLimiter middleware.RequestRateLimiter
	if s.storage.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.storage.redisClient)
	}
	miscHandler := misc.NewHandler(s.versionInfo, sessionHandler.HandleLogin)
	miscHandler.SetupRoutes(r, rateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	dashboard.NewHandler(s.dashboard).SetupRoutes(r)
	catalog.NewHandler(s.products).SetupRoutes(r)
	s.shop.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	sessionMiddleware := middleware.NewSessionCheckMiddlewareHandler(s.sessions)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(sessionMiddleware.SessionCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	log.Debugln("waiting for pending order notifications ...")
	s.checkout.Wait()

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if err := s.storage.Close(); err != nil {
		log.Errorf("failed to close storage: %s", err)
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
