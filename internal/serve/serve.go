package serve

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	supporthttp "github.com/stellar/go/support/http"
	"github.com/stellar/go/support/log"

	"github.com/stellar/anchor-platform-backend/db"
	"github.com/stellar/anchor-platform-backend/internal/crashtracker"
	"github.com/stellar/anchor-platform-backend/internal/data"
	"github.com/stellar/anchor-platform-backend/internal/monitor"
	"github.com/stellar/anchor-platform-backend/internal/rpc"
	"github.com/stellar/anchor-platform-backend/internal/sepauth"
	"github.com/stellar/anchor-platform-backend/internal/serve/httphandler"
	"github.com/stellar/anchor-platform-backend/internal/serve/middleware"
	"github.com/stellar/anchor-platform-backend/internal/services"
	"github.com/stellar/anchor-platform-backend/internal/stellar"
)

const ServiceID = "serve"

type HTTPServerInterface interface {
	Run(conf supporthttp.Config)
}

type HTTPServer struct{}

func (h *HTTPServer) Run(conf supporthttp.Config) {
	supporthttp.Run(conf)
}

type ServeOptions struct {
	Environment        string
	GitCommit          string
	Port               int
	Version            string
	MonitorService     monitor.MonitorServiceInterface
	DatabaseDSN        string
	dbConnectionPool   db.DBConnectionPool
	Models             *data.Models
	CorsAllowedOrigins []string
	HorizonURL         string
	horizonService     stellar.HorizonService
	PlatformJWTSecret  string
	jwtService         *sepauth.JWTService
	CrashTrackerClient crashtracker.CrashTrackerClient
	RateLimitPerMinute int
	assetService       services.AssetService
	dispatcher         *rpc.Dispatcher
}

// SetupDependencies uses the serve options to setup the dependencies for the server.
func (opts *ServeOptions) SetupDependencies() error {
	// Set crash tracker LogAndReportErrors as DefaultReportErrorFunc
	rpc.SetDefaultReportErrorFunc(opts.CrashTrackerClient.LogAndReportErrors)

	// Setup Database:
	dbConnectionPool, err := db.OpenDBConnectionPool(opts.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	opts.Models, err = data.NewModels(dbConnectionPool)
	if err != nil {
		return fmt.Errorf("error creating models for Serve: %w", err)
	}
	opts.dbConnectionPool = dbConnectionPool

	// Setup platform JWT service. An empty secret disables authentication,
	// which is only acceptable for local development.
	if opts.PlatformJWTSecret != "" {
		opts.jwtService, err = sepauth.NewJWTService(map[sepauth.Audience]string{
			sepauth.AudiencePlatform: opts.PlatformJWTSecret,
		})
		if err != nil {
			return fmt.Errorf("error creating platform JWT service: %w", err)
		}
	} else {
		log.Warn("PLATFORM_JWT_SECRET is not set, the action endpoint is unauthenticated")
	}

	opts.assetService, err = services.NewCatalogAssetService(opts.Models)
	if err != nil {
		return fmt.Errorf("error creating asset service: %w", err)
	}
	opts.horizonService = stellar.NewHorizonService(opts.HorizonURL)

	opts.dispatcher, err = rpc.NewDispatcher(
		opts.Models.NewTransactionResolver(),
		opts.assetService,
		opts.horizonService,
		opts.MonitorService,
	)
	if err != nil {
		return fmt.Errorf("error creating action dispatcher: %w", err)
	}

	return nil
}

func Serve(opts ServeOptions, httpServer HTTPServerInterface) error {
	// Call crash tracker FlushEvents to flush buffered events before the server terminates
	defer opts.CrashTrackerClient.FlushEvents(2 * time.Second)
	// Call crash tracker Recover for recover from unhandled panics
	defer opts.CrashTrackerClient.Recover()

	err := opts.SetupDependencies()
	if err != nil {
		return fmt.Errorf("error starting dependencies: %w", err)
	}

	// Start the server
	listenAddr := fmt.Sprintf(":%d", opts.Port)
	serverConfig := supporthttp.Config{
		ListenAddr:          listenAddr,
		Handler:             handleHTTP(opts),
		TCPKeepAlive:        time.Minute * 3,
		ShutdownGracePeriod: time.Second * 50,
		ReadTimeout:         time.Second * 5,
		WriteTimeout:        time.Second * 35,
		IdleTimeout:         time.Minute * 2,
		OnStarting: func() {
			log.Info("Starting Anchor Platform Server")
			log.Infof("Listening on %s", listenAddr)
		},
		OnStopping: func() {
			log.Info("Closing the database connection...")
			err := opts.dbConnectionPool.Close()
			if err != nil {
				log.Errorf("error closing database connection: %s", err.Error())
			}

			log.Info("Stopping Anchor Platform Server")
		},
	}
	httpServer.Run(serverConfig)
	return nil
}

func handleHTTP(o ServeOptions) *chi.Mux {
	mux := chi.NewMux()

	// Middleware
	mux.Use(middleware.CorsMiddleware(o.CorsAllowedOrigins))
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(supporthttp.LoggingMiddleware)
	mux.Use(middleware.RecoverHandler)
	mux.Use(middleware.MetricsRequestHandler(o.MonitorService))
	if o.RateLimitPerMinute > 0 {
		mux.Use(middleware.RateLimitMiddleware(o.RateLimitPerMinute))
	}

	mux.Get("/health", httphandler.HealthHandler{
		Version:          o.Version,
		ServiceID:        ServiceID,
		ReleaseID:        o.GitCommit,
		DBConnectionPool: o.dbConnectionPool,
	}.ServeHTTP)

	// Authenticated Routes
	mux.Group(func(r chi.Router) {
		r.Use(middleware.PlatformAuthMiddleware(o.jwtService))
		r.Method("POST", "/actions", httphandler.RPCHandler{Dispatcher: o.dispatcher})
	})

	return mux
}
