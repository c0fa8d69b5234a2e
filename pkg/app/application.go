package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"renthub/pkg/config"
	"renthub/pkg/contracts"
	"renthub/pkg/events"
	"renthub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Worker is a background loop with a lifecycle tied to the server's,
// such as the expired-booking sweeper.
type Worker interface {
	Start()
	Stop()
}

type Application struct {
	cfg            *config.Config
	server         *http.Server
	workers        []Worker
	publisher      events.Publisher
	healthHandler  *http.Handler
	appHttpHandler *http.Handler
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(
	cfg *config.Config,
	verifier middleware.TokenVerifier,
	public []contracts.Handler,
	protected []contracts.AuthenticatedHandler,
) {
	a.cfg = cfg
	a.setHealthHandler(cfg)
	a.setAppHandler(cfg, verifier, public, protected)
	a.setAppServer()
}

// AddWorker registers a background worker started with the server and
// drained during shutdown.
func (a *Application) AddWorker(w Worker) {
	a.workers = append(a.workers, w)
}

// SetPublisher hands the event publisher to the application so it is
// flushed and closed on shutdown.
func (a *Application) SetPublisher(p events.Publisher) {
	a.publisher = p
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	healthRouter := httprouter.New()
	health := newHealthHandler(cfg.Client.Mongo, cfg.Log)
	health.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = &healthHTTPHandler
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(
	cfg *config.Config,
	verifier middleware.TokenVerifier,
	public []contracts.Handler,
	protected []contracts.AuthenticatedHandler,
) {
	appRouter := httprouter.New()
	authenticate := middleware.Authenticate(verifier, cfg.Log)
	for _, h := range public {
		h.RegisterRoutes(appRouter)
	}
	for _, h := range protected {
		h.RegisterRoutes(appRouter, authenticate)
	}

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(cfg.Log)(appHttpHandler)
	a.appHttpHandler = &appHttpHandler
	cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", *a.healthHandler)
	mux.Handle("/ready", *a.healthHandler)
	mux.Handle("/", *a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	for _, w := range a.workers {
		w.Start()
	}

	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	for _, w := range a.workers {
		w.Stop()
	}
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
