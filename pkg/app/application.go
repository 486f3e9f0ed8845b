package app

import (
	"context"
	"errors"
	"medibook/pkg/cache"
	"medibook/pkg/config"
	"medibook/pkg/contracts"
	"medibook/pkg/middleware"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ActorRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	onShutdown       []func()
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp mounts every handler on one router behind the full middleware stack.
func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// OnShutdown registers cleanup that runs after the server has drained.
func (a *Application) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := NewHealthHandler(a.cfg.Client.Mongo, a.cfg.Client.Redis, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = a.newIdempotencyStore()
	a.rateLimiter = middleware.NewActorRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.DefaultKeyExtractor,
		a.cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.ActorRateLimit(a.rateLimiter)(appHttpHandler)
	appHttpHandler = middleware.ActorContext(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) newIdempotencyStore() middleware.IdempotencyStore {
	if a.cfg.Client.Redis != nil {
		a.cfg.Log.Info("Idempotency keys stored in Redis")
		return middleware.NewRedisIdempotencyStore(
			cache.NewRedisCache(a.cfg.Client.Redis, "idempotency:"),
			a.cfg.IdempotencyTTL,
			a.cfg.Log,
		)
	}
	return middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

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
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		fn()
	}
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
