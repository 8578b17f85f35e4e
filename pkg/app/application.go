package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"clinicportal/pkg/config"
	"clinicportal/pkg/contracts"
	"clinicportal/pkg/middleware"
)

// Worker is a background loop that runs until its context ends.
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// Closer releases a resource after the server stopped.
type Closer struct {
	Name  string
	Close func(ctx context.Context) error
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	loginLimiter     *middleware.KeyRateLimiter
	appHttpHandler   *http.Handler
	workers          []Worker
	closers          []Closer
	stopWorkers      context.CancelFunc
	workersDone      sync.WaitGroup
	requestsCtx      context.Context
	cancelRequests   context.CancelFunc
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// AddWorker registers a loop started with the server.
func (a *Application) AddWorker(w Worker) {
	a.workers = append(a.workers, w)
}

// AddCloser registers a resource released during shutdown, in reverse order.
func (a *Application) AddCloser(c Closer) {
	a.closers = append(a.closers, c)
}

func (a *Application) SetApp(appHandler contracts.Handler) {
	a.setAppHandler(appHandler)
	a.setAppServer()
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	cfg := a.cfg
	appRouter := httprouter.New()

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	a.loginLimiter = middleware.NewKeyRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, nil, cfg.Log)
	appHandler.RegisterRoutes(appRouter, a.idempotencyStore, a.loginLimiter)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(cfg.Log)(appHttpHandler)
	a.appHttpHandler = &appHttpHandler
	cfg.Log.Info("Portal endpoints configured with full middleware stack")
}

// setAppServer derives every request context from one base context that is
// cancelled when shutdown starts, so event streams return instead of holding
// Shutdown until its deadline.
func (a *Application) setAppServer() {
	a.requestsCtx, a.cancelRequests = context.WithCancel(context.Background())
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      *a.appHttpHandler,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return a.requestsCtx
		},
	}
	a.server.RegisterOnShutdown(a.cancelRequests)

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWorkers = cancel

	for _, w := range a.workers {
		a.workersDone.Add(1)
		go func(w Worker) {
			defer a.workersDone.Done()
			a.cfg.Log.Info("Starting background worker", "worker", w.Name)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped", "worker", w.Name, "error", err)
			}
		}(w)
	}
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	a.startWorkers()

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

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	defer a.cancelRequests()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.stopWorkers()
	a.workersDone.Wait()
	a.idempotencyStore.Stop()
	a.loginLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	// closers get their own budget; the server may have used all of ctx
	closeCtx, cancelClose := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancelClose()

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(closeCtx); err != nil {
			a.cfg.Log.Error("Failed to release resource", "resource", c.Name, "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
