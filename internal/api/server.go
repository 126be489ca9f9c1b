package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/flock"

	"voicetag/internal/assets"
	"voicetag/internal/config"
	"voicetag/internal/history"
	"voicetag/internal/inference"
	"voicetag/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Predictor serves one prediction request.
type Predictor interface {
	Run(ctx context.Context, req inference.Request) (inference.Outcome, error)
}

// HistoryReader lists stored predictions.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]history.Record, error)
}

// AssetSource exposes the loaded model bundle for health reporting.
type AssetSource interface {
	Load() (*assets.Assets, error)
}

// Server is the HTTP front end. It enforces single-instance execution via a
// lock file in the state directory.
type Server struct {
	bind      string
	app       *fiber.App
	predictor Predictor
	history   HistoryReader
	assets    AssetSource
	logger    *slog.Logger

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	listener net.Listener
	served   chan error
}

// New builds the server and its routes. history may be nil when the
// prediction log is disabled.
func New(cfg *config.Config, predictor Predictor, hist HistoryReader, source AssetSource, logger *slog.Logger) (*Server, error) {
	if cfg == nil || predictor == nil || source == nil {
		return nil, errors.New("api server requires config, predictor, and assets")
	}
	s := &Server{
		bind:      cfg.Server.Bind,
		predictor: predictor,
		history:   hist,
		assets:    source,
		logger:    logging.NewComponentLogger(logger, "api"),
		lockPath:  cfg.LockPath(),
		lock:      flock.New(cfg.LockPath()),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "voicetag",
		BodyLimit:             cfg.Server.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          5 * time.Minute,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          s.handleFiberError,
	})
	s.app.Use(requestLogger(s.logger))
	s.app.Use(panicRecovery(s.logger))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)

	v1 := s.app.Group("/api/v1")
	v1.Post("/predict", s.handlePredict)
	v1.Post("/record", s.handleRecord)
	v1.Get("/history", s.handleHistory)
}

// App exposes the fiber application for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start acquires the instance lock, binds the listener and serves in the
// background. Cancelling ctx stops the server.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another voicetag server holds %s", s.lockPath)
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.served = make(chan error, 1)
	s.running.Store(true)

	go func() {
		s.served <- s.app.Listener(listener)
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
	)
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Wait blocks until the server stops serving and returns the serve error,
// if any.
func (s *Server) Wait() error {
	if s.served == nil {
		return nil
	}
	return <-s.served
}

// Stop shuts the server down and releases the instance lock.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		s.logger.Warn("api shutdown incomplete", logging.Error(err))
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release server lock", logging.Error(err))
	}
	s.logger.Info("api server stopped")
}
