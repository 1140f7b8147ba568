package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	backendinadapter "fasttrack/internal/modules/backend/adapter/in"
	backendoutadapter "fasttrack/internal/modules/backend/adapter/out"
	backendservice "fasttrack/internal/modules/backend/service"
	backendusecase "fasttrack/internal/modules/backend/usecase"
	"fasttrack/internal/platform/clock"
	"fasttrack/internal/platform/config"
	"fasttrack/internal/platform/id"
)

const shutdownTimeout = 10 * time.Second

// Server is the records service the client syncs against.
type Server struct {
	HTTP   *http.Server
	db     *sql.DB
	logger *slog.Logger
}

func NewServer(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	if cfg.AuthToken == "" {
		logger.Warn("FASTBASE_AUTH_TOKEN is empty, records API is open")
	}
	db, err := backendoutadapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	repo, err := backendoutadapter.NewSQLiteRecordRepository(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new record repository: %w", err)
	}
	records := backendusecase.NewInteractor(backendservice.NewRecordService(clock.SystemClock{}, id.UUID{}, repo))

	gin.SetMode(gin.ReleaseMode)
	router := backendinadapter.NewRouter(cfg.AuthToken, backendinadapter.NewRecordHandler(records), logger)
	return &Server{
		HTTP:   &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		db:     db,
		logger: logger,
	}, nil
}

// Serve blocks until ctx ends, then shuts the listener down and closes the database.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.HTTP.Addr)
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.HTTP.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown failed", "err", err)
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close database failed", "err", err)
	}
	return serveErr
}
