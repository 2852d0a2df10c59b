package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/xo-engine/internal/config"
	"github.com/rocketscienceinc/xo-engine/internal/repository"
	"github.com/rocketscienceinc/xo-engine/internal/repository/storage"
	"github.com/rocketscienceinc/xo-engine/internal/service"
	"github.com/rocketscienceinc/xo-engine/internal/telemetry"
	"github.com/rocketscienceinc/xo-engine/internal/usecase"
	"github.com/rocketscienceinc/xo-engine/transport/rest"
)

const shutdownTimeout = 5 * time.Second

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSignals := watchSignals(log, cancel, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	shutdownTelemetry, err := telemetry.Init(conf.Telemetry.Exporter, os.Stdout)
	if err != nil {
		return fmt.Errorf("could not init telemetry: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()

		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Error("could not shut down telemetry", "error", err)
		}
	}()

	// sessions of earlier runs are never visible to this one
	runID := uuid.NewString()
	log.Info("Starting run", "run_id", runID, "storage", conf.Storage.Driver, "policy", conf.Computer.Policy)

	sessionRepo, closeStorage, err := newSessionRepository(ctx, log, conf, runID)
	if err != nil {
		return err
	}
	defer closeStorage()

	bot, err := service.NewBotService(service.Policy(conf.Computer.Policy), service.NewRandomChooser(conf.Computer.Seed))
	if err != nil {
		return fmt.Errorf("could not create computer player: %w", err)
	}

	sessions, err := usecase.NewSessionManager(logger, sessionRepo, bot)
	if err != nil {
		return fmt.Errorf("could not create session manager: %w", err)
	}

	server := rest.New(logger, conf.HTTPPort, sessions)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- server.Start()
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	return nil
}

// watchSignals cancels the app on the first of sigs. The returned func stops
// listening and waits for the watcher to exit.
func watchSignals(log *slog.Logger, cancel context.CancelFunc, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)

		select {
		case sig := <-ch:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
		<-exited
	}
}

func newSessionRepository(
	ctx context.Context,
	log *slog.Logger,
	conf *config.Config,
	runID string,
) (repository.SessionRepository, func(), error) {
	if conf.Storage.Driver != config.StorageRedis {
		return repository.NewMemorySessionRepository(conf.Storage.SessionTTL), func() {}, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		purged, err := repository.PurgeRun(purgeCtx, redisStorage.Connection, runID)
		if err != nil {
			log.Error("could not purge run sessions", "error", err)
		} else {
			log.Info("Purged run sessions", "count", purged)
		}

		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage.Connection, runID, conf.Storage.SessionTTL), closeStorage, nil
}
