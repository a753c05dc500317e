package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kiryu-dev/dino-digger/internal/adapters/postgres"
	"github.com/kiryu-dev/dino-digger/internal/adapters/webapi"
	"github.com/kiryu-dev/dino-digger/internal/config"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/kiryu-dev/dino-digger/internal/transport/ws"
	"github.com/kiryu-dev/dino-digger/internal/usecase/game"
	"github.com/kiryu-dev/dino-digger/internal/usecase/hub"
	"github.com/kiryu-dev/dino-digger/internal/usecase/synchronizer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env file", zap.Error(err))
	}
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		logger.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var results domain.ResultRepository
	if cfg.Database.Url != "" {
		db, err := openDatabase(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal(err.Error())
		}
		defer func() {
			_ = db.Close()
		}()
		results = postgres.New(db)
	} else {
		logger.Info("database url is empty, game results will not be stored")
	}

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errGroup := new(errgroup.Group)
	errGroup.Go(func() error {
		s := <-sigChan
		return errors.Errorf("captured signal: %v", s)
	})
	var (
		rnd    = engine.NewRandom(cfg.Game.RandomSeed)
		repo   = webapi.New()
		sync   = synchronizer.New(repo, cfg.Servers, cfg.Name, cfg.SyncPeriod, logger)
		game   = game.New(cfg.Game, rnd, results, logger)
		hub    = hub.New(game, cfg.Game.Rules(), cfg.SyncPeriod, logger)
		server = ws.New(cfg.Port, hub, sync, results, logger)
	)
	defer hub.Stop()
	go server.ListenAndServe(ctx)
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
	if err := server.Shutdown(); err != nil {
		logger.Info("failed to shutdown http server: " + err.Error())
	}
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := postgres.Connect(ctx, cfg.Url)
	if err != nil {
		return nil, errors.WithMessage(err, "connect to database")
	}
	version, err := postgres.Migrate(db, cfg.Migrations)
	if err != nil {
		_ = db.Close()
		return nil, errors.WithMessage(err, "migrate database")
	}
	logger.Info("database is ready", zap.Uint("schema version", version))
	return db, nil
}
