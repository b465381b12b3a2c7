package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/recipe-api/internal/config"
	"github.com/iliyamo/recipe-api/internal/database"
	"github.com/iliyamo/recipe-api/internal/handler"
	"github.com/iliyamo/recipe-api/internal/middleware"
	"github.com/iliyamo/recipe-api/internal/queue"
	"github.com/iliyamo/recipe-api/internal/repository"
	"github.com/iliyamo/recipe-api/internal/router"
	"github.com/iliyamo/recipe-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	tokens := repository.NewTokenRepo(db)

	var events service.EventPublisher
	if cfg.EventsEnabled && cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL)
	}
	recipes := service.NewRecipeService(
		repository.NewRecipeRepo(db),
		repository.NewTagRepo(db),
		repository.NewIngredientRepo(db),
		events,
		log,
	)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	e := router.New(router.Options{
		JWTSecret: cfg.JWTSecret,
		Log:       log,
		DB:        db,
		Limiter:   middleware.NewTokenBucket(cfg.RateLimit, rdb, middleware.RateKey(cfg.RateLimit)),
		Auth:      handler.NewAuthHandler(cfg, users, tokens, log),
		Recipes:   handler.NewRecipeHandler(recipes, log),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env, "events", events != nil)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if events != nil {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.LogDir, Log: log}
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	return g.Wait()
}
