package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/api"
	"github.com/susu3304/epicgambler/internal/bot"
	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/commands"
	"github.com/susu3304/epicgambler/internal/config"
	"github.com/susu3304/epicgambler/internal/db"
	"github.com/susu3304/epicgambler/internal/jobs"
	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/memstore"
	"github.com/susu3304/epicgambler/internal/metrics"
	"github.com/susu3304/epicgambler/internal/minigame"
	"github.com/susu3304/epicgambler/internal/status"
	"github.com/susu3304/epicgambler/internal/trivia"
)

type store interface {
	ledger.Store
	catalog.Store
	api.Pinger
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("epicgambler stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetupLogging()
	process := status.NewProcess(cfg.Location())

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	shop := catalog.NewService(st)
	bank := ledger.NewService(st, shop,
		ledger.WithRecorder(collector),
		ledger.WithLocation(cfg.Location()),
	)

	var questions trivia.Source
	if cfg.TriviaURL != "" {
		questions = trivia.NewClient(cfg.TriviaURL, trivia.NewSafeHTTPClient(cfg.TriviaTimeout))
	} else {
		questions = trivia.NewStaticSource(trivia.BuiltinQuestions)
	}

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	engine := minigame.NewEngine(minigame.Config{
		QuizTimeout: cfg.QuizTimeout,
		QuizReward:  cfg.QuizReward,
		DuelScope:   cfg.DuelChannelID,
		DuelTimeout: cfg.DuelTimeout,
		DuelReward:  cfg.DuelReward,
	}, bank, questions, bot.NewMessenger(session), minigame.WithRecorder(collector))

	handler := commands.NewHandler(bank, shop, engine, cfg, collector)
	limiter := bot.NewRateLimiter(bot.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})
	discordBot := bot.New(session, bank, engine, handler, limiter)

	reporter := status.NewReporter(session, process, cfg.StatusChannelID, cfg.StatusMessageID, collector)
	scheduler := jobs.NewScheduler(cfg.Location())
	if cfg.StatusChannelID != "" && cfg.StatusMessageID != "" {
		err := scheduler.Add(jobs.Job{
			Name:    "status",
			Every:   cfg.StatusInterval,
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context) error {
				reporter.Tick(ctx)
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	if cfg.QuizChannelID != "" {
		err := scheduler.Add(jobs.Job{
			Name:    "quiz",
			Every:   cfg.QuizInterval,
			Timeout: cfg.TriviaTimeout + 10*time.Second,
			Run: func(ctx context.Context) error {
				return engine.TriggerQuiz(ctx, cfg.QuizChannelID)
			},
		})
		if err != nil {
			return err
		}
	}

	apiServer := api.New(cfg, shop, bank, st, metrics.Handler(reg))

	if err := discordBot.Start(); err != nil {
		return err
	}
	defer func() {
		if err := discordBot.Stop(); err != nil {
			log.WithError(err).Warn("failed to close discord session")
		}
	}()

	if cfg.StatusChannelID != "" && cfg.StatusMessageID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		reporter.Tick(ctx)
		cancel()
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := apiServer.Start(); err != nil {
			log.WithError(err).Error("api server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("api shutdown")
	}
	return nil
}

func openStore(cfg *config.Config) (store, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, balances will not survive a restart")
		return memstore.New(), func() {}, nil
	}

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	database, err := db.New(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return database, database.Close, nil
}
