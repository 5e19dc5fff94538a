package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobscout/internal/api"
	"go-jobscout/internal/app"
	"go-jobscout/internal/config"
	"go-jobscout/internal/database"
	"go-jobscout/internal/events"
	"go-jobscout/internal/logger"
	"go-jobscout/internal/runs"
	"go-jobscout/internal/scheduler"
	"go-jobscout/internal/telegram"
	"go-jobscout/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogFile, cfg.LogLevel, "jobscout")
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, "jobscout", cfg.OTLPEndpoint)
	if err != nil {
		zlog.Fatal("❌ Failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	pipeline, err := app.NewPipeline(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to build pipeline", zap.Error(err))
	}

	//run status store
	var store runs.Store = runs.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := runs.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Fatal("❌ Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		store = runs.NewRedisStore(rdb, cfg.RunTTL)
		zlog.Info("🗄️ Run store: redis")
	}

	//optional notifiers
	var notifiers []runs.Notifier
	var archive api.Archive
	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			zlog.Fatal("❌ Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.Migrate(ctx); err != nil {
			zlog.Fatal("❌ Failed to migrate database", zap.Error(err))
		}
		notifiers = append(notifiers, database.NewNotifier(repo))
		archive = repo
		zlog.Info("🐘 Postgres archive enabled")
	}
	if cfg.NATSURL != "" {
		pub, err := events.NewPublisher(cfg.NATSURL, zlog)
		if err != nil {
			zlog.Fatal("❌ Failed to connect to NATS", zap.Error(err))
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
		zlog.Info("📡 NATS events enabled")
	}
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			zlog.Fatal("❌ Failed to init Telegram Bot", zap.Error(err))
		}
		notifiers = append(notifiers, bot)
		zlog.Info("🤖 Telegram Bot initialized")
	}

	manager := runs.NewManager(pipeline.Controller, pipeline.Exporter, store, runs.Options{
		MaxConcurrent: cfg.MaxConcurrentRuns,
		RunTimeout:    cfg.RunTimeout,
	}, zlog, notifiers...)

	sched := scheduler.New(manager, zlog)
	if err := sched.Add(ctx, cfg.Schedules); err != nil {
		zlog.Fatal("❌ Invalid schedule", zap.Error(err))
	}
	sched.Start()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(manager, pipeline.Lookup, archive, zlog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("🚀 Server listening", zap.String("port", cfg.Port), zap.String("fetch_mode", cfg.FetchMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("❌ Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("🛑 Shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ HTTP shutdown failed", zap.Error(err))
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ Runs did not finish in time", zap.Error(err))
	}
	zlog.Info("👋 Bye")
}
