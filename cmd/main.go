package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/escalation"
	"complaintdesk/backend/internal/events"
	"complaintdesk/backend/internal/livefeed"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/tracing"
	"complaintdesk/backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Environment, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}

	db := initDatabase(cfg, logger)
	rdb := initRedis(cfg, logger)
	store := storage.NewStorageService(db, rdb, logger)
	if err := store.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	localizer, err := localization.New()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load translations")
	}

	hub := livefeed.NewHub(rdb, localizer, logger)
	go hub.Run(ctx)

	recorder := audit.NewRecorder(store, logger, hub)

	var natsClient *events.Client
	if cfg.NATS.Enabled {
		natsClient, err = events.NewClient(cfg.NATS, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, audit events will not be published")
		} else {
			recorder.AddSink(events.NewPublisher(natsClient.JetStream(), logger))
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.Enabled {
		api, err := notify.Dial(cfg.Telegram.BotToken, logger)
		if err != nil {
			logger.WithError(err).Warn("Telegram unavailable, notifications disabled")
		} else {
			tg := notify.NewTelegram(api, cfg.Telegram.AdminChatID, localizer, logger)
			go tg.Run()
			defer tg.Close()
			notifier = tg
		}
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	policy := escalation.NewPolicy(store, recorder, notifier, logger)

	var scheduler *escalation.Scheduler
	if cfg.Escalation.SchedulerEnabled {
		actor := escalation.AccountActor(store, cfg.Escalation.ActorEmail)
		scheduler = escalation.NewScheduler(policy, cfg.Escalation.Schedule, actor, logger)
		if err := scheduler.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start escalation scheduler")
		}
	}

	h := &handler.Handler{
		Auth:       auth.NewService(store, tokens, recorder, logger),
		Complaints: complaint.NewService(store, recorder, policy, notifier, logger),
		Users:      user.NewService(store, recorder),
		Logs:       audit.NewQuery(store, localizer),
		Hub:        hub,
		DB:         store,
		Logger:     logger,
	}
	router := setupRouter(cfg, h, logger)

	var httpHandler http.Handler = router
	if tracing.Enabled(cfg.Tracing) {
		httpHandler = otelhttp.NewHandler(router, cfg.Tracing.ServiceName)
	}

	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        httpHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Starting complaint service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down complaint service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if natsClient != nil {
		natsClient.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Error shutting down tracer provider")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Complaint service stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if !cfg.IsProduction() && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func initDatabase(cfg *config.Config, logger *logrus.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get database handle")
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.DBName,
	}).Info("Database connection established")
	return db
}

// initRedis returns nil when Redis is not configured or unreachable; the service runs without it.
func initRedis(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.Redis.URL == "" {
		logger.Warn("Redis URL not configured, stats cache and cross-instance live feed disabled")
		return nil
	}
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL, continuing without Redis")
		return nil
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, continuing without Redis")
		client.Close()
		return nil
	}
	logger.Info("Redis connection established")
	return client
}

func setupRouter(cfg *config.Config, h *handler.Handler, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestInfo())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.App.CORSOrigins))
	router.Use(middleware.Metrics())

	h.Routes(router)
	return router
}
