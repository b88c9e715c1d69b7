package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/draftops/draft-engine/internal/api/handlers"
	"github.com/draftops/draft-engine/internal/providers"
	"github.com/draftops/draft-engine/internal/rooms"
	"github.com/draftops/draft-engine/internal/storage"
	"github.com/draftops/draft-engine/internal/strategy"
	ws "github.com/draftops/draft-engine/internal/websocket"
	"github.com/draftops/draft-engine/pkg/config"
	"github.com/draftops/draft-engine/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New("", cfg.IsDevelopment())

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.WithFields(logrus.Fields{
		"service": "draft-engine",
		"port":    cfg.Port,
		"env":     cfg.Env,
	}).Info("Starting draft engine service")

	redisClient, err := initRedis(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Redis")
	}
	defer redisClient.Close()

	var historyStore *storage.HistoryStore
	if cfg.DatabaseURL != "" {
		db, err := initDatabase(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		historyStore, err = storage.NewHistoryStore(db, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize adjustment history store")
		}
	} else {
		log.Warn("DATABASE_URL empty, adjustment history persistence disabled")
	}

	provider := providers.NewPoolProvider(providers.Config{
		BaseURL:            cfg.PlayerPoolURL,
		Timeout:            cfg.ExternalAPITimeout,
		RequestsPerMinute:  cfg.ProviderRateLimit,
		BreakerMaxRequests: cfg.CircuitBreakerMaxReq,
	}, log)

	engineConfig := strategy.Config{
		MaxRecommendations: cfg.MaxRecommendations,
		ValueThreshold:     cfg.ValueThreshold,
	}
	manager := rooms.NewManager(redisClient, historyStore, log, engineConfig,
		time.Duration(cfg.SnapshotTTL)*time.Second)

	hub := ws.NewHub(log)
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := provider.StartScheduler(ctx, cfg.PoolRefreshSchedule); err != nil {
		log.WithError(err).Fatal("Failed to schedule player pool refresh")
	}

	// Sweep idle rooms so abandoned drafts do not pile up.
	go func() {
		idle := time.Duration(cfg.RoomIdleTimeout) * time.Minute
		ticker := time.NewTicker(idle / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				manager.EvictIdle(idle)
			}
		}
	}()

	apiHandlers := handlers.NewHandlers(manager, provider, hub, historyStore, log)
	router := setupRouter(apiHandlers, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func initDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	log.Info("Connecting to database...")

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Database connection established")
	return db, nil
}

func initRedis(cfg *config.Config, log *logrus.Logger) (*redis.Client, error) {
	log.Info("Connecting to Redis...")

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info("Redis connection established")
	return client, nil
}

func setupRouter(h *handlers.Handlers, log *logrus.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(gin.LoggerWithWriter(log.Writer()))

	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)

	api := router.Group("/api/v1")
	{
		api.GET("/players", h.GetPlayers)

		room := api.Group("/rooms/:room_id")
		{
			room.POST("/evaluate", h.EvaluatePick)
			room.GET("/evaluation", h.GetEvaluation)
			room.GET("/strategies", h.GetStrategies)
			room.GET("/strategies/active", h.GetActiveStrategy)
			room.POST("/strategies/:strategy_id/activate", h.ActivateStrategy)
			room.GET("/history", h.GetHistory)
			room.GET("/stats", h.GetStats)
			room.GET("/ws", h.HandleWebSocket)
		}
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

type gormLogAdapter struct {
	log *logrus.Logger
}

func newGormLogger(log *logrus.Logger) *gormLogAdapter {
	return &gormLogAdapter{log: log}
}

func (l *gormLogAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Infof(msg, data...)
}

func (l *gormLogAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Warnf(msg, data...)
}

func (l *gormLogAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Errorf(msg, data...)
}

func (l *gormLogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	entry := l.log.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed": elapsed,
		"rows":    rows,
		"sql":     sql,
	})
	if err != nil {
		entry.WithError(err).Error("Database query failed")
	} else {
		entry.Debug("Database query executed")
	}
}
