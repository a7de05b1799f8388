// Package app assembles the service's dependency graph from configuration.
// Both the HTTP server and the batch jobs start from New.
package app

import (
	"context"
	"time"

	"github.com/fekuna/pharmastock-service/config"
	"github.com/fekuna/pharmastock-service/internal/alert"
	alertH "github.com/fekuna/pharmastock-service/internal/alert/handler"
	alertRepoPkg "github.com/fekuna/pharmastock-service/internal/alert/repository"
	alertUCPkg "github.com/fekuna/pharmastock-service/internal/alert/usecase"
	"github.com/fekuna/pharmastock-service/internal/category"
	catH "github.com/fekuna/pharmastock-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/pharmastock-service/internal/category/repository"
	catUCPkg "github.com/fekuna/pharmastock-service/internal/category/usecase"
	"github.com/fekuna/pharmastock-service/internal/dashboard"
	dashH "github.com/fekuna/pharmastock-service/internal/dashboard/handler"
	dashUCPkg "github.com/fekuna/pharmastock-service/internal/dashboard/usecase"
	"github.com/fekuna/pharmastock-service/internal/drug"
	drugH "github.com/fekuna/pharmastock-service/internal/drug/handler"
	drugRepoPkg "github.com/fekuna/pharmastock-service/internal/drug/repository"
	drugUCPkg "github.com/fekuna/pharmastock-service/internal/drug/usecase"
	"github.com/fekuna/pharmastock-service/internal/forecast"
	fcH "github.com/fekuna/pharmastock-service/internal/forecast/handler"
	"github.com/fekuna/pharmastock-service/internal/forecast/mlclient"
	fcRepoPkg "github.com/fekuna/pharmastock-service/internal/forecast/repository"
	fcUCPkg "github.com/fekuna/pharmastock-service/internal/forecast/usecase"
	"github.com/fekuna/pharmastock-service/internal/inventory"
	invH "github.com/fekuna/pharmastock-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/pharmastock-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/pharmastock-service/internal/inventory/usecase"
	"github.com/fekuna/pharmastock-service/internal/pkg/broker"
	"github.com/fekuna/pharmastock-service/internal/pkg/cache"
	"github.com/fekuna/pharmastock-service/internal/pkg/database/postgres"
	"github.com/fekuna/pharmastock-service/internal/pkg/logger"
	"github.com/fekuna/pharmastock-service/internal/pkg/search"
	"github.com/fekuna/pharmastock-service/internal/purchaseorder"
	poH "github.com/fekuna/pharmastock-service/internal/purchaseorder/handler"
	poRepoPkg "github.com/fekuna/pharmastock-service/internal/purchaseorder/repository"
	poUCPkg "github.com/fekuna/pharmastock-service/internal/purchaseorder/usecase"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Logger   logger.ZapLogger
	DB       *sqlx.DB
	Redis    *cache.RedisClient
	Producer *broker.KafkaProducer
	Search   *search.Client // nil when Elasticsearch is unreachable
	ML       *mlclient.Client
	Resolver reorder.Resolver

	Categories     category.UseCase
	Drugs          drug.UseCase
	Inventory      inventory.UseCase
	Forecasts      forecast.UseCase
	Alerts         alert.UseCase
	PurchaseOrders purchaseorder.UseCase
	Dashboard      dashboard.UseCase
}

// Registrar is implemented by every HTTP handler.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

// NewLogger builds the process logger. Development environments get a
// console encoder at debug level.
func NewLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	return logger.NewZapLogger(logConfig)
}

// ResolverFromConfig maps the reorder settings onto a resolver.
func ResolverFromConfig(cfg config.ReorderConfig) reorder.Resolver {
	policy := reorder.ZeroAsAbsent
	if !cfg.ZeroIsAbsent {
		policy = reorder.ZeroIsValid
	}
	return reorder.New(cfg.DefaultLevel, policy)
}

// New connects to postgres, redis, kafka and Elasticsearch and wires every
// usecase. Elasticsearch is optional; everything else is required.
func New(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	a.DB = db
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Redis = redisClient
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	a.Producer = broker.NewProducer(cfg.Kafka.Brokers)

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		log.Warn("Could not connect to Elasticsearch, drug search falls back to postgres", zap.Error(err))
	} else {
		a.Search = esClient
		if err := drugUCPkg.EnsureIndex(ctx, esClient); err != nil {
			log.Warn("Could not create drug index", zap.Error(err))
		}
		log.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	a.ML = mlclient.NewClient(mlclient.Config{
		BaseURL: cfg.ML.BaseURL,
		APIKey:  cfg.ML.APIKey,
		Timeout: cfg.ML.Timeout,
	})
	a.Resolver = ResolverFromConfig(cfg.Reorder)

	a.wire()
	return a, nil
}

func (a *App) wire() {
	cfg := a.Config

	catRepo := catRepoPkg.NewPGRepository(a.DB)
	drugRepo := drugRepoPkg.NewPGRepository(a.DB)
	invRepo := invRepoPkg.NewPGRepository(a.DB)
	fcRepo := fcRepoPkg.NewPGRepository(a.DB)
	alertRepo := alertRepoPkg.NewPGRepository(a.DB)
	poRepo := poRepoPkg.NewPGRepository(a.DB)

	a.Categories = catUCPkg.NewCategoryUseCase(catRepo, a.Logger)
	a.Drugs = drugUCPkg.NewDrugUseCase(drugRepo, a.Redis, a.Search, cfg.Reorder.DefaultLevel, a.Logger)
	a.Inventory = invUCPkg.NewInventoryUseCase(invRepo, a.Redis, a.Resolver, invUCPkg.Options{
		UsageWindowDays: cfg.Reorder.UsageWindowDays,
		SafetyDays:      cfg.Reorder.SafetyDays,
	}, a.Logger)
	a.Forecasts = fcUCPkg.NewForecastUseCase(fcRepo, a.ML, a.Inventory, a.Redis, a.Resolver, fcUCPkg.Options{
		ForecastDays: cfg.ML.ForecastDays,
		SafetyDays:   cfg.Reorder.SafetyDays,
		CacheTTL:     cfg.ML.CacheTTL,
	}, a.Logger)
	a.Alerts = alertUCPkg.NewAlertUseCase(alertRepo, a.Inventory, a.Producer, cfg.Kafka.AlertTopic, a.Resolver, a.Logger)
	a.PurchaseOrders = poUCPkg.NewPurchaseOrderUseCase(poRepo, a.Inventory, a.Drugs, a.Producer,
		cfg.Kafka.PurchaseOrderTopic, a.Resolver, a.Logger)
	a.Dashboard = dashUCPkg.NewDashboardUseCase(a.Inventory, a.Alerts, a.PurchaseOrders, a.Redis, a.Logger)
}

// Handlers returns the HTTP handlers mounted under /api/v1.
func (a *App) Handlers() []Registrar {
	return []Registrar{
		catH.NewCategoryHandler(a.Categories, a.Logger),
		drugH.NewDrugHandler(a.Drugs, a.Logger),
		invH.NewInventoryHandler(a.Inventory, a.Logger),
		fcH.NewForecastHandler(a.Forecasts, a.Logger),
		alertH.NewAlertHandler(a.Alerts, a.Logger),
		poH.NewPurchaseOrderHandler(a.PurchaseOrders, a.Logger),
		dashH.NewDashboardHandler(a.Dashboard, a.Logger),
	}
}

// Ping checks the hard dependencies and the ML service. The returned map
// holds one entry per dependency, empty on success.
func (a *App) Ping(ctx context.Context) map[string]string {
	out := map[string]string{"postgres": "", "redis": "", "ml_service": ""}
	if err := a.DB.PingContext(ctx); err != nil {
		out["postgres"] = err.Error()
	}
	if err := a.Redis.Ping(ctx); err != nil {
		out["redis"] = err.Error()
	}
	if _, err := a.ML.Health(ctx); err != nil {
		out["ml_service"] = err.Error()
	}
	return out
}

func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Logger.Warn("Failed to close kafka producer", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
