package main

import (
	"context"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/cmd/config"
	"github.com/sol1corejz/pledgetracker/internal/broadcast"
	"github.com/sol1corejz/pledgetracker/internal/handlers"
	"github.com/sol1corejz/pledgetracker/internal/logger"
	"github.com/sol1corejz/pledgetracker/internal/middleware"
	"github.com/sol1corejz/pledgetracker/internal/storage"
	"github.com/sol1corejz/pledgetracker/internal/totals"
	"github.com/sol1corejz/pledgetracker/internal/workers"
)

func main() {
	app := fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			providePaddleStorage,
			provideSMSStorage,
			provideEngine,
			broadcast.NewHub,
			provideRedis,
			providePublisher,
			provideNotifier,
			workers.NewWatermark,
			providePoller,
			provideHandler,
			provideServer,
		),
		fx.Invoke(func(*fiber.App, *workers.Poller) {}),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	return logger.Log, nil
}

// Schema setup failures are logged and do not stop the service; the store
// may come up later.
func providePaddleStorage(lc fx.Lifecycle, cfg *config.Config) (*storage.PaddleStorage, error) {
	s, err := storage.OpenPaddleStorage(cfg.PrimaryDSN(), cfg.QueryTimeout)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.EnsureSchema(ctx, cfg.PaddleTiers); err != nil {
				logger.Log.Error("Failed to prepare paddle pledge schema", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})

	return s, nil
}

func provideSMSStorage(lc fx.Lifecycle, cfg *config.Config) (*storage.SMSStorage, error) {
	s, err := storage.OpenSMSStorage(cfg.SMSDatabase, cfg.QueryTimeout)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})

	return s, nil
}

func provideEngine(paddle *storage.PaddleStorage, sms *storage.SMSStorage, cfg *config.Config) *totals.Engine {
	return totals.NewEngine(paddle, sms, cfg.GoalCents)
}

func provideNotifier(engine *totals.Engine, publisher broadcast.Publisher) *broadcast.Notifier {
	return broadcast.NewNotifier(engine, publisher)
}

// provideRedis returns nil when REDIS_ADDR is unset.
func provideRedis(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Log.Warn("Redis not reachable yet", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
				return nil
			}
			logger.Log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}

func providePublisher(lc fx.Lifecycle, cfg *config.Config, hub *broadcast.Hub, rdb *redis.Client) broadcast.Publisher {
	if rdb == nil {
		return hub
	}

	relay := broadcast.NewRelay(rdb, cfg.Redis.Channel, hub)
	lc.Append(fx.Hook{
		OnStart: relay.Start,
		OnStop: func(ctx context.Context) error {
			return relay.Stop()
		},
	})

	return broadcast.NewRedisPublisher(rdb, cfg.Redis.Channel)
}

func providePoller(lc fx.Lifecycle, cfg *config.Config, sms *storage.SMSStorage, notifier *broadcast.Notifier, wm *workers.Watermark) *workers.Poller {
	p := workers.NewPoller(sms, notifier, wm, cfg.PollInterval)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Start()
		},
		OnStop: func(ctx context.Context) error {
			return p.Stop()
		},
	})

	return p
}

func provideHandler(
	cfg *config.Config,
	paddle *storage.PaddleStorage,
	sms *storage.SMSStorage,
	engine *totals.Engine,
	notifier *broadcast.Notifier,
	wm *workers.Watermark,
	hub *broadcast.Hub,
) *handlers.Handler {
	return handlers.New(paddle, sms, engine, notifier, wm, hub, handlers.Options{
		Timeout:   cfg.QueryTimeout,
		TextLimit: cfg.TextPledgeLimit,
		Location:  cfg.Location(),
	})
}

func provideServer(lc fx.Lifecycle, cfg *config.Config, h *handlers.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pledgetracker",
		DisableStartupMessage: true,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger)
	h.Register(app)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Log.Info("Running server", zap.String("address", cfg.RunAddress))
			go func() {
				if err := app.Listen(cfg.RunAddress); err != nil {
					logger.Log.Fatal("Failed to run server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Log.Info("Shutting down server")
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}
