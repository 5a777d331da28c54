package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/config"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/database"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	cacheinfra "github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/cache"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/prediction"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/random"
	sqliterepo "github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/uow"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewMedallionRepository,
			fx.As(new(ports.MedallionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(providePredictor),
	fx.Provide(provideRandom),
	fx.Provide(providePipelineOptions),
	fx.Provide(pipeline.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideCache drops expired predictions on start. Before init-db the table
// does not exist yet, so a purge failure is only logged.
func provideCache(lc fx.Lifecycle, ctx context.Context, db *gorm.DB) ports.Cache {
	cache := cacheinfra.NewKVCache(db)
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			purged, err := cache.Purge(startCtx)
			if err != nil {
				logging.Debug(logCtx, "purge expired cache entries skipped", slog.Any("err", errs.Loggable(err)))
				return nil
			}
			if purged > 0 {
				logging.Info(logCtx, "expired cache entries purged", slog.Int64("count", purged))
			}
			return nil
		},
	})
	return cache
}

// providePredictor returns nil when no prediction url is configured; the
// pipeline then relies on placeholders only.
func providePredictor(lc fx.Lifecycle, cfg config.Config) ports.Predictor {
	if strings.TrimSpace(cfg.Prediction.URL) == "" {
		return nil
	}

	client := prediction.NewClient(cfg.Prediction.URL, cfg.Prediction.APIKey, cfg.Prediction.Timeout)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			client.Close()
			return nil
		},
	})
	return client
}

func provideRandom(cfg config.Config) anomaly.Random {
	return random.NewSource(cfg.Pipeline.RandomSeed)
}
