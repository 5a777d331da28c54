package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PredictionConfig points at the external scoring service. An empty URL
// disables enrichment.
type PredictionConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PipelineConfig struct {
	PageSize           int           `mapstructure:"page_size"`
	PageDelay          time.Duration `mapstructure:"page_delay"`
	ErrorSampleLimit   int           `mapstructure:"error_sample_limit"`
	MappingProfile     string        `mapstructure:"mapping_profile"`
	RandomSeed         int64         `mapstructure:"random_seed"`
	BatchBandRule      string        `mapstructure:"batch_band_rule"`
	ManualBandRule     string        `mapstructure:"manual_band_rule"`
	PredictionBandRule string        `mapstructure:"prediction_band_rule"`
	DefaultSiteCode    string        `mapstructure:"default_site_code"`
	DefaultSiteName    string        `mapstructure:"default_site_name"`
	SystemUserEmail    string        `mapstructure:"system_user_email"`
	PredictionCacheTTL time.Duration `mapstructure:"prediction_cache_ttl"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(logCtx, v)

	v.SetEnvPrefix("MEDALLION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("prediction_enabled", cfg.Prediction.URL != ""),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return errs.Wrap(err, "log.level")
	}
	rules := map[string]string{
		"pipeline.batch_band_rule":      cfg.Pipeline.BatchBandRule,
		"pipeline.manual_band_rule":     cfg.Pipeline.ManualBandRule,
		"pipeline.prediction_band_rule": cfg.Pipeline.PredictionBandRule,
	}
	for key, value := range rules {
		if _, err := anomaly.ParseBandRule(value); err != nil {
			return errs.Wrap(err, key)
		}
	}
	if cfg.Pipeline.PageSize <= 0 {
		return errors.New("pipeline.page_size must be > 0")
	}
	if cfg.Pipeline.PageDelay < 0 || cfg.Prediction.Timeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

func setDefaults(ctx context.Context, v *viper.Viper) {
	if ctx == nil {
		return
	}

	v.SetDefault("app.name", "medallion")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".medallion/state/medallion.sqlite")
	v.SetDefault("prediction.url", "")
	v.SetDefault("prediction.api_key", "")
	v.SetDefault("prediction.timeout", "30s")
	v.SetDefault("pipeline.page_size", 10)
	v.SetDefault("pipeline.page_delay", "100ms")
	v.SetDefault("pipeline.error_sample_limit", 10)
	v.SetDefault("pipeline.mapping_profile", "")
	v.SetDefault("pipeline.random_seed", 0)
	v.SetDefault("pipeline.batch_band_rule", string(anomaly.RuleInclusive))
	v.SetDefault("pipeline.manual_band_rule", string(anomaly.RuleStrict))
	v.SetDefault("pipeline.prediction_band_rule", string(anomaly.RuleStrict))
	v.SetDefault("pipeline.default_site_code", "DEFAULT")
	v.SetDefault("pipeline.default_site_name", "Default site")
	v.SetDefault("pipeline.system_user_email", "etl@medallion.local")
	v.SetDefault("pipeline.prediction_cache_ttl", "24h")
}
