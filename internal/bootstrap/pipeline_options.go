package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/config"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

func providePipelineOptions(ctx context.Context, cfg config.Config) (pipeline.Options, error) {
	return PipelineOptions(ctx, cfg.Pipeline)
}

// PipelineOptions converts the pipeline section, loading the mapping
// profile when one is configured.
func PipelineOptions(ctx context.Context, cfg config.PipelineConfig) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.PageSize = cfg.PageSize
	opts.PageDelay = cfg.PageDelay
	opts.ErrorSampleLimit = cfg.ErrorSampleLimit
	opts.PredictionCacheTTL = cfg.PredictionCacheTTL
	opts.DefaultSiteCode = strings.TrimSpace(cfg.DefaultSiteCode)
	opts.DefaultSiteName = strings.TrimSpace(cfg.DefaultSiteName)
	opts.SystemUserEmail = strings.TrimSpace(cfg.SystemUserEmail)

	var err error
	if opts.BatchRule, err = anomaly.ParseBandRule(cfg.BatchBandRule); err != nil {
		return pipeline.Options{}, errs.Wrap(err, "batch band rule")
	}
	if opts.ManualRule, err = anomaly.ParseBandRule(cfg.ManualBandRule); err != nil {
		return pipeline.Options{}, errs.Wrap(err, "manual band rule")
	}
	if opts.PredictionRule, err = anomaly.ParseBandRule(cfg.PredictionBandRule); err != nil {
		return pipeline.Options{}, errs.Wrap(err, "prediction band rule")
	}

	path := strings.TrimSpace(cfg.MappingProfile)
	if path == "" {
		return opts, nil
	}
	profile, err := pipeline.LoadMappingProfile(path)
	if err != nil {
		return pipeline.Options{}, errs.Wrapf(err, "load mapping profile %q", path)
	}
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")), "mapping profile loaded",
		slog.String("path", path),
		slog.Int("aliases", len(profile.Aliases)),
		slog.Int("positions", len(profile.Positions)),
	)
	return profile.Apply(opts), nil
}
