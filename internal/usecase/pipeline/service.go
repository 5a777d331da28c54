package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const (
	JobBronzeIngest     = "bronze_ingest"
	JobBronzeToSilver   = "bronze_to_silver"
	JobSilverToGold     = "silver_to_gold"
	JobCompletePipeline = "complete_pipeline"

	LayerFile   = "file"
	LayerBronze = "bronze"
	LayerSilver = "silver"
	LayerGold   = "gold"

	OriginPipeline = "etl_pipeline"
	OriginManual   = "manual"

	anomalyStatusNew   = "new"
	equipmentStatusNew = "operational"

	bronzeBatchSize = 200
)

var (
	errRepositoryRequired = errors.New("medallion repository is required")
	errUnitOfWorkRequired = errors.New("unit of work is required")
)

// Options holds the tunables of the pipeline stages.
type Options struct {
	PageSize           int
	PageDelay          time.Duration
	ErrorSampleLimit   int
	BatchRule          anomaly.BandRule
	ManualRule         anomaly.BandRule
	PredictionRule     anomaly.BandRule
	Columns            []columns.Column
	Positions          columns.Positions
	DefaultSiteCode    string
	DefaultSiteName    string
	SystemUserEmail    string
	PredictionCacheTTL time.Duration
}

func DefaultOptions() Options {
	return Options{
		PageSize:           10,
		PageDelay:          100 * time.Millisecond,
		ErrorSampleLimit:   10,
		BatchRule:          anomaly.RuleInclusive,
		ManualRule:         anomaly.RuleStrict,
		PredictionRule:     anomaly.RuleStrict,
		Columns:            columns.DefaultColumns(),
		Positions:          columns.DefaultPositions(),
		DefaultSiteCode:    "DEFAULT",
		DefaultSiteName:    "Default site",
		SystemUserEmail:    "etl@medallion.local",
		PredictionCacheTTL: 24 * time.Hour,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PageSize <= 0 {
		o.PageSize = def.PageSize
	}
	if o.PageDelay < 0 {
		o.PageDelay = 0
	}
	if o.ErrorSampleLimit <= 0 {
		o.ErrorSampleLimit = def.ErrorSampleLimit
	}
	if o.BatchRule == "" {
		o.BatchRule = def.BatchRule
	}
	if o.ManualRule == "" {
		o.ManualRule = def.ManualRule
	}
	if o.PredictionRule == "" {
		o.PredictionRule = def.PredictionRule
	}
	if len(o.Columns) == 0 {
		o.Columns = def.Columns
	}
	if o.Positions == nil {
		o.Positions = def.Positions
	}
	if o.DefaultSiteCode == "" {
		o.DefaultSiteCode = def.DefaultSiteCode
	}
	if o.DefaultSiteName == "" {
		o.DefaultSiteName = def.DefaultSiteName
	}
	if o.SystemUserEmail == "" {
		o.SystemUserEmail = def.SystemUserEmail
	}
	if o.PredictionCacheTTL < 0 {
		o.PredictionCacheTTL = 0
	}
	return o
}

// Service runs the Bronze, Silver and Gold stages against a repository.
type Service struct {
	repo      ports.MedallionRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	predictor ports.Predictor
	random    anomaly.Random
	opts      Options

	now      func() time.Time
	newRunID func() string
}

// NewService wires the pipeline with its store, an optional cache and an
// optional prediction client. Without a predictor every missing factor
// takes a random placeholder.
func NewService(
	repo ports.MedallionRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	predictor ports.Predictor,
	random anomaly.Random,
	opts Options,
) *Service {
	if random == nil {
		random = gofakeit.New(0)
	}
	return &Service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		predictor: predictor,
		random:    random,
		opts:      opts.withDefaults(),
		now:       func() time.Time { return time.Now().UTC() },
		newRunID:  uuid.NewString,
	}
}

// StageResult reports the counters of one stage run.
type StageResult struct {
	RunID            string
	RecordsProcessed int
	RecordsSucceeded int
	RecordsFailed    int
	Metadata         map[string]any
}

// ImportResult reports a Bronze ingest.
type ImportResult struct {
	TotalRows       int
	SuccessCount    int
	ErrorCount      int
	Errors          []string
	ProcessingLogID string
}

// CompleteResult reports both stages of a full pipeline run.
type CompleteResult struct {
	RunID          string
	Success        bool
	BronzeToSilver StageResult
	SilverToGold   StageResult
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepositoryRequired
	}
	if s.uow == nil {
		return errUnitOfWorkRequired
	}
	return nil
}
