package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 500
)

// ListRuns returns the most recent runs first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRunListLimit
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}
	return s.repo.ListRuns(ctx, limit)
}

func (s *Service) GetRun(ctx context.Context, runID string) (ports.PipelineRun, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.PipelineRun{}, err
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ports.PipelineRun{}, errors.New("run id is required")
	}
	return s.repo.GetRun(ctx, runID)
}

func (s *Service) GetAnomaly(ctx context.Context, code string) (ports.Anomaly, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Anomaly{}, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ports.Anomaly{}, errors.New("anomaly code is required")
	}
	return s.repo.GetAnomalyByCode(ctx, code)
}
