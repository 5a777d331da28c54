package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

var errNoRecognisableValue = errors.New("row has no recognisable value")

type IngestCSVInput struct {
	Text   string
	Source string
}

type IngestRowsInput struct {
	Rows   [][]string
	Source string
}

// sourceRow is one data row with its 1-based position in the input.
type sourceRow struct {
	number int
	values []string
}

// IngestCSV stores every data row of a CSV payload in Bronze. The first
// record is the header; blank lines are skipped without being counted.
func (s *Service) IngestCSV(ctx context.Context, input IngestCSVInput) (ImportResult, error) {
	records := columns.SplitRecords(input.Text)
	if len(records) == 0 {
		return s.ingest(ctx, nil, nil, input.Source)
	}

	delim := columns.DetectDelimiter(records[0])
	headers := columns.ParseLine(records[0], delim)
	rows := make([]sourceRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if strings.TrimSpace(record) == "" {
			continue
		}
		values := columns.ParseLine(record, delim)
		if columns.IsBlank(values) {
			continue
		}
		rows = append(rows, sourceRow{number: i + 2, values: values})
	}
	return s.ingest(ctx, headers, rows, input.Source)
}

// IngestRows stores already decoded rows, such as a workbook sheet, in
// Bronze. Rows[0] is the header.
func (s *Service) IngestRows(ctx context.Context, input IngestRowsInput) (ImportResult, error) {
	if len(input.Rows) == 0 {
		return s.ingest(ctx, nil, nil, input.Source)
	}

	rows := make([]sourceRow, 0, len(input.Rows)-1)
	for i, values := range input.Rows[1:] {
		if columns.IsBlank(values) {
			continue
		}
		rows = append(rows, sourceRow{number: i + 2, values: values})
	}
	return s.ingest(ctx, input.Rows[0], rows, input.Source)
}

func (s *Service) ingest(ctx context.Context, headers []string, rows []sourceRow, source string) (ImportResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return ImportResult{}, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "upload"
	}

	run, err := s.openRun(ctx, JobBronzeIngest, LayerFile, LayerBronze)
	if err != nil {
		return ImportResult{}, err
	}
	logCtx := logging.WithAttrs(logging.WithRun(ctx, "pipeline.ingest", run.RunID), slog.String("source", source))

	mapping := columns.MapHeaders(headers, s.opts.Columns)
	storedMapping := make(map[string]int, len(mapping))
	for field, idx := range mapping {
		storedMapping[string(field)] = idx
	}
	logging.Info(logCtx, "ingest started",
		slog.Int("rows", len(rows)),
		slog.Int("mapped_columns", len(mapping)),
		slog.Int("expected_columns", len(s.opts.Columns)),
	)

	counters := newStageCounters(s.opts.ErrorSampleLimit)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			wrapped := errs.Wrap(err, "ingest interrupted")
			metadata := ingestMetadata(source, headers, counters)
			s.failRun(logCtx, run, counters, metadata, wrapped)
			return importResult(run, counters), wrapped
		}
		counters.processed++

		raw, err := buildRawAnomaly(row, headers, mapping, storedMapping, source, s.now())
		if err == nil {
			_, err = s.repo.CreateRawAnomaly(ctx, raw)
		}
		if err != nil {
			logging.Warn(logCtx, "ingest row failed",
				slog.Int("row", row.number),
				slog.Any("err", errs.Loggable(err)),
			)
			counters.fail("row %d: %s", row.number, errs.Brief(err, maxErrorLength))
			continue
		}
		counters.succeeded++
	}

	metadata := ingestMetadata(source, headers, counters)
	run, err = s.finishRun(logCtx, run, counters, metadata)
	if err != nil {
		return importResult(run, counters), err
	}
	return importResult(run, counters), nil
}

func buildRawAnomaly(row sourceRow, headers []string, mapping columns.Mapping, storedMapping map[string]int, source string, now time.Time) (ports.RawAnomaly, error) {
	recognised := false
	for _, value := range row.values {
		if columns.Clean(value) != nil {
			recognised = true
			break
		}
	}
	if !recognised {
		return ports.RawAnomaly{}, errNoRecognisableValue
	}

	r := columns.Row{Values: row.values, Mapping: mapping}
	return ports.RawAnomaly{
		EquipmentCode:        r.Get(columns.FieldEquipmentCode),
		System:               r.Get(columns.FieldSystem),
		Description:          r.Get(columns.FieldDescription),
		DetectedAt:           r.Get(columns.FieldDetectedAt),
		EquipmentDescription: r.Get(columns.FieldEquipmentDescription),
		Section:              r.Get(columns.FieldSection),
		Reliability:          r.Get(columns.FieldReliability),
		Availability:         r.Get(columns.FieldAvailability),
		ProcessSafety:        r.Get(columns.FieldProcessSafety),
		Criticality:          r.Get(columns.FieldCriticality),
		OriginalRow: ports.OriginalRow{
			RowNumber: row.number,
			Headers:   headers,
			Values:    row.values,
			Mapping:   storedMapping,
		},
		SourceFile: source,
		IngestedAt: now,
	}, nil
}

func ingestMetadata(source string, headers []string, counters stageCounters) map[string]any {
	return map[string]any{
		"source":  source,
		"headers": len(headers),
		"errors":  counters.errors.items,
	}
}

func importResult(run ports.PipelineRun, counters stageCounters) ImportResult {
	return ImportResult{
		TotalRows:       counters.processed,
		SuccessCount:    counters.succeeded,
		ErrorCount:      counters.failed,
		Errors:          counters.errors.items,
		ProcessingLogID: run.RunID,
	}
}
