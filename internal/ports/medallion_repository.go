package ports

import (
	"context"
	"errors"
	"time"
)

var ErrRecordNotFound = errors.New("record not found")

// OriginalRow keeps what was received for a Bronze row: the ordered cell
// values plus the header mapping in force at ingest time.
type OriginalRow struct {
	RowNumber int            `json:"row_number"`
	Headers   []string       `json:"headers,omitempty"`
	Values    []string       `json:"values"`
	Mapping   map[string]int `json:"mapping"`
}

type RawAnomaly struct {
	ID                   uint64
	EquipmentCode        *string
	System               *string
	Description          *string
	DetectedAt           *string
	EquipmentDescription *string
	Section              *string
	Reliability          *string
	Availability         *string
	ProcessSafety        *string
	Criticality          *string
	OriginalRow          OriginalRow
	SourceFile           string
	IngestedAt           time.Time
	Processed            bool
	ProcessedAt          *time.Time
}

// CleanAnomalyKey is the Silver deduplication tuple.
type CleanAnomalyKey struct {
	EquipmentCode        string
	Description          string
	DetectedAt           time.Time
	EquipmentDescription string
	Section              string
}

type CleanAnomaly struct {
	ID                   uint64
	EquipmentCode        string
	System               *string
	Description          string
	DetectedAt           time.Time
	EquipmentDescription string
	Section              string
	Reliability          *int
	Availability         *int
	ProcessSafety        *int
	Criticality          *string
	QualityScore         int
	ValidationErrors     []string
	NormalizedFields     []string
	RawAnomalyID         uint64
	CreatedAt            time.Time
}

func (c CleanAnomaly) Key() CleanAnomalyKey {
	return CleanAnomalyKey{
		EquipmentCode:        c.EquipmentCode,
		Description:          c.Description,
		DetectedAt:           c.DetectedAt,
		EquipmentDescription: c.EquipmentDescription,
		Section:              c.Section,
	}
}

type Anomaly struct {
	ID                  uint64
	Code                string
	Title               string
	Description         string
	EquipmentID         uint64
	EquipmentIdentifier string
	System              *string
	Section             string
	DetectedAt          time.Time
	Reliability         int
	Availability        int
	ProcessSafety       int
	Criticality         string
	Severity            string
	Priority            string
	SLAHours            int
	DueDate             time.Time
	EstimatedCost       float64
	DowntimeHours       float64
	SafetyImpact        bool
	EnvironmentalImpact bool
	ProductionImpact    bool
	AIConfidence        float64
	AIFactors           []string
	Origin              string
	Status              string
	ReportedByID        uint64
	CleanAnomalyID      *uint64
	CreatedAt           time.Time
}

type Site struct {
	ID   uint64
	Code string
	Name string
}

type Equipment struct {
	ID     uint64
	Code   string
	Name   string
	Type   string
	SiteID uint64
	Status string
}

type User struct {
	ID    uint64
	Email string
	Name  string
	Role  string
}

const (
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed_with_errors"
	RunStatusFailed              = "failed"
)

type PipelineRun struct {
	ID               uint64
	RunID            string
	JobName          string
	SourceLayer      string
	TargetLayer      string
	RecordsProcessed int
	RecordsSucceeded int
	RecordsFailed    int
	StartTime        time.Time
	EndTime          *time.Time
	Status           string
	Metadata         map[string]any
	ErrorMessage     *string
}

type BronzeRepository interface {
	CreateRawAnomaly(ctx context.Context, raw RawAnomaly) (RawAnomaly, error)
	ListUnprocessedRawAnomalies(ctx context.Context, afterID uint64, limit int) ([]RawAnomaly, error)
	MarkRawAnomalyProcessed(ctx context.Context, id uint64, processedAt time.Time) error
}

type SilverRepository interface {
	FindCleanAnomalyByKey(ctx context.Context, key CleanAnomalyKey) (CleanAnomaly, bool, error)
	CreateCleanAnomaly(ctx context.Context, clean CleanAnomaly) (CleanAnomaly, error)
	ListCleanAnomalies(ctx context.Context, afterID uint64, limit int) ([]CleanAnomaly, error)
}

type GoldRepository interface {
	FindAnomalyByEquipmentIdentifier(ctx context.Context, identifier string) (Anomaly, bool, error)
	ListAnomalyCodes(ctx context.Context, prefix string) ([]string, error)
	CreateAnomaly(ctx context.Context, anomaly Anomaly) (Anomaly, error)
	GetAnomalyByCode(ctx context.Context, code string) (Anomaly, error)
}

// ReferenceRepository resolves the lazily created lookup rows. Ensure*
// methods insert by natural key when absent and return the stored row.
type ReferenceRepository interface {
	EnsureSite(ctx context.Context, site Site) (Site, error)
	EnsureEquipment(ctx context.Context, equipment Equipment) (Equipment, error)
	EnsureUser(ctx context.Context, user User) (User, error)
}

type RunReadRepository interface {
	GetRun(ctx context.Context, runID string) (PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]PipelineRun, error)
}

type RunRepository interface {
	RunReadRepository
	CreateRun(ctx context.Context, run PipelineRun) (PipelineRun, error)
	FinishRun(ctx context.Context, run PipelineRun) error
}

type MedallionRepository interface {
	BronzeRepository
	SilverRepository
	GoldRepository
	ReferenceRepository
	RunRepository
}
