package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/uow"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

var testNow = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

const sampleCSV = "Num_equipement,Systeme,Description,Date de détéction de l'anomalie,Description de l'équipement,Section propriétaire,Fiabilité Intégrité,Disponibilté,Process Safety,Criticité\n" +
	"EQ-001,Turbine,Fuite huile palier,15/01/2024,POMPE ALIMENTAIRE,34MC,3,3,3,Critique\n" +
	"EQ-001,Turbine,Fuite huile palier,15/01/2024,POMPE ALIMENTAIRE,34MC,3,3,3,Critique\n" +
	"EQ-002,,Vibration moteur,2024-02-01,MOTEUR VENTILATEUR,34EL,,,,\n" +
	"EQ-003,,Bruit anormal,not a date,ALTERNATEUR,34MM,1,1,1,\n" +
	"\"EQ-004\",\"Circuit, vapeur\",\"Joint \"\"HP\"\" fuyard\",2024-03-05,VANNE,34MC,2,2,2,Moyenne\n"

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

// fakePredictor scores every request 2.6 / 1.2 / 3 (rounded 3 / 1 / 3).
type fakePredictor struct {
	calls    int
	requests [][]ports.PredictionRequest
	fail     bool
}

func (p *fakePredictor) Predict(_ context.Context, batch []ports.PredictionRequest) ports.BatchResult {
	p.calls++
	p.requests = append(p.requests, batch)
	if p.fail {
		return ports.BatchResult{Status: ports.PredictionStatusFailed, Results: []ports.PredictionResult{}}
	}

	results := make([]ports.PredictionResult, 0, len(batch))
	for _, req := range batch {
		results = append(results, ports.PredictionResult{
			AnomalyID:   req.AnomalyID,
			EquipmentID: req.EquipmentID,
			Status:      ports.PredictionStatusSuccess,
			Predictions: ports.FactorPredictions{
				Reliability:   ports.FactorPrediction{Score: 2.6},
				Availability:  ports.FactorPrediction{Score: 1.2},
				ProcessSafety: ports.FactorPrediction{Score: 3},
			},
			RiskAssessment: ports.RiskAssessment{
				OverallRiskLevel:  "MEDIUM",
				WeakestAspect:     "availability",
				RecommendedAction: "plan inspection",
				CriticalFactors:   []string{"availability"},
			},
			MaintenanceRecommendations: []string{"check bearing", " "},
		})
	}
	return ports.BatchResult{Status: ports.PredictionStatusSuccess, Results: results}
}

type testEnv struct {
	svc       *Service
	repo      *sqliterepo.MedallionRepository
	cache     *testCache
	predictor *fakePredictor
}

func setupService(t *testing.T, mutate func(*Options)) testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pipeline.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	opts := DefaultOptions()
	opts.PageDelay = 0
	if mutate != nil {
		mutate(&opts)
	}

	repo := sqliterepo.NewMedallionRepository(db)
	cache := newTestCache()
	predictor := &fakePredictor{}
	svc := NewService(repo, sqliteuow.NewUnitOfWork(db), cache, predictor, gofakeit.New(11), opts)
	svc.now = func() time.Time { return testNow }
	return testEnv{svc: svc, repo: repo, cache: cache, predictor: predictor}
}

func ingestSample(t *testing.T, env testEnv) ImportResult {
	t.Helper()
	result, err := env.svc.IngestCSV(context.Background(), IngestCSVInput{Text: sampleCSV, Source: "sample.csv"})
	if err != nil {
		t.Fatalf("IngestCSV() error = %v", err)
	}
	return result
}

func mustAnomaly(t *testing.T, env testEnv, equipment string) ports.Anomaly {
	t.Helper()
	got, found, err := env.repo.FindAnomalyByEquipmentIdentifier(context.Background(), equipment)
	if err != nil || !found {
		t.Fatalf("FindAnomalyByEquipmentIdentifier(%s) = %v,%v", equipment, found, err)
	}
	return got
}

func TestNewServiceRequiresStore(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, Options{})
	if _, err := svc.RunBronzeToSilver(context.Background()); err == nil {
		t.Fatal("expected missing repository error")
	}
	if svc.opts.PageSize != 10 || svc.opts.BatchRule == "" {
		t.Fatalf("defaults not applied: %+v", svc.opts)
	}
}
