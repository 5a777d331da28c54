package ports

import "context"

const (
	PredictionStatusSuccess = "success"
	PredictionStatusFailed  = "failed"
)

type PredictionRequest struct {
	AnomalyID     string `json:"anomaly_id"`
	Description   string `json:"description"`
	EquipmentName string `json:"equipment_name"`
	EquipmentID   string `json:"equipment_id"`
}

type BatchInfo struct {
	TotalAnomalies        int     `json:"total_anomalies"`
	SuccessfulPredictions int     `json:"successful_predictions"`
	FailedPredictions     int     `json:"failed_predictions"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	AverageTimePerAnomaly float64 `json:"average_time_per_anomaly"`
}

type FactorPrediction struct {
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type FactorPredictions struct {
	Availability  FactorPrediction `json:"availability"`
	Reliability   FactorPrediction `json:"reliability"`
	ProcessSafety FactorPrediction `json:"process_safety"`
}

type RiskAssessment struct {
	OverallRiskLevel  string   `json:"overall_risk_level"`
	RecommendedAction string   `json:"recommended_action"`
	CriticalFactors   []string `json:"critical_factors"`
	WeakestAspect     string   `json:"weakest_aspect"`
}

type PredictionResult struct {
	AnomalyID                  string            `json:"anomaly_id"`
	EquipmentID                string            `json:"equipment_id"`
	EquipmentName              string            `json:"equipment_name"`
	Status                     string            `json:"status"`
	OverallScore               float64           `json:"overall_score"`
	Predictions                FactorPredictions `json:"predictions"`
	RiskAssessment             RiskAssessment    `json:"risk_assessment"`
	MaintenanceRecommendations []string          `json:"maintenance_recommendations"`
}

type BatchResult struct {
	Status    string             `json:"status"`
	BatchInfo BatchInfo          `json:"batch_info"`
	Results   []PredictionResult `json:"results"`
}

// Predictor scores a batch of anomalies. Implementations absorb every
// transport or decoding failure and report it as a failed BatchResult.
type Predictor interface {
	Predict(ctx context.Context, batch []PredictionRequest) BatchResult
}
