package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleBatch() []ports.PredictionRequest {
	return []ports.PredictionRequest{
		{AnomalyID: "1", Description: "Fuite huile", EquipmentName: "Pompe", EquipmentID: "EQ-1"},
		{AnomalyID: "2", Description: "Vibration", EquipmentName: "Turbine", EquipmentID: "EQ-2"},
	}
}

func TestPredictSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var got []ports.PredictionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&got)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Len(t, got, 2)
		assert.Equal(t, "EQ-1", got[0].EquipmentID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"batch_info": {"total_anomalies": 2, "successful_predictions": 1, "failed_predictions": 1},
			"results": [{
				"anomaly_id": "1",
				"equipment_id": "EQ-1",
				"status": "success",
				"overall_score": 2.4,
				"predictions": {
					"availability": {"score": 2.6, "description": "ok"},
					"reliability": {"score": 1.4},
					"process_safety": {"score": 3}
				},
				"risk_assessment": {"overall_risk_level": "HIGH", "critical_factors": ["reliability"], "weakest_aspect": "reliability"},
				"maintenance_recommendations": ["inspect seals"]
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	defer client.Close()

	result := client.Predict(context.Background(), sampleBatch())
	require.Equal(t, ports.PredictionStatusSuccess, result.Status)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 2.6, result.Results[0].Predictions.Availability.Score)
	assert.Equal(t, "reliability", result.Results[0].RiskAssessment.WeakestAspect)
	assert.Equal(t, 1, result.BatchInfo.FailedPredictions)
}

func TestPredictDegradesOnFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
		{
			name: "missing status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"results": []}`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewClient(server.URL, "", 100*time.Millisecond)
			defer client.Close()

			result := client.Predict(context.Background(), sampleBatch())
			assert.Equal(t, FailedBatch(2), result)
		})
	}
}

func TestPredictUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, "", time.Second)
	defer client.Close()

	result := client.Predict(context.Background(), sampleBatch())
	assert.Equal(t, ports.PredictionStatusFailed, result.Status)
	assert.Empty(t, result.Results)
	assert.Equal(t, 2, result.BatchInfo.FailedPredictions)
	assert.Equal(t, 0, result.BatchInfo.SuccessfulPredictions)
}

func TestPredictWithoutEndpoint(t *testing.T) {
	client := NewClient("", "", 0)
	defer client.Close()

	result := client.Predict(context.Background(), sampleBatch())
	assert.Equal(t, FailedBatch(2), result)

	empty := client.Predict(context.Background(), nil)
	assert.Equal(t, ports.PredictionStatusSuccess, empty.Status)
}
