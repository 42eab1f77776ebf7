package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/services"
)

func sampleApplication() *models.LoanApplication {
	score := 700
	risk := "low"
	reason := "Good credit score and acceptable risk"
	return &models.LoanApplication{
		ApplicationID:  "ln_9f8a2b1c4d3e",
		Name:           "Asha Verma",
		Age:            32,
		Income:         10000,
		LoanAmount:     20000,
		PAN:            "ABCDE1234F",
		Status:         "approved",
		CreditScore:    &score,
		RiskLevel:      &risk,
		DecisionReason: &reason,
	}
}

func TestExplainNotConfigured(t *testing.T) {
	svc := services.NewExplainService("", "llama3.2:3b", time.Second)

	assert.False(t, svc.IsEnabled())
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Equal(t, "(LLM unavailable: not configured)", got)
}

func TestExplainSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:3b", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Contains(t, req["prompt"], "Asha Verma")
		assert.Contains(t, req["prompt"], "Status: approved")

		json.NewEncoder(w).Encode(map[string]string{
			"response": "Your loan was approved based on a strong credit profile.",
		})
	}))
	defer server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", time.Second)
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Equal(t, "Your loan was approved based on a strong credit profile.", got)
}

func TestExplainIncludesHistoryInPrompt(t *testing.T) {
	old := "submitted"
	history := []*models.StatusTransition{
		{NewStatus: "submitted", ChangedAt: time.Now().UTC()},
		{OldStatus: &old, NewStatus: "processing", ChangedAt: time.Now().UTC()},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["prompt"], "none -> submitted")
		assert.Contains(t, req["prompt"], "submitted -> processing")

		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", time.Second)
	got := svc.Explain(context.Background(), sampleApplication(), history)
	assert.Equal(t, "ok", got)
}

func TestExplainFallbackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", time.Second)
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Equal(t, "(LLM unavailable: status 500)", got)
}

func TestExplainFallbackOnEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": ""})
	}))
	defer server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", time.Second)
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Equal(t, "(LLM unavailable: empty response)", got)
}

func TestExplainFallbackOnUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", time.Second)
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Contains(t, got, "(LLM unavailable:")
}

func TestExplainFallbackOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"response": "too late"})
	}))
	defer server.Close()

	svc := services.NewExplainService(server.URL, "llama3.2:3b", 50*time.Millisecond)
	got := svc.Explain(context.Background(), sampleApplication(), nil)
	assert.Contains(t, got, "(LLM unavailable:")
}
