package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
)

// ExplainService generates customer-facing explanations for loan decisions
// through a local Ollama instance. It is a degraded-but-non-fatal
// collaborator: any failure or timeout yields a fallback string, never an
// error, and it is only ever invoked outside the lifecycle's critical path.
type ExplainService struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewExplainService creates a new explain service
func NewExplainService(baseURL, model string, timeout time.Duration) *ExplainService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ExplainService{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// IsEnabled checks if an LLM endpoint is configured
func (s *ExplainService) IsEnabled() bool {
	return s.baseURL != ""
}

// ollamaRequest represents the Ollama generate payload
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse represents the Ollama generate response
type ollamaResponse struct {
	Response string `json:"response"`
}

// Explain returns a plain-language explanation of the application's current
// state and decision, or a fallback placeholder when the LLM is unreachable.
func (s *ExplainService) Explain(ctx context.Context, app *models.LoanApplication, history []*models.StatusTransition) string {
	if !s.IsEnabled() {
		return "(LLM unavailable: not configured)"
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(ollamaRequest{
		Model:  s.model,
		Prompt: buildPrompt(app, history),
		Stream: false,
	})
	if err != nil {
		return fmt.Sprintf("(LLM unavailable: %v)", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("(LLM unavailable: %v)", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("(LLM unavailable: %v)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("(LLM unavailable: status %d)", resp.StatusCode)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Sprintf("(LLM unavailable: %v)", err)
	}
	if out.Response == "" {
		return "(LLM unavailable: empty response)"
	}

	return out.Response
}

// buildPrompt renders the application and its history for the LLM
func buildPrompt(app *models.LoanApplication, history []*models.StatusTransition) string {
	var b strings.Builder

	b.WriteString("You are an assistant that explains bank loan decisions clearly and concisely for customers.\n\n")
	fmt.Fprintf(&b, "Application:\nName: %s\nAge: %d\nIncome: %.2f\nLoan Amount: %.2f\nPAN: %s\nStatus: %s\n",
		app.Name, app.Age, app.Income, app.LoanAmount, app.PAN, app.Status)

	if app.CreditScore != nil {
		fmt.Fprintf(&b, "Credit score: %d\n", *app.CreditScore)
	}
	if app.RiskLevel != nil {
		fmt.Fprintf(&b, "Risk level: %s\n", *app.RiskLevel)
	}
	if app.DecisionReason != nil {
		fmt.Fprintf(&b, "Reason: %s\n", *app.DecisionReason)
	}

	if len(history) > 0 {
		b.WriteString("\nStatus history:\n")
		for _, t := range history {
			old := "none"
			if t.OldStatus != nil {
				old = *t.OldStatus
			}
			fmt.Fprintf(&b, "- %s -> %s at %s\n", old, t.NewStatus, t.ChangedAt.Format(time.RFC3339))
		}
	}

	b.WriteString("\nProvide:\n1) A one-paragraph explanation in plain language for the customer.\n")
	b.WriteString("2) If rejected or medium/high risk, provide 2 simple suggestions.\nLimit to 120-150 words.\n")

	return b.String()
}
