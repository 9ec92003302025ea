package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"funilzap/models"
)

// AnalyzerClient talks to the external AI re-analysis collaborator. Calls are
// best-effort: the card mutation is the durable source of truth and a failed
// analysis never fails the webhook response.
type AnalyzerClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

func NewAnalyzerClient(baseURL string, logger *log.Logger) *AnalyzerClient {
	return &AnalyzerClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

// Enabled reports whether an analyzer endpoint is configured.
func (a *AnalyzerClient) Enabled() bool {
	return a != nil && a.BaseURL != ""
}

// Reanalyze submits a card snapshot for analysis and logs any failure. Meant
// to be dispatched with `go`; there is no way to cancel or await it from the
// triggering request.
func (a *AnalyzerClient) Reanalyze(card models.Card) {
	if !a.Enabled() {
		return
	}
	if err := a.analyze(context.Background(), card); err != nil {
		a.Logger.Printf("AI re-analysis failed for card %d: %v", card.ID, err)
	}
}

func (a *AnalyzerClient) analyze(ctx context.Context, card models.Card) error {
	payload := map[string]interface{}{
		"card_id":     card.ID,
		"title":       card.Title,
		"description": card.Description,
		"column_id":   card.ColumnID,
		"funnel_type": card.FunnelType,
		"value":       card.Value,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/analyze", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analyzer error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
