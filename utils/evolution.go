package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EvolutionClient is a minimal client for the Evolution API gateway. It
// covers the instance lifecycle calls the CRM needs: create, connect (QR),
// logout, delete and webhook registration.
type EvolutionClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewEvolutionClient(baseURL, apiKey string) *EvolutionClient {
	return &EvolutionClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a gateway endpoint is configured.
func (e *EvolutionClient) Enabled() bool {
	return e != nil && e.BaseURL != ""
}

// CreateInstance registers a named instance on the gateway.
func (e *EvolutionClient) CreateInstance(ctx context.Context, name, token string) error {
	body := map[string]interface{}{
		"instanceName": name,
		"token":        token,
		"qrcode":       true,
		"integration":  "WHATSAPP-BAILEYS",
	}
	return e.do(ctx, http.MethodPost, "/instance/create", body, nil)
}

// SetWebhook points the instance at our inbound webhook endpoint.
func (e *EvolutionClient) SetWebhook(ctx context.Context, name, webhookURL string) error {
	body := map[string]interface{}{
		"webhook": map[string]interface{}{
			"url":     webhookURL,
			"enabled": true,
			"events":  []string{"MESSAGES_UPSERT", "MESSAGES_UPDATE", "CONNECTION_UPDATE"},
		},
	}
	return e.do(ctx, http.MethodPost, "/webhook/set/"+name, body, nil)
}

// ConnectResult carries the pairing data returned by a connect call.
type ConnectResult struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
	Base64      string `json:"base64"`
}

// Connect starts the pairing flow and returns the QR payload.
func (e *EvolutionClient) Connect(ctx context.Context, name string) (*ConnectResult, error) {
	var out ConnectResult
	if err := e.do(ctx, http.MethodGet, "/instance/connect/"+name, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout drops the gateway session without deleting the instance.
func (e *EvolutionClient) Logout(ctx context.Context, name string) error {
	return e.do(ctx, http.MethodDelete, "/instance/logout/"+name, nil, nil)
}

// DeleteInstance removes the instance from the gateway.
func (e *EvolutionClient) DeleteInstance(ctx context.Context, name string) error {
	return e.do(ctx, http.MethodDelete, "/instance/delete/"+name, nil, nil)
}

func (e *EvolutionClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if !e.Enabled() {
		return fmt.Errorf("evolution gateway not configured")
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", e.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("evolution api error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}
