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

// TranscriberClient calls the external audio transcription collaborator.
type TranscriberClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTranscriberClient(baseURL string) *TranscriberClient {
	return &TranscriberClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// TranscribeOrPlaceholder returns the transcription of an audio message, or
// the [Áudio] placeholder when the transcriber is not configured, the media
// URL is missing, or the call fails. Transcription is enrichment only.
func (t *TranscriberClient) TranscribeOrPlaceholder(ctx context.Context, audioURL string) string {
	if t == nil || t.BaseURL == "" || audioURL == "" {
		return AudioPlaceholder
	}

	text, err := t.transcribe(ctx, audioURL)
	if err != nil || text == "" {
		return AudioPlaceholder
	}
	return fmt.Sprintf("%s %s", AudioPlaceholder, text)
}

func (t *TranscriberClient) transcribe(ctx context.Context, audioURL string) (string, error) {
	b, _ := json.Marshal(map[string]string{"url": audioURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/transcribe", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcriber error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
