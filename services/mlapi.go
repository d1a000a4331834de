// ABOUTME: Client for the prompt analysis ML service
// ABOUTME: Sends prompt text and normalizes the classification verdict

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artspark/gallery-bff/models"
)

// MLClient talks to the prompt classification service. It is optional
// infrastructure: when no URL is configured the client is nil and the
// analyze endpoint reports unavailability.
type MLClient struct {
	baseURL string
	client  *http.Client
}

func NewMLClient(baseURL string, timeout time.Duration) *MLClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MLClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze classifies a generation prompt.
func (m *MLClient) Analyze(ctx context.Context, text string) (models.PromptAnalysis, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return models.PromptAnalysis{}, fmt.Errorf("failed to marshal analyze payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/analyze", bytes.NewReader(payload))
	if err != nil {
		return models.PromptAnalysis{}, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return models.PromptAnalysis{}, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.PromptAnalysis{}, classifyTransport(err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.PromptAnalysis{}, classifyStatus(resp.StatusCode, body)
	}

	return NormalizePromptAnalysis(body)
}
