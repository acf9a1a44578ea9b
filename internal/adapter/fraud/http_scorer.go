package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// HTTPScorer calls the external fraud model over HTTP.
// Request: {"features": {...}}. Response: {"isFraud": 0|1, "probability": float}.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPScorer creates a scorer posting to endpoint. A nil client uses http.DefaultClient.
// Timeouts come from the caller's context.
func NewHTTPScorer(endpoint string, client *http.Client) *HTTPScorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPScorer{endpoint: endpoint, client: client}
}

type scoreRequest struct {
	Features domain.FraudFeatures `json:"features"`
}

type scoreResponse struct {
	IsFraud     int      `json:"isFraud"`
	Probability *float64 `json:"probability"`
}

// Score implements domain.FraudScorer
func (s *HTTPScorer) Score(ctx context.Context, features domain.FraudFeatures) (*domain.FraudScore, error) {
	body, err := json.Marshal(scoreRequest{Features: features})
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("scorer returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode scorer response: %w", err)
	}

	score := &domain.FraudScore{IsFraud: out.IsFraud != 0}
	if out.Probability != nil {
		score.Probability = *out.Probability
	}
	return score, nil
}

var _ domain.FraudScorer = (*HTTPScorer)(nil)
