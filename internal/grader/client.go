// Package grader wraps the external AI scoring service. The core never
// trusts its payloads: every response goes through Payload validation before
// a score is written anywhere.
package grader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Result is a validated grading outcome. All score fields are guaranteed
// present, finite and within [0, 100].
type Result struct {
	Completeness float64
	Accuracy     float64
	Effort       float64
	OverallScore float64
	Feedback     string
}

// Payload is the raw wire shape from the grader (HTTP response or callback
// body). Pointer fields keep "absent" distinguishable from a real zero.
type Payload struct {
	Completeness *float64 `json:"completeness"`
	Accuracy     *float64 `json:"accuracy"`
	Effort       *float64 `json:"effort"`
	OverallScore *float64 `json:"overall_score"`
	Feedback     string   `json:"feedback"`
}

// Validate rejects payloads with missing, NaN, infinite or out-of-range
// scores. A genuine zero passes; an absent score never turns into one.
func (p Payload) Validate() (*Result, error) {
	scores := map[string]*float64{
		"completeness":  p.Completeness,
		"accuracy":      p.Accuracy,
		"effort":        p.Effort,
		"overall_score": p.OverallScore,
	}
	for name, v := range scores {
		if v == nil {
			return nil, fmt.Errorf("grading payload missing %s", name)
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, fmt.Errorf("grading payload has non-finite %s", name)
		}
		if *v < 0 || *v > 100 {
			return nil, fmt.Errorf("grading payload %s out of range: %v", name, *v)
		}
	}
	return &Result{
		Completeness: *p.Completeness,
		Accuracy:     *p.Accuracy,
		Effort:       *p.Effort,
		OverallScore: *p.OverallScore,
		Feedback:     p.Feedback,
	}, nil
}

// Client calls the AI grading microservice.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip short-circuits with a canned result for local
// development without the grading service.
func New(baseURL, apiKey string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 60 * time.Second, // scoring a multi-image submission is slow
		},
	}
}

// Grade submits image payloads for scoring and returns a validated result.
func (c *Client) Grade(ctx context.Context, submissionID string, images [][]byte) (*Result, error) {
	if c.Skip {
		return &Result{
			Completeness: 80,
			Accuracy:     75,
			Effort:       90,
			OverallScore: 81,
			Feedback:     "mock grading result",
		}, nil
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to grade")
	}

	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img))
	}
	body, _ := json.Marshal(map[string]interface{}{
		"submission_id": submissionID,
		"images":        encoded,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/grade", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("grader error %s: %s", resp.Status, string(bodyBytes))
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode grader response: %w", err)
	}
	return payload.Validate()
}

// Health checks grader availability.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("grader unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("grader unhealthy: %s", resp.Status)
	}
	return nil
}
