// Package scoring calls the external danger analysis service. Every failure
// mode degrades to a neutral score so complaint creation never blocks on it.
package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"janmitra/internal/config"
	"janmitra/internal/logging"
	"janmitra/internal/metrics"
)

const (
	FallbackScore     = 5.0
	FallbackRiskLevel = "medium"
)

type Request struct {
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Location    Location `json:"location"`
	MediaType   string   `json:"media_type,omitempty"`
	MediaCount  int      `json:"media_count"`
	Language    string   `json:"language,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Area      string  `json:"area,omitempty"`
}

type Result struct {
	DangerScore float64 `json:"danger_score"`
	RiskLevel   string  `json:"risk_level"`
	// Fallback is set when the service could not be reached or answered badly.
	Fallback bool `json:"-"`
}

type Scorer interface {
	Score(ctx context.Context, req Request) Result
}

type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[Result]
}

func NewClient(cfg *config.Config) *Client {
	threshold := cfg.AIFailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        "danger-scorer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.AIBreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.ScorerBreakerState.Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.AIServiceURL, "/"),
		apiKey:  cfg.AIServiceAPIKey,
		timeout: cfg.AITimeout,
		http:    &http.Client{},
		cb:      cb,
	}
}

// Score never fails; an unreachable service, a bad payload or an open
// breaker all yield the fallback result.
func (c *Client) Score(ctx context.Context, req Request) Result {
	if c.baseURL == "" {
		metrics.ScorerRequests.WithLabelValues("fallback").Inc()
		return fallback()
	}

	result, err := c.cb.Execute(func() (Result, error) {
		return c.analyze(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("danger scorer unavailable, using fallback score")
		} else {
			logging.Warn().Err(err).Msg("danger scorer request failed, using fallback score")
		}
		metrics.ScorerRequests.WithLabelValues("fallback").Inc()
		return fallback()
	}

	metrics.ScorerRequests.WithLabelValues("ok").Inc()
	return result
}

func (c *Client) analyze(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/analyze", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("call scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{}, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode scorer response: %w", err)
	}
	return normalize(result), nil
}

// normalize clamps the score to 0..10 and fills a missing risk level.
func normalize(r Result) Result {
	if r.DangerScore < 0 {
		r.DangerScore = 0
	}
	if r.DangerScore > 10 {
		r.DangerScore = 10
	}
	r.RiskLevel = strings.ToLower(strings.TrimSpace(r.RiskLevel))
	if r.RiskLevel == "" {
		r.RiskLevel = FallbackRiskLevel
	}
	return r
}

func fallback() Result {
	return Result{DangerScore: FallbackScore, RiskLevel: FallbackRiskLevel, Fallback: true}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
