package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/logging"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultMaxTokens = 1000

	anthropicVersion = "2023-06-01"
	maxErrorBody     = 2048
)

// AnthropicConfig configures AnthropicClient. Timeout bounds every call.
type AnthropicConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicClient implements Client over the Anthropic Messages API with
// temperature 0.
type AnthropicClient struct {
	cfg      AnthropicConfig
	http     *http.Client
	logger   logging.Logger
	observer Observer
}

func NewAnthropicClient(cfg AnthropicConfig, httpClient *http.Client, observer Observer, logger logging.Logger) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &AnthropicClient{
		cfg:      cfg,
		http:     httpClient,
		logger:   logger.With("module", "synthesis"),
		observer: observer,
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// complete sends one prompt and returns the trimmed text of the first text
// block. Deadline expiry maps to common.ErrSynthesisTimeout, every other
// transport or API failure to common.ErrSynthesisFailed.
func (c *AnthropicClient) complete(ctx context.Context, kind string, p prompt) (text string, err error) {
	started := time.Now()
	defer func() { c.observer.ObserveSynthesis(kind, time.Since(started), err) }()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(messageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    p.system,
		Messages:  []message{{Role: "user", Content: p.user}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s call: %v", common.ErrSynthesisTimeout, kind, err)
		}
		return "", fmt.Errorf("%w: request failed: %v", common.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s call: %v", common.ErrSynthesisTimeout, kind, err)
		}
		return "", fmt.Errorf("%w: failed to read response: %v", common.ErrSynthesisFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := raw
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.logger.Warn(ctx, "synthesis API error", "kind", kind, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: API error (status %d): %s", common.ErrSynthesisFailed, resp.StatusCode, snippet)
	}

	var decoded messageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: failed to parse API response: %v", common.ErrSynthesisFailed, err)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", common.ErrMalformedSynthesis)
}

func (c *AnthropicClient) SynthesizeAchievement(ctx context.Context, in models.SynthesisInput) (*models.SynthesisResult, error) {
	text, err := c.complete(ctx, KindAchievement, achievementPrompt(in))
	if err != nil {
		return nil, err
	}
	res, err := ParseAchievement(text)
	if err != nil {
		// Log the size only, never the text.
		c.logger.Warn(ctx, "unparseable achievement synthesis", "error", err, "response_bytes", len(text))
		return nil, err
	}
	return res, nil
}

func (c *AnthropicClient) SynthesizeAchievementName(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, KindAchievementName, achievementNamePrompt(text))
}

func (c *AnthropicClient) SynthesizeEntrySummary(ctx context.Context, achievements []models.AchievementDigest) (string, error) {
	return c.complete(ctx, KindEntrySummary, entrySummaryPrompt(achievements))
}

func (c *AnthropicClient) SynthesizeProjectSummary(ctx context.Context, name string, description *string, achievements []models.AchievementDigest) (string, error) {
	return c.complete(ctx, KindProjectSummary, projectSummaryPrompt(name, description, achievements))
}

func (c *AnthropicClient) SynthesizeRecentFocus(ctx context.Context, entries []models.EntryDigest) (string, error) {
	return c.complete(ctx, KindRecentFocus, recentFocusPrompt(entries))
}
