// Package llm implements the OpenAI-backed embedding and vision clients.
package llm

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/service"
)

const (
	defaultBaseURL        = "https://api.openai.com"
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-large"
	defaultMaxTokens      = 500
)

// Config holds configuration for the OpenAI client.
type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	BaseURL        string
	OutfitPolicy   service.ParsePolicy
	Retry          service.RetryOptions
	Temperature    float64
	MaxTokens      int
}

// Client talks to the OpenAI chat-completions and embeddings endpoints. It
// implements service.Embedder and service.Vision. The protocol is hand-rolled
// on net/http; only the two endpoints this service needs are covered.
type Client struct {
	httpClient     *http.Client
	logger         *slog.Logger
	apiKey         string
	model          string
	embeddingModel string
	baseURL        string
	outfitPolicy   service.ParsePolicy
	retryOpts      service.RetryOptions
	temperature    float64
	maxTokens      int
}

// NewClient creates a new OpenAI API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewUserError("OpenAI API key is required", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	outfitPolicy := cfg.OutfitPolicy
	if outfitPolicy == "" {
		outfitPolicy = service.ParseLenient
	}

	retryOpts := cfg.Retry
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 10
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}
	if retryOpts.MaxDelay == 0 {
		retryOpts.MaxDelay = 40 * time.Second
	}
	if retryOpts.Multiplier == 0 {
		retryOpts.Multiplier = 2.0
	}
	if retryOpts.Jitter == 0 {
		retryOpts.Jitter = 0.5
	}

	return &Client{
		apiKey:         cfg.APIKey,
		model:          model,
		embeddingModel: embeddingModel,
		baseURL:        baseURL,
		temperature:    cfg.Temperature,
		maxTokens:      maxTokens,
		outfitPolicy:   outfitPolicy,
		retryOpts:      retryOpts,
		logger:         logger,
		httpClient: &http.Client{
			// Vision payloads carry base64 images; give them more headroom
			// than a text-only call would need.
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.model
}
