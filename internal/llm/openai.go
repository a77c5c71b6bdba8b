package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/model"
	"github.com/stylehaus/outfit-assistant/internal/service"
)

// chatMessage is one message in a chat-completions request. Content is
// either a plain string or a slice of contentPart for multimodal input.
type chatMessage struct {
	Content any    `json:"content"`
	Role    string `json:"role"`
}

type contentPart struct {
	ImageURL *imageURL `json:"image_url,omitempty"`
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// dataURL wraps a base64 JPEG payload the way the vision API expects it.
func dataURL(imageB64 string) string {
	return "data:image/jpeg;base64," + imageB64
}

// post sends a JSON request and returns the raw response body. Non-2xx
// statuses become errors; 4xx other than 429 are marked non-retryable so the
// retry helper fails fast on bad requests.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", common.ErrRateLimit, string(body))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	default:
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}
}

// Embed returns one embedding per input text, order-preserving, in a single
// batched call. Transient failures are retried with exponential backoff and
// jitter up to the configured attempt budget.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float64
	err := common.WithRetry(ctx, func() error {
		body, err := c.post(ctx, "/v1/embeddings", embeddingsRequest{
			Model: c.embeddingModel,
			Input: texts,
		})
		if err != nil {
			return err
		}

		// A structurally bad success response will not get better on a
		// retry; fail fast like a 4xx status.
		var response embeddingsResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("failed to parse embeddings response: %w", err),
				Retryable: false,
			}
		}
		if len(response.Data) != len(texts) {
			return &common.RetryableError{
				Err:       fmt.Errorf("expected %d embeddings, got %d", len(texts), len(response.Data)),
				Retryable: false,
			}
		}

		// The API reports each vector's input position; order by it rather
		// than trusting response order.
		sort.Slice(response.Data, func(i, j int) bool {
			return response.Data[i].Index < response.Data[j].Index
		})

		vectors = make([][]float64, len(response.Data))
		for i, d := range response.Data {
			vectors[i] = d.Embedding
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	return vectors, nil
}

// chat runs one chat-completions call and returns the first choice's content.
func (c *Client) chat(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	body, err := c.post(ctx, "/v1/chat/completions", chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

// DescribeImage analyzes a clothing image and proposes complementary items.
// Malformed model output propagates as common.ErrMalformedResponse; there is
// no best-effort recovery on this path.
func (c *Client) DescribeImage(ctx context.Context, imageB64 string, categories []string) (model.Analysis, error) {
	content, err := c.chat(ctx, []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: describeImagePrompt(categories)},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL(imageB64)}},
		},
	}}, c.maxTokens)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("image analysis failed: %w", err)
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		return model.Analysis{}, err
	}

	c.logger.Debug("image analyzed",
		"category", analysis.Category,
		"gender", analysis.Gender,
		"suggestions", len(analysis.Items))

	return analysis, nil
}

// ProposeOutfit generates a three-piece outfit for an event. Under the
// lenient policy malformed model output degrades to a fixed fallback outfit
// instead of failing the request.
func (c *Client) ProposeOutfit(ctx context.Context, event string, gender model.Gender, stylePreferences string) (model.EventOutfit, error) {
	content, err := c.chat(ctx, []chatMessage{
		{Role: "system", Content: stylistSystemPrompt},
		{Role: "user", Content: proposeOutfitPrompt(event, gender, stylePreferences)},
	}, 400)
	if err != nil {
		return model.EventOutfit{}, fmt.Errorf("outfit generation failed: %w", err)
	}

	outfit, err := parseOutfit(content)
	if err != nil {
		if c.outfitPolicy == service.ParseStrict {
			return model.EventOutfit{}, err
		}
		c.logger.Warn("Falling back to default outfit", "error", err)
		return fallbackOutfit(), nil
	}

	return outfit, nil
}

// CompareImages judges whether two clothing images work together. Parse
// failures propagate; the verification pipeline decides whether to degrade.
func (c *Client) CompareImages(ctx context.Context, referenceB64, candidateB64 string) (model.Comparison, error) {
	content, err := c.chat(ctx, []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: compareImagesPrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL(referenceB64)}},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL(candidateB64)}},
		},
	}}, 200)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("image comparison failed: %w", err)
	}

	return parseComparison(content)
}
