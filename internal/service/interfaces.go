// Package service defines the contracts between the pipelines and their
// external collaborators.
package service

import (
	"context"
	"time"

	"github.com/stylehaus/outfit-assistant/internal/model"
)

// Embedder produces one embedding vector per input text, order-preserving,
// in a single batched call.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Vision wraps the generative vision/text capabilities of the hosted model.
type Vision interface {
	// DescribeImage analyzes a base64-encoded clothing image and proposes
	// complementary items. The category in the result is constrained to the
	// supplied set by the prompt.
	DescribeImage(ctx context.Context, imageB64 string, categories []string) (model.Analysis, error)

	// ProposeOutfit generates a three-piece outfit for an event.
	ProposeOutfit(ctx context.Context, event string, gender model.Gender, stylePreferences string) (model.EventOutfit, error)

	// CompareImages judges whether two base64-encoded clothing images work
	// together in an outfit.
	CompareImages(ctx context.Context, referenceB64, candidateB64 string) (model.Comparison, error)
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// ParsePolicy controls how a pipeline reacts to malformed model output.
type ParsePolicy string

const (
	// ParseStrict propagates parse failures to the caller.
	ParseStrict ParsePolicy = "strict"
	// ParseLenient degrades to a capability-specific fixed fallback.
	ParseLenient ParsePolicy = "lenient"
)

// Policies carries the parse policy for the capabilities that have a fixed
// fallback to degrade to. Image analysis is not among them: without a usable
// analysis there is nothing to match, so it always fails hard.
type Policies struct {
	EventOutfit ParsePolicy
	Comparison  ParsePolicy
}

// DefaultPolicies returns the production policy set.
func DefaultPolicies() Policies {
	return Policies{
		EventOutfit: ParseLenient,
		Comparison:  ParseLenient,
	}
}
