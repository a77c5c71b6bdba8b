package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/stylehaus/outfit-assistant/internal/model"
)

// MockEmbedder is a test implementation of service.Embedder. It returns
// canned vectors keyed by input text and records every call.
type MockEmbedder struct {
	Vectors map[string][]float64
	Err     error
	Calls   [][]string
	mu      sync.Mutex
}

// NewMockEmbedder creates a mock embedder with the given text-to-vector table.
func NewMockEmbedder(vectors map[string][]float64) *MockEmbedder {
	return &MockEmbedder{Vectors: vectors}
}

// Embed returns one canned vector per text, mirroring the batched contract.
func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, append([]string(nil), texts...))
	if m.Err != nil {
		return nil, m.Err
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector, ok := m.Vectors[text]
		if !ok {
			return nil, fmt.Errorf("no canned vector for %q", text)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// CallCount returns the number of Embed invocations.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockVision is a test implementation of service.Vision with fixed responses
// and per-capability error injection.
type MockVision struct {
	DescribeErr   error
	ProposeErr    error
	CompareErr    error
	Analysis      model.Analysis
	Outfit        model.EventOutfit
	Comparison    model.Comparison
	CompareCalls  int
	DescribeCalls int
	ProposeCalls  int
	mu            sync.Mutex
}

// DescribeImage returns the canned analysis.
func (m *MockVision) DescribeImage(_ context.Context, _ string, _ []string) (model.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeCalls++
	if m.DescribeErr != nil {
		return model.Analysis{}, m.DescribeErr
	}
	return m.Analysis, nil
}

// ProposeOutfit returns the canned outfit.
func (m *MockVision) ProposeOutfit(_ context.Context, _ string, _ model.Gender, _ string) (model.EventOutfit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProposeCalls++
	if m.ProposeErr != nil {
		return model.EventOutfit{}, m.ProposeErr
	}
	return m.Outfit, nil
}

// CompareImages returns the canned comparison verdict.
func (m *MockVision) CompareImages(_ context.Context, _, _ string) (model.Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompareCalls++
	if m.CompareErr != nil {
		return model.Comparison{}, m.CompareErr
	}
	return m.Comparison, nil
}
