package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/engine"
	"github.com/stylehaus/outfit-assistant/internal/model"
)

type stubEngine struct {
	analyzeResult *engine.AnalyzeResult
	analyzeErr    error
	outfit        *model.EventOutfit
	outfitErr     error
	searchResults []model.SearchResult
	searchErr     error
	summary       model.InventorySummary

	lastQuery  string
	lastGender model.Gender
	lastEvent  string
}

func (s *stubEngine) AnalyzeImage(_ context.Context, _ []byte) (*engine.AnalyzeResult, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return s.analyzeResult, nil
}

func (s *stubEngine) EventOutfit(_ context.Context, event string, gender model.Gender, _ string) (*model.EventOutfit, error) {
	s.lastEvent = event
	s.lastGender = gender
	if s.outfitErr != nil {
		return nil, s.outfitErr
	}
	return s.outfit, nil
}

func (s *stubEngine) Search(_ context.Context, query string, gender model.Gender) ([]model.SearchResult, error) {
	s.lastQuery = query
	s.lastGender = gender
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResults, nil
}

func (s *stubEngine) Inventory() (model.InventorySummary, error) {
	return s.summary, nil
}

type stubImages map[int]string

func (s stubImages) ImagePath(id int) (string, bool) {
	path, ok := s[id]
	return path, ok
}

func newTestRouter(t *testing.T, eng *stubEngine, images stubImages) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(eng, images, "gpt-4o-mini", logger), logger)
}

func multipartImage(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "upload.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("returns the analysis result", func(t *testing.T) {
		verified := true
		confidence := 92
		eng := &stubEngine{
			analyzeResult: &engine.AnalyzeResult{
				UploadedImage: "data:image/jpeg;base64,dXBsb2Fk",
				Analysis:      model.Analysis{Category: "Tshirts", Gender: model.GenderWomen},
				MatchingItems: []model.VerifiedMatch{{
					ID:         11,
					Name:       "White Canvas Sneakers",
					Verified:   &verified,
					Confidence: &confidence,
					ImagePath:  "/api/image/11",
				}},
				TotalItemsSearched: 2,
			},
		}
		router := newTestRouter(t, eng, nil)

		body, contentType := multipartImage(t, "image", []byte("jpeg-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Contains(t, got, "uploaded_image")
		assert.Contains(t, got, "analysis")
		assert.Contains(t, got, "matching_items")
		assert.Contains(t, got, "total_items_searched")

		var items []map[string]any
		require.NoError(t, json.Unmarshal(got["matching_items"], &items))
		require.Len(t, items, 1)
		assert.Equal(t, true, items[0]["match_verified"])
		assert.Equal(t, float64(92), items[0]["match_confidence"])
	})

	t.Run("missing file is a 400", func(t *testing.T) {
		router := newTestRouter(t, &stubEngine{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(""))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No image file provided")
	})

	t.Run("malformed model output is reported distinctly", func(t *testing.T) {
		eng := &stubEngine{analyzeErr: common.ErrMalformedResponse}
		router := newTestRouter(t, eng, nil)

		body, contentType := multipartImage(t, "image", []byte("jpeg-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to parse image analysis")
	})
}

func TestEventOutfitEndpoint(t *testing.T) {
	t.Run("generates an outfit", func(t *testing.T) {
		eng := &stubEngine{outfit: &model.EventOutfit{
			OutfitItems:    []string{"Black Dress", "Gold Heels", "Pearl Clutch"},
			ColorPalette:   "Black and Gold",
			FormalityLevel: "formal",
		}}
		router := newTestRouter(t, eng, nil)

		payload := `{"event": "gala dinner", "gender": "women", "style_preferences": "elegant"}`
		req := httptest.NewRequest(http.MethodPost, "/api/event-outfit", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gala dinner", eng.lastEvent)
		assert.Equal(t, model.GenderWomen, eng.lastGender)
		assert.Contains(t, rec.Body.String(), "outfit_items")
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		router := newTestRouter(t, &stubEngine{}, nil)

		for _, payload := range []string{
			`{"gender": "women"}`,
			`{"event": "gala dinner"}`,
			`not-json`,
		} {
			req := httptest.NewRequest(http.MethodPost, "/api/event-outfit", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %s", payload)
		}
	})

	t.Run("unknown gender is a 400", func(t *testing.T) {
		router := newTestRouter(t, &stubEngine{}, nil)

		payload := `{"event": "gala dinner", "gender": "martian"}`
		req := httptest.NewRequest(http.MethodPost, "/api/event-outfit", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("returns results with the echoed query", func(t *testing.T) {
		eng := &stubEngine{searchResults: []model.SearchResult{
			{ID: 11, Name: "White Canvas Sneakers", Similarity: 0.91, ImagePath: "/api/image/11"},
		}}
		router := newTestRouter(t, eng, nil)

		payload := `{"query": "white sneakers", "gender": "women"}`
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "white sneakers", eng.lastQuery)
		assert.Equal(t, model.GenderWomen, eng.lastGender)

		var got struct {
			Query   string               `json:"query"`
			Results []model.SearchResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "white sneakers", got.Query)
		require.Len(t, got.Results, 1)
		assert.Equal(t, 11, got.Results[0].ID)
	})

	t.Run("gender is optional", func(t *testing.T) {
		eng := &stubEngine{}
		router := newTestRouter(t, eng, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query": "red scarf"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.Gender(""), eng.lastGender)
	})

	t.Run("missing query is a 400", func(t *testing.T) {
		router := newTestRouter(t, &stubEngine{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Query is required")
	})
}

func TestInventoryEndpoint(t *testing.T) {
	eng := &stubEngine{summary: model.InventorySummary{
		TotalItems: 4,
		Categories: map[string]int{"Casual Shoes": 1},
		Genders:    map[string]int{"Women": 2},
	}}
	router := newTestRouter(t, eng, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.InventorySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4, got.TotalItems)
}

func TestImageEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "11.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))
	router := newTestRouter(t, &stubEngine{}, stubImages{11: path})

	t.Run("serves the file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/image/11", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jpeg-bytes", rec.Body.String())
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/image/999", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/image/sneakers", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got["status"])
	assert.Equal(t, "gpt-4o-mini", got["model"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, &stubEngine{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
