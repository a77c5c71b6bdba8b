package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/engine"
	"github.com/stylehaus/outfit-assistant/internal/model"
)

// Recommender is the engine surface the HTTP handlers depend on.
type Recommender interface {
	AnalyzeImage(ctx context.Context, image []byte) (*engine.AnalyzeResult, error)
	EventOutfit(ctx context.Context, event string, gender model.Gender, stylePreferences string) (*model.EventOutfit, error)
	Search(ctx context.Context, query string, gender model.Gender) ([]model.SearchResult, error)
	Inventory() (model.InventorySummary, error)
}

// ImageLocator resolves a catalog id to an image file on disk.
type ImageLocator interface {
	ImagePath(id int) (string, bool)
}

// Handler holds the dependencies shared by all HTTP endpoints.
type Handler struct {
	engine    Recommender
	images    ImageLocator
	logger    *slog.Logger
	modelName string
}

// NewHandler creates the endpoint handler set.
func NewHandler(rec Recommender, images ImageLocator, modelName string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:    rec,
		images:    images,
		modelName: modelName,
		logger:    logger,
	}
}

type eventRequest struct {
	Event            string `json:"event"`
	Gender           string `json:"gender"`
	StylePreferences string `json:"style_preferences"`
}

type searchRequest struct {
	Query  string `json:"query"`
	Gender string `json:"gender"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		respondError(w, http.StatusBadRequest, "No image file provided")
		return
	}

	result, err := h.engine.AnalyzeImage(r.Context(), image)
	if err != nil {
		h.logger.Error("image analysis failed", "error", err)
		if errors.Is(err, common.ErrMalformedResponse) {
			respondError(w, http.StatusInternalServerError, "Failed to parse image analysis")
			return
		}
		respondError(w, http.StatusInternalServerError, "Image analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) eventOutfit(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Event == "" || req.Gender == "" {
		respondError(w, http.StatusBadRequest, "Event and gender are required")
		return
	}

	gender, ok := model.ParseGender(req.Gender)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown gender value")
		return
	}

	outfit, err := h.engine.EventOutfit(r.Context(), req.Event, gender, req.StylePreferences)
	if err != nil {
		h.logger.Error("event outfit generation failed", "event", req.Event, "error", err)
		respondError(w, http.StatusInternalServerError, "Outfit generation failed")
		return
	}

	respondJSON(w, http.StatusOK, outfit)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "Query is required")
		return
	}

	var gender model.Gender
	if req.Gender != "" {
		parsed, ok := model.ParseGender(req.Gender)
		if !ok {
			respondError(w, http.StatusBadRequest, "Unknown gender value")
			return
		}
		gender = parsed
	}

	results, err := h.engine.Search(r.Context(), req.Query, gender)
	if err != nil {
		h.logger.Error("search failed", "query", req.Query, "error", err)
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Inventory()
	if err != nil {
		h.logger.Error("inventory summary failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) image(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	path, ok := h.images.ImagePath(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}

	http.ServeFile(w, r, path)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  h.modelName,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
