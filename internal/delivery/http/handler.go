package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gemgem/backend/internal/domain"
	"github.com/gemgem/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparison *usecase.ComparisonService
	corpus     *usecase.CorpusService
}

// NewHandler creates a new HTTP handler
func NewHandler(comparison *usecase.ComparisonService, corpus *usecase.CorpusService) *Handler {
	return &Handler{
		comparison: comparison,
		corpus:     corpus,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"service": "gemgem-backend",
		"version": "1.0.0",
	}
	if h.comparison != nil {
		if snapshot, err := h.comparison.Snapshot(); err == nil {
			status["corpusVersion"] = snapshot.Version
			status["competitors"] = len(snapshot.Competitors)
			status["targets"] = len(snapshot.Targets)
		} else {
			status["corpusVersion"] = nil
		}
	}
	c.JSON(http.StatusOK, status)
}

// Compare handles GET /api/v1/compare/:listingId
func (h *Handler) Compare(c *gin.Context) {
	listingID := c.Param("listingId")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing ID is required"})
		return
	}

	result, err := h.comparison.Compare(c.Request.Context(), listingID)
	if err != nil {
		h.writeError(c, listingID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Estimate handles GET /api/v1/listings/:listingId/estimate
func (h *Handler) Estimate(c *gin.Context) {
	listingID := c.Param("listingId")

	breakdown, err := h.comparison.Estimate(c.Request.Context(), listingID)
	if err != nil {
		h.writeError(c, listingID, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// Similar handles GET /api/v1/listings/:listingId/similar?top_n=N
func (h *Handler) Similar(c *gin.Context) {
	listingID := c.Param("listingId")

	topN := 0
	if raw := c.Query("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_n must be a positive integer"})
			return
		}
		topN = parsed
	}

	result, err := h.comparison.FindSimilar(c.Request.Context(), listingID, topN)
	if err != nil {
		h.writeError(c, listingID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshCorpus handles POST /api/v1/corpus/refresh
func (h *Handler) RefreshCorpus(c *gin.Context) {
	snapshot, err := h.corpus.Refresh(c.Request.Context())
	if err != nil {
		log.Printf("[HTTP] corpus refresh failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "corpus refresh failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"corpusVersion": snapshot.Version,
		"targets":       len(snapshot.Targets),
		"competitors":   len(snapshot.Competitors),
	})
}

// writeError maps domain errors to HTTP responses
func (h *Handler) writeError(c *gin.Context, listingID string, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no listing found with ID " + listingID})
	case errors.Is(err, domain.ErrCorpusNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "corpus is not loaded yet"})
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "embedding service unavailable"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] request for %s failed: %v", listingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
