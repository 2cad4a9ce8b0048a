package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gemgem/backend/config"
	"github.com/gemgem/backend/internal/domain"
	"github.com/gemgem/backend/internal/infrastructure/corpus"
	"github.com/gemgem/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

type stubSpot struct{ perGram float64 }

func (s stubSpot) PricePerGram(_ context.Context, _ float64) float64 { return s.perGram }

type stubEmbedder struct{ err error }

func (s stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

type stubLoader struct{ err error }

func (s stubLoader) LoadTargets(_ context.Context) ([]domain.ProductRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ProductRecord{{ListingID: "g1", Name: "Solitaire Ring", RawPrice: "$1,200"}}, nil
}

func (s stubLoader) LoadCompetitors(_ context.Context) ([]domain.ProductRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ProductRecord{{Name: "Halo Ring", RawPrice: "$1,500"}}, nil
}

func testPrice(v float64) *float64 { return &v }

func testSnapshot() *domain.CorpusSnapshot {
	targets := []domain.NormalizedRecord{
		{
			ProductRecord: domain.ProductRecord{ListingID: "g1", Name: "Solitaire Ring"},
			CleanPrice:    testPrice(1200),
			EmbeddingText: "target",
		},
	}
	competitors := []domain.NormalizedRecord{
		{ProductRecord: domain.ProductRecord{ListingID: "k1"}, CleanPrice: testPrice(1000), EmbeddingText: "a"},
		{ProductRecord: domain.ProductRecord{ListingID: "k2"}, CleanPrice: testPrice(2000), EmbeddingText: "b"},
	}
	embeddings := [][]float32{{2, 0}, {1, 1}}
	return domain.NewCorpusSnapshot(1, targets, competitors, embeddings)
}

// setupTestRouter wires a full in-process stack around stub providers
func setupTestRouter(embedder domain.Embedder, snapshot *domain.CorpusSnapshot) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	store := corpus.NewStore()
	if snapshot != nil {
		store.Swap(snapshot)
	}

	estimator := usecase.NewEstimator(stubSpot{perGram: 60}, usecase.EstimatorConfig{})
	matcher := usecase.NewMatcher(embedder, usecase.MatcherConfig{})
	comparison := usecase.NewComparisonService(store, estimator, matcher, nil)
	corpusService := usecase.NewCorpusService(stubLoader{}, embedder, usecase.NewNormalizer(1000), store)

	return SetupRouter(cfg, NewHandler(comparison, corpusService))
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("reports corpus stats when loaded", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, testSnapshot())

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "gemgem-backend" {
			t.Errorf("service = %v, want gemgem-backend", response["service"])
		}
		if response["competitors"] != float64(2) {
			t.Errorf("competitors = %v, want 2", response["competitors"])
		}
	})

	t.Run("healthy even before the corpus loads", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestCompareEndpoint(t *testing.T) {
	t.Run("returns a full comparison", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, testSnapshot())

		req, _ := http.NewRequest("GET", "/api/v1/compare/g1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.ComparisonResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if result.ListingID != "g1" {
			t.Errorf("ListingID = %s, want g1", result.ListingID)
		}
		if result.TargetPrice != 1200 {
			t.Errorf("TargetPrice = %v, want 1200", result.TargetPrice)
		}
		if result.CompetitorAvgPrice != 1500 {
			t.Errorf("CompetitorAvgPrice = %v, want 1500", result.CompetitorAvgPrice)
		}
		if result.Savings != 300 {
			t.Errorf("Savings = %v, want 300", result.Savings)
		}
		if len(result.SimilarProducts) != 2 {
			t.Errorf("len(SimilarProducts) = %d, want 2", len(result.SimilarProducts))
		}
	})

	t.Run("unknown listing returns 404", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, testSnapshot())

		req, _ := http.NewRequest("GET", "/api/v1/compare/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("corpus not loaded returns 503", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, nil)

		req, _ := http.NewRequest("GET", "/api/v1/compare/g1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("embedding outage returns 502", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{err: domain.ErrEmbeddingUnavailable}, testSnapshot())

		req, _ := http.NewRequest("GET", "/api/v1/compare/g1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestEstimateEndpoint(t *testing.T) {
	router := setupTestRouter(stubEmbedder{}, testSnapshot())

	t.Run("prices a known listing", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/listings/g1/estimate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var breakdown domain.PriceBreakdown
		if err := json.Unmarshal(w.Body.Bytes(), &breakdown); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if breakdown.ListingID != "g1" {
			t.Errorf("ListingID = %s, want g1", breakdown.ListingID)
		}
	})

	t.Run("unknown listing returns 404", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/listings/missing/estimate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestSimilarEndpoint(t *testing.T) {
	router := setupTestRouter(stubEmbedder{}, testSnapshot())

	t.Run("honors top_n", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/listings/g1/similar?top_n=1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.SimilarityResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(result.Matches) != 1 {
			t.Errorf("len(Matches) = %d, want 1", len(result.Matches))
		}
		if result.Matches[0].Record.ListingID != "k1" {
			t.Errorf("top match = %s, want k1", result.Matches[0].Record.ListingID)
		}
	})

	t.Run("rejects a non-positive top_n", func(t *testing.T) {
		for _, raw := range []string{"0", "-3", "abc"} {
			req, _ := http.NewRequest("GET", "/api/v1/listings/g1/similar?top_n="+raw, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("top_n=%s: Status = %d, want %d", raw, w.Code, http.StatusBadRequest)
			}
		}
	})
}

func TestRefreshCorpusEndpoint(t *testing.T) {
	t.Run("rebuilds the snapshot", func(t *testing.T) {
		router := setupTestRouter(stubEmbedder{}, nil)

		req, _ := http.NewRequest("POST", "/api/v1/corpus/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["corpusVersion"] != float64(1) {
			t.Errorf("corpusVersion = %v, want 1", response["corpusVersion"])
		}
		if response["targets"] != float64(1) {
			t.Errorf("targets = %v, want 1", response["targets"])
		}
	})

	t.Run("failed refresh returns 502", func(t *testing.T) {
		cfg := &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
		store := corpus.NewStore()
		corpusService := usecase.NewCorpusService(stubLoader{err: errors.New("file not found")},
			stubEmbedder{}, usecase.NewNormalizer(1000), store)
		comparison := usecase.NewComparisonService(store,
			usecase.NewEstimator(stubSpot{perGram: 60}, usecase.EstimatorConfig{}),
			usecase.NewMatcher(stubEmbedder{}, usecase.MatcherConfig{}), nil)
		router := SetupRouter(cfg, NewHandler(comparison, corpusService))

		req, _ := http.NewRequest("POST", "/api/v1/corpus/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}
