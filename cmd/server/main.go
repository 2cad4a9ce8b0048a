package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/gemgem/backend/config"
	delivery "github.com/gemgem/backend/internal/delivery/http"
	"github.com/gemgem/backend/internal/infrastructure/cache"
	"github.com/gemgem/backend/internal/infrastructure/corpus"
	"github.com/gemgem/backend/internal/infrastructure/diaglog"
	"github.com/gemgem/backend/internal/infrastructure/embed"
	"github.com/gemgem/backend/internal/infrastructure/metals"
	"github.com/gemgem/backend/internal/usecase"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	memCache := cache.NewMemoryCache()

	quoteClient := metals.NewClient(cfg.Metals.APIKey, cfg.Metals.BaseURL)
	spotProvider := metals.NewProvider(quoteClient, memCache, metals.ProviderConfig{
		FallbackPerGram: cfg.Metals.FallbackPerGram,
		CacheTTL:        cfg.Metals.CacheTTL,
		FetchTimeout:    cfg.Metals.FetchTimeout,
	})

	embedder := embed.NewClient(embed.ClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
		Timeout:    cfg.Embedding.Timeout,
	})

	loader := corpus.NewCSVLoader(cfg.Data.TargetCSV, cfg.Data.CompetitorCSVs)
	store := corpus.NewStore()
	normalizer := usecase.NewNormalizer(cfg.Pricing.MinPrice)

	corpusService := usecase.NewCorpusService(loader, embedder, normalizer, store)

	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	if _, err := corpusService.Refresh(loadCtx); err != nil {
		cancel()
		log.Fatalf("Failed to build initial corpus: %v", err)
	}
	cancel()

	estimator := usecase.NewEstimator(spotProvider, usecase.EstimatorConfig{
		MakingChargePerGram: cfg.Pricing.MakingChargePerGram,
		MarkupPct:           cfg.Pricing.MarkupPct,
		NaturalPerCarat:     cfg.Pricing.NaturalPerCarat,
		LabPerCarat:         cfg.Pricing.LabPerCarat,
		GoldPurity:          cfg.Pricing.GoldPurity,
	})

	matcher := usecase.NewMatcher(embedder, usecase.MatcherConfig{
		TopN:           cfg.Matching.TopN,
		ScoreThreshold: cfg.Matching.ScoreThreshold,
	})

	mismatchLog, err := diaglog.NewWriter(cfg.Diag.MismatchLogPath)
	if err != nil {
		log.Fatalf("Failed to open mismatch log: %v", err)
	}
	defer mismatchLog.Close()

	comparisonService := usecase.NewComparisonService(store, estimator, matcher, mismatchLog)

	handler := delivery.NewHandler(comparisonService, corpusService)
	router := delivery.SetupRouter(cfg, handler)

	log.Printf("Starting GemGem backend on port %s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
