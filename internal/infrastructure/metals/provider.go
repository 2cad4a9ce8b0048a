package metals

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/gemgem/backend/internal/domain"
)

const (
	// TroyOunceGrams converts the quote reference unit to grams
	TroyOunceGrams = 31.1035

	// ReferencePurity is the purity the fallback constant is quoted at (18k)
	ReferencePurity = 0.75

	// DefaultFallbackPerGram is the fixed price per gram served when the
	// quote source is unreachable, expressed at the reference purity
	DefaultFallbackPerGram = 80.0

	quoteCacheKey = "metals:usd_per_ounce"
)

// QuoteClient fetches the USD spot price of one troy ounce of pure gold
type QuoteClient interface {
	FetchUSDPerOunce(ctx context.Context) (float64, error)
}

// ProviderConfig configures the spot price provider
type ProviderConfig struct {
	FallbackPerGram float64
	CacheTTL        time.Duration
	FetchTimeout    time.Duration
}

// Provider implements domain.SpotPriceProvider. Quotes are cached for a
// short TTL; any fetch failure degrades to the fallback constant instead of
// an error, so the estimator never fails solely because the feed is down.
type Provider struct {
	client        QuoteClient
	cache         domain.CacheRepository
	fallback      float64
	cacheTTL      time.Duration
	fetchTimeout  time.Duration
	fallbackCount atomic.Int64
}

// NewProvider creates a spot price provider, applying defaults for zero
// config values
func NewProvider(client QuoteClient, cache domain.CacheRepository, cfg ProviderConfig) *Provider {
	if cfg.FallbackPerGram <= 0 {
		cfg.FallbackPerGram = DefaultFallbackPerGram
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &Provider{
		client:       client,
		cache:        cache,
		fallback:     cfg.FallbackPerGram,
		cacheTTL:     cfg.CacheTTL,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// PricePerGram returns the current gold price per gram at the given purity
// fraction. On any fetch failure the fixed fallback is returned as-is; it is
// already expressed at the 18k reference purity.
func (p *Provider) PricePerGram(ctx context.Context, purity float64) float64 {
	usdPerOunce, ok := p.cachedQuote(ctx)
	if !ok {
		fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()

		quote, err := p.client.FetchUSDPerOunce(fetchCtx)
		if err != nil {
			p.fallbackCount.Add(1)
			log.Printf("[METALS] quote fetch failed, serving fallback %.2f/g: %v", p.fallback, err)
			return p.fallback
		}
		usdPerOunce = quote

		if p.cache != nil {
			if err := p.cache.Set(ctx, quoteCacheKey, usdPerOunce, p.cacheTTL); err != nil {
				log.Printf("[METALS] failed to cache quote: %v", err)
			}
		}
	}

	return usdPerOunce / TroyOunceGrams * purity
}

// FallbackCount reports how many times the fallback constant has been
// served (operational visibility)
func (p *Provider) FallbackCount() int64 {
	return p.fallbackCount.Load()
}

func (p *Provider) cachedQuote(ctx context.Context) (float64, bool) {
	if p.cache == nil {
		return 0, false
	}
	value, err := p.cache.Get(ctx, quoteCacheKey)
	if err != nil {
		return 0, false
	}
	quote, ok := value.(float64)
	return quote, ok
}
