package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/cache"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBService fetches poster/overview and regional watch providers for a
// film. Everything here is best-effort: failures and timeouts degrade to a
// nil enrichment, results (including negative ones) are cached for a day.
type TMDBService struct {
	httpClient *http.Client
	apiKey     string
	region     string
	cache      *cache.Service
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

type tmdbMovieDetails struct {
	PosterPath string `json:"poster_path"`
	Overview   string `json:"overview"`
}

type tmdbWatchRegion struct {
	Link     string                 `json:"link"`
	Flatrate []domain.WatchProvider `json:"flatrate"`
	Rent     []domain.WatchProvider `json:"rent"`
	Buy      []domain.WatchProvider `json:"buy"`
}

type tmdbWatchResponse struct {
	Results map[string]tmdbWatchRegion `json:"results"`
}

// cachedEnrichment wraps the payload so that a cached "nothing found" is
// distinguishable from a cache miss.
type cachedEnrichment struct {
	Found      bool               `json:"found"`
	Enrichment *domain.Enrichment `json:"enrichment,omitempty"`
}

func NewTMDBService(apiKey, region string, cacheSvc *cache.Service, logger *zap.Logger) *TMDBService {
	return &TMDBService{
		httpClient: &http.Client{
			Timeout: constants.HTTPConfig.TMDBTimeout,
		},
		apiKey:  apiKey,
		region:  region,
		cache:   cacheSvc,
		breaker: util.NewCircuitBreaker(constants.CircuitBreakerConfig.FailureThreshold, constants.CircuitBreakerConfig.ResetTimeout, logger),
		logger:  logger,
	}
}

// Enrich returns external metadata for a TMDB movie id, or nil when the
// lookup is disabled, skipped or failed.
func (t *TMDBService) Enrich(ctx context.Context, tmdbID int) *domain.Enrichment {
	if t.apiKey == "" || tmdbID == 0 {
		return nil
	}

	cacheKey := "tmdb:enrich:" + t.region + ":" + strconv.Itoa(tmdbID)
	var cached cachedEnrichment
	if found, err := t.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		if !cached.Found {
			return nil
		}
		return cached.Enrichment
	}

	if !t.breaker.CanExecute() {
		t.logger.Debug("Enrichment skipped, circuit open", zap.Int("tmdb_id", tmdbID))
		return nil
	}

	enrichment, err := t.fetch(ctx, tmdbID)
	if err != nil {
		t.breaker.RecordFailure()
		t.logger.Warn("Enrichment fetch failed",
			zap.Int("tmdb_id", tmdbID),
			zap.Error(err),
		)
		return nil
	}
	t.breaker.RecordSuccess()

	cached = cachedEnrichment{Found: enrichment != nil, Enrichment: enrichment}
	if err := t.cache.Set(ctx, cacheKey, cached, constants.CacheTTL.Enrichment); err != nil {
		t.logger.Debug("Failed to cache enrichment", zap.Int("tmdb_id", tmdbID), zap.Error(err))
	}

	return enrichment
}

func (t *TMDBService) fetch(ctx context.Context, tmdbID int) (*domain.Enrichment, error) {
	var details tmdbMovieDetails
	if err := t.getJSON(ctx, fmt.Sprintf("%s/movie/%d?api_key=%s", tmdbBaseURL, tmdbID, t.apiKey), &details); err != nil {
		return nil, err
	}

	enrichment := &domain.Enrichment{
		PosterPath: details.PosterPath,
		Overview:   details.Overview,
	}

	var watch tmdbWatchResponse
	if err := t.getJSON(ctx, fmt.Sprintf("%s/movie/%d/watch/providers?api_key=%s", tmdbBaseURL, tmdbID, t.apiKey), &watch); err != nil {
		// Watch providers are optional on top of optional; keep the
		// details we already have.
		t.logger.Debug("Watch provider lookup failed", zap.Int("tmdb_id", tmdbID), zap.Error(err))
		return enrichment, nil
	}

	if region, ok := watch.Results[t.region]; ok {
		enrichment.Watch = &domain.WatchProviders{
			Region:   t.region,
			Link:     region.Link,
			Flatrate: region.Flatrate,
			Rent:     region.Rent,
			Buy:      region.Buy,
		}
	}

	return enrichment, nil
}

func (t *TMDBService) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
