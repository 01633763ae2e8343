package service

import (
	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// CatalogProvider is the slice of the catalog the matcher needs.
type CatalogProvider interface {
	Lookup(key string) []*domain.CatalogEntry
}

// FilmMatcher decides whether a broadcast title denotes a specific catalog
// film. A year found in the description is treated as ground truth; without
// one the match succeeds only when the title is unambiguous. The matcher
// never guesses: an unresolved ambiguity is returned as such, because a
// wrong annotation is worse than a missing one.
type FilmMatcher struct {
	catalog CatalogProvider
	logger  *zap.Logger
}

func NewFilmMatcher(catalog CatalogProvider, logger *zap.Logger) *FilmMatcher {
	return &FilmMatcher{
		catalog: catalog,
		logger:  logger,
	}
}

// Match looks title up by normalized key and disambiguates with the first
// plausible year found in description, if any.
func (m *FilmMatcher) Match(title, description string) domain.MatchResult {
	key := util.NormalizeTitle(title)
	if key == "" {
		return domain.NoMatch()
	}

	candidates := m.catalog.Lookup(key)
	if len(candidates) == 0 {
		return domain.NoMatch()
	}

	if year, ok := util.ExtractYear(description); ok {
		filtered := make([]*domain.CatalogEntry, 0, len(candidates))
		for _, entry := range candidates {
			if absInt(entry.Year-year) <= constants.MatcherConfig.YearTolerance {
				filtered = append(filtered, entry)
			}
		}
		switch len(filtered) {
		case 0:
			// The described year contradicts every candidate. Hard
			// negative: no fallback to title-only matching.
			m.logger.Debug("Year contradicts all candidates",
				zap.String("title", title),
				zap.Int("year", year),
				zap.Int("candidates", len(candidates)),
			)
			return domain.NoMatch()
		case 1:
			return domain.SingleMatch(filtered[0])
		default:
			// Duplicate same-year entries are a dataset anomaly.
			m.logger.Warn("Multiple catalog entries share title and year",
				zap.String("key", key),
				zap.Int("year", year),
			)
			return domain.AmbiguousMatch(filtered)
		}
	}

	if len(candidates) == 1 {
		return domain.SingleMatch(candidates[0])
	}
	return domain.AmbiguousMatch(candidates)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
