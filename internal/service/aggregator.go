package service

import (
	"sort"
	"time"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// FilmAggregator collapses annotated broadcasts into one entry per film for
// presentation. Grouping is exact on the English title when present, the
// broadcast title otherwise; two spellings of the same film stay split.
type FilmAggregator struct {
	logger *zap.Logger
}

func NewFilmAggregator(logger *zap.Logger) *FilmAggregator {
	return &FilmAggregator{logger: logger}
}

// Aggregate partitions the input by grouping key, drops groups without any
// annotation, and sorts each film's airings most recent first. Film
// metadata is taken from the first annotated broadcast seen.
func (ag *FilmAggregator) Aggregate(broadcasts []*domain.AnnotatedBroadcast) []*domain.GroupedFilm {
	groups := make(map[string]*domain.GroupedFilm)
	order := make([]string, 0)

	for _, b := range broadcasts {
		if b == nil || b.Oscar == nil {
			continue
		}

		key := b.Oscar.TitleEN
		if key == "" {
			key = b.Title
		}

		film, ok := groups[key]
		if !ok {
			film = &domain.GroupedFilm{
				Title:             b.Title,
				TitleEN:           b.Oscar.TitleEN,
				Year:              b.Oscar.Year,
				WinnerCount:       b.Oscar.WinnerCount,
				NomineeCount:      b.Oscar.NomineeCount,
				WinnerCategories:  b.Oscar.WinnerCategories,
				NomineeCategories: b.Oscar.NomineeCategories,
				PosterPath:        b.Oscar.PosterPath,
				Overview:          b.Oscar.Overview,
				Watch:             b.Oscar.Watch,
			}
			groups[key] = film
			order = append(order, key)
		}

		film.Broadcasts = append(film.Broadcasts, domain.BroadcastRef{
			ChannelID:   b.ChannelID,
			ChannelName: b.ChannelName,
			ChannelIcon: b.ChannelIcon,
			Date:        b.Date,
			Time:        b.Time,
		})
	}

	films := make([]*domain.GroupedFilm, 0, len(groups))
	for _, key := range order {
		film := groups[key]
		sort.SliceStable(film.Broadcasts, func(i, j int) bool {
			bi, bj := film.Broadcasts[i], film.Broadcasts[j]
			return util.ParseBroadcastTime(bi.Date, bi.Time).After(util.ParseBroadcastTime(bj.Date, bj.Time))
		})
		films = append(films, film)
	}

	// Most recently airing film first; ties broken by title for stable
	// output.
	sort.SliceStable(films, func(i, j int) bool {
		ti := newestAiring(films[i])
		tj := newestAiring(films[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return films[i].Title < films[j].Title
	})

	ag.logger.Debug("Aggregated films",
		zap.Int("broadcasts", len(broadcasts)),
		zap.Int("films", len(films)),
	)

	return films
}

func newestAiring(film *domain.GroupedFilm) time.Time {
	if len(film.Broadcasts) == 0 {
		return time.Time{}
	}
	ref := film.Broadcasts[0]
	return util.ParseBroadcastTime(ref.Date, ref.Time)
}
