package service

import (
	"context"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/exclusion"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// Enricher fetches optional external metadata for a matched film. A nil
// result means "nothing extra", never an error.
type Enricher interface {
	Enrich(ctx context.Context, tmdbID int) *domain.Enrichment
}

// Annotator decides per broadcast whether Oscar metadata applies. It is a
// pure derivation over the catalog and the exclusion store, so re-running
// it on the same input yields the same output.
type Annotator struct {
	matcher    *FilmMatcher
	exclusions *exclusion.Store
	enricher   Enricher // optional
	stripper   *util.SeriesSuffixStripper
	logger     *zap.Logger
}

func NewAnnotator(
	matcher *FilmMatcher,
	exclusions *exclusion.Store,
	enricher Enricher,
	stripper *util.SeriesSuffixStripper,
	logger *zap.Logger,
) *Annotator {
	return &Annotator{
		matcher:    matcher,
		exclusions: exclusions,
		enricher:   enricher,
		stripper:   stripper,
		logger:     logger,
	}
}

// Annotate returns the broadcast with an Oscar annotation attached when it
// unambiguously matches a non-excluded catalog film, unchanged otherwise.
// Only an exclusion store failure surfaces as an error; ambiguity and
// non-matches resolve silently to "no annotation".
func (a *Annotator) Annotate(ctx context.Context, b *domain.BroadcastEntry) (*domain.AnnotatedBroadcast, error) {
	out := &domain.AnnotatedBroadcast{BroadcastEntry: *b}

	base := a.stripper.Strip(b.Title)
	result := a.matcher.Match(base, b.Description)
	if result.Outcome != domain.MatchSingle {
		if result.Outcome == domain.MatchAmbiguous {
			a.logger.Debug("Ambiguous title left unannotated",
				zap.String("title", b.Title),
				zap.Int("candidates", len(result.Candidates)),
			)
		}
		return out, nil
	}
	entry := result.Entry

	excluded, err := a.exclusions.IsExcluded(entry.Title, b.ChannelID, b.Date, b.Time)
	if err != nil {
		return nil, err
	}
	if excluded {
		return out, nil
	}

	annotation := &domain.OscarAnnotation{
		WinnerCount:       entry.WinnerCount(),
		NomineeCount:      entry.NomineeCount(),
		WinnerCategories:  append([]string(nil), entry.WinnerCategories...),
		NomineeCategories: append([]string(nil), entry.NomineeCategories...),
		TitleEN:           entry.TitleEN,
		Year:              entry.Year,
		TMDBID:            entry.TMDBID,
		PosterPath:        entry.PosterPath,
		Overview:          entry.Overview,
	}

	if a.enricher != nil && entry.TMDBID != 0 {
		if enr := a.enricher.Enrich(ctx, entry.TMDBID); enr != nil {
			if annotation.PosterPath == "" {
				annotation.PosterPath = enr.PosterPath
			}
			if annotation.Overview == "" {
				annotation.Overview = enr.Overview
			}
			annotation.Watch = enr.Watch
		}
	}

	out.Oscar = annotation
	return out, nil
}

// AnnotateSchedule derives the response-side view of a stored day: same
// shape, every broadcast run through Annotate.
func (a *Annotator) AnnotateSchedule(ctx context.Context, schedule *domain.DaySchedule) (*domain.AnnotatedDaySchedule, error) {
	out := &domain.AnnotatedDaySchedule{
		Metadata: schedule.Metadata,
		Programs: make(map[string]*domain.AnnotatedChannelListing, len(schedule.Programs)),
	}

	for channelID, listing := range schedule.Programs {
		annotated, err := a.AnnotateAll(ctx, listing.Programs)
		if err != nil {
			return nil, err
		}
		out.Programs[channelID] = &domain.AnnotatedChannelListing{
			Channel:  listing.Channel,
			Programs: annotated,
			Count:    len(annotated),
		}
	}

	return out, nil
}

// AnnotateAll annotates a whole listing in order, failing fast on the first
// store error.
func (a *Annotator) AnnotateAll(ctx context.Context, entries []*domain.BroadcastEntry) ([]*domain.AnnotatedBroadcast, error) {
	out := make([]*domain.AnnotatedBroadcast, 0, len(entries))
	for _, entry := range entries {
		annotated, err := a.Annotate(ctx, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, annotated)
	}
	return out, nil
}
