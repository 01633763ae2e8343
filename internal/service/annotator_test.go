package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/exclusion"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

type fakeRuleRepo struct {
	rules []domain.ExclusionRule
}

func (f *fakeRuleRepo) Load(_ context.Context) ([]domain.ExclusionRule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepo) Insert(_ context.Context, rule domain.ExclusionRule) error {
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeRuleRepo) Delete(_ context.Context, _ domain.ExclusionRule) error {
	return nil
}

type fakeEnricher struct {
	enrichment *domain.Enrichment
	calls      int
}

func (f *fakeEnricher) Enrich(_ context.Context, _ int) *domain.Enrichment {
	f.calls++
	return f.enrichment
}

func gladiatorEntry() *domain.CatalogEntry {
	return &domain.CatalogEntry{
		ID:      "98",
		Title:   "Гладиатор",
		TitleEN: "Gladiator",
		Year:    2000,
		TMDBID:  98,
		WinnerCategories: []string{
			"ACTOR IN A LEADING ROLE", "BEST PICTURE", "COSTUME DESIGN", "SOUND", "VISUAL EFFECTS",
		},
		NomineeCategories: []string{
			"ACTOR IN A LEADING ROLE", "BEST PICTURE", "COSTUME DESIGN", "DIRECTING", "SOUND", "VISUAL EFFECTS",
		},
		PosterPath: "/gladiator.jpg",
		Overview:   "Римският генерал Максимус търси възмездие.",
	}
}

func newTestAnnotator(t *testing.T, enricher Enricher, rules ...domain.ExclusionRule) *Annotator {
	t.Helper()

	store, err := exclusion.NewStore(context.Background(), &fakeRuleRepo{rules: rules}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	matcher := NewFilmMatcher(newFakeCatalog(gladiatorEntry()), zap.NewNop())
	stripper := util.NewSeriesSuffixStripper([]string{"сез.", "сезон", "еп.", "епизод"})
	return NewAnnotator(matcher, store, enricher, stripper, zap.NewNop())
}

func broadcast(title, description string) *domain.BroadcastEntry {
	return &domain.BroadcastEntry{
		ChannelID:   "btv-cinema",
		ChannelName: "bTV Cinema",
		Date:        "2026-09-01",
		Time:        "21:00",
		Title:       title,
		Description: description,
	}
}

func TestAnnotateMatchedFilm(t *testing.T) {
	a := newTestAnnotator(t, nil)

	out, err := a.Annotate(context.Background(), broadcast("Гладиатор", "екшън, САЩ, 2000"))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Oscar == nil {
		t.Fatal("expected annotation, got none")
	}

	oscar := out.Oscar
	if oscar.WinnerCount != 5 || oscar.NomineeCount != 6 {
		t.Errorf("counts = %d/%d, want 5/6", oscar.WinnerCount, oscar.NomineeCount)
	}
	if oscar.TitleEN != "Gladiator" || oscar.Year != 2000 || oscar.TMDBID != 98 {
		t.Errorf("film fields = %q/%d/%d", oscar.TitleEN, oscar.Year, oscar.TMDBID)
	}
	if oscar.PosterPath != "/gladiator.jpg" {
		t.Errorf("poster = %q", oscar.PosterPath)
	}
	if out.Title != "Гладиатор" || out.Time != "21:00" {
		t.Errorf("broadcast fields changed: %q %q", out.Title, out.Time)
	}
}

func TestAnnotateStripsSeriesSuffixBeforeMatching(t *testing.T) {
	a := newTestAnnotator(t, nil)

	out, err := a.Annotate(context.Background(), broadcast("Гладиатор еп. 2", ""))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Oscar == nil {
		t.Fatal("suffix kept the title from matching")
	}
	if out.Title != "Гладиатор еп. 2" {
		t.Errorf("original title rewritten to %q", out.Title)
	}
}

func TestAnnotateLeavesNonMatchesUntouched(t *testing.T) {
	a := newTestAnnotator(t, nil)

	cases := []struct {
		name        string
		title       string
		description string
	}{
		{"unknown title", "Новините в 19", ""},
		{"year contradiction", "Гладиатор", "класика от 1975 г."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := a.Annotate(context.Background(), broadcast(tc.title, tc.description))
			if err != nil {
				t.Fatalf("Annotate: %v", err)
			}
			if out.Oscar != nil {
				t.Error("unexpected annotation")
			}
			if out.Title != tc.title || out.Description != tc.description {
				t.Error("broadcast fields changed")
			}
		})
	}
}

func TestAnnotateHonorsExclusions(t *testing.T) {
	a := newTestAnnotator(t, nil, domain.ExclusionRule{
		Title:     "Гладиатор",
		Scope:     domain.ScopeChannel,
		ChannelID: "btv-cinema",
	})

	out, err := a.Annotate(context.Background(), broadcast("Гладиатор", "САЩ, 2000"))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Oscar != nil {
		t.Error("channel-excluded film still annotated")
	}

	other := broadcast("Гладиатор", "САЩ, 2000")
	other.ChannelID = "kino-nova"
	out, err = a.Annotate(context.Background(), other)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Oscar == nil {
		t.Error("exclusion for one channel suppressed another channel")
	}
}

func TestAnnotateEnrichmentFillsMissingFields(t *testing.T) {
	watch := &domain.WatchProviders{Region: "BG", Link: "https://tmdb.example/watch"}
	enricher := &fakeEnricher{enrichment: &domain.Enrichment{
		PosterPath: "/fresh.jpg",
		Overview:   "external overview",
		Watch:      watch,
	}}
	a := newTestAnnotator(t, enricher)

	out, err := a.Annotate(context.Background(), broadcast("Гладиатор", "САЩ, 2000"))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if out.Oscar == nil {
		t.Fatal("expected annotation")
	}

	// Catalog data wins, enrichment only fills gaps; watch info always comes
	// from the enricher.
	if out.Oscar.PosterPath != "/gladiator.jpg" {
		t.Errorf("poster overwritten by enrichment: %q", out.Oscar.PosterPath)
	}
	if out.Oscar.Watch != watch {
		t.Error("watch providers not attached")
	}
	if enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", enricher.calls)
	}
}

func TestAnnotateIsIdempotent(t *testing.T) {
	a := newTestAnnotator(t, nil)
	b := broadcast("Гладиатор", "САЩ, 2000")

	first, err := a.Annotate(context.Background(), b)
	if err != nil {
		t.Fatalf("first Annotate: %v", err)
	}
	second, err := a.Annotate(context.Background(), b)
	if err != nil {
		t.Fatalf("second Annotate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated annotation produced a different result")
	}
}

func TestAnnotateSchedule(t *testing.T) {
	a := newTestAnnotator(t, nil)

	schedule := &domain.DaySchedule{
		Metadata: domain.DayMetadata{TargetDate: "2026-09-01", TotalChannels: 2, ChannelsWithPrograms: 2},
		Programs: map[string]*domain.ChannelListing{
			"btv-cinema": {
				Channel: domain.Channel{ID: "btv-cinema", Name: "bTV Cinema", Active: true},
				Programs: []*domain.BroadcastEntry{
					broadcast("Гладиатор", "САЩ, 2000"),
					broadcast("Сутрешен блок", ""),
				},
				Count: 2,
			},
		},
	}

	out, err := a.AnnotateSchedule(context.Background(), schedule)
	if err != nil {
		t.Fatalf("AnnotateSchedule: %v", err)
	}

	listing := out.Programs["btv-cinema"]
	if listing == nil || listing.Count != 2 {
		t.Fatalf("listing missing or wrong count: %+v", listing)
	}
	if listing.Programs[0].Oscar == nil {
		t.Error("film not annotated")
	}
	if listing.Programs[1].Oscar != nil {
		t.Error("non-film annotated")
	}
	if out.Metadata.TargetDate != "2026-09-01" {
		t.Errorf("metadata lost: %+v", out.Metadata)
	}
}
