package service

import (
	"testing"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"go.uber.org/zap"
)

func annotated(title, titleEN, channelID, date, clock string) *domain.AnnotatedBroadcast {
	return &domain.AnnotatedBroadcast{
		BroadcastEntry: domain.BroadcastEntry{
			ChannelID: channelID,
			Date:      date,
			Time:      clock,
			Title:     title,
		},
		Oscar: &domain.OscarAnnotation{
			TitleEN:     titleEN,
			Year:        2000,
			WinnerCount: 1,
		},
	}
}

func plain(title string) *domain.AnnotatedBroadcast {
	return &domain.AnnotatedBroadcast{
		BroadcastEntry: domain.BroadcastEntry{Title: title},
	}
}

func TestAggregateGroupsByEnglishTitle(t *testing.T) {
	ag := NewFilmAggregator(zap.NewNop())

	films := ag.Aggregate([]*domain.AnnotatedBroadcast{
		annotated("Гладиатор", "Gladiator", "btv-cinema", "2026-08-30", "21:00"),
		annotated("Гладиаторът", "Gladiator", "kino-nova", "2026-08-31", "20:00"),
		annotated("Титаник", "Titanic", "btv", "2026-08-29", "22:00"),
		plain("Сутрешен блок"),
	})

	if len(films) != 2 {
		t.Fatalf("films = %d, want 2", len(films))
	}

	var gladiator *domain.GroupedFilm
	for _, f := range films {
		if f.TitleEN == "Gladiator" {
			gladiator = f
		}
	}
	if gladiator == nil {
		t.Fatal("Gladiator group missing")
	}
	if len(gladiator.Broadcasts) != 2 {
		t.Fatalf("Gladiator airings = %d, want 2", len(gladiator.Broadcasts))
	}

	// Different Bulgarian spellings collapse into one group, metadata from
	// the first broadcast seen.
	if gladiator.Title != "Гладиатор" {
		t.Errorf("group title = %q, want first-seen spelling", gladiator.Title)
	}
}

func TestAggregateFallsBackToBroadcastTitle(t *testing.T) {
	ag := NewFilmAggregator(zap.NewNop())

	a := annotated("Предградие", "", "btv", "2026-08-30", "21:00")
	b := annotated("Предградие", "", "nova-tv", "2026-08-31", "21:00")
	c := annotated("Квартал", "", "btv", "2026-08-31", "23:00")

	films := ag.Aggregate([]*domain.AnnotatedBroadcast{a, b, c})
	if len(films) != 2 {
		t.Fatalf("films = %d, want 2", len(films))
	}
}

func TestAggregateSortsAiringsNewestFirst(t *testing.T) {
	ag := NewFilmAggregator(zap.NewNop())

	films := ag.Aggregate([]*domain.AnnotatedBroadcast{
		annotated("Гладиатор", "Gladiator", "btv", "2026-08-28", "21:00"),
		annotated("Гладиатор", "Gladiator", "diema", "2026-08-31", "09:30"),
		annotated("Гладиатор", "Gladiator", "btv", "2026-08-31", "08:00"),
	})

	if len(films) != 1 {
		t.Fatalf("films = %d, want 1", len(films))
	}

	refs := films[0].Broadcasts
	want := []string{"09:30", "08:00", "21:00"}
	for i, clock := range want {
		if refs[i].Time != clock {
			t.Errorf("refs[%d].Time = %s, want %s", i, refs[i].Time, clock)
		}
	}
}

func TestAggregateOrdersFilmsByMostRecentAiring(t *testing.T) {
	ag := NewFilmAggregator(zap.NewNop())

	films := ag.Aggregate([]*domain.AnnotatedBroadcast{
		annotated("Титаник", "Titanic", "btv", "2026-08-29", "22:00"),
		annotated("Гладиатор", "Gladiator", "kino-nova", "2026-08-31", "20:00"),
	})

	if films[0].TitleEN != "Gladiator" || films[1].TitleEN != "Titanic" {
		t.Errorf("order = %s, %s; want Gladiator first", films[0].TitleEN, films[1].TitleEN)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	ag := NewFilmAggregator(zap.NewNop())

	if films := ag.Aggregate(nil); len(films) != 0 {
		t.Errorf("films = %d, want 0", len(films))
	}
	if films := ag.Aggregate([]*domain.AnnotatedBroadcast{plain("Новини")}); len(films) != 0 {
		t.Errorf("films from unannotated input = %d, want 0", len(films))
	}
}
