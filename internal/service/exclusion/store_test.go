package exclusion

import (
	"context"
	"errors"
	"testing"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"go.uber.org/zap"
)

type fakeRepository struct {
	rules     []domain.ExclusionRule
	insertErr error
	deleteErr error
	inserts   int
	deletes   int
}

func (f *fakeRepository) Load(_ context.Context) ([]domain.ExclusionRule, error) {
	return f.rules, nil
}

func (f *fakeRepository) Insert(_ context.Context, rule domain.ExclusionRule) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	f.rules = append(f.rules, rule)
	return nil
}

// Delete matches rows the way the SQL statement does, on every scope field.
func (f *fakeRepository) Delete(_ context.Context, rule domain.ExclusionRule) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	kept := f.rules[:0]
	for _, r := range f.rules {
		if r.Scope == rule.Scope && r.NormalizedKey() == rule.NormalizedKey() &&
			r.ChannelID == rule.ChannelID && r.Date == rule.Date && r.Time == rule.Time {
			continue
		}
		kept = append(kept, r)
	}
	f.rules = kept
	return nil
}

func newTestStore(t *testing.T, repo Repository) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), repo, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestIsExcludedScopes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeRepository{})

	rules := []domain.ExclusionRule{
		{Title: "Гладиатор", Scope: domain.ScopeGlobal},
		{Title: "Титаник", Scope: domain.ScopeChannel, ChannelID: "btv"},
		{Title: "Паразит", Scope: domain.ScopeBroadcast, ChannelID: "nova-tv", Date: "2026-09-01", Time: "21:00"},
	}
	for _, rule := range rules {
		if err := store.Add(ctx, rule); err != nil {
			t.Fatalf("Add(%v): %v", rule.Scope, err)
		}
	}

	cases := []struct {
		name      string
		title     string
		channelID string
		date      string
		clock     string
		want      bool
	}{
		{"global hits everywhere", "Гладиатор", "diema", "2026-09-02", "10:00", true},
		{"global matches by key", "ГЛАДИАТОР!", "btv", "2026-09-02", "10:00", true},
		{"channel hits its channel", "Титаник", "btv", "2026-09-03", "20:00", true},
		{"channel misses other channel", "Титаник", "diema", "2026-09-03", "20:00", false},
		{"broadcast hits exact airing", "Паразит", "nova-tv", "2026-09-01", "21:00", true},
		{"broadcast misses other time", "Паразит", "nova-tv", "2026-09-01", "23:30", false},
		{"broadcast misses other channel", "Паразит", "btv", "2026-09-01", "21:00", false},
		{"unknown title", "Форест Гъмп", "btv", "2026-09-01", "21:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.IsExcluded(tc.title, tc.channelID, tc.date, tc.clock)
			if err != nil {
				t.Fatalf("IsExcluded: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsExcluded(%q, %s) = %v, want %v", tc.title, tc.channelID, got, tc.want)
			}
		})
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	store := newTestStore(t, repo)

	rule := domain.ExclusionRule{Title: "Гладиатор", Scope: domain.ScopeChannel, ChannelID: "btv"}
	if err := store.Add(ctx, rule); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	// Same identity, different spelling and description.
	dup := domain.ExclusionRule{Title: "гладиатор", Scope: domain.ScopeChannel, ChannelID: "btv", Description: "noted again"}
	if err := store.Add(ctx, dup); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}

	if repo.inserts != 1 {
		t.Errorf("repo inserts = %d, want 1", repo.inserts)
	}
	if store.Len() != 1 {
		t.Errorf("store rules = %d, want 1", store.Len())
	}
}

func TestAddValidatesRule(t *testing.T) {
	store := newTestStore(t, &fakeRepository{})

	bad := []domain.ExclusionRule{
		{Title: "", Scope: domain.ScopeGlobal},
		{Title: "?!", Scope: domain.ScopeGlobal},
		{Title: "Титаник", Scope: domain.ScopeChannel},
		{Title: "Титаник", Scope: domain.ScopeBroadcast, ChannelID: "btv"},
		{Title: "Титаник", Scope: "weekly"},
	}
	for _, rule := range bad {
		if err := store.Add(context.Background(), rule); err == nil {
			t.Errorf("Add(%+v) succeeded, want validation error", rule)
		}
	}
}

func TestAddSurfacesRepositoryError(t *testing.T) {
	repo := &fakeRepository{insertErr: errors.New("connection reset")}
	store := newTestStore(t, repo)

	rule := domain.ExclusionRule{Title: "Гладиатор", Scope: domain.ScopeGlobal}
	if err := store.Add(context.Background(), rule); err == nil {
		t.Fatal("Add succeeded despite repository failure")
	}

	// The failed rule must not linger in the index.
	excluded, err := store.IsExcluded("Гладиатор", "btv", "2026-09-01", "21:00")
	if err != nil {
		t.Fatalf("IsExcluded: %v", err)
	}
	if excluded {
		t.Error("rule indexed although the write failed")
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	store := newTestStore(t, repo)

	rule := domain.ExclusionRule{Title: "Титаник", Scope: domain.ScopeChannel, ChannelID: "btv"}
	if err := store.Add(ctx, rule); err != nil {
		t.Fatalf("Add: %v", err)
	}

	removed, err := store.Remove(ctx, rule)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("Remove reported no match for an existing rule")
	}

	excluded, err := store.IsExcluded("Титаник", "btv", "2026-09-01", "21:00")
	if err != nil {
		t.Fatalf("IsExcluded: %v", err)
	}
	if excluded {
		t.Error("rule still excluded after removal")
	}

	removed, err = store.Remove(ctx, rule)
	if err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if removed {
		t.Error("second Remove reported a match")
	}
}

func TestRemoveAfterAddWithStrayFieldsSurvivesReload(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{}
	store := newTestStore(t, repo)

	// Channel rule carrying airing fields its scope does not determine.
	stray := domain.ExclusionRule{
		Title:     "Титаник",
		Scope:     domain.ScopeChannel,
		ChannelID: "btv",
		Date:      "2026-09-01",
		Time:      "21:00",
	}
	if err := store.Add(ctx, stray); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if repo.rules[0].Date != "" || repo.rules[0].Time != "" {
		t.Errorf("persisted row kept stray airing fields: %+v", repo.rules[0])
	}

	removed, err := store.Remove(ctx, domain.ExclusionRule{
		Title:     "Титаник",
		Scope:     domain.ScopeChannel,
		ChannelID: "btv",
	})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("Remove missed the rule")
	}

	// A store rebuilt from the repository must not resurrect the rule.
	reloaded := newTestStore(t, repo)
	if reloaded.Len() != 0 {
		t.Fatalf("reloaded store holds %d rules, want 0", reloaded.Len())
	}
	excluded, err := reloaded.IsExcluded("Титаник", "btv", "2026-09-02", "20:00")
	if err != nil {
		t.Fatalf("IsExcluded: %v", err)
	}
	if excluded {
		t.Error("removed rule excluded again after reload")
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeRepository{})

	titles := []string{"Гладиатор", "Титаник", "Паразит"}
	for _, title := range titles {
		if err := store.Add(ctx, domain.ExclusionRule{Title: title, Scope: domain.ScopeGlobal}); err != nil {
			t.Fatalf("Add(%s): %v", title, err)
		}
	}

	rules := store.List()
	if len(rules) != len(titles) {
		t.Fatalf("List returned %d rules, want %d", len(rules), len(titles))
	}
	for i, title := range titles {
		if rules[i].Title != title {
			t.Errorf("rules[%d].Title = %q, want %q", i, rules[i].Title, title)
		}
	}
}

func TestNewStoreSkipsInvalidPersistedRules(t *testing.T) {
	repo := &fakeRepository{rules: []domain.ExclusionRule{
		{Title: "Гладиатор", Scope: domain.ScopeGlobal},
		{Title: "Титаник", Scope: domain.ScopeChannel}, // missing channel_id
	}}

	store := newTestStore(t, repo)
	if store.Len() != 1 {
		t.Errorf("store rules = %d, want 1", store.Len())
	}
}
