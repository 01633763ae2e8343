package catalog

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"github.com/kpenchev/tvprograma-go/pkg/errors"
	"go.uber.org/zap"
)

// Catalog is the immutable reference table of Oscar films, loaded once at
// startup from the bundled movie and ceremony datasets. Safe for unlimited
// concurrent readers.
type Catalog struct {
	entries map[string]*domain.CatalogEntry // movie id -> entry
	byKey   map[string][]string             // normalized title -> movie ids
	logger  *zap.Logger
}

type rawMovie struct {
	Title      string `json:"title"`
	TitleBG    string `json:"title_bg"`
	Year       int    `json:"year"`
	TMDBID     int    `json:"tmdb_id"`
	PosterPath string `json:"poster_path"`
	Overview   string `json:"overview"`
}

type rawNominee struct {
	ID string `json:"id"`
}

type rawCategory struct {
	Winner   *rawNominee  `json:"winner"`
	Nominees []rawNominee `json:"nominees"`
}

// ceremony year -> category name -> outcome
type rawOscars map[string]map[string]rawCategory

type oscarInfo struct {
	winner  map[string]struct{}
	nominee map[string]struct{}
}

// Load reads both datasets and builds the title indexes. Any read or parse
// failure is fatal: the service cannot annotate without its catalog.
func Load(moviesPath, oscarsPath string, logger *zap.Logger) (*Catalog, error) {
	var movies map[string]rawMovie
	if err := readJSON(moviesPath, &movies); err != nil {
		return nil, err
	}

	var oscars rawOscars
	if err := readJSON(oscarsPath, &oscars); err != nil {
		return nil, err
	}

	info := make(map[string]*oscarInfo)
	mark := func(movieID, category string, winner bool) {
		if movieID == "" {
			return
		}
		oi, ok := info[movieID]
		if !ok {
			oi = &oscarInfo{
				winner:  make(map[string]struct{}),
				nominee: make(map[string]struct{}),
			}
			info[movieID] = oi
		}
		oi.nominee[category] = struct{}{}
		if winner {
			oi.winner[category] = struct{}{}
		}
	}

	for _, categories := range oscars {
		for category, outcome := range categories {
			if outcome.Winner != nil {
				mark(outcome.Winner.ID, category, true)
			}
			for _, nominee := range outcome.Nominees {
				mark(nominee.ID, category, false)
			}
		}
	}

	c := &Catalog{
		entries: make(map[string]*domain.CatalogEntry),
		byKey:   make(map[string][]string),
		logger:  logger,
	}

	for id, movie := range movies {
		oi, ok := info[id]
		if !ok {
			// Movie without any Oscar outcome can never annotate.
			continue
		}

		entry := &domain.CatalogEntry{
			ID:                id,
			Title:             movie.TitleBG,
			TitleEN:           movie.Title,
			Year:              movie.Year,
			TMDBID:            movie.TMDBID,
			PosterPath:        movie.PosterPath,
			Overview:          movie.Overview,
			WinnerCategories:  sortedKeys(oi.winner),
			NomineeCategories: sortedKeys(oi.nominee),
		}
		c.entries[id] = entry

		c.index(util.NormalizeTitle(movie.Title), id)
		c.index(util.NormalizeTitle(movie.TitleBG), id)
	}

	logger.Info("Oscar catalog loaded",
		zap.String("movies", moviesPath),
		zap.String("oscars", oscarsPath),
		zap.Int("films", len(c.entries)),
		zap.Int("title_keys", len(c.byKey)),
	)

	return c, nil
}

func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewCatalogError("failed to read catalog dataset", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.NewCatalogError("failed to parse catalog dataset", path, err)
	}
	return nil
}

func (c *Catalog) index(key, id string) {
	if key == "" {
		return
	}
	for _, existing := range c.byKey[key] {
		if existing == id {
			return
		}
	}
	c.byKey[key] = append(c.byKey[key], id)
}

// Lookup returns every catalog entry whose Bulgarian or English title
// normalizes to key, ordered by release year then id for determinism.
func (c *Catalog) Lookup(key string) []*domain.CatalogEntry {
	ids := c.byKey[key]
	if len(ids) == 0 {
		return nil
	}
	entries := make([]*domain.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, c.entries[id])
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// All returns the whole catalog sorted by English title then year, for the
// browse endpoint.
func (c *Catalog) All() []*domain.CatalogEntry {
	entries := make([]*domain.CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TitleEN != entries[j].TitleEN {
			return entries[i].TitleEN < entries[j].TitleEN
		}
		return entries[i].Year < entries[j].Year
	})
	return entries
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
