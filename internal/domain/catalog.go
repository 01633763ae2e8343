package domain

// CatalogEntry is one film from the bundled Oscar reference dataset.
// Immutable once the catalog is loaded.
type CatalogEntry struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`    // Bulgarian title as printed in listings
	TitleEN           string   `json:"title_en"` // English title
	Year              int      `json:"year"`
	TMDBID            int      `json:"tmdb_id,omitempty"`
	PosterPath        string   `json:"poster_path,omitempty"`
	Overview          string   `json:"overview,omitempty"`
	WinnerCategories  []string `json:"winner_categories"`
	NomineeCategories []string `json:"nominee_categories"`
}

func (e *CatalogEntry) WinnerCount() int {
	return len(e.WinnerCategories)
}

func (e *CatalogEntry) NomineeCount() int {
	return len(e.NomineeCategories)
}
