package domain

// BroadcastEntry is one scheduled airing as produced by the listings
// scraper. Read-only input to matching; the Oscar pipeline never mutates
// its fields.
type BroadcastEntry struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	ChannelIcon string `json:"channel_icon,omitempty"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WatchProvider is one streaming/rent/buy offer from the enrichment API.
type WatchProvider struct {
	Name     string `json:"provider_name"`
	LogoPath string `json:"logo_path,omitempty"`
}

type WatchProviders struct {
	Region   string          `json:"region"`
	Link     string          `json:"link,omitempty"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

// Enrichment is the optional metadata fetched from the external movie
// database. All fields are best-effort.
type Enrichment struct {
	PosterPath string          `json:"poster_path,omitempty"`
	Overview   string          `json:"overview,omitempty"`
	Watch      *WatchProviders `json:"watch,omitempty"`
}

// OscarAnnotation carries the Oscar metadata attached to a matched,
// non-excluded broadcast.
type OscarAnnotation struct {
	WinnerCount       int             `json:"winner"`
	NomineeCount      int             `json:"nominee"`
	WinnerCategories  []string        `json:"winner_categories"`
	NomineeCategories []string        `json:"nominee_categories"`
	TitleEN           string          `json:"title_en"`
	Year              int             `json:"year"`
	TMDBID            int             `json:"tmdb_id,omitempty"`
	PosterPath        string          `json:"poster_path,omitempty"`
	Overview          string          `json:"overview,omitempty"`
	Watch             *WatchProviders `json:"watch,omitempty"`
}

// AnnotatedBroadcast is a broadcast plus an optional Oscar annotation.
// Absence of annotation is the typed nil, not an empty struct.
type AnnotatedBroadcast struct {
	BroadcastEntry
	Oscar *OscarAnnotation `json:"oscar,omitempty"`
}

// BroadcastRef points back at one airing inside a GroupedFilm.
type BroadcastRef struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	ChannelIcon string `json:"channel_icon,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// GroupedFilm collapses all airings of one matched film across the rolling
// window. Film metadata comes from the first annotated broadcast seen; it
// is invariant across airings of the same film.
type GroupedFilm struct {
	Title             string          `json:"title"`
	TitleEN           string          `json:"title_en,omitempty"`
	Year              int             `json:"year,omitempty"`
	WinnerCount       int             `json:"winner"`
	NomineeCount      int             `json:"nominee"`
	WinnerCategories  []string        `json:"winner_categories"`
	NomineeCategories []string        `json:"nominee_categories"`
	PosterPath        string          `json:"poster_path,omitempty"`
	Overview          string          `json:"overview,omitempty"`
	Watch             *WatchProviders `json:"watch,omitempty"`
	Broadcasts        []BroadcastRef  `json:"broadcasts"`
}
