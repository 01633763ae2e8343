package constants

import "time"

var CacheTTL = struct {
	Enrichment     time.Duration
	AggregateFilms time.Duration
	DaySchedule    time.Duration
}{
	Enrichment:     24 * time.Hour,   // watch providers change rarely
	AggregateFilms: 30 * time.Minute, // grouped Oscar films over the window
	DaySchedule:    10 * time.Minute, // per-day listing responses
}

var HTTPConfig = struct {
	TMDBTimeout     time.Duration
	ListingsTimeout time.Duration
	ServerShutdown  time.Duration
}{
	TMDBTimeout:     10 * time.Second,
	ListingsTimeout: 15 * time.Second,
	ServerShutdown:  10 * time.Second,
}

var MatcherConfig = struct {
	// Earliest year a described film can carry; first Academy Awards
	// covered films from 1927/28, the medium itself starts 1888.
	MinFilmYear int

	// Tolerance applied when a year from the description is compared to
	// a catalog release year. Zero means exact match required.
	YearTolerance int
}{
	MinFilmYear:   1888,
	YearTolerance: 0,
}

var WindowConfig = struct {
	Days int
}{
	Days: 7,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,
	ResetTimeout:     2 * time.Minute,
}
