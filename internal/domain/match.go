package domain

// MatchOutcome classifies a title lookup against the catalog. Non-matches
// are ordinary values, not errors.
type MatchOutcome string

const (
	MatchNone      MatchOutcome = "no_match"
	MatchSingle    MatchOutcome = "single"
	MatchAmbiguous MatchOutcome = "ambiguous"
)

func (o MatchOutcome) String() string {
	return string(o)
}

type MatchResult struct {
	Outcome MatchOutcome
	// Entry is set only for MatchSingle.
	Entry *CatalogEntry
	// Candidates carries the unresolved set for MatchAmbiguous.
	Candidates []*CatalogEntry
}

func NoMatch() MatchResult {
	return MatchResult{Outcome: MatchNone}
}

func SingleMatch(entry *CatalogEntry) MatchResult {
	return MatchResult{Outcome: MatchSingle, Entry: entry}
}

func AmbiguousMatch(candidates []*CatalogEntry) MatchResult {
	return MatchResult{Outcome: MatchAmbiguous, Candidates: candidates}
}
