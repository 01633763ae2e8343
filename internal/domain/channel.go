package domain

// Channel is one TV channel known to the fetcher. Only active channels are
// scraped.
type Channel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}
