package domain

import (
	"fmt"
	"strings"

	"github.com/kpenchev/tvprograma-go/internal/util"
)

type ExclusionScope string

const (
	ScopeBroadcast ExclusionScope = "broadcast"
	ScopeChannel   ExclusionScope = "channel"
	ScopeGlobal    ExclusionScope = "global"
)

func (s ExclusionScope) IsValid() bool {
	switch s {
	case ScopeBroadcast, ScopeChannel, ScopeGlobal:
		return true
	default:
		return false
	}
}

// ExclusionRule suppresses Oscar annotation for a title at one of three
// scopes. Titles are compared by normalized key, so the stored title may be
// spelled the way an admin typed it.
type ExclusionRule struct {
	Title       string         `json:"title"`
	Scope       ExclusionScope `json:"scope"`
	ChannelID   string         `json:"channel_id,omitempty"`
	Date        string         `json:"date,omitempty"`
	Time        string         `json:"time,omitempty"`
	Description string         `json:"description,omitempty"` // audit only
}

func (r *ExclusionRule) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("exclusion rule requires a title")
	}
	if util.NormalizeTitle(r.Title) == "" {
		return fmt.Errorf("exclusion rule title %q normalizes to nothing", r.Title)
	}
	switch r.Scope {
	case ScopeGlobal:
	case ScopeChannel:
		if r.ChannelID == "" {
			return fmt.Errorf("channel-scoped rule requires channel_id")
		}
	case ScopeBroadcast:
		if r.ChannelID == "" || r.Date == "" || r.Time == "" {
			return fmt.Errorf("broadcast-scoped rule requires channel_id, date and time")
		}
	default:
		return fmt.Errorf("invalid exclusion scope %q", r.Scope)
	}
	return nil
}

// Canonicalize clears the fields the scope does not determine. A channel
// rule submitted with a stray airing date would otherwise persist a row the
// scope-field delete can never hit.
func (r *ExclusionRule) Canonicalize() {
	switch r.Scope {
	case ScopeGlobal:
		r.ChannelID = ""
		r.Date = ""
		r.Time = ""
	case ScopeChannel:
		r.Date = ""
		r.Time = ""
	}
}

// NormalizedKey returns the matching key of the rule's title.
func (r *ExclusionRule) NormalizedKey() string {
	return util.NormalizeTitle(r.Title)
}

// IdentityKey identifies a rule by its scope-determining fields. Two rules
// with equal identity are the same rule regardless of description; add is
// idempotent and remove matches on this key.
func (r *ExclusionRule) IdentityKey() string {
	switch r.Scope {
	case ScopeBroadcast:
		return BroadcastExclusionKey(r.ChannelID, r.Date, r.Time, r.NormalizedKey())
	case ScopeChannel:
		return ChannelExclusionKey(r.ChannelID, r.NormalizedKey())
	default:
		return GlobalExclusionKey(r.NormalizedKey())
	}
}

func BroadcastExclusionKey(channelID, date, clock, normalizedKey string) string {
	return "broadcast|" + channelID + "|" + date + "|" + clock + "|" + normalizedKey
}

func ChannelExclusionKey(channelID, normalizedKey string) string {
	return "channel|" + channelID + "|" + normalizedKey
}

func GlobalExclusionKey(normalizedKey string) string {
	return "global|" + normalizedKey
}
