package exclusion

import (
	"context"
	"sync"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// Store answers exclusion checks from scope-indexed in-memory sets and
// writes every mutation through to the repository before returning.
// Lookups are O(1) per scope instead of a scan over all rules.
type Store struct {
	repo   Repository
	logger *zap.Logger

	mu        sync.RWMutex
	rules     []domain.ExclusionRule
	broadcast map[string]struct{}
	channel   map[string]struct{}
	global    map[string]struct{}
}

func NewStore(ctx context.Context, repo Repository, logger *zap.Logger) (*Store, error) {
	rules, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repo:      repo,
		logger:    logger,
		broadcast: make(map[string]struct{}),
		channel:   make(map[string]struct{}),
		global:    make(map[string]struct{}),
	}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			logger.Warn("Skipping invalid persisted exclusion rule",
				zap.String("title", rule.Title),
				zap.Error(err),
			)
			continue
		}
		rule.Canonicalize()
		s.indexLocked(rule)
	}

	logger.Info("Exclusion store loaded", zap.Int("rules", len(s.rules)))
	return s, nil
}

// IsExcluded reports whether any rule suppresses the given airing.
// Broadcast scope is checked first, then channel, then global; the first
// hit short-circuits.
func (s *Store) IsExcluded(title, channelID, date, clock string) (bool, error) {
	key := util.NormalizeTitle(title)
	if key == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.broadcast[domain.BroadcastExclusionKey(channelID, date, clock, key)]; ok {
		return true, nil
	}
	if _, ok := s.channel[domain.ChannelExclusionKey(channelID, key)]; ok {
		return true, nil
	}
	if _, ok := s.global[domain.GlobalExclusionKey(key)]; ok {
		return true, nil
	}
	return false, nil
}

// Add appends a rule. Adding a rule whose scope-determining fields already
// exist is a no-op regardless of description.
func (s *Store) Add(ctx context.Context, rule domain.ExclusionRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	rule.Canonicalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containsLocked(rule) {
		return nil
	}

	if err := s.repo.Insert(ctx, rule); err != nil {
		return err
	}

	s.indexLocked(rule)
	s.logger.Info("Exclusion rule added",
		zap.String("title", rule.Title),
		zap.String("scope", string(rule.Scope)),
		zap.String("channel_id", rule.ChannelID),
	)
	return nil
}

// Remove deletes the first rule with the same scope-determining fields.
// A missing rule is reported via removed=false, not an error.
func (s *Store) Remove(ctx context.Context, rule domain.ExclusionRule) (removed bool, err error) {
	if err := rule.Validate(); err != nil {
		return false, err
	}
	rule.Canonicalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.containsLocked(rule) {
		return false, nil
	}

	if err := s.repo.Delete(ctx, rule); err != nil {
		return false, err
	}

	identity := rule.IdentityKey()
	for i := range s.rules {
		if s.rules[i].IdentityKey() == identity {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			break
		}
	}
	delete(s.scopeIndex(rule.Scope), identity)

	s.logger.Info("Exclusion rule removed",
		zap.String("title", rule.Title),
		zap.String("scope", string(rule.Scope)),
	)
	return true, nil
}

// List returns the rules in insertion order.
func (s *Store) List() []domain.ExclusionRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ExclusionRule, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

func (s *Store) containsLocked(rule domain.ExclusionRule) bool {
	_, ok := s.scopeIndex(rule.Scope)[rule.IdentityKey()]
	return ok
}

func (s *Store) indexLocked(rule domain.ExclusionRule) {
	s.rules = append(s.rules, rule)
	s.scopeIndex(rule.Scope)[rule.IdentityKey()] = struct{}{}
}

func (s *Store) scopeIndex(scope domain.ExclusionScope) map[string]struct{} {
	switch scope {
	case domain.ScopeBroadcast:
		return s.broadcast
	case domain.ScopeChannel:
		return s.channel
	default:
		return s.global
	}
}
