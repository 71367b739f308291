// Package memory implements the conversation and long-term memory
// store for the Synapse pipeline. A Store owns the bounded session
// transcript and the topic-tagged long-term entry collection, and
// exposes keyword/time-windowed search over the latter.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/normanking/synapse/pkg/types"
)

const (
	// DefaultMaxSessionMessages bounds session history; the oldest
	// message is evicted on overflow.
	DefaultMaxSessionMessages = 200

	// DefaultMaxSearchResults caps search results when the caller does
	// not specify a limit.
	DefaultMaxSearchResults = 5

	// baseRelevance is the flat score assigned to every entry when a
	// search carries no keywords at all.
	baseRelevance = 0.1

	// topicMatchWeight weights topic hits over content hits in scoring.
	topicMatchWeight = 2.0
)

// SearchOptions narrows a long-term memory search.
type SearchOptions struct {
	// Timeframe excludes entries older than the window's cutoff.
	Timeframe types.Timeframe

	// Keywords are merged with keywords extracted from the query text.
	Keywords []string

	// MaxResults caps returned entries (default 5).
	MaxResults int
}

// SearchResult is the outcome of a long-term memory search.
type SearchResult struct {
	Entries     []types.MemoryEntry `json:"entries"`
	TotalFound  int                 `json:"total_found"`
	SearchQuery string              `json:"search_query"`
}

// Store holds one session's message history plus the process-lifetime
// long-term memory collection. All methods are safe for concurrent use;
// tools running in parallel read and the orchestrator writes.
type Store struct {
	mu sync.RWMutex

	sessionID  string
	startedAt  time.Time
	session    []types.Message
	maxSession int

	// Long-term entries grow monotonically for the process lifetime.
	// No eviction policy exists in this design.
	longTerm []types.MemoryEntry
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxSessionMessages overrides the session history bound.
func WithMaxSessionMessages(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxSession = n
		}
	}
}

// NewStore creates a memory store for the given session. An empty
// session ID gets a generated one.
func NewStore(sessionID string, opts ...StoreOption) *Store {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s := &Store{
		sessionID:  sessionID,
		startedAt:  time.Now(),
		maxSession: DefaultMaxSessionMessages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionID returns the owning session's identifier.
func (s *Store) SessionID() string {
	return s.sessionID
}

// StartedAt returns when the session began.
func (s *Store) StartedAt() time.Time {
	return s.startedAt
}

// AddToSession appends a message to session history, evicting the
// oldest message when the bound is exceeded.
func (s *Store) AddToSession(msg types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = append(s.session, msg)
	if len(s.session) > s.maxSession {
		s.session = s.session[len(s.session)-s.maxSession:]
	}
}

// SessionHistory returns a copy of the session transcript in order.
func (s *Store) SessionHistory() []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Message, len(s.session))
	copy(out, s.session)
	return out
}

// SessionLen returns the number of messages in session history.
func (s *Store) SessionLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.session)
}

// ClearSession empties session history. Long-term memory is unaffected.
// Clearing an already-empty session is a no-op.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// AddToLongTerm records a new long-term entry and returns it.
func (s *Store) AddToLongTerm(content string, topics []string) types.MemoryEntry {
	entry := types.NewMemoryEntry(content, topics)

	s.mu.Lock()
	s.longTerm = append(s.longTerm, entry)
	total := len(s.longTerm)
	s.mu.Unlock()

	log.Debug().
		Str("session_id", s.sessionID).
		Strs("topics", topics).
		Int("total_entries", total).
		Msg("long-term memory entry added")

	return entry
}

// LongTermCount returns the number of long-term entries.
func (s *Store) LongTermCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.longTerm)
}

// Search scores long-term entries against the query and options.
//
// Procedure: filter by timeframe cutoff when given; merge stop-word
// filtered query keywords with supplied keywords; score each entry as
// (content matches + 2×topic matches) / |keywords|, or a flat 0.1 when
// no keywords exist; keep entries scoring above zero; sort descending
// by score (stable); cap at MaxResults.
func (s *Store) Search(query string, opts SearchOptions) SearchResult {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxSearchResults
	}

	keywords := types.ExtractKeywords(query)
	for _, kw := range opts.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || containsString(keywords, kw) {
			continue
		}
		keywords = append(keywords, kw)
	}

	cutoff := opts.Timeframe.Cutoff(time.Now())

	s.mu.RLock()
	candidates := make([]types.MemoryEntry, len(s.longTerm))
	copy(candidates, s.longTerm)
	s.mu.RUnlock()

	scored := make([]types.MemoryEntry, 0, len(candidates))
	for _, entry := range candidates {
		if !cutoff.IsZero() && entry.Timestamp.Before(cutoff) {
			continue
		}

		score := scoreEntry(entry, keywords)
		if score <= 0 {
			continue
		}

		entry.RelevanceScore = score
		scored = append(scored, entry)
	}

	totalFound := len(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	return SearchResult{
		Entries:     scored,
		TotalFound:  totalFound,
		SearchQuery: query,
	}
}

// scoreEntry computes an entry's relevance for the given keywords.
// With no keywords every entry receives the flat base score.
func scoreEntry(entry types.MemoryEntry, keywords []string) float64 {
	if len(keywords) == 0 {
		return baseRelevance
	}

	content := strings.ToLower(entry.Content)
	matches := 0.0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			matches++
		}
		for _, topic := range entry.Topics {
			if strings.Contains(strings.ToLower(topic), kw) {
				matches += topicMatchWeight
				break
			}
		}
	}
	return matches / float64(len(keywords))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
