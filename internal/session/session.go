// Package session holds the per-user application state the original
// client kept in ad-hoc mutable contexts: the account catalog, one feed
// per account, and the transfer executor. State is explicit and injected;
// there are no ambient singletons.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/domain"
	"github.com/oakline/banklink/internal/feed"
	"github.com/oakline/banklink/internal/transfer"
)

type Session struct {
	UserID   string
	FullName string

	mu      sync.RWMutex
	catalog domain.Catalog
	feeds   map[string]*feed.Feed
	closed  bool

	fetcher  feed.Fetcher
	executor *transfer.Executor
	log      zerolog.Logger
}

func New(userID, fullName string, catalog domain.Catalog, fetcher feed.Fetcher, executor *transfer.Executor, log zerolog.Logger) *Session {
	return &Session{
		UserID:   userID,
		FullName: fullName,
		catalog:  catalog,
		feeds:    make(map[string]*feed.Feed),
		fetcher:  fetcher,
		executor: executor,
		log:      log.With().Str("user_id", userID).Logger(),
	}
}

func (s *Session) Catalog() domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(domain.Catalog, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// ReplaceCatalog swaps in a freshly fetched catalog wholesale and pushes
// the new owned set into existing feeds. Feeds for accounts that vanished
// are closed.
func (s *Session) ReplaceCatalog(catalog domain.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog

	owned := catalog.OwnedSet()
	for id, f := range s.feeds {
		if _, ok := owned[id]; !ok {
			f.Close()
			delete(s.feeds, id)
			continue
		}
		f.UpdateOwned(owned)
	}
}

// Feed returns the feed for an owned account, creating it on first use.
// The second return is false when the account is not in the catalog.
func (s *Session) Feed(accountID string) (*feed.Feed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.catalog.Owns(accountID) {
		return nil, false
	}
	f, ok := s.feeds[accountID]
	if !ok {
		f = feed.New(s.fetcher, accountID, s.catalog.OwnedSet(), s.log)
		s.feeds[accountID] = f
	}
	return f, true
}

func (s *Session) Executor() *transfer.Executor {
	return s.executor
}

// AppendTransaction pushes an optimistic record into the feeds of every
// owned account party to it. Feeds that were never opened are skipped; a
// later Refresh will pick the record up from upstream anyway.
func (s *Session) AppendTransaction(rec domain.TransactionRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range []string{rec.SourceAccountID, rec.DestinationAccountID} {
		if f, ok := s.feeds[id]; ok {
			f.Append(rec)
		}
	}
}

// Close tears the session down; late async results must not resurrect it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, f := range s.feeds {
		f.Close()
	}
	s.feeds = make(map[string]*feed.Feed)
}

// Store is the in-memory session registry, keyed by user id. One logical
// session per user: a fresh login replaces (and closes) the previous one.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if prev, ok := st.sessions[s.UserID]; ok {
		prev.Close()
	}
	st.sessions[s.UserID] = s
}

func (st *Store) Get(userID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	return s, ok
}

func (st *Store) Delete(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userID]; ok {
		s.Close()
		delete(st.sessions, userID)
	}
}
