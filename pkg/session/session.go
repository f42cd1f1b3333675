package session

import (
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/view"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const DefaultTTL = 30 * time.Minute

// Session is one browser page session: the form being edited and the view it is on
type Session struct {
	ID         string
	Controller *formstate.Controller
	Router     *view.Router
}

// Store keeps sessions in memory and forgets them after ttl without access
type Store struct {
	sessions      *cache.Cache
	newController func() *formstate.Controller
}

func NewStore(ttl time.Duration, newController func() *formstate.Controller) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		sessions:      cache.New(ttl, ttl/2),
		newController: newController,
	}
}

func (s *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	item, found := s.sessions.Get(id)
	if !found {
		return nil, false
	}

	// Touch to extend the idle timeout
	s.sessions.SetDefault(id, item)

	return item.(*Session), true
}

func (s *Store) Create() *Session {
	session := &Session{
		ID:         uuid.NewString(),
		Controller: s.newController(),
		Router:     view.NewRouter(),
	}

	s.sessions.SetDefault(session.ID, session)

	log.Debug().Str("session", session.ID).Msg("Created new form session")

	return session
}

// GetOrCreate returns the session for id, or a fresh one with default form values
// when id is unknown or has expired
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if session, found := s.Get(id); found {
		return session, false
	}

	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

func (s *Store) Count() int {
	return s.sessions.ItemCount()
}
