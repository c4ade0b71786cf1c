package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// ErrPartialSession is returned by Set for a session missing its user or token.
var ErrPartialSession = errors.New("partial session")

// Persister stores the session outside the process.
// Load returns the zero Session when nothing is stored.
type Persister interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context) (models.Session, error)
	Clear(ctx context.Context) error
}

type subscription struct {
	id int
	fn func(models.Session)
}

type Store struct {
	mu        sync.RWMutex
	current   models.Session
	persister Persister
	logger    logging.Logger
	now       func() time.Time

	subsMu sync.Mutex
	subs   []subscription
	nextID int
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{logger: logging.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "session")
	return s
}

// Get returns the current session and whether it is present. A session
// whose token has expired is reported as absent but kept until Clear.
func (s *Store) Get() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.live()
}

// User returns the identity of the current session, or "".
func (s *Store) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.live() {
		return ""
	}
	return s.current.User
}

// Token returns the bearer token of the current session, or "" when there is
// no session or its token has expired.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.live() {
		return ""
	}
	return s.current.Token
}

// live must be called with mu held.
func (s *Store) live() bool {
	return s.current.Valid() && !s.current.Expired(s.now())
}

// Set replaces the session as a whole. The session is persisted even when
// ctx has already been cancelled: the server has issued it by then.
func (s *Store) Set(ctx context.Context, sess models.Session) error {
	if !sess.Valid() {
		return ErrPartialSession
	}

	s.mu.Lock()
	if s.persister != nil {
		if err := s.persister.Save(context.WithoutCancel(ctx), sess); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("persist session: %w", err)
		}
	}
	s.current = sess
	s.mu.Unlock()

	s.logger.Debug(ctx, "session set", "user", sess.User, "user_id", sess.UserID)
	s.notify(sess)
	return nil
}

// Clear removes the session. Clearing an absent session is a no-op and does
// not notify.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear persisted session: %w", err)
		}
	}
	wasSet := !s.current.IsZero()
	s.current = models.Session{}
	s.mu.Unlock()

	if wasSet {
		s.logger.Debug(ctx, "session cleared")
		s.notify(models.Session{})
	}
	return nil
}

// Load restores the persisted session. Stored sessions that are partial or
// whose token has expired are discarded from the persister. Load is a no-op
// without a persister.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	stored, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if stored.IsZero() {
		return nil
	}

	if !stored.Valid() || stored.Expired(s.now()) {
		s.logger.Info(ctx, "discarding stored session", "user", stored.User, "expired", stored.Expired(s.now()))
		if err := s.persister.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted session: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	s.logger.Info(ctx, "session restored", "user", stored.User)
	s.notify(stored)
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that unregisters it. fn receives the new session; the zero Session means
// the session was cleared.
func (s *Store) Subscribe(fn func(models.Session)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(sess models.Session) {
	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(sess)
	}
}
