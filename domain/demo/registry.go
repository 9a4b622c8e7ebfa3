package demo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrSessionNotFound  = errors.New("demo: session not found")
	ErrTooManySessions  = errors.New("demo: session limit reached")
	ErrRegistryShutdown = errors.New("demo: registry is shut down")
)

const (
	DefaultMaxSessions = 1000
	DefaultSessionTTL  = 30 * time.Minute
)

type RegistryConfig struct {
	MaxSessions int
	SessionTTL  time.Duration
	Timings     Timings
	Delayer     Delayer
}

// Session is one visitor's demo. Its context ends when the session expires
// or the registry shuts down.
type Session struct {
	ID        string
	Sequencer *Sequencer

	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen time.Time
}

func (s *Session) Context() context.Context {
	return s.ctx
}

// Registry holds sequencers by session ID, bounded in count and expired when idle.
type Registry struct {
	cfg    RegistryConfig
	active prometheus.Gauge
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	shutdown bool
}

func NewRegistry(cfg RegistryConfig, reg prometheus.Registerer) *Registry {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Delayer == nil {
		cfg.Delayer = ClockDelayer{}
	}

	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "demo_sessions_active",
		Help: "Demo chat sessions currently held in memory.",
	})
	if reg != nil {
		if err := reg.Register(active); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
					active = existing
				}
			}
		}
	}

	return &Registry{
		cfg:      cfg,
		active:   active,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session. Idle sessions are swept first, so the limit only
// counts visitors seen within the TTL.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return nil, ErrRegistryShutdown
	}

	r.sweepLocked()
	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		ID:        uuid.NewString(),
		Sequencer: NewSequencer(r.cfg.Delayer, r.cfg.Timings),
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  r.now(),
	}
	r.sessions[session.ID] = session
	r.active.Set(float64(len(r.sessions)))

	return session, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if r.expiredLocked(session) {
		r.removeLocked(session)
		return nil, ErrSessionNotFound
	}

	session.lastSeen = r.now()
	return session, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Shutdown closes every session and refuses new ones.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shutdown = true
	for _, session := range r.sessions {
		r.removeLocked(session)
	}
}

func (r *Registry) sweepLocked() {
	for _, session := range r.sessions {
		if r.expiredLocked(session) {
			r.removeLocked(session)
		}
	}
}

func (r *Registry) expiredLocked(session *Session) bool {
	return r.now().Sub(session.lastSeen) > r.cfg.SessionTTL
}

func (r *Registry) removeLocked(session *Session) {
	session.Sequencer.Close()
	session.cancel()
	delete(r.sessions, session.ID)
	r.active.Set(float64(len(r.sessions)))
}
