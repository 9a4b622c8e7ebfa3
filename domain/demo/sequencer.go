package demo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrSuperseded is returned by Start and Send when a later Start reset the transcript.
	ErrSuperseded = errors.New("demo: superseded by a newer run")
	ErrClosed     = errors.New("demo: sequencer closed")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role     Role      `json:"role"`
	Text     string    `json:"text"`
	Contacts []Contact `json:"contacts,omitempty"`
}

// Transcript is a point-in-time copy of a sequencer's state.
type Transcript struct {
	Generation uint64
	Messages   []Message
	Composing  bool
}

// Delayer pauses a step of the script. Sleep returns ctx.Err() when ctx ends first.
type Delayer interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type ClockDelayer struct{}

func (ClockDelayer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Timings struct {
	LeadIn       time.Duration // before the first scripted query
	Pause        time.Duration // between a scripted query and its answer
	Typing       time.Duration // composing time for every answer
	BetweenTurns time.Duration // after an answer, before the next scripted query
}

func DefaultTimings() Timings {
	return Timings{
		LeadIn:       500 * time.Millisecond,
		Pause:        1000 * time.Millisecond,
		Typing:       1500 * time.Millisecond,
		BetweenTurns: 2000 * time.Millisecond,
	}
}

// scriptedQueries are replayed by Start, one turn each.
var scriptedQueries = []string{
	"Show me companies dealing in software",
	"Which ones are startups?",
}

// Sequencer replays the scripted chat and answers ad-hoc queries.
//
// Every Reset opens a new generation: the previous generation's context is
// cancelled and anything it still had pending is dropped. Answers within a
// generation are appended strictly in the order their queries arrived.
type Sequencer struct {
	delayer Delayer
	timings Timings

	mu         sync.Mutex
	turn       *sync.Cond
	generation uint64
	genCtx     context.Context
	cancel     context.CancelFunc
	closed     bool
	messages   []Message
	pending    int // tickets taken and not yet answered
	pausing    int // scripted tickets still in their pre-answer pause
	nextTicket uint64
	serving    uint64

	subscribers map[int]chan struct{}
	nextSubID   int
}

func NewSequencer(delayer Delayer, timings Timings) *Sequencer {
	if delayer == nil {
		delayer = ClockDelayer{}
	}

	s := &Sequencer{
		delayer:     delayer,
		timings:     timings,
		subscribers: make(map[int]chan struct{}),
	}
	s.turn = sync.NewCond(&s.mu)
	s.genCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start clears the transcript and plays the scripted conversation. It blocks
// until the script finishes, ctx ends, or a newer Start supersedes it; ctx also
// bounds every Send issued during this generation.
func (s *Sequencer) Start(ctx context.Context) error {
	gen, err := s.Reset(ctx)
	if err != nil {
		return err
	}
	return s.Play(gen)
}

// Reset clears the transcript and opens a new generation bound to ctx.
// Anything still pending from the previous generation is dropped.
func (s *Sequencer) Reset(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	s.cancel()
	s.generation++
	s.genCtx, s.cancel = context.WithCancel(ctx)
	s.messages = nil
	s.pending = 0
	s.pausing = 0
	s.nextTicket = 0
	s.serving = 0
	s.turn.Broadcast()
	s.notifyLocked()

	return s.generation, nil
}

// Play replays the scripted queries into generation gen and returns
// ErrSuperseded as soon as gen is no longer current.
func (s *Sequencer) Play(gen uint64) error {
	s.mu.Lock()
	if s.generation != gen || s.closed {
		s.mu.Unlock()
		return ErrSuperseded
	}
	genCtx := s.genCtx
	s.mu.Unlock()

	if err := s.sleep(genCtx, gen, s.timings.LeadIn); err != nil {
		return err
	}

	for i, query := range scriptedQueries {
		if i > 0 {
			if err := s.sleep(genCtx, gen, s.timings.BetweenTurns); err != nil {
				return err
			}
		}

		ticket, ok := s.enqueueScripted(gen, query)
		if !ok {
			return ErrSuperseded
		}

		// The ticket is queued, so the query is answered even if ctx ends mid-pause.
		pauseErr := s.sleep(genCtx, gen, s.timings.Pause)
		if errors.Is(pauseErr, ErrSuperseded) || !s.endPause(gen) {
			return ErrSuperseded
		}

		if err := s.answer(genCtx, gen, ticket, query); err != nil {
			return err
		}
		if pauseErr != nil {
			return pauseErr
		}
	}

	return nil
}

// Send appends the query and blocks until its answer is appended. Blank queries
// are a no-op. Cancelling ctx only cuts the typing delay short: once queued,
// the query always gets its reply unless a newer Start resets the transcript.
func (s *Sequencer) Send(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	gen := s.generation
	genCtx := s.genCtx
	s.messages = append(s.messages, Message{Role: RoleUser, Text: query})
	ticket := s.enqueueLocked()
	s.notifyLocked()
	s.mu.Unlock()

	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(genCtx, cancel)
	defer stop()

	return s.answer(sendCtx, gen, ticket, query)
}

func (s *Sequencer) Snapshot() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Transcript{
		Generation: s.generation,
		Messages:   append([]Message(nil), s.messages...),
		Composing:  s.pending > s.pausing,
	}
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; read Snapshot for the state.
func (s *Sequencer) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close cancels the current generation; later Start and Send calls fail with ErrClosed.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.turn.Broadcast()
}

// answer waits for the ticket's turn, composes, and appends the matched reply.
// A cancelled ctx shortens the composing delay but never drops the reply.
func (s *Sequencer) answer(ctx context.Context, gen, ticket uint64, query string) error {
	s.mu.Lock()
	for s.serving != ticket && s.generation == gen && !s.closed {
		s.turn.Wait()
	}
	if s.generation != gen || s.closed {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.mu.Unlock()

	_ = s.delayer.Sleep(ctx, s.timings.Typing)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.closed {
		return ErrSuperseded
	}

	reply := Match(query)
	s.messages = append(s.messages, Message{Role: RoleAssistant, Text: reply.Label, Contacts: reply.Contacts})
	s.serving++
	s.pending--
	s.turn.Broadcast()
	s.notifyLocked()

	return nil
}

// enqueueScripted appends a scripted query and takes its ticket in one step,
// so queries sent while it pauses are answered after it.
func (s *Sequencer) enqueueScripted(gen uint64, query string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.closed {
		return 0, false
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Text: query})
	ticket := s.enqueueLocked()
	s.pausing++
	s.notifyLocked()
	return ticket, true
}

func (s *Sequencer) endPause(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.closed {
		return false
	}

	s.pausing--
	s.notifyLocked()
	return true
}

func (s *Sequencer) enqueueLocked() uint64 {
	ticket := s.nextTicket
	s.nextTicket++
	s.pending++
	return ticket
}

func (s *Sequencer) sleep(ctx context.Context, gen uint64, d time.Duration) error {
	if err := s.delayer.Sleep(ctx, d); err != nil {
		if s.superseded(gen) {
			return ErrSuperseded
		}
		return err
	}
	return nil
}

func (s *Sequencer) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != gen || s.closed
}

func (s *Sequencer) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
