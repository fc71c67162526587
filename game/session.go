package game

import (
	"context"
	"log"
	"sync"

	"github.com/zond/azimuth/storage"
)

const (
	defaultOutboxSize = 256
)

// SessionState is the lifecycle stage of a connection.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticating
	StateActive
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Sink is the transport side of a session.
type Sink interface {
	Send(msg string) error
	Close() error
}

type outbound struct {
	msg string
	ack chan struct{}
}

// Session is one connection to the world. Messages to it are queued in an
// outbox and delivered to the sink by a goroutine of its own, so that a slow
// client never blocks the world.
type Session struct {
	ID     string
	Remote string

	ctx  context.Context
	sink Sink
	done chan struct{}

	// outMu guards out and closed. Senders share it, close takes it alone.
	outMu  sync.RWMutex
	out    chan outbound
	closed bool

	mu     sync.Mutex
	state  SessionState
	player *Player
}

func newSession(ctx context.Context, remote string, sink Sink, size int) *Session {
	if size <= 0 {
		size = defaultOutboxSize
	}
	s := &Session{
		ID:     storage.GenerateSessionID(),
		Remote: remote,
		sink:   sink,
		out:    make(chan outbound, size),
		done:   make(chan struct{}),
	}
	s.ctx = storage.SetSessionID(ctx, s.ID)
	go s.deliver()
	return s
}

func (s *Session) deliver() {
	defer close(s.done)
	for o := range s.out {
		if o.ack != nil {
			close(o.ack)
			continue
		}
		if err := s.sink.Send(o.msg); err != nil {
			log.Printf("session %s: sending to %s: %v", s.ID, s.Remote, err)
		}
	}
	if err := s.sink.Close(); err != nil {
		log.Printf("session %s: closing %s: %v", s.ID, s.Remote, err)
	}
}

// Tell queues msg without blocking. When the outbox is full the message is
// dropped.
func (s *Session) Tell(msg string) {
	s.outMu.RLock()
	defer s.outMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.out <- outbound{msg: msg}:
	default:
		log.Printf("session %s: outbox full, dropping %q", s.ID, msg)
	}
}

// Flush blocks until every message queued before it has been handed to the
// sink. Tell keeps working while Flush waits for room in a full outbox.
func (s *Session) Flush() {
	ack := make(chan struct{})
	s.outMu.RLock()
	if s.closed {
		s.outMu.RUnlock()
		<-s.done
		return
	}
	s.out <- outbound{ack: ack}
	s.outMu.RUnlock()
	<-ack
}

// Done is closed once the session is closed, the outbox drained and the sink
// closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Player returns the player attached to an active session.
func (s *Session) Player() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

func (s *Session) setPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// close stops accepting messages. The queued ones are still delivered.
func (s *Session) close() {
	s.setState(StateDisconnected)
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}
