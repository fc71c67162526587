package game

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/storage"
)

const (
	motd       = "Welcome to Azimuth"
	loginUsage = "You must 'login <user> <pass>' or 'register <user> <pass> <email>' first."
)

// Connect registers a new anonymous session delivering to sink. On a closed
// world the session is returned already closed.
func (w *World) Connect(ctx context.Context, remote string, sink Sink) *Session {
	s := newSession(ctx, remote, sink, w.outboxSize)
	select {
	case <-w.stopped:
		log.Printf("session %s: refused %s, world is closed", s.ID, remote)
		s.close()
		return s
	default:
	}
	w.sessions.Set(s.ID, s)
	log.Printf("session %s: connected from %s", s.ID, remote)
	s.Tell(motd)
	s.Tell(loginUsage)
	return s
}

// Handle processes one line of input from s to completion.
func (w *World) Handle(ctx context.Context, s *Session, line string) error {
	return w.do(storage.SetSessionID(ctx, s.ID), s, func(ctx context.Context) error {
		switch s.State() {
		case StateDisconnected:
			return nil
		case StateActive:
			p := s.Player()
			p.LastActive = time.Now()
			return w.resolve(ctx, p, line)
		}
		return w.authenticate(ctx, s, line)
	})
}

// Disconnect ends s. It is safe to call more than once.
func (w *World) Disconnect(ctx context.Context, s *Session) error {
	err := w.do(storage.SetSessionID(ctx, s.ID), s, func(ctx context.Context) error {
		w.disconnect(ctx, s)
		return nil
	})
	if errors.Is(err, ErrClosed) {
		w.sessions.Del(s.ID)
		s.close()
	}
	return err
}

func (w *World) authenticate(ctx context.Context, s *Session, line string) error {
	words, err := shellwords.SplitPosix(strings.TrimSpace(line))
	if err != nil || len(words) == 0 {
		s.Tell(loginUsage)
		return nil
	}
	switch strings.ToLower(words[0]) {
	case "login":
		if len(words) == 3 {
			return w.login(ctx, s, words[1], words[2])
		}
	case "register":
		if len(words) == 4 {
			return w.register(ctx, s, words[1], words[2], words[3])
		}
	}
	s.Tell(loginUsage)
	return nil
}

func (w *World) login(ctx context.Context, s *Session, username, password string) error {
	s.setState(StateAuthenticating)
	defer func() {
		if s.State() == StateAuthenticating {
			s.setState(StateAnonymous)
		}
	}()

	if !w.limiter.allowed(username) {
		s.Tell("Please wait before trying again.")
		return nil
	}
	var p *Player
	if id, found := w.players.Get(username); found {
		if ch, ok := w.GetObject(ctx, id).(Character); ok {
			p = ch.GetPlayer()
		}
	}
	if p == nil || !verifyPassword(password, p.PasswordHash) {
		w.limiter.recordFailure(username)
		ref, reason := storage.Ref("", username), "unknown user"
		if p != nil {
			ref, reason = storage.Ref(p.ID, p.Name), "wrong password"
		}
		w.audit.Log(ctx, storage.AuditEventLoginFailed, storage.AuditLoginFailed{
			User:   ref,
			Reason: reason,
			Remote: s.Remote,
		})
		s.Tell("Username and password do not match.")
		return nil
	}
	if p.session != nil {
		s.Tell(fmt.Sprintf("%s is already logged in.", username))
		return nil
	}
	w.limiter.clearFailure(username)
	w.audit.Log(ctx, storage.AuditEventUserLogin, storage.AuditUserLogin{
		User:   storage.Ref(p.ID, p.Name),
		Remote: s.Remote,
	})
	s.Tell(fmt.Sprintf("Welcome back, %s!", p.Name))
	return w.attach(ctx, s, p)
}

func (w *World) register(ctx context.Context, s *Session, username, password, email string) error {
	s.setState(StateAuthenticating)
	defer func() {
		if s.State() == StateAuthenticating {
			s.setState(StateAnonymous)
		}
	}()

	if err := validateUsername(username); err != nil {
		s.Tell(err.Error())
		return nil
	}
	if _, found := w.players.Get(username); found {
		s.Tell(fmt.Sprintf("Username '%s' is already taken, please try another username.", username))
		return nil
	}
	p, err := w.createPlayer(ctx, VariantPlayer, username, password)
	if err != nil {
		return err
	}
	w.audit.Log(ctx, storage.AuditEventUserCreate, storage.AuditUserCreate{
		User:   storage.Ref(p.ID, p.Name),
		Email:  email,
		Remote: s.Remote,
	})
	s.Tell("Registration successful!")
	return w.attach(ctx, s, p)
}

// createPlayer creates, indexes and saves a new character of variant v,
// starting in the start room.
func (w *World) createPlayer(ctx context.Context, v Variant, username, password string) (*Player, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	e, err := w.Create(ctx, v, username, nil)
	if err != nil {
		return nil, err
	}
	ch, ok := e.(Character)
	if !ok {
		return nil, errors.Errorf("%s is not a character variant", v)
	}
	p := ch.GetPlayer()
	p.Username = username
	p.PasswordHash = hash
	p.LastLocation = w.config.GetStartRoom()
	p.Description = fmt.Sprintf("A nondescript %s.", strings.ToLower(string(v)))
	if !w.players.Add(username, p.ID) {
		delete(w.cache, p.ID)
		return nil, errors.Errorf("username %q already taken", username)
	}
	if err := w.Save(ctx, e); err != nil {
		return nil, err
	}
	if err := w.store.Save(ctx, w.players.Record()); err != nil {
		return nil, azimuth.WithStack(err)
	}
	return p, nil
}

// attach makes s control p, and puts p where it last was.
func (w *World) attach(ctx context.Context, s *Session, p *Player) error {
	p.session = s
	p.LastActive = time.Now()
	s.setPlayer(p)
	s.setState(StateActive)
	w.online[p.ID] = p

	dest, _ := w.GetObject(ctx, p.LastLocation).(*Place)
	if dest == nil {
		if dest = w.StartRoom(ctx); dest == nil {
			return errors.Errorf("world %q has no start room", w.id)
		}
	}
	w.Move(p.self, dest)
	dest.Announce(fmt.Sprintf("%s has connected.", p.Name), p.self)
	return nil
}

// disconnect saves and removes the player of s from the world, and closes s.
func (w *World) disconnect(ctx context.Context, s *Session) {
	if s.State() == StateDisconnected {
		return
	}
	if p := s.Player(); p != nil {
		pl := p.Place()
		if pl != nil {
			p.LastLocation = pl.ID
		}
		if err := w.Save(ctx, p.self); err != nil {
			log.Printf("saving %s on disconnect: %v", p.Name, err)
		}
		w.Move(p.self, nil)
		p.session = nil
		delete(w.online, p.ID)
		if pl != nil {
			pl.Announce(fmt.Sprintf("%s has disconnected.", p.Name))
		}
		w.audit.Log(ctx, storage.AuditEventSessionEnd, storage.AuditSessionEnd{
			User: storage.Ref(p.ID, p.Name),
		})
	}
	w.sessions.Del(s.ID)
	s.close()
	log.Printf("session %s: disconnected", s.ID)
}
