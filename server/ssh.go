package server

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/azimuth/game"
	"golang.org/x/term"
)

const (
	prompt = "> "
)

// terminalSink writes session output through the line editing terminal, so
// that output arriving while the user types doesn't garble the input line.
type terminalSink struct {
	term *term.Terminal
	sess ssh.Session
}

func (t terminalSink) Send(msg string) error {
	_, err := fmt.Fprintln(t.term, msg)
	return err
}

func (t terminalSink) Close() error {
	return t.sess.Close()
}

func (s *Server) handleSSH(sess ssh.Session) {
	ctx := sess.Context()
	t := term.NewTerminal(sess, prompt)
	session := s.world.Connect(ctx, sess.RemoteAddr().String(), terminalSink{term: t, sess: sess})
	defer func() {
		if err := s.world.Disconnect(context.Background(), session); err != nil && !errors.Is(err, game.ErrClosed) {
			log.Printf("disconnecting %s: %v", session.ID, err)
		}
	}()
	for {
		line, err := t.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("reading from %s: %v", session.ID, err)
			}
			return
		}
		if err := s.world.Handle(ctx, session, line); err != nil {
			log.Printf("handling input from %s: %v", session.ID, err)
			return
		}
		select {
		case <-session.Done():
			return
		default:
		}
	}
}
