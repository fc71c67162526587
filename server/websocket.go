package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/zond/azimuth/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSink sends each message as one text frame.
type wsSink struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

func (w *wsSink) Send(msg string) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (w *wsSink) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if closeErr := w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait)); closeErr != nil {
			log.Printf("sending websocket close to %s: %v", w.conn.RemoteAddr(), closeErr)
		}
		err = w.conn.Close()
	})
	return err
}

// pingPump keeps the connection alive until the sink is closed.
func (w *wsSink) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("upgrading %s: %v", r.RemoteAddr, err)
		return
	}
	sink := &wsSink{conn: conn, done: make(chan struct{})}
	go sink.pingPump()
	ctx := context.Background()
	session := s.world.Connect(ctx, r.RemoteAddr, sink)
	defer func() {
		if err := s.world.Disconnect(ctx, session); err != nil && !errors.Is(err, game.ErrClosed) {
			log.Printf("disconnecting %s: %v", session.ID, err)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("setting read deadline for %s: %v", session.ID, err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("reading from %s: %v", session.ID, err)
			}
			return
		}
		if err := s.world.Handle(ctx, session, string(msg)); err != nil {
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
