// Package server exposes a world over SSH and websockets.
package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/crypto"
	"github.com/zond/azimuth/game"
	"github.com/zond/azimuth/storage"

	gossh "golang.org/x/crypto/ssh"
)

type Server struct {
	config Config
	store  storage.Store
	audit  *storage.AuditLogger
	world  *game.World
	signer gossh.Signer

	sshServer  *ssh.Server
	httpServer *http.Server
}

// New opens the store and the world described by config. The host key is
// generated if it doesn't exist.
func New(ctx context.Context, config Config) (*Server, error) {
	if err := os.MkdirAll(config.Dir, 0700); err != nil {
		return nil, azimuth.WithStack(err)
	}
	privPath, pubPath := config.hostKeyPaths()
	_, signer, err := crypto.HostKey{
		PrivKeyPath:   privPath,
		SSHPubKeyPath: pubPath,
		Bits:          config.HostKeyBits,
	}.Load()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, config.Store, config.Dir)
	if err != nil {
		return nil, err
	}
	audit := storage.NewAuditLogger(config.auditPath(), config.AuditMaxSizeMB)
	world, err := game.New(ctx, game.Options{
		WorldID:        config.WorldID,
		Store:          store,
		Audit:          audit,
		WizardPassword: config.WizardPassword,
	})
	if err != nil {
		store.Close()
		audit.Close()
		return nil, err
	}
	s := &Server{
		config: config,
		store:  store,
		audit:  audit,
		world:  world,
		signer: signer,
	}
	s.sshServer = &ssh.Server{Handler: s.handleSSH}
	s.sshServer.AddHostKey(signer)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Handler: mux}
	return s, nil
}

func (s *Server) World() *game.World {
	return s.world
}

// ServeSSH accepts SSH connections on ln until the server is closed.
func (s *Server) ServeSSH(ln net.Listener) error {
	log.Printf("Listening for SSH on %q with public key %q", ln.Addr(), gossh.FingerprintSHA256(s.signer.PublicKey()))
	if err := s.sshServer.Serve(ln); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return azimuth.WithStack(err)
	}
	return nil
}

// ServeWS accepts websocket connections at /ws on ln until the server is
// closed.
func (s *Server) ServeWS(ln net.Listener) error {
	log.Printf("Listening for websockets on %q", ln.Addr())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return azimuth.WithStack(err)
	}
	return nil
}

// Start listens on the configured addresses and serves until ctx is done or
// a listener fails. The server is closed when Start returns.
func (s *Server) Start(ctx context.Context) error {
	errs := make(chan error, 2)
	sshLn, err := net.Listen("tcp", s.config.SSHAddr)
	if err != nil {
		s.Close(ctx)
		return azimuth.WithStack(err)
	}
	go func() {
		errs <- s.ServeSSH(sshLn)
	}()
	if s.config.WSAddr != "" {
		wsLn, err := net.Listen("tcp", s.config.WSAddr)
		if err != nil {
			s.Close(ctx)
			return azimuth.WithStack(err)
		}
		go func() {
			errs <- s.ServeWS(wsLn)
		}()
	}
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errs:
	}
	if closeErr := s.Close(context.Background()); err == nil {
		err = closeErr
	}
	return err
}

// Close stops accepting connections, disconnects every session and closes
// the world and its store.
func (s *Server) Close(ctx context.Context) error {
	if err := s.sshServer.Close(); err != nil {
		log.Printf("closing SSH server: %v", err)
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("closing websocket server: %v", err)
	}
	err := s.world.Close(ctx)
	if closeErr := s.store.Close(); err == nil {
		err = closeErr
	}
	if closeErr := s.audit.Close(); err == nil {
		err = closeErr
	}
	return err
}
