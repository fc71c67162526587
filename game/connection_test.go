package game

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestConnectGreets(t *testing.T) {
	withWorld(t, func(w *World) {
		sink := &recordingSink{}
		s := w.Connect(context.Background(), "127.0.0.1:4711", sink)
		s.Flush()
		if got, want := sink.take(), motd+"\n"+loginUsage; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if s.State() != StateAnonymous {
			t.Errorf("new session is %v", s.State())
		}
	})
}

func TestAuthenticationUsage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "unknown verb", input: "look"},
		{name: "login without password", input: "login alice"},
		{name: "login with too much", input: "login alice secret extra"},
		{name: "register without email", input: "register alice secret"},
		{name: "unbalanced quotes", input: `login "alice secret`},
	}
	withWorld(t, func(w *World) {
		c := connect(t, w)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c.t = t
				c.expect(tt.input, loginUsage)
				if c.s.State() != StateAnonymous {
					t.Errorf("session is %v after %q", c.s.State(), tt.input)
				}
			})
		}
	})
}

func TestRegisterRejects(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{name: "leading digit", username: "1alice", want: "Username '1alice' is invalid, please try again."},
		{name: "too long", username: "abcdefghijklmnopq", want: "Username 'abcdefghijklmnopq' is invalid, please try again."},
		{name: "reserved", username: "ID", want: "Username 'ID' is invalid, please try again."},
		{name: "taken", username: "wizard", want: "Username 'wizard' is already taken, please try another username."},
	}
	withWorld(t, func(w *World) {
		c := connect(t, w)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c.t = t
				c.expect("register "+tt.username+" secret x@example.com", tt.want)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		alice.send("n")
		alice.expect("@quit", "Goodbye!")

		c := connect(t, w)
		c.expect("login alice secret", "Welcome back, alice!\n"+hallwayLook)
		if c.s.State() != StateActive || c.s.Player() == nil || c.s.Player().Name != "alice" {
			t.Errorf("session is %v with %v", c.s.State(), c.s.Player())
		}
	})
}

func TestWizardLogin(t *testing.T) {
	withWorld(t, func(w *World) {
		c := connect(t, w)
		c.expect("login wizard "+testWizardPassword, "Welcome back, wizard!\n"+startRoomLook)
		c.expect("look me", "A wise old wizard.")
	})
}

func TestQuotedPassword(t *testing.T) {
	withWorld(t, func(w *World) {
		c := connect(t, w)
		c.expectContains(`register carol "two words" carol@example.com`, "Registration successful!")
		c.expect("@quit", "Goodbye!")
		c = connect(t, w)
		c.expect("login carol two words", loginUsage)
		c.expectContains(`login carol 'two words'`, "Welcome back, carol!")
	})
}

func TestFailedLogin(t *testing.T) {
	withWorld(t, func(w *World) {
		c := connect(t, w)
		c.expect("login nobody secret", "Username and password do not match.")
		c.expect("login wizard wrong", "Username and password do not match.")
		c.expect("login wizard "+testWizardPassword, "Please wait before trying again.")
		if c.s.State() != StateAnonymous {
			t.Errorf("session is %v after failing", c.s.State())
		}
	})
}

func TestFailedLoginExpires(t *testing.T) {
	w := openWorld(t, Options{LoginInterval: 50 * time.Millisecond})
	defer w.Close(context.Background())
	c := connect(t, w)
	c.expect("login wizard wrong", "Username and password do not match.")
	time.Sleep(100 * time.Millisecond)
	c.expectContains("login wizard "+testWizardPassword, "Welcome back, wizard!")
}

func TestAlreadyLoggedIn(t *testing.T) {
	withWorld(t, func(w *World) {
		registered(t, w, "alice")
		c := connect(t, w)
		c.expect("login alice secret", "alice is already logged in.")
		if c.s.State() != StateAnonymous {
			t.Errorf("session is %v", c.s.State())
		}
	})
}

func TestDisconnect(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		bob := registered(t, w, "bob")
		alice.heard()
		bob.expect("@quit", "Goodbye!")
		if got := alice.heard(); got != "bob has disconnected." {
			t.Errorf("alice heard %q", got)
		}
		if !bob.sink.isClosed() {
			t.Errorf("bob's sink wasn't closed")
		}
		select {
		case <-bob.s.Done():
		default:
			t.Errorf("bob's session isn't done")
		}
		bob.expect("look", "")
		alice.expect("look", startRoomLook)
		if err := w.Disconnect(context.Background(), bob.s); err != nil {
			t.Error(err)
		}
		inspect(t, w, func(ctx context.Context) {
			if got := len(w.Online()); got != 1 {
				t.Errorf("got %d online players", got)
			}
			if _, found := w.sessions.GetHas(bob.s.ID); found {
				t.Errorf("bob's session is still registered")
			}
		})
	})
}

func TestAnonymousDisconnect(t *testing.T) {
	withWorld(t, func(w *World) {
		c := connect(t, w)
		if err := w.Disconnect(context.Background(), c.s); err != nil {
			t.Fatal(err)
		}
		<-c.s.Done()
		if !c.sink.isClosed() {
			t.Errorf("sink wasn't closed")
		}
	})
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	w := openWorld(t, Options{})
	alice := registered(t, w, "alice")
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-alice.s.Done()
	if !alice.sink.isClosed() {
		t.Errorf("alice's sink wasn't closed")
	}
	if err := w.Handle(context.Background(), alice.s, "look"); err == nil {
		t.Errorf("handling input on a closed world succeeded")
	}
}

func TestConnectToClosedWorld(t *testing.T) {
	w := openWorld(t, Options{})
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	s := w.Connect(context.Background(), "127.0.0.1:4711", sink)
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session on a closed world wasn't closed")
	}
	if !sink.isClosed() {
		t.Errorf("sink wasn't closed")
	}
	if got := sink.take(); got != "" {
		t.Errorf("closed world greeted with %q", got)
	}
	if err := w.Disconnect(context.Background(), s); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestDisconnectAfterClose(t *testing.T) {
	w := openWorld(t, Options{})
	sink := &recordingSink{}
	s := newSession(context.Background(), "127.0.0.1:4711", sink, 0)
	if err := w.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Disconnect(context.Background(), s); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Disconnect on a closed world left the session open")
	}
}
