package game

import (
	"time"

	"github.com/zond/azimuth/structs"
)

// Player is a user controlled character. The session is only set while the
// player is logged in.
type Player struct {
	Thing
	Username     string
	PasswordHash string
	LastLocation string
	Home         string
	LastActive   time.Time

	session *Session
}

// Character is implemented by Player and Programmer.
type Character interface {
	Entity
	GetPlayer() *Player
}

func (p *Player) GetPlayer() *Player {
	return p
}

func (p *Player) Variant() Variant {
	return VariantPlayer
}

func (p *Player) Online() bool {
	return p.session != nil
}

func (p *Player) Session() *Session {
	return p.session
}

// Tell sends msg to the player, if connected.
func (p *Player) Tell(msg string) {
	if p.session != nil {
		p.session.Tell(msg)
	}
}

// Place returns the place the player is in, or nil.
func (p *Player) Place() *Place {
	if pl, ok := p.location.(*Place); ok {
		return pl
	}
	return nil
}

// CanSee returns true for things in the same place as the player, things
// the player carries, and the exits of the player's place.
func (p *Player) CanSee(e Entity) bool {
	if e == nil {
		return false
	}
	loc := e.Base().location
	if loc != nil && (loc == p.location || loc == p.self) {
		return true
	}
	if x, ok := e.(Passage); ok && p.location != nil {
		return x.GetExit().Source != nil && Entity(x.GetExit().Source) == p.location
	}
	return false
}

// FindNear finds the best match for name among the player, its location,
// its inventory, the contents of its location and the exits of it.
func (p *Player) FindNear(name string) Entity {
	candidates := []Entity{p.self}
	if p.location != nil {
		candidates = append(candidates, p.location)
	}
	candidates = append(candidates, p.contents...)
	if p.location != nil {
		candidates = append(candidates, p.location.Base().contents...)
	}
	if pl := p.Place(); pl != nil {
		for _, x := range pl.Exits() {
			candidates = append(candidates, x)
		}
	}
	return bestMatch(name, p, candidates...)
}

// FindCarried finds the best match for name in the inventory.
func (p *Player) FindCarried(name string) Entity {
	return bestMatch(name, p, p.contents...)
}

func (p *Player) recordVariant(rec structs.Record) {
	last := p.LastLocation
	if pl := p.Place(); pl != nil {
		last = pl.ID
	}
	rec["username"] = p.Username
	rec["password_hash"] = p.PasswordHash
	rec["last_location"] = structs.Ref(last)
	rec["home"] = structs.Ref(p.Home)
}

func (p *Player) loadVariant(rec structs.Record) {
	p.Username = rec.String("username")
	p.PasswordHash = rec.String("password_hash")
	p.LastLocation = rec.String("last_location")
	p.Home = rec.String("home")
	p.LastActive = time.Now()
}

// Programmer is a player with access to the world building commands.
type Programmer struct {
	Player
}

func (p *Programmer) Variant() Variant {
	return VariantProgrammer
}
