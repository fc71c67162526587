package game

import (
	"github.com/zond/azimuth/structs"
)

// Destination is where an exit leads: either a loaded place, or the id of a
// place not yet loaded.
type Destination struct {
	place *Place
	id    string
}

func Resolved(p *Place) Destination {
	return Destination{place: p, id: p.ID}
}

func Deferred(id string) Destination {
	return Destination{id: id}
}

func (d Destination) ID() string {
	return d.id
}

// Place returns the place if resolved, nil otherwise.
func (d Destination) Place() *Place {
	return d.place
}

func (d Destination) Deferred() bool {
	return d.place == nil && d.id != ""
}

// Exit is a one way passage from Source to Destination. The way back is a
// separate exit.
type Exit struct {
	Thing
	Source      *Place
	Destination Destination
}

// Passage is implemented by every exit variant.
type Passage interface {
	Entity
	GetExit() *Exit
}

func (x *Exit) GetExit() *Exit {
	return x
}

func (x *Exit) Variant() Variant {
	return VariantExit
}

func (x *Exit) recordVariant(rec structs.Record) {
	var source string
	if x.Source != nil {
		source = x.Source.ID
	}
	rec["source"] = structs.Ref(source)
	rec["destination"] = structs.Ref(x.Destination.ID())
}

type OpenableExit struct {
	Exit
	OpenState
}

func (x *OpenableExit) Variant() Variant {
	return VariantOpenableExit
}

type LockableExit struct {
	OpenableExit
	LockState
}

func (x *LockableExit) Variant() Variant {
	return VariantLockableExit
}
