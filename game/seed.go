package game

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/zond/azimuth/structs"
)

const (
	defaultWizardName     = "wizard"
	defaultWizardPassword = "wizard"
)

type seedThing struct {
	variant     Variant
	name        string
	description string
}

// seeder creates the entities of a fresh world, remembering the first
// error.
type seeder struct {
	ctx context.Context
	w   *World
	err error
}

func (s *seeder) create(spec seedThing, location Entity) Entity {
	if s.err != nil {
		return nil
	}
	e, err := s.w.Create(s.ctx, spec.variant, spec.name, location)
	if err != nil {
		s.err = err
		return nil
	}
	e.Base().Description = spec.description
	return e
}

func (s *seeder) place(name, description string) *Place {
	if pl, ok := s.create(seedThing{VariantPlace, name, description}, nil).(*Place); ok {
		return pl
	}
	return nil
}

func (s *seeder) exit(name, description string, from, to *Place) {
	x, ok := s.create(seedThing{VariantExit, name, description}, nil).(Passage)
	if !ok || from == nil || to == nil {
		return
	}
	from.AddExit(x)
	x.GetExit().Destination = Resolved(to)
}

// seed populates an empty world with a few rooms, things to try the
// capabilities on and a programmer account.
func (w *World) seed(ctx context.Context, wizardPassword string) error {
	log.Printf("world %q has no config, seeding it", w.id)
	if wizardPassword == "" {
		wizardPassword = defaultWizardPassword
	}
	w.config = structs.NewWorldConfig(w.id)
	w.players = structs.NewPlayerIndex(w.id)

	s := &seeder{ctx: ctx, w: w}
	chamber := s.place("The Starting Chamber", "A small, damp stone chamber. It feels like the beginning of an adventure.")
	hallway := s.place("Narrow Hallway", "A dark, narrow hallway stretching north and south.")
	cave := s.place("Glittering Cave", "A small cave sparkling with veins of quartz. A sturdy chest sits here.")

	s.exit("north", "A dark opening leads north.", chamber, hallway)
	s.exit("south", "An archway leads back south.", hallway, chamber)
	s.exit("east", "A narrow passage leads east.", hallway, cave)
	s.exit("west", "A passage leads back west.", cave, hallway)

	s.create(seedThing{VariantHeldObject, "rusty sword", "A simple sword, pitted with rust."}, chamber)
	s.create(seedThing{VariantClothing, "chainmail armor", "A sturdy chainmail armor."}, chamber)
	s.create(seedThing{VariantObject, "loaf of bread", "A crusty loaf of bread. Looks edible."}, chamber)
	key := s.create(seedThing{VariantObject, "iron key", "A heavy iron key."}, hallway)
	chest := s.create(seedThing{VariantLockableContainer, "sturdy chest", "A solid wooden chest bound with iron."}, cave)
	s.create(seedThing{VariantObject, "shiny gem", "A brightly shining gemstone."}, chest)
	if s.err != nil {
		return s.err
	}
	if chamber == nil {
		return errors.New("seeding created no start room")
	}
	if l, ok := chest.(Lockable); ok {
		l.GetOpenState().IsOpen = false
		l.GetLockState().KeyID = key.Base().ID
	}
	w.config.SetStartRoom(chamber.ID)

	wizard, err := w.createPlayer(ctx, VariantProgrammer, defaultWizardName, wizardPassword)
	if err != nil {
		return err
	}
	wizard.Description = "A wise old wizard."
	return w.Flush(ctx)
}
