package game

import (
	"strings"

	"github.com/zond/azimuth/structs"
)

// Variant is the concrete kind of an entity, persisted as the record class.
// Capability bundles (Openable, Lockable, ...) are also variants, but can't
// be instantiated.
type Variant string

const (
	VariantThing             Variant = "Thing"
	VariantPlace             Variant = "Place"
	VariantExit              Variant = "Exit"
	VariantOpenableExit      Variant = "OpenableExit"
	VariantLockableExit      Variant = "LockableExit"
	VariantObject            Variant = "Object"
	VariantContainer         Variant = "Container"
	VariantOpenableContainer Variant = "OpenableContainer"
	VariantLockableContainer Variant = "LockableContainer"
	VariantFurniture         Variant = "Furniture"
	VariantClothing          Variant = "Clothing"
	VariantHeldObject        Variant = "HeldObject"
	VariantPlayer            Variant = "Player"
	VariantProgrammer        Variant = "Programmer"

	VariantOpenable     Variant = "Openable"
	VariantLockable     Variant = "Lockable"
	VariantContainable  Variant = "Containable"
	VariantWearable     Variant = "Wearable"
	VariantHoldable     Variant = "Holdable"
	VariantPositionable Variant = "Positionable"
)

// Entity is any node of the world graph.
type Entity interface {
	Base() *Thing
	Variant() Variant
}

// Thing is embedded by every entity variant.
type Thing struct {
	ID          string
	Name        string
	Aliases     []string
	Description string
	// Messages are instance overrides of the message templates.
	Messages map[string]string

	self     Entity
	location Entity
	contents []Entity

	// pendingLocation is the persisted location id while the entity is being
	// wired up after a load.
	pendingLocation string

	commands     []Grammar
	commandCache map[string][]Grammar
}

func (t *Thing) Base() *Thing {
	return t
}

// Entity returns the concrete entity embedding t.
func (t *Thing) Entity() Entity {
	return t.self
}

func (t *Thing) Location() Entity {
	return t.location
}

// Contents returns a copy of the ordered contents.
func (t *Thing) Contents() []Entity {
	return append([]Entity{}, t.contents...)
}

func (t *Thing) Contains(e Entity) bool {
	for _, c := range t.contents {
		if c == e {
			return true
		}
	}
	return false
}

// AddCommand adds an instance level grammar and invalidates the cached
// merged grammar table.
func (t *Thing) AddCommand(g Grammar) {
	t.commands = append(t.commands, g)
	t.commandCache = nil
}

func (t *Thing) String() string {
	return t.Name
}

func (t *Thing) removeContent(e Entity) {
	for i, c := range t.contents {
		if c == e {
			t.contents = append(t.contents[:i], t.contents[i+1:]...)
			return
		}
	}
}

// MoveTo moves e from its current location, if any, to where, which may be
// nil. It only updates the containment lists, see World.Move for the version
// running the enter and leave hooks.
func MoveTo(e Entity, where Entity) {
	t := e.Base()
	if t.location != nil {
		t.location.Base().removeContent(e)
	}
	t.location = where
	if where != nil {
		where.Base().contents = append(where.Base().contents, e)
	}
}

// place puts e in where without running any hooks, used when wiring loaded
// entities.
func place(e Entity, where Entity) {
	t := e.Base()
	if t.location != nil {
		t.location.Base().removeContent(e)
	}
	t.location = where
	if where != nil && !where.Base().Contains(e) {
		where.Base().contents = append(where.Base().contents, e)
	}
}

// Inside returns true if e is somewhere within container, following the
// location chain.
func Inside(e Entity, container Entity) bool {
	for loc := e.Base().location; loc != nil; loc = loc.Base().location {
		if loc == container {
			return true
		}
	}
	return false
}

// Match is the quality of a name match.
type Match int

const (
	MatchNone Match = iota
	MatchStrong
	MatchWeak
)

func (m Match) Better(o Match) bool {
	return m != MatchNone && (o == MatchNone || m < o)
}

// MatchName matches name against e as seen by viewer. "me" and "here" match
// the viewer and its location. An exact match against the name, an alias or
// the last word of the name is strong, a prefix of any of them is weak.
func MatchName(e Entity, name string, viewer *Player) Match {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || e == nil {
		return MatchNone
	}
	t := e.Base()
	if viewer != nil {
		if (name == "me" || name == "myself") && viewer.self == e {
			return MatchStrong
		}
		if name == "here" && viewer.location == e {
			return MatchStrong
		}
	}
	names := []string{strings.ToLower(t.Name)}
	for _, alias := range t.Aliases {
		names = append(names, strings.ToLower(alias))
	}
	if words := strings.Fields(names[0]); len(words) > 1 {
		names = append(names, words[len(words)-1])
	}
	for _, n := range names {
		if n == name {
			return MatchStrong
		}
	}
	for _, n := range names {
		if strings.HasPrefix(n, name) {
			return MatchWeak
		}
	}
	return MatchNone
}

// bestMatch returns the first strong match among candidates, or else the
// first weak one.
func bestMatch(name string, viewer *Player, candidates ...Entity) Entity {
	var best Entity
	bestQuality := MatchNone
	for _, c := range candidates {
		if q := MatchName(c, name, viewer); q.Better(bestQuality) {
			best, bestQuality = c, q
			if q == MatchStrong {
				break
			}
		}
	}
	return best
}

// Names returns the names of entities.
func Names(entities []Entity) []string {
	result := make([]string, 0, len(entities))
	for _, e := range entities {
		result = append(result, e.Base().Name)
	}
	return result
}

func ids(entities []Entity) []string {
	result := make([]string, 0, len(entities))
	for _, e := range entities {
		result = append(result, e.Base().ID)
	}
	return result
}

func (t *Thing) record(v Variant) structs.Record {
	messages := map[string]string{}
	for k, m := range t.Messages {
		messages[k] = m
	}
	var location any
	if t.location != nil {
		location = t.location.Base().ID
	}
	return structs.Record{
		structs.IDField:    t.ID,
		structs.ClassField: string(v),
		structs.NameField:  t.Name,
		"aliases":          append([]string{}, t.Aliases...),
		"description":      t.Description,
		"location":         location,
		"contents":         ids(t.contents),
		"messages":         messages,
	}
}

func (t *Thing) load(rec structs.Record) {
	t.ID = rec.ID()
	t.Name = rec.Name()
	t.Aliases = rec.Strings("aliases")
	t.Description = rec.String("description")
	t.Messages = rec.StringMap("messages")
	t.pendingLocation = rec.String("location")
}
