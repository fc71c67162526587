package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zond/azimuth/structs"
)

// Place is a room. Its exits are keyed by lower cased exit name.
type Place struct {
	Thing
	exits     map[string]Passage
	exitOrder []string
}

func (p *Place) Variant() Variant {
	return VariantPlace
}

// AddExit adds x as an exit from p, replacing any exit with the same name.
func (p *Place) AddExit(x Passage) {
	if p.exits == nil {
		p.exits = map[string]Passage{}
	}
	key := strings.ToLower(x.Base().Name)
	if _, found := p.exits[key]; !found {
		p.exitOrder = append(p.exitOrder, key)
	}
	p.exits[key] = x
	x.GetExit().Source = p
}

// RemoveExit removes x if it is an exit of p. The exit keeps its source.
func (p *Place) RemoveExit(x Passage) {
	key := strings.ToLower(x.Base().Name)
	if p.exits[key] != x {
		return
	}
	delete(p.exits, key)
	for i, k := range p.exitOrder {
		if k == key {
			p.exitOrder = append(p.exitOrder[:i], p.exitOrder[i+1:]...)
			break
		}
	}
}

func (p *Place) Exit(key string) (Passage, bool) {
	x, found := p.exits[strings.ToLower(key)]
	return x, found
}

// Exits returns the exits in the order they were added.
func (p *Place) Exits() []Passage {
	result := make([]Passage, 0, len(p.exitOrder))
	for _, key := range p.exitOrder {
		result = append(result, p.exits[key])
	}
	return result
}

// ExitKeys returns the sorted exit names.
func (p *Place) ExitKeys() []string {
	result := append([]string{}, p.exitOrder...)
	sort.Strings(result)
	return result
}

// Announce tells msg to every player in p except the excluded ones.
func (p *Place) Announce(msg string, exclude ...Entity) {
	for _, c := range p.contents {
		excluded := false
		for _, e := range exclude {
			if e == c {
				excluded = true
				break
			}
		}
		if ch, ok := c.(Character); ok && !excluded {
			ch.GetPlayer().Tell(msg)
		}
	}
}

// Players returns the players in p.
func (p *Place) Players() []*Player {
	result := []*Player{}
	for _, c := range p.contents {
		if ch, ok := c.(Character); ok {
			result = append(result, ch.GetPlayer())
		}
	}
	return result
}

func (p *Place) onEnter(w *World, e Entity) {
	if ch, ok := e.(Character); ok {
		viewer := ch.GetPlayer()
		viewer.Tell(w.LookAt(p, viewer))
	}
}

// onLeave forgets where e was positioned in p.
func (p *Place) onLeave(w *World, e Entity) {
	for _, c := range p.contents {
		if f, ok := c.(Positionable); ok {
			f.GetPositionState().Clear(e.Base().ID)
		}
	}
}

func (p *Place) lookAt(viewer *Player) string {
	lines := []string{
		fmt.Sprintf("--- %s ---", p.Name),
		p.Description,
		"",
	}
	visible := []string{}
	for _, c := range p.contents {
		if viewer != nil && (c == viewer.self || !viewer.CanSee(c)) {
			continue
		}
		visible = append(visible, c.Base().Name)
	}
	if len(visible) > 0 {
		lines = append(lines, fmt.Sprintf("You see here: %s.", strings.Join(visible, ", ")))
	} else {
		lines = append(lines, "The place looks empty.")
	}
	if keys := p.ExitKeys(); len(keys) > 0 {
		lines = append(lines, fmt.Sprintf("Exits: %s.", strings.Join(keys, ", ")))
	} else {
		lines = append(lines, "There are no obvious exits.")
	}
	return strings.Join(lines, "\n")
}

func (p *Place) recordVariant(rec structs.Record) {
	exits := []string{}
	for _, key := range p.exitOrder {
		exits = append(exits, p.exits[key].Base().ID)
	}
	rec["exits"] = exits
}
