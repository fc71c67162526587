package game

import (
	"context"
	"strings"
	"time"
)

var (
	directionAliases = map[string]string{
		"n":  "north",
		"s":  "south",
		"e":  "east",
		"w":  "west",
		"ne": "northeast",
		"nw": "northwest",
		"se": "southeast",
		"sw": "southwest",
		"u":  "up",
		"d":  "down",
	}
	compassDirections = map[string]bool{}
)

func init() {
	for _, direction := range directionAliases {
		compassDirections[direction] = true
	}
}

// sigils are single character command shorthands.
var sigils = map[byte]string{
	'\'': "say",
	'"':  "say",
	':':  "emote",
	';':  "emote",
	'|':  "eval",
}

// normalize trims line, expands sigils and direction shorthands.
func normalize(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if verb, found := sigils[line[0]]; found {
		line = strings.TrimSpace(verb + " " + line[1:])
	}
	if direction, found := directionAliases[strings.ToLower(line)]; found {
		return direction
	}
	return line
}

// splitVerb returns the lower cased first word of line and the rest.
func splitVerb(line string) (string, string) {
	verb, args, _ := strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(args)
}

// candidates returns the entities whose grammars are tried, in order. The
// trailing nil stands for the world.
func (w *World) candidates(p *Player) []Entity {
	result := []Entity{p.self}
	if p.location != nil {
		result = append(result, p.location)
	}
	result = append(result, p.contents...)
	if p.location != nil {
		for _, c := range p.location.Base().contents {
			if c != p.self {
				result = append(result, c)
			}
		}
	}
	if pl := p.Place(); pl != nil {
		for _, x := range pl.Exits() {
			result = append(result, x)
		}
	}
	return append(result, nil)
}

// accepts returns true if text can fill role for self.
func accepts(role Role, text string, self Entity, viewer *Player) bool {
	switch role {
	case RoleNone:
		return text == ""
	case RoleSelf:
		return text != "" && self != nil && MatchName(self, text, viewer) != MatchNone
	case RoleAny:
		return text != ""
	}
	return false
}

// match tries to fill g with args, returning the filled invocation.
func match(g Grammar, self Entity, viewer *Player, args string) (*Invocation, bool) {
	if args == "" {
		if g.Dobj == RoleNone && len(g.Preps) == 0 && g.Iobj == RoleNone {
			return &Invocation{}, true
		}
		return nil, false
	}
	if len(g.Preps) > 0 {
		padded := " " + args + " "
		for _, prep := range g.Preps {
			idx := strings.Index(padded, " "+prep+" ")
			if idx == -1 {
				continue
			}
			dobj := strings.TrimSpace(padded[:idx])
			iobj := strings.TrimSpace(padded[idx+len(prep)+2:])
			if accepts(g.Dobj, dobj, self, viewer) && accepts(g.Iobj, iobj, self, viewer) {
				return &Invocation{Prep: prep, Dobj: dobj, Iobj: iobj}, true
			}
		}
		return nil, false
	}
	if g.Iobj != RoleNone || g.Dobj == RoleNone {
		return nil, false
	}
	if accepts(g.Dobj, args, self, viewer) {
		return &Invocation{Dobj: args}, true
	}
	return nil, false
}

// otherCharacter returns true if candidate is a player other than p. Grammars
// of other players only apply when they name that player.
func otherCharacter(candidate Entity, p *Player) bool {
	if candidate == nil || candidate == p.self {
		return false
	}
	_, ok := candidate.(Character)
	return ok
}

// resolve runs the first grammar matching line among the candidates of p.
func (w *World) resolve(ctx context.Context, p *Player, line string) error {
	line = normalize(line)
	if line == "" {
		return nil
	}
	if pl := p.Place(); pl != nil {
		if x, found := pl.Exit(line); found {
			start := time.Now()
			err := w.traverse(ctx, p, x)
			w.stats.RecordCommand("go", time.Since(start), err)
			return err
		}
	}
	if compassDirections[strings.ToLower(line)] {
		p.Tell(w.Message(nil, "fail_no_exit", p, nil))
		return nil
	}
	verb, args := splitVerb(line)
	for _, candidate := range w.candidates(p) {
		other := otherCharacter(candidate, p)
		for _, g := range w.grammarsFor(candidate, verb) {
			if other && g.Dobj != RoleSelf && g.Iobj != RoleSelf {
				continue
			}
			if inv, ok := match(g, candidate, p, args); ok {
				inv.World = w
				inv.Player = p
				inv.Self = candidate
				inv.Verb = verb
				start := time.Now()
				err := g.Handler(ctx, inv)
				w.stats.RecordCommand(verb, time.Since(start), err)
				return err
			}
		}
	}
	p.Tell(w.Message(nil, "fail_command_match", p, nil))
	return nil
}

// traverse goes through x using its own go grammar, so that variant
// overrides like closed doors apply.
func (w *World) traverse(ctx context.Context, p *Player, x Passage) error {
	for _, g := range w.grammarsFor(x, "go") {
		if g.Dobj == RoleSelf && len(g.Preps) == 0 {
			return g.Handler(ctx, &Invocation{
				World:  w,
				Player: p,
				Self:   x,
				Verb:   "go",
				Dobj:   x.Base().Name,
			})
		}
	}
	return goCommand(ctx, &Invocation{World: w, Player: p, Self: x, Verb: "go", Dobj: x.Base().Name})
}
