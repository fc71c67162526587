package game

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/storage"

	goccy "github.com/goccy/go-json"
)

func programmerGrammars() []Grammar {
	return []Grammar{
		{Verbs: []string{"eval", "@eval"}, Dobj: RoleAny, Handler: evalCommand},
		{Verbs: []string{"@dig"}, Dobj: RoleAny, Preps: []string{"to"}, Iobj: RoleAny, Handler: digCommand},
		{Verbs: []string{"@create"}, Dobj: RoleAny, Preps: []string{"as"}, Iobj: RoleAny, Handler: createCommand},
		{Verbs: []string{"@rename"}, Dobj: RoleAny, Preps: []string{"to"}, Iobj: RoleAny, Handler: renameCommand},
		{Verbs: []string{"@chparent"}, Dobj: RoleAny, Preps: []string{"to"}, Iobj: RoleAny, Handler: chparentCommand},
		{Verbs: []string{"@messages"}, Dobj: RoleAny, Handler: messagesCommand},
		{Verbs: []string{"@message"}, Dobj: RoleAny, Preps: []string{"as"}, Iobj: RoleAny, Handler: messageCommand},
		{Verbs: []string{"@teleport"}, Dobj: RoleAny, Handler: teleportCommand},
		{Verbs: []string{"@dumpdb"}, Handler: dumpCommand},
		{Verbs: []string{"@stats"}, Handler: statsCommand},
		{Verbs: []string{"@stats"}, Dobj: RoleAny, Handler: statsCommand},
	}
}

// identify finds what text refers to: "me", "here", "#<id prefix>", or a
// name near the player or anywhere in the world.
func (w *World) identify(ctx context.Context, p *Player, text string, variants ...Variant) (Entity, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "#") {
		return w.FindByID(ctx, text[1:], variants...)
	}
	if e := p.FindNear(text); e != nil && w.isA(e, variants) {
		return e, nil
	}
	return w.FindByName(ctx, text, variants...)
}

// identifyOrTell is identify, telling the player about missing or
// ambiguous matches. Only storage errors are returned.
func (inv *Invocation) identifyOrTell(ctx context.Context, text string, variants ...Variant) (Entity, error) {
	e, err := inv.World.identify(ctx, inv.Player, text, variants...)
	switch {
	case errors.Is(err, os.ErrNotExist):
		inv.Player.Tell(fmt.Sprintf("There is nothing called %q.", text))
		return nil, nil
	case errors.Is(err, storage.ErrAmbiguous):
		inv.Player.Tell(fmt.Sprintf("%q is ambiguous, try #<id>.", text))
		return nil, nil
	case err != nil:
		return nil, err
	}
	return e, nil
}

// instantiableVariant parses a variant name case insensitively.
func instantiableVariant(name string) (Variant, bool) {
	for _, v := range Instantiable() {
		if strings.EqualFold(string(v), strings.TrimSpace(name)) {
			return v, true
		}
	}
	return "", false
}

func evalCommand(ctx context.Context, inv *Invocation) error {
	subject, field := strings.TrimSpace(inv.Dobj), ""
	if idx := strings.LastIndex(subject, "."); idx > 0 {
		subject, field = subject[:idx], subject[idx+1:]
	}
	e, err := inv.identifyOrTell(ctx, subject)
	if e == nil || err != nil {
		return err
	}
	var value any = Record(e)
	if field != "" {
		v, found := Record(e)[field]
		if !found {
			inv.Player.Tell(fmt.Sprintf("%s has no field %q.", e.Base().Name, field))
			return nil
		}
		value = v
	}
	js, err := goccy.MarshalIndent(value, "", "  ")
	if err != nil {
		return azimuth.WithStack(err)
	}
	inv.Player.Tell(string(js))
	return nil
}

// exitNames splits "name,alias,alias" into a name and aliases.
func exitNames(s string) (string, []string) {
	parts := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

func digCommand(ctx context.Context, inv *Invocation) error {
	p := inv.Player
	here := p.Place()
	if here == nil {
		p.Tell("You can't dig from here.")
		return nil
	}
	words, err := shellwords.SplitPosix(inv.Dobj)
	if err != nil {
		p.Tell(fmt.Sprintf("Can't parse %q: %v", inv.Dobj, err))
		return nil
	}
	exitSpec, returnSpec, hasReturn := strings.Cut(strings.Join(words, " "), "|")
	name, aliases := exitNames(exitSpec)
	if name == "" {
		p.Tell("usage: @dig <exit[,alias]>[|<return[,alias]>] to <room name|#id>")
		return nil
	}

	var dest *Place
	found, err := inv.World.identify(ctx, p, inv.Iobj, VariantPlace)
	switch {
	case errors.Is(err, os.ErrNotExist) && !strings.HasPrefix(inv.Iobj, "#"):
		created, err := inv.World.Create(ctx, VariantPlace, inv.Iobj, nil)
		if err != nil {
			return err
		}
		dest = created.(*Place)
		dest.Description = "A newly dug place."
		p.Tell(fmt.Sprintf("Created %s (#%s).", dest.Name, dest.ID))
	case errors.Is(err, os.ErrNotExist):
		p.Tell(fmt.Sprintf("There is no place %q.", inv.Iobj))
		return nil
	case errors.Is(err, storage.ErrAmbiguous):
		p.Tell(fmt.Sprintf("%q is ambiguous, try #<id>.", inv.Iobj))
		return nil
	case err != nil:
		return err
	default:
		dest = found.(*Place)
	}

	changed := []Entity{here, dest}
	dig := func(name string, aliases []string, from, to *Place) error {
		e, err := inv.World.Create(ctx, VariantExit, name, nil)
		if err != nil {
			return err
		}
		x := e.(Passage)
		x.Base().Aliases = aliases
		x.Base().Description = fmt.Sprintf("An exit leading to %s.", to.Name)
		from.AddExit(x)
		x.GetExit().Destination = Resolved(to)
		changed = append(changed, x)
		p.Tell(fmt.Sprintf("Dug %s from %s to %s.", name, from.Name, to.Name))
		return nil
	}
	if err := dig(name, aliases, here, dest); err != nil {
		return err
	}
	if hasReturn {
		if returnName, returnAliases := exitNames(returnSpec); returnName != "" {
			if err := dig(returnName, returnAliases, dest, here); err != nil {
				return err
			}
		}
	}
	return inv.World.Save(ctx, changed...)
}

func createCommand(ctx context.Context, inv *Invocation) error {
	p := inv.Player
	v, found := instantiableVariant(inv.Iobj)
	if !found {
		p.Tell(fmt.Sprintf("Unknown class %q, try one of %s.", inv.Iobj, strings.Join(variantNames(), ", ")))
		return nil
	}
	reg := inv.World.registry
	switch {
	case reg.IsA(v, VariantExit):
		p.Tell(fmt.Sprintf("You can't @create a %s, use @dig for exits.", v))
		return nil
	case reg.IsA(v, VariantPlayer):
		p.Tell(fmt.Sprintf("You can't @create a %s, players have to register.", v))
		return nil
	}
	var location Entity = p.self
	if v == VariantPlace {
		location = nil
	}
	e, err := inv.World.Create(ctx, v, inv.Dobj, location)
	if err != nil {
		return err
	}
	p.Tell(fmt.Sprintf("Created %s (#%s) as %s.", e.Base().Name, e.Base().ID, v))
	return inv.World.Save(ctx, e, location)
}

func variantNames() []string {
	result := []string{}
	for _, v := range Instantiable() {
		result = append(result, string(v))
	}
	return result
}

func renameCommand(ctx context.Context, inv *Invocation) error {
	e, err := inv.identifyOrTell(ctx, inv.Dobj)
	if e == nil || err != nil {
		return err
	}
	if _, ok := e.(Character); ok {
		inv.Player.Tell("Characters keep the name they registered with.")
		return nil
	}
	old := e.Base().Name
	if x, ok := e.(Passage); ok && x.GetExit().Source != nil {
		source := x.GetExit().Source
		source.RemoveExit(x)
		e.Base().Name = inv.Iobj
		source.AddExit(x)
		if err := inv.World.Save(ctx, source); err != nil {
			return err
		}
	} else {
		e.Base().Name = inv.Iobj
	}
	inv.Player.Tell(fmt.Sprintf("Renamed %s to %s.", old, e.Base().Name))
	return inv.World.Save(ctx, e)
}

func chparentCommand(ctx context.Context, inv *Invocation) error {
	p := inv.Player
	e, err := inv.identifyOrTell(ctx, inv.Dobj)
	if e == nil || err != nil {
		return err
	}
	v, found := instantiableVariant(inv.Iobj)
	if !found {
		p.Tell(fmt.Sprintf("Unknown class %q, try one of %s.", inv.Iobj, strings.Join(variantNames(), ", ")))
		return nil
	}
	reg := inv.World.registry
	for _, family := range []Variant{VariantPlace, VariantPlayer} {
		if reg.IsA(e.Variant(), family) || reg.IsA(v, family) {
			p.Tell(fmt.Sprintf("Can't change the class of %s to %s.", e.Base().Name, v))
			return nil
		}
	}
	if reg.IsA(e.Variant(), VariantExit) != reg.IsA(v, VariantExit) {
		p.Tell(fmt.Sprintf("Can't change the class of %s to %s.", e.Base().Name, v))
		return nil
	}
	replacement, err := inv.World.reclass(e, v)
	if err != nil {
		return err
	}
	p.Tell(fmt.Sprintf("%s is now a %s.", replacement.Base().Name, v))
	return inv.World.Save(ctx, replacement)
}

// reclass replaces e with an entity of variant v built from its record, and
// rewires every reference the graph holds to it.
func (w *World) reclass(e Entity, v Variant) (Entity, error) {
	rec := Record(e)
	rec["class"] = string(v)
	replacement, err := newEntity(v)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	restore(replacement, rec)
	old, t := e.Base(), replacement.Base()
	t.pendingLocation = ""
	t.commands = old.commands
	if loc := old.location; loc != nil {
		contents := loc.Base().contents
		for i, c := range contents {
			if c == e {
				contents[i] = replacement
			}
		}
		t.location = loc
	}
	t.contents = old.contents
	for _, c := range t.contents {
		c.Base().location = replacement
	}
	old.location, old.contents = nil, nil
	if x, ok := replacement.(Passage); ok {
		oldExit := e.(Passage).GetExit()
		x.GetExit().Destination = oldExit.Destination
		if oldExit.Source != nil {
			oldExit.Source.AddExit(x)
		}
	}
	w.cache[t.ID] = replacement
	return replacement, nil
}

func messagesCommand(ctx context.Context, inv *Invocation) error {
	e, err := inv.identifyOrTell(ctx, inv.Dobj)
	if e == nil || err != nil {
		return err
	}
	messages := inv.World.registry.Messages(e.Variant())
	for key, msg := range inv.World.registry.Messages(VariantWorld) {
		if _, found := messages[key]; !found {
			messages[key] = msg
		}
	}
	sources := map[string]string{}
	for key := range messages {
		sources[key] = "class"
	}
	for key, msg := range e.Base().Messages {
		messages[key] = msg
		sources[key] = "instance"
	}
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	buf := &bytes.Buffer{}
	t := table.New("Key", "Source", "Template").WithWriter(buf)
	for _, key := range keys {
		t.AddRow(key, sources[key], messages[key])
	}
	t.Print()
	inv.Player.Tell(strings.TrimRight(buf.String(), "\n"))
	return nil
}

func messageCommand(ctx context.Context, inv *Invocation) error {
	key, target, found := strings.Cut(inv.Dobj, " on ")
	key, target = strings.TrimSpace(key), strings.TrimSpace(target)
	if !found || key == "" || target == "" {
		inv.Player.Tell("usage: @message <key> on <thing> as <text>")
		return nil
	}
	e, err := inv.identifyOrTell(ctx, target)
	if e == nil || err != nil {
		return err
	}
	t := e.Base()
	if t.Messages == nil {
		t.Messages = map[string]string{}
	}
	t.Messages[key] = inv.Iobj
	inv.Player.Tell(fmt.Sprintf("Set %s on %s to %q.", key, t.Name, inv.Iobj))
	return inv.World.Save(ctx, e)
}

func teleportCommand(ctx context.Context, inv *Invocation) error {
	e, err := inv.identifyOrTell(ctx, inv.Dobj, VariantPlace)
	if e == nil || err != nil {
		return err
	}
	p := inv.Player
	dest := e.(*Place)
	if from := p.Place(); from != nil {
		if from == dest {
			p.Tell("You are already there.")
			return nil
		}
		from.Announce(fmt.Sprintf("%s disappears in a puff of smoke.", p.Name), p.self)
	}
	inv.World.Move(p.self, dest)
	dest.Announce(fmt.Sprintf("%s appears in a puff of smoke.", p.Name), p.self)
	return nil
}

func dumpCommand(ctx context.Context, inv *Invocation) error {
	if err := inv.World.Flush(ctx); err != nil {
		return err
	}
	inv.Player.Tell(fmt.Sprintf("Saved %d objects.", len(inv.World.cache)))
	return nil
}

const defaultTopVerbs = 10

// statsCommand shows the command statistics: "@stats [n]" or "@stats reset".
func statsCommand(ctx context.Context, inv *Invocation) error {
	stats := inv.World.stats
	arg := strings.TrimSpace(inv.Dobj)
	if arg == "reset" {
		stats.Reset()
		inv.Player.Tell("Statistics cleared.")
		return nil
	}
	n := defaultTopVerbs
	if arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed <= 0 {
			inv.Player.Tell("usage: @stats [n|reset]")
			return nil
		}
		n = parsed
	}
	snap := stats.Snapshot()
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "Uptime: %s\n", snap.Uptime.Round(time.Second))
	fmt.Fprintf(buf, "Commands: %d (%.2f/s last minute, %.2f/s last hour)\n", snap.Commands, snap.MinuteRate, snap.HourRate)
	fmt.Fprintf(buf, "Errors: %d  Panics: %d\n\n", snap.Errors, snap.Panics)
	t := table.New("Verb", "Runs", "Errors", "Mean", "Max").WithWriter(buf)
	for _, v := range stats.TopVerbs(n) {
		t.AddRow(v.Verb, v.Executions, v.Errors, v.Mean.Round(time.Microsecond), v.Max.Round(time.Microsecond))
	}
	t.Print()
	inv.Player.Tell(strings.TrimRight(buf.String(), "\n"))
	return nil
}
