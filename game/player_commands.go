package game

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rodaine/table"
	"github.com/zond/azimuth/lang"
)

func playerGrammars() []Grammar {
	return []Grammar{
		{Verbs: []string{"i", "inv", "inventory"}, Handler: inventoryCommand},
		{Verbs: []string{"say"}, Handler: sayCommand},
		{Verbs: []string{"say"}, Dobj: RoleAny, Handler: sayCommand},
		{Verbs: []string{"emote"}, Handler: emoteCommand},
		{Verbs: []string{"emote"}, Dobj: RoleAny, Handler: emoteCommand},
		{Verbs: []string{"whisper", "wh"}, Dobj: RoleAny, Preps: []string{"to"}, Iobj: RoleAny, Handler: whisperCommand},
		{Verbs: []string{"@who"}, Handler: whoCommand},
		{Verbs: []string{"@quit"}, Handler: quitCommand},
		{Verbs: []string{"@desc", "@describe"}, Dobj: RoleSelf, Preps: []string{"as"}, Iobj: RoleAny, Handler: describeCommand},
		{Verbs: []string{"@home"}, Handler: homeCommand},
		{Verbs: []string{"@sethome"}, Handler: setHomeCommand},
	}
}

// actorOnly is true if the invocation is on the actor itself, and tells the
// actor otherwise.
func (inv *Invocation) actorOnly() bool {
	if inv.Self != inv.Player.self {
		inv.Player.Tell(fmt.Sprintf("You can't %s someone else.", inv.Verb))
		return false
	}
	return true
}

func inventoryCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	if len(p.contents) == 0 {
		p.Tell("You are not carrying anything.")
		return nil
	}
	lines := []string{"You are carrying:"}
	for _, c := range p.contents {
		line := "  " + c.Base().Name
		if w, ok := c.(Wearable); ok && w.GetWearState().WornBy == p.ID {
			line += " (worn)"
		}
		if h, ok := c.(Holdable); ok && h.GetHoldState().HeldBy == p.ID {
			line += " (held)"
		}
		lines = append(lines, line)
	}
	p.Tell(strings.Join(lines, "\n"))
	return nil
}

func sayCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	text := strings.TrimSpace(inv.Dobj)
	if text == "" {
		p.Tell("You need to give something to say.")
		return nil
	}
	pl := p.Place()
	if pl == nil {
		p.Tell("You are not in a place where you can speak.")
		return nil
	}
	p.Tell(fmt.Sprintf("You say, %q", text))
	pl.Announce(fmt.Sprintf("%s says, %q", p.Name, text), p.self)
	return nil
}

func emoteCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	text := strings.TrimSpace(inv.Dobj)
	if text == "" {
		p.Tell("You need to give something to emote.")
		return nil
	}
	pl := p.Place()
	if pl == nil {
		p.Tell("You are not in a place where you can emote.")
		return nil
	}
	pl.Announce(fmt.Sprintf("%s %s", p.Name, text))
	return nil
}

func whisperCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	pl := p.Place()
	if pl == nil {
		p.Tell("There is no one here to whisper to.")
		return nil
	}
	others := []Entity{}
	for _, other := range pl.Players() {
		if other != p {
			others = append(others, other.self)
		}
	}
	target := bestMatch(inv.Iobj, p, others...)
	if target == nil {
		p.Tell(fmt.Sprintf("There is no one called %s here.", inv.Iobj))
		return nil
	}
	listener := target.(Character).GetPlayer()
	p.Tell(fmt.Sprintf("You whisper %q to %s.", inv.Dobj, listener.Name))
	listener.Tell(fmt.Sprintf("%s whispers, %q", p.Name, inv.Dobj))
	return nil
}

func whoCommand(ctx context.Context, inv *Invocation) error {
	online := inv.World.Online()
	sort.Slice(online, func(i, j int) bool {
		return online[i].Name < online[j].Name
	})
	buf := &bytes.Buffer{}
	t := table.New("Name", "Location", "Idle").WithWriter(buf)
	for _, p := range online {
		location := "nowhere"
		if p.location != nil {
			location = p.location.Base().Name
		}
		t.AddRow(p.Name, location, fmt.Sprintf("%ds", int(time.Since(p.LastActive).Seconds())))
	}
	t.Print()
	inv.Player.Tell(fmt.Sprintf("%s online:\n%s", lang.Card(len(online), "player"), strings.TrimRight(buf.String(), "\n")))
	return nil
}

func quitCommand(ctx context.Context, inv *Invocation) error {
	inv.Player.Tell("Goodbye!")
	if s := inv.Player.session; s != nil {
		inv.World.disconnect(ctx, s)
	}
	return nil
}

func describeCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	p.Description = strings.ReplaceAll(strings.TrimSpace(inv.Iobj), `\n`, "\n")
	p.Tell(fmt.Sprintf("Your new description:\n%s", p.Description))
	return inv.World.Save(ctx, p.self)
}

func homeCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	if p.Home == "" {
		p.Tell("You don't have a home. Use @sethome to make this place your home.")
		return nil
	}
	if p.location != nil && p.location.Base().ID == p.Home {
		p.Tell("You are already at home.")
		return nil
	}
	home, ok := inv.World.GetObject(ctx, p.Home).(*Place)
	if !ok {
		p.Tell("Your home is gone.")
		return nil
	}
	p.Tell("You tap your heels together three times and think of home.")
	if pl := p.Place(); pl != nil {
		pl.Announce(fmt.Sprintf("%s vanishes.", p.Name), p.self)
	}
	inv.World.Move(p.self, home)
	home.Announce(fmt.Sprintf("%s appears out of thin air.", p.Name), p.self)
	return nil
}

func setHomeCommand(ctx context.Context, inv *Invocation) error {
	if !inv.actorOnly() {
		return nil
	}
	p := inv.Player
	pl := p.Place()
	if pl == nil {
		p.Tell("You can't live here.")
		return nil
	}
	if pl.ID == p.Home {
		p.Tell("This is already your home.")
		return nil
	}
	p.Home = pl.ID
	p.Tell(fmt.Sprintf("%s is now your home.", pl.Name))
	return inv.World.Save(ctx, p.self)
}
