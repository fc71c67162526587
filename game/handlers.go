package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/zond/azimuth/lang"
)

// tell renders key on the invoked entity for the actor.
func (inv *Invocation) tell(key string, object Entity) {
	inv.Player.Tell(inv.World.Message(inv.Self, key, inv.Player, object))
}

// announce renders key on the invoked entity for everyone else in the
// actor's place.
func (inv *Invocation) announce(key string, object Entity) {
	if pl := inv.Player.Place(); pl != nil {
		pl.Announce(inv.World.Message(inv.Self, key, inv.Player, object), inv.Player.self)
	}
}

// onOff returns the message key suffix of a toggle.
func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func lookAtCommand(ctx context.Context, inv *Invocation) error {
	inv.Player.Tell(inv.World.LookAt(inv.Self, inv.Player))
	return nil
}

func lookHereCommand(ctx context.Context, inv *Invocation) error {
	inv.Player.Tell(inv.World.LookAt(inv.Self, inv.Player))
	return nil
}

func goCommand(ctx context.Context, inv *Invocation) error {
	x := inv.Self.(Passage).GetExit()
	p := inv.Player
	if x.Source == nil || p.location != Entity(x.Source) {
		inv.tell("leave_fail_location", nil)
		return nil
	}
	dest := inv.World.destination(ctx, x)
	if dest == nil {
		inv.tell("leave_fail_destination", nil)
		return nil
	}
	inv.tell("leave", nil)
	x.Source.Announce(inv.World.Message(inv.Self, "leave_others", p, nil), p.self)
	inv.World.Move(p.self, dest)
	dest.Announce(inv.World.Message(inv.Self, "arrive_others", p, nil), p.self)
	return nil
}

func goOpenableCommand(ctx context.Context, inv *Invocation) error {
	if !isOpen(inv.Self) {
		inv.tell("go_fail_closed", nil)
		return nil
	}
	return goCommand(ctx, inv)
}

func openCommand(ctx context.Context, inv *Invocation) error {
	return toggleOpen(ctx, inv, true)
}

func closeCommand(ctx context.Context, inv *Invocation) error {
	return toggleOpen(ctx, inv, false)
}

func openLockedCommand(ctx context.Context, inv *Invocation) error {
	if inv.Self.(Lockable).GetLockState().IsLocked {
		inv.tell("open_fail_locked", nil)
		return nil
	}
	return toggleOpen(ctx, inv, true)
}

func toggleOpen(ctx context.Context, inv *Invocation, open bool) error {
	o := inv.Self.(Openable)
	state := o.GetOpenState()
	if state.IsOpen == open {
		inv.tell(fmt.Sprintf("toggle_open_fail_%v", open), nil)
		return nil
	}
	state.IsOpen = open
	changed := []Entity{o}
	if state.PairedID != "" {
		if paired, ok := inv.World.GetObject(ctx, state.PairedID).(Openable); ok {
			paired.GetOpenState().IsOpen = open
			changed = append(changed, paired)
		}
	}
	inv.tell("toggle_open_"+onOff(open), nil)
	inv.announce("toggle_open_"+onOff(open)+"_others", nil)
	if x, ok := o.(Passage); ok {
		if dest := inv.World.destination(ctx, x.GetExit()); dest != nil && dest != inv.Player.Place() {
			key := "close_destination"
			if open {
				key = "open_destination"
			}
			dest.Announce(inv.World.Message(o, key, inv.Player, nil))
		}
	}
	return inv.World.Save(ctx, changed...)
}

func lockCommand(ctx context.Context, inv *Invocation) error {
	return toggleLock(ctx, inv, true)
}

func unlockCommand(ctx context.Context, inv *Invocation) error {
	return toggleLock(ctx, inv, false)
}

// toggleLock locks or unlocks the invoked entity. With a preposition the
// indirect object names the key, which must be carried.
func toggleLock(ctx context.Context, inv *Invocation, lock bool) error {
	l := inv.Self.(Lockable)
	state := l.GetLockState()
	p := inv.Player
	if lock && l.GetOpenState().IsOpen {
		inv.tell("lock_fail_open", nil)
		return nil
	}
	if state.LockedBy != "" && state.LockedBy != p.ID {
		if lock {
			inv.tell("lock_fail_player", nil)
		} else {
			inv.tell("unlock_fail_player", nil)
		}
		return nil
	}
	if inv.Prep == "" {
		if state.KeyID != "" {
			inv.tell("lock_fail_need_key", nil)
			return nil
		}
	} else {
		key := p.FindCarried(inv.Iobj)
		switch {
		case key == nil:
			inv.tell("lock_fail_not_carrying", nil)
			return nil
		case state.KeyID == "":
			inv.tell("lock_fail_no_object", nil)
			return nil
		case key.Base().ID != state.KeyID:
			inv.tell("lock_fail_object", key)
			return nil
		}
	}
	if state.IsLocked == lock {
		inv.tell(fmt.Sprintf("toggle_locked_fail_%v", lock), nil)
		return nil
	}
	state.IsLocked = lock
	changed := []Entity{l}
	if state.PairedID != "" {
		if paired, ok := inv.World.GetObject(ctx, state.PairedID).(Lockable); ok {
			paired.GetLockState().IsLocked = lock
			changed = append(changed, paired)
		}
	}
	inv.tell("toggle_locked_"+onOff(lock), nil)
	inv.announce("toggle_locked_"+onOff(lock)+"_others", nil)
	return inv.World.Save(ctx, changed...)
}

func putInCommand(ctx context.Context, inv *Invocation) error {
	what := inv.Player.FindNear(inv.Dobj)
	switch {
	case what == nil:
		inv.tell("fail_visible", nil)
		return nil
	case what == inv.Self:
		inv.tell("put_in_fail_self", nil)
		return nil
	case !isOpen(inv.Self):
		inv.tell("closed", nil)
		return nil
	}
	if _, ok := what.(Item); !ok || Inside(inv.Self, what) {
		inv.tell("put_in_fail_object", what)
		return nil
	}
	from := what.Base().location
	release(what)
	inv.World.Move(what, inv.Self)
	inv.tell("put_in", what)
	inv.announce("put_in_others", what)
	return inv.World.Save(ctx, what, from, inv.Self)
}

func takeFromCommand(ctx context.Context, inv *Invocation) error {
	if !isOpen(inv.Self) {
		inv.tell("closed", nil)
		return nil
	}
	what := bestMatch(inv.Dobj, inv.Player, inv.Self.Base().contents...)
	if what == nil {
		inv.tell("take_from_fail", nil)
		return nil
	}
	inv.World.Move(what, inv.Player.self)
	inv.tell("take_from", what)
	inv.announce("take_from_others", what)
	return inv.World.Save(ctx, what, inv.Self)
}

func lookInCommand(ctx context.Context, inv *Invocation) error {
	if !isOpen(inv.Self) {
		inv.tell("look_in_fail_closed", nil)
		return nil
	}
	contents := inv.Self.Base().contents
	if len(contents) == 0 {
		inv.tell("look_in_empty", nil)
		return nil
	}
	inv.Player.Tell(fmt.Sprintf("Inside %s there is %s.", inv.Self.Base().Name, lang.Enumerator{}.Do(Names(contents)...)))
	return nil
}

func wearCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Wearable).GetWearState()
	switch {
	case inv.Self.Base().location != inv.Player.self:
		inv.tell("wear_failed_not_in_contents", nil)
	case state.WornBy != "":
		inv.tell("wear_failed_wearing", nil)
	default:
		state.WornBy = inv.Player.ID
		inv.tell("wear", nil)
		inv.announce("wear_others", nil)
		return inv.World.Save(ctx, inv.Self)
	}
	return nil
}

func removeCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Wearable).GetWearState()
	switch {
	case inv.Self.Base().location != inv.Player.self:
		inv.tell("wear_failed_not_in_contents", nil)
	case state.WornBy != inv.Player.ID:
		inv.tell("remove_failed_not_wearing", nil)
	default:
		state.WornBy = ""
		inv.tell("remove", nil)
		inv.announce("remove_others", nil)
		return inv.World.Save(ctx, inv.Self)
	}
	return nil
}

func wieldCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Holdable).GetHoldState()
	switch {
	case inv.Self.Base().location != inv.Player.self:
		inv.tell("wield_failed_not_in_contents", nil)
	case state.HeldBy != "":
		inv.tell("wield_failed_wielding", nil)
	default:
		state.HeldBy = inv.Player.ID
		inv.tell("wield", nil)
		inv.announce("wield_others", nil)
		return inv.World.Save(ctx, inv.Self)
	}
	return nil
}

func unwieldCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Holdable).GetHoldState()
	switch {
	case inv.Self.Base().location != inv.Player.self:
		inv.tell("wield_failed_not_in_contents", nil)
	case state.HeldBy != inv.Player.ID:
		inv.tell("unwield_failed_not_wielding", nil)
	default:
		state.HeldBy = ""
		inv.tell("unwield", nil)
		inv.announce("unwield_others", nil)
		return inv.World.Save(ctx, inv.Self)
	}
	return nil
}

func positionSelfCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Positionable).GetPositionState()
	p := inv.Player
	if !state.CanPosition(p.self) {
		inv.tell("position_fail_full", p.self)
		return nil
	}
	state.Set(p.ID, inv.Prep)
	name := inv.Self.Base().Name
	p.Tell(fmt.Sprintf("You %s %s %s.", inv.Verb, inv.Prep, name))
	if pl := p.Place(); pl != nil {
		pl.Announce(fmt.Sprintf("%s %s %s %s.", p.Name, lang.ThirdPersonSingular(inv.Verb), inv.Prep, name), p.self)
	}
	return inv.World.Save(ctx, inv.Self)
}

func positionObjectCommand(ctx context.Context, inv *Invocation) error {
	state := inv.Self.(Positionable).GetPositionState()
	p := inv.Player
	what := p.FindNear(inv.Dobj)
	if what == nil {
		inv.tell("fail_visible", nil)
		return nil
	}
	if _, ok := what.(Item); !ok || what == inv.Self {
		inv.tell("position_fail_object", what)
		return nil
	}
	if !state.CanPosition(what) {
		inv.tell("position_fail_full", what)
		return nil
	}
	from := what.Base().location
	if to := inv.Self.Base().location; from != to && to != nil {
		release(what)
		inv.World.Move(what, to)
	}
	state.Set(what.Base().ID, inv.Prep)
	name := inv.Self.Base().Name
	p.Tell(fmt.Sprintf("You %s %s %s %s.", inv.Verb, what.Base().Name, inv.Prep, name))
	if pl := p.Place(); pl != nil {
		pl.Announce(fmt.Sprintf("%s %s %s %s %s.", p.Name, lang.ThirdPersonSingular(inv.Verb), what.Base().Name, inv.Prep, name), p.self)
	}
	return inv.World.Save(ctx, what, from, inv.Self)
}

func takeCommand(ctx context.Context, inv *Invocation) error {
	p := inv.Player
	from := inv.Self.Base().location
	switch {
	case from == p.self:
		inv.tell("take_fail_have", nil)
		return nil
	case from == nil || from != p.location:
		inv.tell("take_fail", nil)
		return nil
	}
	inv.World.Move(inv.Self, p.self)
	inv.tell("take", nil)
	inv.announce("take_others", nil)
	return inv.World.Save(ctx, inv.Self, from)
}

func dropCommand(ctx context.Context, inv *Invocation) error {
	p := inv.Player
	if inv.Self.Base().location != p.self || p.location == nil {
		inv.tell("drop_fail", nil)
		return nil
	}
	release(inv.Self)
	inv.World.Move(inv.Self, p.location)
	inv.tell("drop", nil)
	inv.announce("drop_others", nil)
	return inv.World.Save(ctx, inv.Self, p.self, p.location)
}

func useCommand(ctx context.Context, inv *Invocation) error {
	inv.tell("use", nil)
	inv.announce("use_others", nil)
	return nil
}

func useOnCommand(ctx context.Context, inv *Invocation) error {
	target := inv.Player.FindNear(inv.Iobj)
	if target == nil {
		inv.tell("fail_visible", nil)
		return nil
	}
	if target == inv.Self {
		inv.tell("use_fail_target", target)
		return nil
	}
	inv.tell("use_on", target)
	inv.announce("use_on_others", target)
	return nil
}

func helpCommand(ctx context.Context, inv *Invocation) error {
	verbs := map[string]bool{}
	for _, v := range []Variant{inv.Player.self.Variant(), VariantWorld} {
		for _, verb := range inv.World.registry.Verbs(v) {
			verbs[verb] = true
		}
	}
	sorted := make([]string, 0, len(verbs))
	for verb := range verbs {
		sorted = append(sorted, verb)
	}
	sort.Strings(sorted)
	inv.Player.Tell(fmt.Sprintf("You can %s. Things around you may understand more, try looking at them.", lang.Enumerator{Operator: "or"}.Do(sorted...)))
	return nil
}
