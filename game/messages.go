package game

import (
	"strings"
)

const (
	VariantWorld Variant = "World"
)

var (
	worldMessages = map[string]string{
		"fail_visible":       "You can't see anything like that here.",
		"fail_command_match": "I don't understand that.",
		"fail_internal":      "Something went wrong, please try again.",
		"fail_no_exit":       "There is no such exit here.",
		"closed":             "The {self} is closed.",
	}

	openableMessages = map[string]string{
		"open_look_at":           "It is open.",
		"closed_look_at":         "It is closed.",
		"toggle_open_fail_true":  "That is already open.",
		"toggle_open_fail_false": "That is already closed.",
		"toggle_open_off":        "You close {self}.",
		"toggle_open_off_others": "{player} closes {self}.",
		"toggle_open_on":         "You open {self}.",
		"toggle_open_on_others":  "{player} opens {self}.",
	}

	lockableMessages = map[string]string{
		"lock_fail_open":           "You must close {self} first before locking it.",
		"open_fail_locked":         "You must unlock {self} first before opening it.",
		"lock_fail_player":         "You cannot lock {self}.",
		"unlock_fail_player":       "You cannot unlock {self}.",
		"lock_fail_need_key":       "You need a key to lock or unlock {self}.",
		"lock_fail_no_object":      "{self} has no keyhole.",
		"lock_fail_object":         "{object} doesn't fit {self}.",
		"lock_fail_not_carrying":   "You aren't carrying anything like that.",
		"locked_look_at":           "It is locked.",
		"unlocked_look_at":         "It is unlocked.",
		"toggle_locked_fail_true":  "That is already locked.",
		"toggle_locked_fail_false": "That is already unlocked.",
		"toggle_locked_on":         "You lock {self}.",
		"toggle_locked_on_others":  "{player} locks {self}.",
		"toggle_locked_off":        "You unlock {self}.",
		"toggle_locked_off_others": "{player} unlocks {self}.",
	}

	containableMessages = map[string]string{
		"take_from":           "You take {object} from {self}.",
		"take_from_others":    "{player} takes {object} from {self}.",
		"take_from_fail":      "There is nothing like that in {self}.",
		"put_in":              "You put {object} in {self}.",
		"put_in_others":       "{player} puts {object} in {self}.",
		"put_in_fail_self":    "You can't put {self} inside itself.",
		"put_in_fail_object":  "You can't put {object} in {self}.",
		"look_in_fail_closed": "The {self} is closed.",
		"look_in_empty":       "There is nothing inside {self}.",
	}

	wearableMessages = map[string]string{
		"wear":                        "You wear {self}.",
		"wear_others":                 "{player} puts on {self}.",
		"wear_failed_wearing":         "You cannot put on {self}, as you are already wearing it.",
		"wear_failed_not_in_contents": "You cannot wear or remove {self}, as you are not carrying it.",
		"remove":                      "You take off {self}.",
		"remove_others":               "{player} takes off {self}.",
		"remove_failed_not_wearing":   "You cannot take off {self}, as you are not wearing it.",
	}

	holdableMessages = map[string]string{
		"wield":                        "You hold {self}.",
		"wield_others":                 "{player} holds {self}.",
		"wield_failed_wielding":        "You cannot hold {self}, as you are already holding it.",
		"wield_failed_not_in_contents": "You cannot wield or remove {self}, as you are not carrying it.",
		"unwield":                      "You put away {self}.",
		"unwield_others":               "{player} puts away {self}.",
		"unwield_failed_not_wielding":  "You cannot put away {self}, as you are not holding it.",
	}

	positionableMessages = map[string]string{
		"position_fail_full":   "There is no room for {object} by {self}.",
		"position_fail_object": "You can't position {object}.",
	}

	exitMessages = map[string]string{
		"leave":                  "You go through {self}.",
		"leave_fail_location":    "You are not at that exit's source.",
		"leave_fail_destination": "That exit doesn't go anywhere, or you can't enter it.",
		"leave_others":           "{player} leaves through {self}.",
		"arrive_others":          "{player} has arrived.",
	}

	openableExitMessages = map[string]string{
		"go_fail_closed":    "You cannot go through that, it's closed.",
		"open_destination":  "{player} opens {self} from the other side.",
		"close_destination": "{player} closes {self} from the other side.",
	}

	objectMessages = map[string]string{
		"take_fail":       "You can't take {self}.",
		"take_fail_have":  "You already have {self}.",
		"drop_fail":       "You can't drop {self}.",
		"take_others":     "{player} takes {self}.",
		"drop_others":     "{player} drops {self}.",
		"take":            "You take {self}.",
		"drop":            "You drop {self}.",
		"use_fail":        "You can't use {self}.",
		"use_fail_target": "You can't use {self} on {object}.",
		"use":             "You use {self}.",
		"use_others":      "{player} uses {self}.",
		"use_on":          "You use {self} on {object}.",
		"use_on_others":   "{player} uses {self} on {object}.",
	}
)

// render fills in the placeholders of tmpl.
func render(tmpl string, actor *Player, self Entity, object Entity) string {
	name := func(e Entity) string {
		if e == nil {
			return ""
		}
		return e.Base().Name
	}
	var actorName string
	if actor != nil {
		actorName = actor.Name
	}
	return strings.NewReplacer(
		"{player}", actorName,
		"{self}", name(self),
		"{object}", name(object),
	).Replace(tmpl)
}

// Message renders the template for key as seen on e. Instance messages win
// over the merged variant messages, which win over world defaults.
func (w *World) Message(e Entity, key string, actor *Player, object Entity) string {
	tmpl, found := "", false
	if e != nil {
		if tmpl, found = e.Base().Messages[key]; !found {
			tmpl, found = w.registry.Message(e.Variant(), key)
		}
	}
	if !found {
		tmpl, _ = w.registry.Message(VariantWorld, key)
	}
	return render(tmpl, actor, e, object)
}
