package game

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		line string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  look  ", "look"},
		{"n", "north"},
		{"N", "north"},
		{"sw", "southwest"},
		{"u", "up"},
		{"north", "north"},
		{"'hello", "say hello"},
		{`"hello there`, "say hello there"},
		{":waves", "emote waves"},
		{";grins", "emote grins"},
		{"|me.name", "eval me.name"},
		{"'", "say"},
		{"n sword", "n sword"},
	} {
		if got := normalize(tc.line); got != tc.want {
			t.Errorf("normalize(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestSplitVerb(t *testing.T) {
	for _, tc := range []struct {
		line     string
		wantVerb string
		wantArgs string
	}{
		{"look", "look", ""},
		{"LOOK at Sword", "look", "at Sword"},
		{"say  hello  there ", "say", "hello  there"},
	} {
		verb, args := splitVerb(tc.line)
		if verb != tc.wantVerb || args != tc.wantArgs {
			t.Errorf("splitVerb(%q) = %q, %q, want %q, %q", tc.line, verb, args, tc.wantVerb, tc.wantArgs)
		}
	}
}

func TestMatch(t *testing.T) {
	sword, err := newEntity(VariantObject)
	if err != nil {
		t.Fatal(err)
	}
	sword.Base().Name = "rusty sword"
	for _, tc := range []struct {
		name    string
		grammar Grammar
		args    string
		want    *Invocation
	}{
		{
			name:    "bare verb",
			grammar: Grammar{Verbs: []string{"look"}},
			want:    &Invocation{},
		},
		{
			name:    "bare verb with args",
			grammar: Grammar{Verbs: []string{"look"}},
			args:    "sword",
		},
		{
			name:    "self",
			grammar: Grammar{Verbs: []string{"look"}, Dobj: RoleSelf},
			args:    "sword",
			want:    &Invocation{Dobj: "sword"},
		},
		{
			name:    "self prefix",
			grammar: Grammar{Verbs: []string{"look"}, Dobj: RoleSelf},
			args:    "rus",
			want:    &Invocation{Dobj: "rus"},
		},
		{
			name:    "self missing",
			grammar: Grammar{Verbs: []string{"look"}, Dobj: RoleSelf},
		},
		{
			name:    "someone else",
			grammar: Grammar{Verbs: []string{"look"}, Dobj: RoleSelf},
			args:    "axe",
		},
		{
			name:    "any",
			grammar: Grammar{Verbs: []string{"say"}, Dobj: RoleAny},
			args:    "hello world",
			want:    &Invocation{Dobj: "hello world"},
		},
		{
			name:    "preposition",
			grammar: Grammar{Verbs: []string{"put"}, Dobj: RoleAny, Preps: []string{"in"}, Iobj: RoleSelf},
			args:    "gem in sword",
			want:    &Invocation{Prep: "in", Dobj: "gem", Iobj: "sword"},
		},
		{
			name:    "preposition with wrong target",
			grammar: Grammar{Verbs: []string{"put"}, Dobj: RoleAny, Preps: []string{"in"}, Iobj: RoleSelf},
			args:    "gem in box",
		},
		{
			name:    "preposition inside a word",
			grammar: Grammar{Verbs: []string{"put"}, Dobj: RoleAny, Preps: []string{"in"}, Iobj: RoleSelf},
			args:    "tin sword",
		},
		{
			name:    "leading preposition",
			grammar: Grammar{Verbs: []string{"sit"}, Preps: []string{"on", "next to"}, Iobj: RoleSelf},
			args:    "next to sword",
			want:    &Invocation{Prep: "next to", Iobj: "sword"},
		},
		{
			name:    "multi word preposition",
			grammar: Grammar{Verbs: []string{"put"}, Dobj: RoleAny, Preps: []string{"on", "next to"}, Iobj: RoleSelf},
			args:    "bread next to sword",
			want:    &Invocation{Prep: "next to", Dobj: "bread", Iobj: "sword"},
		},
		{
			name:    "missing preposition",
			grammar: Grammar{Verbs: []string{"lock"}, Dobj: RoleSelf, Preps: []string{"with"}, Iobj: RoleAny},
			args:    "sword",
		},
		{
			name:    "missing indirect object",
			grammar: Grammar{Verbs: []string{"lock"}, Dobj: RoleSelf, Preps: []string{"with"}, Iobj: RoleAny},
			args:    "sword with",
		},
		{
			name:    "no direct object expected",
			grammar: Grammar{Verbs: []string{"sit"}, Preps: []string{"on"}, Iobj: RoleSelf},
			args:    "down on sword",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := match(tc.grammar, sword, nil, tc.args)
			if ok != (tc.want != nil) {
				t.Fatalf("match(%v, %q) = %+v, %v", tc.grammar, tc.args, got, ok)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.IgnoreFields(Invocation{}, "World", "Player", "Self")); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestMeAndHere(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		alice.expect("look me", "A nondescript player.")
		alice.expect("look at myself", "A nondescript player.")
		alice.expect("look here", startRoomLook)
	})
}

func TestExitBeatsVerbs(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		alice.expect("look north", "A dark opening leads north.")
		alice.expectContains("NORTH", "--- Narrow Hallway ---")
	})
}

func TestCandidateOrder(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		alice.send("take bread")
		var self, here, carried, nearby, exit Entity
		inspect(t, w, func(ctx context.Context) {
			p := alice.s.Player()
			self = p.self
			here = p.location
			carried = findCached(w, "loaf of bread")
			nearby = findCached(w, "rusty sword")
			exit, _ = p.Place().Exit("north")
		})
		tests := []struct {
			name   string
			entity Entity
		}{
			{name: "self", entity: self},
			{name: "location", entity: here},
			{name: "inventory", entity: carried},
			{name: "room contents", entity: nearby},
			{name: "exit", entity: exit},
		}
		inspect(t, w, func(ctx context.Context) {
			for _, tt := range tests {
				name := tt.name
				tt.entity.Base().AddCommand(Grammar{
					Verbs: []string{"ping"},
					Handler: func(ctx context.Context, inv *Invocation) error {
						inv.Player.Tell(name)
						return nil
					},
				})
			}
		})
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				alice.t = t
				alice.expect("ping", tt.name)
				inspect(t, w, func(ctx context.Context) {
					base := tt.entity.Base()
					base.commands = nil
					base.commandCache = nil
				})
			})
		}
		alice.t = t
		alice.expect("ping", "I don't understand that.")
	})
}

func TestOtherPlayersGrammarsNeedTheirName(t *testing.T) {
	withWorld(t, func(w *World) {
		alice := registered(t, w, "alice")
		bob := registered(t, w, "bob")
		inspect(t, w, func(ctx context.Context) {
			bob.s.Player().AddCommand(Grammar{
				Verbs: []string{"poke"},
				Dobj:  RoleAny,
				Handler: func(ctx context.Context, inv *Invocation) error {
					inv.Player.Tell("poked")
					return nil
				},
			})
			bob.s.Player().AddCommand(Grammar{
				Verbs: []string{"tickle"},
				Dobj:  RoleSelf,
				Handler: func(ctx context.Context, inv *Invocation) error {
					inv.Player.Tell("You tickle " + inv.Self.Base().Name + ".")
					return nil
				},
			})
		})
		alice.heard()
		alice.expect("poke anything", "I don't understand that.")
		bob.expect("poke anything", "poked")
		alice.expect("tickle bob", "You tickle bob.")
	})
}
