package game

import (
	"testing"

	"github.com/bxcodec/faker/v4"
	"github.com/google/go-cmp/cmp"
)

func mustEntity(t *testing.T, v Variant, name string) Entity {
	t.Helper()
	e, err := newEntity(v)
	if err != nil {
		t.Fatal(err)
	}
	e.Base().ID = faker.UUIDHyphenated()
	e.Base().Name = name
	return e
}

func TestMoveTo(t *testing.T) {
	room := mustEntity(t, VariantPlace, "room")
	box := mustEntity(t, VariantContainer, "box")
	gem := mustEntity(t, VariantObject, "gem")
	coin := mustEntity(t, VariantObject, "coin")

	MoveTo(box, room)
	MoveTo(gem, room)
	MoveTo(coin, room)
	if diff := cmp.Diff([]string{"box", "gem", "coin"}, Names(room.Base().Contents())); diff != "" {
		t.Error(diff)
	}
	MoveTo(gem, box)
	if room.Base().Contains(gem) || !box.Base().Contains(gem) || gem.Base().Location() != box {
		t.Errorf("gem wasn't moved exclusively into the box")
	}
	if diff := cmp.Diff([]string{"box", "coin"}, Names(room.Base().Contents())); diff != "" {
		t.Error(diff)
	}
	if !Inside(gem, room) || !Inside(gem, box) || Inside(box, gem) || Inside(room, room) {
		t.Errorf("Inside disagrees with the location chain")
	}
	MoveTo(gem, nil)
	if gem.Base().Location() != nil || box.Base().Contains(gem) || Inside(gem, room) {
		t.Errorf("gem is still somewhere")
	}
}

func TestContentsIsACopy(t *testing.T) {
	room := mustEntity(t, VariantPlace, "room")
	MoveTo(mustEntity(t, VariantObject, "gem"), room)
	contents := room.Base().Contents()
	contents[0] = nil
	if room.Base().Contents()[0] == nil {
		t.Errorf("Contents exposed the backing slice")
	}
}

func TestMatchName(t *testing.T) {
	sword := mustEntity(t, VariantHeldObject, "Rusty Sword")
	sword.Base().Aliases = []string{"blade"}
	room := mustEntity(t, VariantPlace, "The Hall")
	viewer := mustEntity(t, VariantPlayer, "alice").(*Player)
	MoveTo(viewer, room)
	for _, tc := range []struct {
		e    Entity
		name string
		want Match
	}{
		{sword, "rusty sword", MatchStrong},
		{sword, "  RUSTY SWORD ", MatchStrong},
		{sword, "sword", MatchStrong},
		{sword, "blade", MatchStrong},
		{sword, "rus", MatchWeak},
		{sword, "swo", MatchWeak},
		{sword, "bla", MatchWeak},
		{sword, "rusty s", MatchWeak},
		{sword, "axe", MatchNone},
		{sword, "", MatchNone},
		{sword, "me", MatchNone},
		{viewer, "me", MatchStrong},
		{viewer, "myself", MatchStrong},
		{room, "here", MatchStrong},
		{room, "hall", MatchStrong},
		{viewer, "here", MatchNone},
	} {
		if got := MatchName(tc.e, tc.name, viewer); got != tc.want {
			t.Errorf("MatchName(%v, %q) = %v, want %v", tc.e, tc.name, got, tc.want)
		}
	}
	if got := MatchName(nil, "sword", viewer); got != MatchNone {
		t.Errorf("nil matched %v", got)
	}
	if got := MatchName(viewer, "me", nil); got != MatchNone {
		t.Errorf("me matched %v without a viewer", got)
	}
}

func TestBestMatch(t *testing.T) {
	swordfish := mustEntity(t, VariantObject, "swordfish")
	sword := mustEntity(t, VariantObject, "sword")
	otherSword := mustEntity(t, VariantObject, "broken sword")
	for _, tc := range []struct {
		name       string
		candidates []Entity
		want       Entity
	}{
		{"sword", []Entity{swordfish, sword}, sword},
		{"sword", []Entity{swordfish, otherSword, sword}, otherSword},
		{"swo", []Entity{swordfish, sword}, swordfish},
		{"fish", []Entity{swordfish, sword}, nil},
		{"sword", nil, nil},
	} {
		if got := bestMatch(tc.name, nil, tc.candidates...); got != tc.want {
			t.Errorf("bestMatch(%q, %v) = %v, want %v", tc.name, Names(tc.candidates), got, tc.want)
		}
	}
}

func TestMatchBetter(t *testing.T) {
	for _, tc := range []struct {
		m    Match
		o    Match
		want bool
	}{
		{MatchStrong, MatchNone, true},
		{MatchStrong, MatchWeak, true},
		{MatchWeak, MatchNone, true},
		{MatchWeak, MatchStrong, false},
		{MatchWeak, MatchWeak, false},
		{MatchNone, MatchNone, false},
	} {
		if got := tc.m.Better(tc.o); got != tc.want {
			t.Errorf("%v.Better(%v) = %v, want %v", tc.m, tc.o, got, tc.want)
		}
	}
}

func TestPositionState(t *testing.T) {
	s := &PositionState{}
	s.Set("a", "on")
	s.Set("b", "under")
	s.Set("a", "beside")
	want := []Position{{ThingID: "b", Prep: "under"}, {ThingID: "a", Prep: "beside"}}
	if diff := cmp.Diff(want, s.Positioned); diff != "" {
		t.Error(diff)
	}
	s.Clear("b")
	s.Clear("missing")
	if diff := cmp.Diff(want[1:], s.Positioned); diff != "" {
		t.Error(diff)
	}
}

func TestRelease(t *testing.T) {
	sword := mustEntity(t, VariantHeldObject, "sword").(*HeldObject)
	sword.HeldBy = "alice"
	armor := mustEntity(t, VariantClothing, "armor").(*Clothing)
	armor.WornBy = "alice"
	release(sword)
	release(armor)
	release(mustEntity(t, VariantObject, "bread"))
	if sword.HeldBy != "" || armor.WornBy != "" {
		t.Errorf("release left %q holding and %q wearing", sword.HeldBy, armor.WornBy)
	}
}
