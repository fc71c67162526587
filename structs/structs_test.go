package structs

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	goccy "github.com/goccy/go-json"
)

func TestRecordAccessorsAfterJSON(t *testing.T) {
	r := Record{
		IDField:    "a",
		ClassField: "Object",
		"aliases":  []string{"thing", "stuff"},
		"messages": map[string]string{"take": "You grab {self}."},
		"open":     false,
		"location": Ref(""),
		"positioned": []map[string]string{
			{"thing": "b", "prep": "on"},
		},
	}
	b, err := r.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalRecord(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID() != "a" || got.Class() != "Object" {
		t.Errorf("got id %q class %q, want a Object", got.ID(), got.Class())
	}
	if diff := cmp.Diff(got.Strings("aliases"), []string{"thing", "stuff"}); diff != "" {
		t.Errorf("aliases: %v", diff)
	}
	if diff := cmp.Diff(got.StringMap("messages"), map[string]string{"take": "You grab {self}."}); diff != "" {
		t.Errorf("messages: %v", diff)
	}
	if diff := cmp.Diff(got.Maps("positioned"), []map[string]string{{"thing": "b", "prep": "on"}}); diff != "" {
		t.Errorf("positioned: %v", diff)
	}
	if got.Bool("open", true) {
		t.Errorf("open = true, want false")
	}
	if !got.Bool("missing", true) {
		t.Errorf("missing bool did not use default")
	}
	if got.String("location") != "" {
		t.Errorf("location = %q, want empty", got.String("location"))
	}
}

func TestWorldConfig(t *testing.T) {
	c := NewWorldConfig("WORLD1")
	c.SetStartRoom("room")
	loaded, err := WorldConfigFromRecord(c.Record())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.GetID() != "WORLD1" || loaded.GetStartRoom() != "room" {
		t.Errorf("got %q/%q, want WORLD1/room", loaded.GetID(), loaded.GetStartRoom())
	}
	if _, err := WorldConfigFromRecord(Record{IDField: "WORLD1"}); err == nil {
		t.Errorf("expected error for config without start room")
	}
	b, err := goccy.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	fromJSON := &WorldConfig{}
	if err := goccy.Unmarshal(b, fromJSON); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromJSON.Record(), c.Record()); diff != "" {
		t.Errorf("json round trip: %v", diff)
	}
}

func TestPlayerIndex(t *testing.T) {
	p := NewPlayerIndex("WORLD1")
	if !p.Add("alice", "1") {
		t.Errorf("first add failed")
	}
	if p.Add("alice", "2") {
		t.Errorf("duplicate add succeeded")
	}
	r := p.Record()
	if r.ID() != "WORLD1_players" {
		t.Errorf("got id %q, want WORLD1_players", r.ID())
	}
	loaded := PlayerIndexFromRecord("WORLD1", r)
	if id, found := loaded.Get("alice"); !found || id != "1" {
		t.Errorf("got %q/%v, want 1/true", id, found)
	}
	loaded.Del("alice")
	if loaded.Len() != 0 {
		t.Errorf("got %d players, want 0", loaded.Len())
	}
}
