package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bxcodec/faker/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/zond/azimuth/structs"
)

// withStores runs f once per backend, each with a fresh store in a temp dir.
func withStores(t *testing.T, f func(t *testing.T, s Store)) {
	t.Helper()
	for _, kind := range []string{MemoryStore, SQLiteStore, BoltStore} {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(ctx, kind, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			f(t, s)
		})
	}
}

func fakeRecord(t *testing.T, id string, class string) structs.Record {
	t.Helper()
	return structs.Record{
		structs.IDField:    id,
		structs.ClassField: class,
		"name":             faker.Name(),
		"aliases":          []string{faker.Word(), faker.Word()},
		"description":      faker.Sentence(),
		"location":         nil,
		"contents":         []string{faker.UUIDHyphenated()},
		"messages":         map[string]string{"take": faker.Sentence()},
		"open":             true,
	}
}

func TestLoadSave(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if _, err := s.Load(ctx, "missing"); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load(missing) = %v, want os.ErrNotExist", err)
		}
		want := fakeRecord(t, "abc", "Object")
		if err := s.Save(ctx, want); err != nil {
			t.Fatal(err)
		}
		got, err := s.Load(ctx, "abc")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(got.Strings("aliases"), want.Strings("aliases")); diff != "" {
			t.Errorf("aliases: %v", diff)
		}
		if diff := cmp.Diff(got.StringMap("messages"), want.StringMap("messages")); diff != "" {
			t.Errorf("messages: %v", diff)
		}
		if got.Name() != want.Name() || got.String("description") != want.String("description") {
			t.Errorf("got %+v, want %+v", got, want)
		}
		want["name"] = "renamed"
		if err := s.Save(ctx, want); err != nil {
			t.Fatal(err)
		}
		if got, err = s.Load(ctx, "abc"); err != nil {
			t.Fatal(err)
		} else if got.Name() != "renamed" {
			t.Errorf("got name %q after overwrite, want renamed", got.Name())
		}
		if err := s.Delete(ctx, "abc"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Load(ctx, "abc"); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load after Delete = %v, want os.ErrNotExist", err)
		}
	})
}

func TestSaveWithoutID(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.Save(context.Background(), structs.Record{"name": "x"}); err == nil {
			t.Errorf("expected error saving record without id")
		}
	})
}

func TestFindByName(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, rec := range []structs.Record{
			{"id": "1", "class": "Place", "name": "Glittering Cave", "aliases": []string{"cave"}},
			{"id": "2", "class": "Object", "name": "shiny gem", "aliases": []string{"gem"}},
			{"id": "3", "class": "Object", "name": "Gem"},
		} {
			if err := s.Save(ctx, rec); err != nil {
				t.Fatal(err)
			}
		}
		tests := []struct {
			name    string
			query   string
			classes []string
			wantID  string
			wantErr error
		}{
			{name: "exact name", query: "glittering cave", wantID: "1"},
			{name: "alias", query: "CAVE", wantID: "1"},
			{name: "class filter", query: "cave", classes: []string{"Object"}, wantErr: os.ErrNotExist},
			{name: "ambiguous", query: "gem", wantErr: ErrAmbiguous},
			{name: "disambiguated by class", query: "gem", classes: []string{"Place"}, wantErr: os.ErrNotExist},
			{name: "missing", query: "nothing", wantErr: os.ErrNotExist},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.FindByName(ctx, tt.query, tt.classes...)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("FindByName(%q) = %v, want %v", tt.query, err, tt.wantErr)
					}
					return
				}
				if err != nil {
					t.Fatal(err)
				}
				if got.ID() != tt.wantID {
					t.Errorf("FindByName(%q) = %q, want %q", tt.query, got.ID(), tt.wantID)
				}
			})
		}
	})
}

func TestFindByIDPrefix(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"aa1", "aa2", "ab1"} {
			if err := s.Save(ctx, fakeRecord(t, id, "Object")); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Save(ctx, fakeRecord(t, "aa3", "Place")); err != nil {
			t.Fatal(err)
		}
		ids := func(recs []structs.Record) []string {
			result := []string{}
			for _, rec := range recs {
				result = append(result, rec.ID())
			}
			return result
		}
		got, err := s.FindByIDPrefix(ctx, "aa")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(ids(got), []string{"aa1", "aa2", "aa3"}); diff != "" {
			t.Errorf("prefix aa: %v", diff)
		}
		if got, err = s.FindByIDPrefix(ctx, "aa", "Place"); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(ids(got), []string{"aa3"}); diff != "" {
			t.Errorf("prefix aa Place: %v", diff)
		}
		if got, err = s.FindByIDPrefix(ctx, "zz"); err != nil {
			t.Fatal(err)
		} else if len(got) != 0 {
			t.Errorf("prefix zz: got %v, want none", ids(got))
		}
	})
}

func TestEach(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"b", "a", "c"} {
			if err := s.Save(ctx, fakeRecord(t, id, "Object")); err != nil {
				t.Fatal(err)
			}
		}
		got := []string{}
		if err := s.Each(ctx, func(rec structs.Record) error {
			got = append(got, rec.ID())
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(got, []string{"a", "b", "c"}); diff != "" {
			t.Errorf("Each order: %v", diff)
		}
	})
}

func TestReopen(t *testing.T) {
	for _, kind := range []string{SQLiteStore, BoltStore} {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			s, err := Open(ctx, kind, dir)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Save(ctx, fakeRecord(t, "persisted", "Place")); err != nil {
				t.Fatal(err)
			}
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}
			if s, err = Open(ctx, kind, dir); err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if _, err := s.Load(ctx, "persisted"); err != nil {
				t.Errorf("Load after reopen: %v", err)
			}
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(context.Background(), "redis", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Errorf("expected error for unknown store type")
	}
}
