// Package storage persists entity records. The world only ever talks to a
// Store; which backend sits behind it is a deployment decision.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/structs"
)

var (
	// ErrAmbiguous is returned by FindByName when more than one record matches.
	ErrAmbiguous = errors.New("ambiguous match")
)

// Store is the document store interface consumed by the world.
//
// Missing records are reported with os.ErrNotExist. The class filters of the
// find methods are sets of acceptable class names; no classes means any.
type Store interface {
	Load(ctx context.Context, id string) (structs.Record, error)
	Save(ctx context.Context, rec structs.Record) error
	Delete(ctx context.Context, id string) error
	FindByName(ctx context.Context, name string, classes ...string) (structs.Record, error)
	FindByIDPrefix(ctx context.Context, prefix string, classes ...string) ([]structs.Record, error)
	Each(ctx context.Context, f func(structs.Record) error) error
	Close() error
}

const (
	MemoryStore = "memory"
	SQLiteStore = "sqlite"
	BoltStore   = "bolt"
)

// Open opens the store of the given kind with its files in dir.
func Open(ctx context.Context, kind string, dir string) (Store, error) {
	switch kind {
	case MemoryStore:
		return NewMemory(), nil
	case SQLiteStore, "":
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, azimuth.WithStack(err)
		}
		return OpenSQLite(ctx, filepath.Join(dir, "world.sqlite"))
	case BoltStore:
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, azimuth.WithStack(err)
		}
		return OpenBolt(filepath.Join(dir, "world.bolt"))
	}
	return nil, errors.Errorf("unknown store type %q", kind)
}

func validate(rec structs.Record) error {
	if rec.ID() == "" {
		return errors.Errorf("record without id: %+v", rec)
	}
	return nil
}

func classAllowed(rec structs.Record, classes []string) bool {
	if len(classes) == 0 {
		return true
	}
	for _, class := range classes {
		if rec.Class() == class {
			return true
		}
	}
	return false
}

// NameMatches reports whether name equals, case-insensitively, the name or
// one of the aliases of the record.
func NameMatches(rec structs.Record, name string) bool {
	if strings.EqualFold(rec.Name(), name) {
		return true
	}
	for _, alias := range rec.Strings("aliases") {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// single picks the one record out of matches, reporting os.ErrNotExist or
// ErrAmbiguous otherwise.
func single(matches []structs.Record, what string) (structs.Record, error) {
	switch len(matches) {
	case 0:
		return nil, errors.Wrapf(os.ErrNotExist, "no record named %q", what)
	case 1:
		return matches[0], nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID() < matches[j].ID()
	})
	return nil, errors.Wrapf(ErrAmbiguous, "%d records named %q", len(matches), what)
}
