package storage

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/structs"
)

// Memory keeps encoded records in a map. Records are stored encoded so that
// callers never share mutable state with the store.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		records: map[string][]byte{},
	}
}

func (m *Memory) Load(_ context.Context, id string) (structs.Record, error) {
	m.mu.RLock()
	b, found := m.records[id]
	m.mu.RUnlock()
	if !found {
		return nil, errors.Wrapf(os.ErrNotExist, "no record %q", id)
	}
	rec, err := structs.UnmarshalRecord(b)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	return rec, nil
}

func (m *Memory) Save(_ context.Context, rec structs.Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	b, err := rec.Marshal()
	if err != nil {
		return azimuth.WithStack(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID()] = b
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *Memory) Each(_ context.Context, f func(structs.Record) error) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	for _, id := range ids {
		m.mu.RLock()
		b, found := m.records[id]
		m.mu.RUnlock()
		if !found {
			continue
		}
		rec, err := structs.UnmarshalRecord(b)
		if err != nil {
			return azimuth.WithStack(err)
		}
		if err := f(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) FindByName(ctx context.Context, name string, classes ...string) (structs.Record, error) {
	matches := []structs.Record{}
	if err := m.Each(ctx, func(rec structs.Record) error {
		if classAllowed(rec, classes) && NameMatches(rec, name) {
			matches = append(matches, rec)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return single(matches, name)
}

func (m *Memory) FindByIDPrefix(ctx context.Context, prefix string, classes ...string) ([]structs.Record, error) {
	result := []structs.Record{}
	if err := m.Each(ctx, func(rec structs.Record) error {
		if strings.HasPrefix(rec.ID(), prefix) && classAllowed(rec, classes) {
			result = append(result, rec)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Memory) Close() error {
	return nil
}
