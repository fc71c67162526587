package storage

import (
	"context"
	"io"
	"sort"

	"github.com/zond/azimuth"
	"github.com/zond/azimuth/structs"

	goccy "github.com/goccy/go-json"
)

// Dump is the file format of backups.
type Dump struct {
	Records []structs.Record `json:"records"`
}

// Backup writes every record of s to w, sorted by id, and returns how many
// were written.
func Backup(ctx context.Context, s Store, w io.Writer) (int, error) {
	d := &Dump{Records: []structs.Record{}}
	if err := s.Each(ctx, func(rec structs.Record) error {
		d.Records = append(d.Records, rec)
		return nil
	}); err != nil {
		return 0, azimuth.WithStack(err)
	}
	sort.Slice(d.Records, func(i, j int) bool {
		return d.Records[i].ID() < d.Records[j].ID()
	})
	enc := goccy.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return 0, azimuth.WithStack(err)
	}
	return len(d.Records), nil
}

// Restore saves every record read from r into s, overwriting records with
// the same id, and returns how many were saved.
func Restore(ctx context.Context, s Store, r io.Reader) (int, error) {
	d := &Dump{}
	if err := goccy.NewDecoder(r).Decode(d); err != nil {
		return 0, azimuth.WithStack(err)
	}
	for _, rec := range d.Records {
		if err := validate(rec); err != nil {
			return 0, err
		}
	}
	for idx, rec := range d.Records {
		if err := s.Save(ctx, rec); err != nil {
			return idx, azimuth.WithStack(err)
		}
	}
	return len(d.Records), nil
}
