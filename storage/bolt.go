package storage

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/structs"

	bbolt "go.etcd.io/bbolt"
)

var (
	bucketRecords = []byte("records")
)

// Bolt keeps records JSON encoded in a single bbolt bucket keyed by id.
type Bolt struct {
	bolt *bbolt.DB
}

// OpenBolt opens or creates a bbolt database file and ensures the bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "boltstore: open %s", path)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "boltstore: create buckets")
	}
	return &Bolt{bolt: db}, nil
}

func (b *Bolt) Load(_ context.Context, id string) (structs.Record, error) {
	var data []byte
	if err := b.bolt.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketRecords).Get([]byte(id)); v != nil {
			// Values are only valid for the life of the transaction.
			data = bytes.Clone(v)
		}
		return nil
	}); err != nil {
		return nil, azimuth.WithStack(err)
	}
	if data == nil {
		return nil, errors.Wrapf(os.ErrNotExist, "no record %q", id)
	}
	rec, err := structs.UnmarshalRecord(data)
	if err != nil {
		return nil, errors.Wrapf(err, "boltstore: decode %q", id)
	}
	return rec, nil
}

func (b *Bolt) Save(_ context.Context, rec structs.Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	data, err := rec.Marshal()
	if err != nil {
		return errors.Wrapf(err, "boltstore: encode %q", rec.ID())
	}
	return azimuth.WithStack(b.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Put([]byte(rec.ID()), data)
	}))
}

func (b *Bolt) Delete(_ context.Context, id string) error {
	return azimuth.WithStack(b.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Delete([]byte(id))
	}))
}

// scan decodes every record whose key starts with prefix, in key order.
func (b *Bolt) scan(prefix []byte, f func(structs.Record) error) error {
	recs := []structs.Record{}
	if err := b.bolt.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRecords).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rec, err := structs.UnmarshalRecord(v)
			if err != nil {
				return errors.Wrapf(err, "boltstore: decode %q", k)
			}
			recs = append(recs, rec)
		}
		return nil
	}); err != nil {
		return azimuth.WithStack(err)
	}
	for _, rec := range recs {
		if err := f(rec); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bolt) Each(_ context.Context, f func(structs.Record) error) error {
	return b.scan(nil, f)
}

func (b *Bolt) FindByName(_ context.Context, name string, classes ...string) (structs.Record, error) {
	matches := []structs.Record{}
	if err := b.scan(nil, func(rec structs.Record) error {
		if classAllowed(rec, classes) && NameMatches(rec, name) {
			matches = append(matches, rec)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return single(matches, name)
}

func (b *Bolt) FindByIDPrefix(_ context.Context, prefix string, classes ...string) ([]structs.Record, error) {
	result := []structs.Record{}
	if err := b.scan([]byte(prefix), func(rec structs.Record) error {
		if classAllowed(rec, classes) {
			result = append(result, rec)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (b *Bolt) Close() error {
	if b.bolt != nil {
		return b.bolt.Close()
	}
	return nil
}
