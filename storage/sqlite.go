package storage

import (
	"context"
	"database/sql"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/zond/azimuth"
	"github.com/zond/azimuth/structs"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	class TEXT NOT NULL,
	name TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_lower_name ON records (lower(name));
CREATE INDEX IF NOT EXISTS records_class ON records (class);
`

// SQLite keeps one row per record: the searchable columns next to the full
// JSON document.
type SQLite struct {
	db *sqlx.DB
}

type sqliteRow struct {
	ID    string `db:"id"`
	Class string `db:"class"`
	Name  string `db:"name"`
	Data  string `db:"data"`
}

func (r *sqliteRow) record() (structs.Record, error) {
	rec, err := structs.UnmarshalRecord([]byte(r.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding record %q", r.ID)
	}
	return rec, nil
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	// The world serializes all access anyway, and a single connection keeps
	// sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "initializing %q", path)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, id string) (structs.Record, error) {
	row := &sqliteRow{}
	if err := s.db.GetContext(ctx, row, "SELECT id, class, name, data FROM records WHERE id = ?", id); errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(os.ErrNotExist, "no record %q", id)
	} else if err != nil {
		return nil, azimuth.WithStack(err)
	}
	return row.record()
}

func (s *SQLite) Save(ctx context.Context, rec structs.Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	b, err := rec.Marshal()
	if err != nil {
		return azimuth.WithStack(err)
	}
	if _, err := s.db.NamedExecContext(ctx, `
INSERT INTO records (id, class, name, data) VALUES (:id, :class, :name, :data)
ON CONFLICT (id) DO UPDATE SET class = excluded.class, name = excluded.name, data = excluded.data`, &sqliteRow{
		ID:    rec.ID(),
		Class: rec.Class(),
		Name:  rec.Name(),
		Data:  string(b),
	}); err != nil {
		return azimuth.WithStack(err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
		return azimuth.WithStack(err)
	}
	return nil
}

// selectRecords runs query, expanding any slice arguments with sqlx.In.
func (s *SQLite) selectRecords(ctx context.Context, query string, args ...any) ([]structs.Record, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, azimuth.WithStack(err)
	}
	rows := []sqliteRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, azimuth.WithStack(err)
	}
	result := make([]structs.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].record()
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

func classClause(classes []string) (string, []any) {
	if len(classes) == 0 {
		return "", nil
	}
	return " AND class IN (?)", []any{classes}
}

func (s *SQLite) FindByName(ctx context.Context, name string, classes ...string) (structs.Record, error) {
	clause, classArgs := classClause(classes)
	matches, err := s.selectRecords(ctx, `
SELECT id, class, name, data FROM records
WHERE (lower(name) = lower(?) OR EXISTS (
	SELECT 1 FROM json_each(records.data, '$.aliases') AS alias WHERE lower(alias.value) = lower(?)
))`+clause+" ORDER BY id", append([]any{name, name}, classArgs...)...)
	if err != nil {
		return nil, err
	}
	return single(matches, name)
}

func (s *SQLite) FindByIDPrefix(ctx context.Context, prefix string, classes ...string) ([]structs.Record, error) {
	clause, classArgs := classClause(classes)
	return s.selectRecords(ctx, `
SELECT id, class, name, data FROM records
WHERE substr(id, 1, length(?)) = ?`+clause+" ORDER BY id", append([]any{prefix, prefix}, classArgs...)...)
}

// Each loads every record before calling f, so f may use the store.
func (s *SQLite) Each(ctx context.Context, f func(structs.Record) error) error {
	recs, err := s.selectRecords(ctx, "SELECT id, class, name, data FROM records ORDER BY id")
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := f(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
