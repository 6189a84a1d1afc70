// Package sqlite provides a SQLite-backed address book store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/smileynet/phonebook/internal/book"
)

// Compile-time check: Store satisfies book.Store.
var _ book.Store = (*Store)(nil)

//go:embed schema.sql
var schema string

// Store persists address book snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
	log   *zap.Logger
}

// Open opens the database at path, creating it and its tables if needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating directory: %w", err)
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: pinging db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: applying schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, log: log}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load reads every contact and phone in storage order.
// Returns (zero, false, nil) until the first Save.
func (s *Store) Load(ctx context.Context) (book.Snapshot, bool, error) {
	var savedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT saved_at FROM meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Snapshot{}, false, nil
	}
	if err != nil {
		return book.Snapshot{}, false, fmt.Errorf("sqlite: reading meta: %w", err)
	}

	records, index, err := s.loadContacts(ctx)
	if err != nil {
		return book.Snapshot{}, false, err
	}
	if err := s.loadPhones(ctx, records, index); err != nil {
		return book.Snapshot{}, false, err
	}

	s.log.Debug("snapshot read",
		zap.Int("records", len(records)),
		zap.Time("saved_at", time.UnixMilli(savedAt).UTC()))
	return book.Snapshot{Records: records}, true, nil
}

func (s *Store) loadContacts(ctx context.Context) ([]book.RecordSnapshot, map[int64]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT position, name, birthday, birthday_year, birthday_month, birthday_day
		FROM contacts ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: querying contacts: %w", err)
	}
	defer rows.Close()

	records := []book.RecordSnapshot{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			pos     int64
			name    string
			value   sql.NullString
			y, m, d sql.NullInt64
		)
		if err := rows.Scan(&pos, &name, &value, &y, &m, &d); err != nil {
			return nil, nil, fmt.Errorf("sqlite: scanning contact: %w", err)
		}
		rec := book.RecordSnapshot{Name: name, Phones: []string{}}
		if value.Valid {
			rec.Birthday = &book.BirthdaySnapshot{
				Value: value.String,
				Year:  int(y.Int64),
				Month: int(m.Int64),
				Day:   int(d.Int64),
			}
		}
		index[pos] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqlite: iterating contacts: %w", err)
	}
	return records, index, nil
}

func (s *Store) loadPhones(ctx context.Context, records []book.RecordSnapshot, index map[int64]int) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT contact_position, phone FROM phones ORDER BY contact_position, position`)
	if err != nil {
		return fmt.Errorf("sqlite: querying phones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos   int64
			phone string
		)
		if err := rows.Scan(&pos, &phone); err != nil {
			return fmt.Errorf("sqlite: scanning phone: %w", err)
		}
		i, ok := index[pos]
		if !ok {
			return fmt.Errorf("sqlite: phone %s references missing contact %d", phone, pos)
		}
		records[i].Phones = append(records[i].Phones, phone)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating phones: %w", err)
	}
	return nil
}

// Save replaces all stored rows with snap in one transaction.
func (s *Store) Save(ctx context.Context, snap book.Snapshot) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM phones`, `DELETE FROM contacts`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: clearing: %w", err)
		}
	}

	for i, rec := range snap.Records {
		var (
			value   sql.NullString
			y, m, d sql.NullInt64
		)
		if rec.Birthday != nil {
			value = sql.NullString{String: rec.Birthday.Value, Valid: true}
			y = sql.NullInt64{Int64: int64(rec.Birthday.Year), Valid: true}
			m = sql.NullInt64{Int64: int64(rec.Birthday.Month), Valid: true}
			d = sql.NullInt64{Int64: int64(rec.Birthday.Day), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (position, name, birthday, birthday_year, birthday_month, birthday_day)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, rec.Name, value, y, m, d,
		); err != nil {
			return fmt.Errorf("sqlite: inserting contact %s: %w", rec.Name, err)
		}
		for j, phone := range rec.Phones {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO phones (contact_position, position, phone) VALUES (?, ?, ?)`,
				i, j, phone,
			); err != nil {
				return fmt.Errorf("sqlite: inserting phone %s: %w", phone, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (id, saved_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("sqlite: writing meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing save: %w", err)
	}
	s.log.Debug("snapshot written", zap.Int("records", len(snap.Records)))
	return nil
}
