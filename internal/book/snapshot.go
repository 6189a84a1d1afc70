package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smileynet/phonebook/internal/contact"
	"github.com/smileynet/phonebook/internal/field"
)

// ErrCorruptSnapshot indicates a snapshot that cannot be turned back into records.
var ErrCorruptSnapshot = errors.New("book: corrupt snapshot")

// Store persists address book snapshots.
type Store interface {
	// Load returns (snapshot, true, nil) if something was saved and
	// (zero, false, nil) if the target does not exist yet.
	Load(ctx context.Context) (Snapshot, bool, error)
	// Save overwrites the target with snap.
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is the serializable form of an address book, records in storage order.
type Snapshot struct {
	Records []RecordSnapshot `json:"records" yaml:"records"`
}

// RecordSnapshot is the serializable form of one record.
type RecordSnapshot struct {
	Name     string            `json:"name" yaml:"name"`
	Phones   []string          `json:"phones" yaml:"phones"`
	Birthday *BirthdaySnapshot `json:"birthday,omitempty" yaml:"birthday,omitempty"`
}

// BirthdaySnapshot keeps both the normalized string and the parsed date.
type BirthdaySnapshot struct {
	Value string `json:"value" yaml:"value"`
	Year  int    `json:"year" yaml:"year"`
	Month int    `json:"month" yaml:"month"`
	Day   int    `json:"day" yaml:"day"`
}

// ToSnapshot captures the current contents of the book.
func (b *AddressBook) ToSnapshot() Snapshot {
	snap := Snapshot{Records: make([]RecordSnapshot, 0, len(b.order))}
	for _, k := range b.order {
		snap.Records = append(snap.Records, snapshotRecord(b.records[k]))
	}
	return snap
}

func snapshotRecord(rec *contact.Record) RecordSnapshot {
	phones := rec.Phones()
	rs := RecordSnapshot{
		Name:   rec.Name().Value(),
		Phones: make([]string, len(phones)),
	}
	for i, p := range phones {
		rs.Phones[i] = p.Value()
	}
	if bd, ok := rec.Birthday(); ok {
		y, m, d := bd.Date()
		rs.Birthday = &BirthdaySnapshot{Value: bd.Value(), Year: y, Month: int(m), Day: d}
	}
	return rs
}

// restore rebuilds the book from snap, validating every field again.
func (b *AddressBook) restore(snap Snapshot) error {
	for i, rs := range snap.Records {
		rec, err := restoreRecord(rs)
		if err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrCorruptSnapshot, i, err)
		}
		if _, dup := b.records[Key(rec.Name().Value())]; dup {
			return fmt.Errorf("%w: record %d: duplicate name %q", ErrCorruptSnapshot, i, rs.Name)
		}
		b.AddRecord(rec)
	}
	return nil
}

func restoreRecord(rs RecordSnapshot) (*contact.Record, error) {
	name, err := field.NewName(rs.Name)
	if err != nil {
		return nil, err
	}
	rec := contact.New(name)
	for _, p := range rs.Phones {
		if err := rec.AddPhone(p); err != nil {
			return nil, err
		}
	}
	if rs.Birthday != nil {
		if err := rec.SetBirthday(rs.Birthday.Value); err != nil {
			return nil, err
		}
		bd, _ := rec.Birthday()
		y, m, d := bd.Date()
		if y != rs.Birthday.Year || m != time.Month(rs.Birthday.Month) || d != rs.Birthday.Day {
			return nil, fmt.Errorf("birthday %q does not match date %04d-%02d-%02d",
				rs.Birthday.Value, rs.Birthday.Year, rs.Birthday.Month, rs.Birthday.Day)
		}
	}
	return rec, nil
}
