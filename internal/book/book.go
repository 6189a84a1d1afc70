// Package book implements the address book: a keyed collection of contact
// records with search, pagination and load/save against a Store.
package book

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/smileynet/phonebook/internal/contact"
)

// DefaultPageSize is the batch size Paginate uses when given a non-positive size.
const DefaultPageSize = 2

// ContactNotFoundError indicates no record is stored under the name.
type ContactNotFoundError struct {
	Name string
}

func (e *ContactNotFoundError) Error() string {
	return fmt.Sprintf("contact %s not found", e.Name)
}

var folder = cases.Fold()

// Key returns the lookup key for a contact name.
func Key(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// AddressBook maps normalized names to records, remembering insertion order.
type AddressBook struct {
	records map[string]*contact.Record
	order   []string
	store   Store
	log     *zap.Logger
}

// Option configures an AddressBook.
type Option func(*AddressBook)

// WithLogger sets the logger for load/save events.
func WithLogger(l *zap.Logger) Option {
	return func(b *AddressBook) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates an empty AddressBook attached to store.
func New(store Store, opts ...Option) *AddressBook {
	b := &AddressBook{
		records: make(map[string]*contact.Record),
		store:   store,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Len returns the number of records.
func (b *AddressBook) Len() int {
	return len(b.order)
}

// Records returns the records in storage order.
func (b *AddressBook) Records() []*contact.Record {
	out := make([]*contact.Record, len(b.order))
	for i, k := range b.order {
		out[i] = b.records[k]
	}
	return out
}

// AddRecord stores rec under its name. An existing record with the same key
// is replaced and keeps its position.
func (b *AddressBook) AddRecord(rec *contact.Record) {
	k := Key(rec.Name().Value())
	if _, ok := b.records[k]; !ok {
		b.order = append(b.order, k)
	}
	b.records[k] = rec
}

// Find returns the record stored under name. A missing record is a
// ContactNotFoundError unless suppressError is set, in which case Find
// returns (nil, nil).
func (b *AddressBook) Find(name string, suppressError bool) (*contact.Record, error) {
	rec, ok := b.records[Key(name)]
	if ok {
		return rec, nil
	}
	if suppressError {
		return nil, nil
	}
	return nil, &ContactNotFoundError{Name: name}
}

// Delete removes and returns the record stored under name, or nil.
func (b *AddressBook) Delete(name string) *contact.Record {
	k := Key(name)
	rec, ok := b.records[k]
	if !ok {
		return nil
	}
	delete(b.records, k)
	for i, have := range b.order {
		if have == k {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return rec
}

// SearchContacts returns, in storage order, records whose name contains term
// ignoring case or whose phones contain term.
func (b *AddressBook) SearchContacts(term string) []*contact.Record {
	folded := folder.String(term)
	var out []*contact.Record
	for _, k := range b.order {
		rec := b.records[k]
		if strings.Contains(folder.String(rec.Name().Value()), folded) || rec.HasPhoneSubstring(term) {
			out = append(out, rec)
		}
	}
	return out
}

// Paginate yields record descriptions in batches of pageSize, in storage order.
// Each range over the sequence starts from the first record.
func (b *AddressBook) Paginate(pageSize int) iter.Seq[[]string] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func([]string) bool) {
		for start := 0; start < len(b.order); start += pageSize {
			end := min(start+pageSize, len(b.order))
			batch := make([]string, 0, end-start)
			for _, k := range b.order[start:end] {
				batch = append(batch, b.records[k].Describe())
			}
			if !yield(batch) {
				return
			}
		}
	}
}

// Load replaces the book's contents with the store's snapshot.
// A store with nothing saved leaves the book empty.
func (b *AddressBook) Load(ctx context.Context) error {
	snap, found, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("book: loading: %w", err)
	}
	b.records = make(map[string]*contact.Record)
	b.order = nil
	if !found {
		b.log.Debug("no saved address book, starting empty")
		return nil
	}
	if err := b.restore(snap); err != nil {
		return fmt.Errorf("book: loading: %w", err)
	}
	b.log.Info("address book loaded", zap.Int("records", b.Len()))
	return nil
}

// Save writes the whole book to the store, overwriting what was there.
func (b *AddressBook) Save(ctx context.Context) error {
	if err := b.store.Save(ctx, b.ToSnapshot()); err != nil {
		b.log.Error("address book save failed", zap.Error(err))
		return &SaveError{Err: err}
	}
	b.log.Info("address book saved", zap.Int("records", b.Len()))
	return nil
}
