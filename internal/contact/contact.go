// Package contact implements the contact record: a name, an ordered set of
// phone numbers and an optional birthday.
package contact

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/phonebook/internal/field"
)

// DuplicatePhoneError indicates the record already holds the phone.
type DuplicatePhoneError struct {
	Contact string
	Phone   string
}

func (e *DuplicatePhoneError) Error() string {
	return fmt.Sprintf("contact %s already has phone %s", e.Contact, e.Phone)
}

// PhoneNotFoundError indicates the record holds no such phone.
type PhoneNotFoundError struct {
	Contact string
	Phone   string
}

func (e *PhoneNotFoundError) Error() string {
	return fmt.Sprintf("contact %s has no phone %s", e.Contact, e.Phone)
}

// NoBirthdaySetError indicates a birthday operation on a record without one.
type NoBirthdaySetError struct {
	Contact string
}

func (e *NoBirthdaySetError) Error() string {
	return fmt.Sprintf("contact %s has no birthday set", e.Contact)
}

// Record is one contact. No two phones in a record share a normalized value.
type Record struct {
	name     field.Name
	phones   []field.Phone
	birthday *field.Birthday
}

// New creates a record with no phones and no birthday.
func New(name field.Name) *Record {
	return &Record{name: name}
}

// NewWithPhone creates a record holding a single phone.
func NewWithPhone(name field.Name, raw string) (*Record, error) {
	r := New(name)
	if err := r.AddPhone(raw); err != nil {
		return nil, err
	}
	return r, nil
}

// Name returns the contact name.
func (r *Record) Name() field.Name {
	return r.name
}

// Phones returns a copy of the phones in insertion order.
func (r *Record) Phones() []field.Phone {
	out := make([]field.Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (field.Birthday, bool) {
	if r.birthday == nil {
		return field.Birthday{}, false
	}
	return *r.birthday, true
}

// AddPhone validates raw and appends it.
func (r *Record) AddPhone(raw string) error {
	p, err := field.NewPhone(raw)
	if err != nil {
		return err
	}
	if r.indexOf(p) >= 0 {
		return &DuplicatePhoneError{Contact: r.name.Value(), Phone: p.Value()}
	}
	r.phones = append(r.phones, p)
	return nil
}

// EditPhone replaces old with updated in the same position.
func (r *Record) EditPhone(old, updated string) error {
	i, err := r.mustIndex(old)
	if err != nil {
		return err
	}
	p, err := field.NewPhone(updated)
	if err != nil {
		return err
	}
	if j := r.indexOf(p); j >= 0 && j != i {
		return &DuplicatePhoneError{Contact: r.name.Value(), Phone: p.Value()}
	}
	r.phones[i] = p
	return nil
}

// RemovePhone deletes the phone equal to raw after normalization.
func (r *Record) RemovePhone(raw string) error {
	i, err := r.mustIndex(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return nil
}

// FindPhone returns the phone equal to raw after normalization.
// Input that is not a valid phone is never found.
func (r *Record) FindPhone(raw string) (field.Phone, bool) {
	p, err := field.NewPhone(raw)
	if err != nil {
		return field.Phone{}, false
	}
	i := r.indexOf(p)
	if i < 0 {
		return field.Phone{}, false
	}
	return r.phones[i], true
}

// HasPhoneSubstring reports whether any normalized phone contains term.
func (r *Record) HasPhoneSubstring(term string) bool {
	for _, p := range r.phones {
		if strings.Contains(p.Value(), term) {
			return true
		}
	}
	return false
}

// SetBirthday validates raw and overwrites any previous birthday.
func (r *Record) SetBirthday(raw string) error {
	b, err := field.NewBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// DaysToNextBirthday counts days from today to the next occurrence of the
// birthday, 0 when today is the birthday. A 29 February birthday falls on
// 28 February in common years.
func (r *Record) DaysToNextBirthday(today time.Time) (int, error) {
	if r.birthday == nil {
		return 0, &NoBirthdaySetError{Contact: r.name.Value()}
	}
	_, month, day := r.birthday.Date()
	return DaysUntil(month, day, today), nil
}

// DaysUntil counts whole days from today's calendar date to the next
// month/day on or after it.
func DaysUntil(month time.Month, day int, today time.Time) int {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := occurrence(y, month, day)
	if next.Before(start) {
		next = occurrence(y+1, month, day)
	}
	return int(next.Sub(start).Hours() / 24)
}

func occurrence(year int, month time.Month, day int) time.Time {
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Describe returns a one-line summary of the record.
func (r *Record) Describe() string {
	phones := "none"
	if len(r.phones) > 0 {
		vals := make([]string, len(r.phones))
		for i, p := range r.phones {
			vals[i] = p.Value()
		}
		phones = strings.Join(vals, "; ")
	}
	birthday := "not set"
	if r.birthday != nil {
		birthday = r.birthday.Value()
	}
	return fmt.Sprintf("Contact name: %s, phones: %s, birthday: %s", r.name.Value(), phones, birthday)
}

func (r *Record) String() string {
	return r.Describe()
}

func (r *Record) indexOf(p field.Phone) int {
	for i, have := range r.phones {
		if have.Equal(p) {
			return i
		}
	}
	return -1
}

// mustIndex locates raw or returns a PhoneNotFoundError carrying the input.
func (r *Record) mustIndex(raw string) (int, error) {
	notFound := &PhoneNotFoundError{Contact: r.name.Value(), Phone: raw}
	p, err := field.NewPhone(raw)
	if err != nil {
		return -1, notFound
	}
	notFound.Phone = p.Value()
	i := r.indexOf(p)
	if i < 0 {
		return -1, notFound
	}
	return i, nil
}
