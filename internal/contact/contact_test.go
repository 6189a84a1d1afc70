package contact

import (
	"errors"
	"testing"
	"time"

	"github.com/smileynet/phonebook/internal/field"
)

func newRecord(t *testing.T, name string, phones ...string) *Record {
	t.Helper()
	n, err := field.NewName(name)
	if err != nil {
		t.Fatal(err)
	}
	r := New(n)
	for _, p := range phones {
		if err := r.AddPhone(p); err != nil {
			t.Fatalf("AddPhone(%q) error = %v", p, err)
		}
	}
	return r
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func phoneValues(r *Record) []string {
	var out []string
	for _, p := range r.Phones() {
		out = append(out, p.Value())
	}
	return out
}

func TestNewWithPhone(t *testing.T) {
	name, _ := field.NewName("Bill")

	r, err := NewWithPhone(name, "+(050)123-45-67")
	if err != nil {
		t.Fatalf("NewWithPhone() error = %v", err)
	}
	if got := phoneValues(r); len(got) != 1 || got[0] != "0501234567" {
		t.Errorf("phones = %v, want [0501234567]", got)
	}

	if _, err := NewWithPhone(name, "nope"); !errors.Is(err, field.ErrInvalid) {
		t.Errorf("NewWithPhone(invalid) error = %v, want ErrInvalid", err)
	}
}

func TestAddPhone_RejectsDuplicates(t *testing.T) {
	// Given a record with one phone
	r := newRecord(t, "Bill", "0501234567")

	// When the same number is added in another notation
	err := r.AddPhone("(050)-123-45-67")

	// Then a DuplicatePhoneError names the contact and phone
	var dup *DuplicatePhoneError
	if !errors.As(err, &dup) {
		t.Fatalf("AddPhone() error = %v, want *DuplicatePhoneError", err)
	}
	if dup.Contact != "Bill" || dup.Phone != "0501234567" {
		t.Errorf("error = %+v, want Bill/0501234567", dup)
	}
	// And the record still holds exactly one entry
	if got := len(r.Phones()); got != 1 {
		t.Errorf("phones len = %d, want 1", got)
	}
}

func TestAddPhone_InvalidLeavesRecordUnchanged(t *testing.T) {
	r := newRecord(t, "Bill", "0501234567")

	if err := r.AddPhone("12345"); !errors.Is(err, field.ErrInvalid) {
		t.Fatalf("AddPhone(invalid) error = %v, want ErrInvalid", err)
	}
	if got := phoneValues(r); len(got) != 1 {
		t.Errorf("phones = %v, want one phone", got)
	}
}

func TestAddPhone_PreservesOrder(t *testing.T) {
	r := newRecord(t, "Bill", "0000000003", "0000000001", "0000000002")

	want := []string{"0000000003", "0000000001", "0000000002"}
	got := phoneValues(r)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phones = %v, want %v", got, want)
		}
	}
}

func TestEditPhone(t *testing.T) {
	t.Run("replaces in place", func(t *testing.T) {
		r := newRecord(t, "Bill", "0000000001", "0000000002", "0000000003")

		if err := r.EditPhone("0000000002", "+(099)999-99-99"); err != nil {
			t.Fatalf("EditPhone() error = %v", err)
		}

		got := phoneValues(r)
		if got[1] != "0999999999" {
			t.Errorf("phones = %v, want 0999999999 at index 1", got)
		}
	})

	t.Run("missing old phone", func(t *testing.T) {
		r := newRecord(t, "Bill", "0000000001")

		err := r.EditPhone("0000000009", "0000000002")

		var nf *PhoneNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("EditPhone() error = %v, want *PhoneNotFoundError", err)
		}
		if nf.Contact != "Bill" || nf.Phone != "0000000009" {
			t.Errorf("error = %+v", nf)
		}
	})

	t.Run("invalid new phone keeps old", func(t *testing.T) {
		r := newRecord(t, "Bill", "0000000001")

		if err := r.EditPhone("0000000001", "bad"); !errors.Is(err, field.ErrInvalid) {
			t.Fatalf("EditPhone() error = %v, want ErrInvalid", err)
		}
		if got := phoneValues(r); got[0] != "0000000001" {
			t.Errorf("phones = %v, want unchanged", got)
		}
	})

	t.Run("new phone already held elsewhere", func(t *testing.T) {
		r := newRecord(t, "Bill", "0000000001", "0000000002")

		err := r.EditPhone("0000000001", "0000000002")

		var dup *DuplicatePhoneError
		if !errors.As(err, &dup) {
			t.Fatalf("EditPhone() error = %v, want *DuplicatePhoneError", err)
		}
	})

	t.Run("same value is a no-op", func(t *testing.T) {
		r := newRecord(t, "Bill", "0000000001")

		if err := r.EditPhone("0000000001", "(000)000-00-01"); err != nil {
			t.Fatalf("EditPhone() error = %v", err)
		}
	})
}

func TestRemovePhone(t *testing.T) {
	r := newRecord(t, "Bill", "0000000001", "0000000002", "0000000003")

	if err := r.RemovePhone("+(000)000-00-02"); err != nil {
		t.Fatalf("RemovePhone() error = %v", err)
	}
	got := phoneValues(r)
	if len(got) != 2 || got[0] != "0000000001" || got[1] != "0000000003" {
		t.Errorf("phones = %v, want [0000000001 0000000003]", got)
	}

	var nf *PhoneNotFoundError
	if err := r.RemovePhone("0000000002"); !errors.As(err, &nf) {
		t.Errorf("RemovePhone(removed) error = %v, want *PhoneNotFoundError", err)
	}
	if err := r.RemovePhone("garbage"); !errors.As(err, &nf) {
		t.Errorf("RemovePhone(garbage) error = %v, want *PhoneNotFoundError", err)
	}
}

func TestFindPhone(t *testing.T) {
	r := newRecord(t, "Bill", "0501234567")

	p, ok := r.FindPhone("050-123-45-67")
	if !ok || p.Value() != "0501234567" {
		t.Errorf("FindPhone() = (%q, %v), want (0501234567, true)", p.Value(), ok)
	}
	if _, ok := r.FindPhone("0000000000"); ok {
		t.Error("FindPhone(missing) found = true")
	}
	if _, ok := r.FindPhone("abc"); ok {
		t.Error("FindPhone(invalid) found = true")
	}
}

func TestHasPhoneSubstring(t *testing.T) {
	r := newRecord(t, "Bill", "0501234567", "0679990000")

	for term, want := range map[string]bool{
		"123":        true,
		"999":        true,
		"0679990000": true,
		"777":        false,
		"bill":       false,
	} {
		if got := r.HasPhoneSubstring(term); got != want {
			t.Errorf("HasPhoneSubstring(%q) = %v, want %v", term, got, want)
		}
	}
}

func TestSetBirthday(t *testing.T) {
	r := newRecord(t, "Bill")

	if _, ok := r.Birthday(); ok {
		t.Fatal("new record has birthday")
	}
	if err := r.SetBirthday("01.02.1990"); err != nil {
		t.Fatalf("SetBirthday() error = %v", err)
	}
	if err := r.SetBirthday("31-02-1990"); !errors.Is(err, field.ErrInvalid) {
		t.Fatalf("SetBirthday(invalid) error = %v, want ErrInvalid", err)
	}

	b, ok := r.Birthday()
	if !ok || b.Value() != "01-02-1990" {
		t.Errorf("Birthday() = (%q, %v), want (01-02-1990, true)", b.Value(), ok)
	}

	if err := r.SetBirthday("03/04/1991"); err != nil {
		t.Fatalf("SetBirthday() error = %v", err)
	}
	if b, _ := r.Birthday(); b.Value() != "03-04-1991" {
		t.Errorf("Birthday() = %q, want overwritten 03-04-1991", b.Value())
	}
}

func TestDaysToNextBirthday(t *testing.T) {
	tests := []struct {
		name     string
		birthday string
		today    time.Time
		want     int
	}{
		{name: "today", birthday: "19-10-1990", today: day(2026, time.October, 19), want: 0},
		{name: "tomorrow", birthday: "20-10-1990", today: day(2026, time.October, 19), want: 1},
		{name: "year rollover", birthday: "01-01-1990", today: day(2026, time.December, 31), want: 1},
		{name: "just passed", birthday: "18-10-1990", today: day(2026, time.October, 19), want: 364},
		{name: "passed into leap year", birthday: "18-10-1990", today: day(2027, time.October, 19), want: 365},
		{name: "leap day in leap year", birthday: "29-02-2000", today: day(2028, time.February, 1), want: 28},
		{name: "leap day in common year", birthday: "29-02-2000", today: day(2027, time.February, 28), want: 0},
		{name: "leap day after common feb", birthday: "29-02-2000", today: day(2027, time.March, 1), want: 365},
		{name: "later this month", birthday: "25-12-1980", today: day(2026, time.December, 1), want: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecord(t, "Bill")
			if err := r.SetBirthday(tt.birthday); err != nil {
				t.Fatal(err)
			}

			got, err := r.DaysToNextBirthday(tt.today)
			if err != nil {
				t.Fatalf("DaysToNextBirthday() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DaysToNextBirthday() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysToNextBirthday_Range(t *testing.T) {
	// Every birthday of a leap year, asked from every day of two years,
	// lands in [0, 366] and is 0 only on the day itself.
	start := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	for b := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC); b.Year() == 2024; b = b.AddDate(0, 0, 7) {
		for today := start; today.Year() < 2029; today = today.AddDate(0, 0, 5) {
			got := DaysUntil(b.Month(), b.Day(), today)
			if got < 0 || got > 366 {
				t.Fatalf("DaysUntil(%v %d, %s) = %d, out of range", b.Month(), b.Day(), today.Format("2006-01-02"), got)
			}
			same := today.Month() == b.Month() && today.Day() == b.Day()
			if (got == 0) != same {
				t.Fatalf("DaysUntil(%v %d, %s) = %d", b.Month(), b.Day(), today.Format("2006-01-02"), got)
			}
		}
	}
}

func TestDaysToNextBirthday_NotSet(t *testing.T) {
	r := newRecord(t, "Bill")

	_, err := r.DaysToNextBirthday(day(2026, time.October, 19))

	var nb *NoBirthdaySetError
	if !errors.As(err, &nb) {
		t.Fatalf("DaysToNextBirthday() error = %v, want *NoBirthdaySetError", err)
	}
	if nb.Contact != "Bill" {
		t.Errorf("Contact = %q, want Bill", nb.Contact)
	}
}

func TestDescribe(t *testing.T) {
	r := newRecord(t, "Bill", "0501234567", "0679990000")

	want := "Contact name: Bill, phones: 0501234567; 0679990000, birthday: not set"
	if got := r.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}

	_ = r.SetBirthday("5/6/1977")
	want = "Contact name: Bill, phones: 0501234567; 0679990000, birthday: 05-06-1977"
	if got := r.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}

	empty := newRecord(t, "Jill")
	want = "Contact name: Jill, phones: none, birthday: not set"
	if got := empty.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestPhones_ReturnsCopy(t *testing.T) {
	r := newRecord(t, "Bill", "0501234567")

	ps := r.Phones()
	ps[0] = field.MustPhone("0000000000")

	if got := phoneValues(r); got[0] != "0501234567" {
		t.Errorf("record mutated through Phones(): %v", got)
	}
}
