package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BirthdayLayout describes the normalized birthday form.
const BirthdayLayout = "DD-MM-YYYY"

// birthdaySeparators are the accepted date part separators.
const birthdaySeparators = "./-"

// Birthday is a calendar date stored as DD-MM-YYYY.
// The parsed parts are kept alongside the string for date arithmetic.
type Birthday struct {
	Field
	year  int
	month time.Month
	day   int
}

// NewBirthday parses raw as day, month and year separated by ".", "/" or "-".
// The separator is whichever of those appears first in raw.
func NewBirthday(raw string) (Birthday, error) {
	year, month, day, err := parseBirthday(raw)
	if err != nil {
		return Birthday{}, err
	}
	return Birthday{
		Field: Field{value: fmt.Sprintf("%02d-%02d-%04d", day, int(month), year)},
		year:  year,
		month: month,
		day:   day,
	}, nil
}

// MustBirthday is NewBirthday that panics on invalid input. Use only in tests.
func MustBirthday(raw string) Birthday {
	b, err := NewBirthday(raw)
	if err != nil {
		panic(err)
	}
	return b
}

// Set replaces the date with raw. On error b is left unchanged.
func (b *Birthday) Set(raw string) error {
	next, err := NewBirthday(raw)
	if err != nil {
		return err
	}
	*b = next
	return nil
}

// Date returns the parsed year, month and day.
func (b Birthday) Date() (year int, month time.Month, day int) {
	return b.year, b.month, b.day
}

func parseBirthday(raw string) (int, time.Month, int, error) {
	invalid := func(reason string) error {
		return &ValidationError{Field: "birthday", Raw: raw, Reason: reason}
	}

	v := strings.TrimSpace(raw)
	i := strings.IndexAny(v, birthdaySeparators)
	if i < 0 {
		return 0, 0, 0, invalid("use " + BirthdayLayout + ", DD.MM.YYYY or DD/MM/YYYY")
	}
	parts := strings.Split(v, v[i:i+1])
	if len(parts) != 3 {
		return 0, 0, 0, invalid("expected day, month and year")
	}

	nums := make([]int, 3)
	for j, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return 0, 0, 0, invalid(fmt.Sprintf("%q is not a number", p))
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, invalid(fmt.Sprintf("%q is not a number", p))
		}
		nums[j] = n
	}

	day, month, year := nums[0], time.Month(nums[1]), nums[2]
	if year < 1 || year > 9999 || month < time.January || month > time.December || day < 1 {
		return 0, 0, 0, invalid("not a calendar date")
	}
	// time.Date normalizes overflow, so a changed day means the date does not exist.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return 0, 0, 0, invalid("not a calendar date")
	}
	return year, month, day, nil
}
