package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smileynet/phonebook/internal/book"
	"github.com/smileynet/phonebook/internal/contact"
	"github.com/smileynet/phonebook/internal/field"
)

// ErrBadPageSize is returned by "show all" for a non-positive page size.
var ErrBadPageSize = errors.New("command: page size must be a positive number")

func (d *Dispatcher) hello(_ []string) (string, error) {
	return "How can I help you?", nil
}

func (d *Dispatcher) showHelp(_ []string) (string, error) {
	return d.help, nil
}

// add creates the contact if needed and attaches the optional phone.
// An invalid phone leaves the book unchanged.
func (d *Dispatcher) add(args []string) (string, error) {
	if len(args) < 1 {
		return "", &MissingArgumentError{Expected: []string{"name", "phone"}}
	}
	rec, _ := d.book.Find(args[0], true)
	if rec != nil {
		if len(args) < 2 {
			return fmt.Sprintf("Contact %s already exists.", rec.Name()), nil
		}
		if err := rec.AddPhone(args[1]); err != nil {
			return "", err
		}
		p, _ := rec.FindPhone(args[1])
		return fmt.Sprintf("Phone number %s added to %s.", p, rec.Name()), nil
	}

	name, err := field.NewName(d.displayName(args[0]))
	if err != nil {
		return "", err
	}
	rec = contact.New(name)
	if len(args) < 2 {
		d.book.AddRecord(rec)
		return fmt.Sprintf("New record for %s added.", name), nil
	}
	if err := rec.AddPhone(args[1]); err != nil {
		return "", err
	}
	d.book.AddRecord(rec)
	p, _ := rec.FindPhone(args[1])
	return fmt.Sprintf("New record for %s with phone number %s added.", name, p), nil
}

func (d *Dispatcher) change(args []string) (string, error) {
	if len(args) < 3 {
		return "", &MissingArgumentError{Expected: []string{"name", "old phone", "new phone"}}
	}
	rec, err := d.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.EditPhone(args[1], args[2]); err != nil {
		return "", err
	}
	p, _ := rec.FindPhone(args[2])
	return fmt.Sprintf("Phone number for %s changed to %s.", rec.Name(), p), nil
}

func (d *Dispatcher) phone(args []string) (string, error) {
	if len(args) < 1 {
		return "", &MissingArgumentError{Expected: []string{"name"}}
	}
	rec, err := d.find(args[0])
	if err != nil {
		return "", err
	}
	phones := rec.Phones()
	if len(phones) == 0 {
		return fmt.Sprintf("%s has no phones.", rec.Name()), nil
	}
	values := make([]string, len(phones))
	for i, p := range phones {
		values[i] = p.Value()
	}
	return fmt.Sprintf("%s: %s", rec.Name(), strings.Join(values, "; ")), nil
}

func (d *Dispatcher) remove(args []string) (string, error) {
	if len(args) < 2 {
		return "", &MissingArgumentError{Expected: []string{"name", "phone"}}
	}
	rec, err := d.find(args[0])
	if err != nil {
		return "", err
	}
	p, _ := rec.FindPhone(args[1])
	if err := rec.RemovePhone(args[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Phone number %s removed from %s.", p, rec.Name()), nil
}

func (d *Dispatcher) deleteContact(args []string) (string, error) {
	if len(args) < 1 {
		return "", &MissingArgumentError{Expected: []string{"name"}}
	}
	rec := d.book.Delete(args[0])
	if rec == nil {
		return fmt.Sprintf("Contact %s not found, nothing deleted.", d.displayName(args[0])), nil
	}
	return fmt.Sprintf("Contact %s deleted.", rec.Name()), nil
}

func (d *Dispatcher) birthday(args []string) (string, error) {
	if len(args) < 2 {
		return "", &MissingArgumentError{Expected: []string{"name", "birthday"}}
	}
	rec, err := d.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.SetBirthday(args[1]); err != nil {
		return "", err
	}
	bd, _ := rec.Birthday()
	return fmt.Sprintf("Birthday for %s set to %s.", rec.Name(), bd), nil
}

func (d *Dispatcher) days(args []string) (string, error) {
	if len(args) < 1 {
		return "", &MissingArgumentError{Expected: []string{"name"}}
	}
	rec, err := d.find(args[0])
	if err != nil {
		return "", err
	}
	n, err := rec.DaysToNextBirthday(d.clock.Now())
	if err != nil {
		return "", err
	}
	switch n {
	case 0:
		return fmt.Sprintf("Today is %s's birthday!", rec.Name()), nil
	case 1:
		return fmt.Sprintf("1 day until %s's birthday.", rec.Name()), nil
	default:
		return fmt.Sprintf("%d days until %s's birthday.", n, rec.Name()), nil
	}
}

func (d *Dispatcher) search(args []string) (string, error) {
	if len(args) < 1 {
		return "", &MissingArgumentError{Expected: []string{"search term"}}
	}
	term := strings.Join(args, " ")
	found := d.book.SearchContacts(term)
	if len(found) == 0 {
		return fmt.Sprintf("No contacts match %q.", term), nil
	}
	lines := make([]string, len(found))
	for i, rec := range found {
		lines[i] = rec.Describe()
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) showAll(args []string) (string, error) {
	size := d.pageSize
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return "", fmt.Errorf("%w, got %q", ErrBadPageSize, args[0])
		}
		size = n
	}
	if d.book.Len() == 0 {
		return "The address book is empty.", nil
	}
	var sb strings.Builder
	page := 0
	for batch := range d.book.Paginate(size) {
		page++
		if page > 1 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "Page %d:", page)
		for _, line := range batch {
			sb.WriteByte('\n')
			sb.WriteString(line)
		}
	}
	return sb.String(), nil
}

// Message renders err as the one-line text shown to the user.
func Message(err error) string {
	var (
		missing   *MissingArgumentError
		invalid   *field.ValidationError
		notFound  *book.ContactNotFoundError
		duplicate *contact.DuplicatePhoneError
		noPhone   *contact.PhoneNotFoundError
		noBday    *contact.NoBirthdaySetError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &invalid):
		switch invalid.Field {
		case "phone":
			return fmt.Sprintf("Phone format '%s' is incorrect. Use 10 digits; + ( ) - are allowed.", invalid.Raw)
		case "birthday":
			return fmt.Sprintf("Birthday format '%s' is incorrect. Use DD-MM-YYYY, DD.MM.YYYY or DD/MM/YYYY.", invalid.Raw)
		default:
			return "Name cannot be empty."
		}
	case errors.As(err, &notFound):
		return fmt.Sprintf("The record for contact %s not found. Try another contact or use help.", notFound.Name)
	case errors.As(err, &duplicate):
		return fmt.Sprintf("Contact %s already has phone %s.", duplicate.Contact, duplicate.Phone)
	case errors.As(err, &noPhone):
		return fmt.Sprintf("Contact %s has no phone %s.", noPhone.Contact, noPhone.Phone)
	case errors.As(err, &noBday):
		return fmt.Sprintf("No birthday set for %s. Use: birthday %s <date>.", noBday.Contact, noBday.Contact)
	case errors.Is(err, ErrBadPageSize):
		return "Page size must be a positive number."
	default:
		return err.Error()
	}
}

func (d *Dispatcher) find(raw string) (*contact.Record, error) {
	return d.book.Find(d.displayName(raw), false)
}
