package field

import "strings"

// PhoneDigits is the number of digits a normalized phone number carries.
const PhoneDigits = 10

// phoneSeparators are stripped from input before the digit check.
var phoneSeparators = strings.NewReplacer("+", "", "(", "", ")", "", "-", "")

// Phone is a phone number normalized to PhoneDigits decimal digits.
type Phone struct {
	Field
}

// NewPhone strips "+", "(", ")" and "-" from raw and requires exactly
// PhoneDigits decimal digits to remain.
func NewPhone(raw string) (Phone, error) {
	f, err := New(raw, NormalizePhone)
	if err != nil {
		return Phone{}, err
	}
	return Phone{Field: f}, nil
}

// MustPhone is NewPhone that panics on invalid input. Use only in tests.
func MustPhone(raw string) Phone {
	p, err := NewPhone(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Set replaces the number with raw. On error p is left unchanged.
func (p *Phone) Set(raw string) error {
	next, err := NewPhone(raw)
	if err != nil {
		return err
	}
	*p = next
	return nil
}

// Equal reports whether both numbers normalize to the same digits.
func (p Phone) Equal(other Phone) bool {
	return p.value == other.value
}

// NormalizePhone is the Phone validator.
func NormalizePhone(raw string) (string, error) {
	v := phoneSeparators.Replace(strings.TrimSpace(raw))
	for _, r := range v {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "phone", Raw: raw, Reason: "use digits only, optionally with + ( ) -"}
		}
	}
	if len(v) != PhoneDigits {
		return "", &ValidationError{Field: "phone", Raw: raw, Reason: "must contain exactly 10 digits"}
	}
	return v, nil
}
