package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Letters and any Unicode space separator, so a pasted non-breaking
	// space is accepted like an ordinary one.
	namePattern  = regexp.MustCompile(`^[A-Za-z\p{Zs}\t\n\v\f\r\x{2028}\x{2029}\x{FEFF}]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Input carries the raw form values for an add or an update. GuestCount is
// kept as text so that a non-numeric entry is rejected rather than coerced.
type Input struct {
	Name       string
	Phone      string
	GuestCount string
}

// Validate checks the form values against the seats currently available and
// returns the parsed guest count.
func Validate(name, phone, guestCountRaw string, seatsLeft int) (int, error) {
	guestCountRaw = strings.TrimSpace(guestCountRaw)
	if strings.TrimSpace(name) == "" || phone == "" || guestCountRaw == "" {
		return 0, invalid(RuleRequired, "Please fill out all fields.")
	}
	if !namePattern.MatchString(name) {
		return 0, invalid(RuleNameLetters, "Name should contain only letters.")
	}
	if !phonePattern.MatchString(phone) {
		return 0, invalid(RulePhoneDigits, "Phone number must be 10 digits.")
	}

	guestCount, err := strconv.Atoi(guestCountRaw)
	if err != nil {
		return 0, invalid(RuleGuestCountNumeric, "Invalid guest count: %q is not a whole number.", guestCountRaw)
	}
	if guestCount <= 0 {
		return 0, invalid(RuleGuestCountPositive, "Invalid guest count: must be at least 1.")
	}
	if guestCount > seatsLeft {
		return 0, invalid(RuleGuestCountSeats, "Invalid guest count: only %d seats left.", seatsLeft)
	}
	return guestCount, nil
}
