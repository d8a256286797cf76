package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("invalid reservation")
	ErrAlreadyCheckedOut   = errors.New("already checked out")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotEditing          = errors.New("reservation is not being edited")
)

// Rule names the validation check that rejected an input.
type Rule string

const (
	RuleRequired           Rule = "required"
	RuleNameLetters        Rule = "name_letters"
	RulePhoneDigits        Rule = "phone_digits"
	RuleGuestCountNumeric  Rule = "guest_count_numeric"
	RuleGuestCountPositive Rule = "guest_count_positive"
	RuleGuestCountSeats    Rule = "guest_count_seats"
	RuleStatus             Rule = "status"
	RuleDuplicateID        Rule = "duplicate_id"
)

// ValidationError is returned by Validate and by every transition that
// accepts operator input. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(rule Rule, format string, args ...any) error {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
