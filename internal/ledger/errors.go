package ledger

import (
	"fmt"
	"strings"
)

// ValidationError reports a request that was rejected before any store
// access: empty required field, non-positive amount, sender == receiver.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown account, group, article or transaction
// id.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// TooMuchMoneyError reports every account whose balance would exceed the
// upper limit, so the caller can show the complete picture in one round
// trip.
type TooMuchMoneyError struct {
	Accounts []string
}

func (e *TooMuchMoneyError) Error() string {
	return fmt.Sprintf("too much money for: %s", strings.Join(e.Accounts, ", "))
}

// TooLittleMoneyError reports every account whose balance would fall below
// the lower limit.
type TooLittleMoneyError struct {
	Accounts []string
}

func (e *TooLittleMoneyError) Error() string {
	return fmt.Sprintf("too little money for: %s", strings.Join(e.Accounts, ", "))
}

// DataIntegrityError reports a state that must never occur in normal
// operation, e.g. an account without a personal group or a just-created
// transaction that cannot be re-read. Callers log these as alerting
// conditions rather than recovering silently.
type DataIntegrityError struct {
	Msg string
}

func (e *DataIntegrityError) Error() string { return "data integrity: " + e.Msg }

func integrityf(format string, args ...any) error {
	return &DataIntegrityError{Msg: fmt.Sprintf(format, args...)}
}
