package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlertNotFound       = errors.New("alert not found")

	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrTournamentNotJoinable   = errors.New("tournament is not open for joining")
	ErrTournamentFull          = errors.New("tournament is full")
	ErrTournamentHasPlayers    = errors.New("tournament has participants")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotParticipant          = errors.New("user did not join this tournament")
	ErrDuplicatePaymentEvent   = errors.New("gateway transaction already recorded")

	ErrPaymentGateway = errors.New("payment gateway unavailable")
)

// errAlreadyJoined rolls back a join that lost the uniqueness check
var errAlreadyJoined = errors.New("already joined")

// ValidationError reports bad caller input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
