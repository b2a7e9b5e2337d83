package models

import "errors"

// Domain errors. The engine and the stores return these so callers can
// dispatch with errors.Is; the HTTP shell maps them to status codes.
var (
	// ErrAccountNotFound indicates the account number is unknown.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount indicates the account number is already taken.
	ErrDuplicateAccount = errors.New("account number already exists")

	// ErrInvalidAccountNumber indicates a number that is not numeric with
	// at least eight digits.
	ErrInvalidAccountNumber = errors.New("account number must be numeric and have 8 or more digits")

	// ErrInsufficientFunds indicates a debit that would take a balance
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer indicates a transfer whose source and destination
	// are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrStorage wraps any failure of the backing store that is not one
	// of the domain conditions above.
	ErrStorage = errors.New("storage failure")
)
