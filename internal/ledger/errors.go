package ledger

import "errors"

var (
	// ErrCredentialsNotFound is returned when no account matches a login and
	// PIN pair. It never says which of the two was wrong.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrAccountNotFound is returned for an ID that is not in the store,
	// including accounts that were closed.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidTransfer wraps every transfer rejection. The specific reason
	// is wrapped alongside it.
	ErrInvalidTransfer = errors.New("invalid transfer")

	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrSubCentAmount      = errors.New("amount has more than 2 decimal places")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSelfTransfer       = errors.New("cannot transfer to the same account")
	ErrUnknownDestination = errors.New("unknown destination account")

	// ErrLoanRejected is returned when a loan fails the coverage rule or the
	// amount is not positive.
	ErrLoanRejected = errors.New("loan rejected")

	// ErrDuplicateAccount is returned by New when two accounts share an ID.
	ErrDuplicateAccount = errors.New("duplicate account id")
)
