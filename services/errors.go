package services

import "errors"

// Session lifecycle errors.
var (
	ErrNoSession         = errors.New("no active session for this table")
	ErrSessionExists     = errors.New("table already has an active session")
	ErrInvalidTransition = errors.New("invalid session status for this operation")
	ErrSessionConflict   = errors.New("session was modified by another terminal, please retry")
)

// Settlement errors. The coordinator reports these verbatim so the terminal
// can show an accurate message; none of them are retried automatically.
var (
	ErrSessionNotStopped = errors.New("stop the timer before settling the bill")
	ErrNoPaymentMethod   = errors.New("payment method is required")
	ErrSplitMismatch     = errors.New("cash and UPI amounts do not add up to the total payable")
	ErrNoMemberAttached  = errors.New("no member attached to this session")
	ErrInsufficientHours = errors.New("member does not have enough remaining hours")
	ErrMalformedItem     = errors.New("order line is missing its menu item reference")
)

// Lookup errors.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrItemNotFound   = errors.New("menu item not found")
	ErrMemberNotFound = errors.New("member not found")
)
