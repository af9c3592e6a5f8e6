package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrRequiresAccount is returned when a guest session attempts an
	// operation that only works against a linked account, e.g. checkout.
	ErrRequiresAccount = errors.New("operation requires an account")

	// ErrUnlinkedAccount is returned when a session looks authenticated
	// but carries no usable numeric account id. It is never silently
	// downgraded to a guest identity.
	ErrUnlinkedAccount = errors.New("session has no linked account")

	// ErrGateway wraps any transport failure or non-success envelope
	// from the remote cart gateway.
	ErrGateway = errors.New("cart gateway error")
)
