package faucet

import "errors"

// ErrInvalidInstruction is returned by Unpack for any input that does not
// match the layout its tag declares.
var ErrInvalidInstruction = errors.New("invalid instruction")

var (
	ErrInvalidKind              = errors.New("invalid instruction kind")
	ErrHandlerAlreadyExists     = errors.New("handler already exists")
	ErrHandlerNotFound          = errors.New("handler not found")
	ErrPublishFailed            = errors.New("failed to publish instruction")
	ErrSubscribeFailed          = errors.New("failed to subscribe to channel")
	ErrTransportNotConnected    = errors.New("transport not connected")
	ErrDispatcherNotStarted     = errors.New("dispatcher not started")
	ErrDispatcherAlreadyStarted = errors.New("dispatcher already started")
)

// Faucet execution errors.
var (
	ErrAlreadyInitialized     = errors.New("faucet already initialized")
	ErrNotInitialized         = errors.New("faucet not initialized")
	ErrFaucetClosed           = errors.New("faucet closed")
	ErrRequestedAmountTooHigh = errors.New("requested amount too high")
	ErrNonAdminCannotClose    = errors.New("only the admin can close the faucet")
	ErrBalanceOverflow        = errors.New("destination balance overflow")
)
