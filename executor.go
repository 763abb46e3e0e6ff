package faucet

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Accounts are the accounts an instruction is executed against.
type Accounts struct {
	// Signer is the key that signed the request, if any.
	Signer OptionalKey
	// Destination receives minted tokens.
	Destination PublicKey
}

// Faucet is an in-memory executor for faucet instructions.
type Faucet struct {
	mu          sync.Mutex
	initialized bool
	closed      bool
	admin       OptionalKey
	limit       uint64
	balances    map[PublicKey]uint64
}

func NewFaucet() *Faucet {
	return &Faucet{balances: make(map[PublicKey]uint64)}
}

// Apply executes ix against accts.
func (f *Faucet) Apply(accts Accounts, ix Instruction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := ix.(type) {
	case InitFaucet:
		if f.initialized {
			return ErrAlreadyInitialized
		}
		f.initialized = true
		f.admin = v.Admin
		f.limit = v.Amount
		return nil
	case MintTokens:
		if err := f.checkOpen(); err != nil {
			return err
		}
		if !f.isAdmin(accts.Signer) && v.Amount > f.limit {
			return fmt.Errorf("%w: %d > %d", ErrRequestedAmountTooHigh, v.Amount, f.limit)
		}
		bal := f.balances[accts.Destination]
		if bal > math.MaxUint64-v.Amount {
			return ErrBalanceOverflow
		}
		f.balances[accts.Destination] = bal + v.Amount
		return nil
	case CloseFaucet:
		if err := f.checkOpen(); err != nil {
			return err
		}
		if !f.isAdmin(accts.Signer) {
			return ErrNonAdminCannotClose
		}
		f.closed = true
		return nil
	default:
		return fmt.Errorf("%w: unsupported instruction type %T", ErrInvalidInstruction, ix)
	}
}

func (f *Faucet) checkOpen() error {
	if !f.initialized {
		return ErrNotInitialized
	}
	if f.closed {
		return ErrFaucetClosed
	}
	return nil
}

// isAdmin reports whether signer is the configured admin. A faucet
// without an admin has no admin signer.
func (f *Faucet) isAdmin(signer OptionalKey) bool {
	admin, ok := f.admin.Get()
	if !ok {
		return false
	}
	key, ok := signer.Get()
	return ok && key == admin
}

// Balance returns the tokens minted to dest so far.
func (f *Faucet) Balance(dest PublicKey) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[dest]
}

// Initialized reports whether InitFaucet has been applied.
func (f *Faucet) Initialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

// Closed reports whether the faucet has been closed.
func (f *Faucet) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Handler adapts the faucet to a Handler that always runs against accts.
func (f *Faucet) Handler(accts Accounts) Handler {
	return func(ctx context.Context, ix Instruction) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return f.Apply(accts, ix)
	}
}

// Register installs the faucet as the handler for every instruction kind.
func (f *Faucet) Register(d Dispatcher, accts Accounts) error {
	h := f.Handler(accts)
	for _, kind := range []InstructionKind{KindInitFaucet, KindMintTokens, KindCloseFaucet} {
		if err := d.RegisterHandler(kind, h); err != nil {
			return fmt.Errorf("register %s: %w", kind, err)
		}
	}
	return nil
}
