package faucet

import (
	"context"
	"encoding/hex"
	"fmt"
)

// InstructionKind is the leading tag byte of an encoded instruction.
// Tag values are part of the wire format and must never be reused.
type InstructionKind uint8

const (
	KindInitFaucet InstructionKind = iota
	KindMintTokens
	KindCloseFaucet
)

func (k InstructionKind) String() string {
	switch k {
	case KindInitFaucet:
		return "init_faucet"
	case KindMintTokens:
		return "mint_tokens"
	case KindCloseFaucet:
		return "close_faucet"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether k names one of the known instructions.
func (k InstructionKind) Valid() bool {
	return k <= KindCloseFaucet
}

// PublicKeyLen is the size of a raw public key on the wire.
const PublicKeyLen = 32

// PublicKey is a raw 32-byte account key.
type PublicKey [PublicKeyLen]byte

// ParsePublicKey decodes a hex encoded key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return pk, fmt.Errorf("parse public key: %w", err)
	}
	if len(b) != PublicKeyLen {
		return pk, fmt.Errorf("parse public key: want %d bytes, got %d", PublicKeyLen, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// OptionalKey is a PublicKey that may be absent. Presence is explicit;
// an all-zero key is still a present key.
type OptionalKey struct {
	key   PublicKey
	valid bool
}

// SomeKey returns a present OptionalKey holding pk.
func SomeKey(pk PublicKey) OptionalKey {
	return OptionalKey{key: pk, valid: true}
}

// NoKey returns an absent OptionalKey.
func NoKey() OptionalKey {
	return OptionalKey{}
}

// Get returns the key and whether it is present.
func (o OptionalKey) Get() (PublicKey, bool) {
	return o.key, o.valid
}

func (o OptionalKey) IsSome() bool {
	return o.valid
}

func (o OptionalKey) String() string {
	if !o.valid {
		return "none"
	}
	return o.key.String()
}

// Instruction is one of InitFaucet, MintTokens or CloseFaucet, always held
// by value. Pointers to the variants satisfy the interface but are rejected
// by Pack and Faucet.Apply.
type Instruction interface {
	Kind() InstructionKind

	// appendTo writes the encoded instruction to buf.
	appendTo(buf []byte) []byte
}

// InitFaucet establishes a faucet.
//
// Accounts expected by the executor: the current mint authority (signer),
// the new mint authority, the token mint, the faucet account and the
// token program.
type InitFaucet struct {
	// Admin may mint any amount per instruction.
	Admin OptionalKey
	// Amount caps every mint by non-admin callers.
	Amount uint64
}

// MintTokens mints Amount tokens to a destination.
//
// Accounts expected by the executor: the mint authority, the token mint,
// the destination, the token program and optionally the admin (signer).
type MintTokens struct {
	Amount uint64
}

// CloseFaucet closes the faucet. Only possible when the faucet has an admin.
type CloseFaucet struct{}

func (InitFaucet) Kind() InstructionKind  { return KindInitFaucet }
func (MintTokens) Kind() InstructionKind  { return KindMintTokens }
func (CloseFaucet) Kind() InstructionKind { return KindCloseFaucet }

// Handler processes a decoded instruction.
type Handler func(ctx context.Context, ix Instruction) error
