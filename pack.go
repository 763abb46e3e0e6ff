package faucet

import (
	"encoding/binary"
	"fmt"
)

const (
	tagLen    = 1
	amountLen = 8

	keyAbsent  byte = 0
	keyPresent byte = 1
)

// Pack returns the canonical encoding of ix. The returned buffer is owned
// by the caller. Pack panics if ix is not one of the value variants.
func Pack(ix Instruction) []byte {
	return ix.appendTo(make([]byte, 0, PackedLen(ix)))
}

// PackedLen returns the number of bytes Pack produces for ix. It panics if
// ix is not one of the value variants.
func PackedLen(ix Instruction) int {
	switch v := ix.(type) {
	case InitFaucet:
		n := tagLen + 1 + amountLen
		if v.Admin.IsSome() {
			n += PublicKeyLen
		}
		return n
	case MintTokens:
		return tagLen + amountLen
	case CloseFaucet:
		return tagLen
	default:
		panic(fmt.Sprintf("faucet: unsupported instruction type %T", ix))
	}
}

func (ix InitFaucet) appendTo(buf []byte) []byte {
	buf = append(buf, byte(KindInitFaucet))
	buf = appendOptionalKey(buf, ix.Admin)
	return binary.LittleEndian.AppendUint64(buf, ix.Amount)
}

func (ix MintTokens) appendTo(buf []byte) []byte {
	buf = append(buf, byte(KindMintTokens))
	return binary.LittleEndian.AppendUint64(buf, ix.Amount)
}

func (CloseFaucet) appendTo(buf []byte) []byte {
	return append(buf, byte(KindCloseFaucet))
}

func appendOptionalKey(buf []byte, o OptionalKey) []byte {
	key, ok := o.Get()
	if !ok {
		return append(buf, keyAbsent)
	}
	buf = append(buf, keyPresent)
	return append(buf, key[:]...)
}

// Unpack decodes an instruction from data. Bytes after a complete
// instruction are ignored. Every malformed input fails with an error
// wrapping ErrInvalidInstruction and no partial value.
func Unpack(data []byte) (Instruction, error) {
	if len(data) < tagLen {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidInstruction)
	}
	tag, rest := InstructionKind(data[0]), data[tagLen:]

	switch tag {
	case KindInitFaucet:
		admin, rest, err := unpackOptionalKey(rest)
		if err != nil {
			return nil, err
		}
		amount, err := unpackAmount(rest)
		if err != nil {
			return nil, err
		}
		return InitFaucet{Admin: admin, Amount: amount}, nil
	case KindMintTokens:
		amount, err := unpackAmount(rest)
		if err != nil {
			return nil, err
		}
		return MintTokens{Amount: amount}, nil
	case KindCloseFaucet:
		return CloseFaucet{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrInvalidInstruction, uint8(tag))
	}
}

func unpackAmount(data []byte) (uint64, error) {
	if len(data) < amountLen {
		return 0, fmt.Errorf("%w: amount needs %d bytes, have %d", ErrInvalidInstruction, amountLen, len(data))
	}
	return binary.LittleEndian.Uint64(data[:amountLen]), nil
}

func unpackOptionalKey(data []byte) (OptionalKey, []byte, error) {
	if len(data) == 0 {
		return OptionalKey{}, nil, fmt.Errorf("%w: missing key discriminant", ErrInvalidInstruction)
	}
	switch data[0] {
	case keyAbsent:
		return NoKey(), data[1:], nil
	case keyPresent:
		rest := data[1:]
		if len(rest) < PublicKeyLen {
			return OptionalKey{}, nil, fmt.Errorf("%w: key needs %d bytes, have %d", ErrInvalidInstruction, PublicKeyLen, len(rest))
		}
		var pk PublicKey
		copy(pk[:], rest[:PublicKeyLen])
		return SomeKey(pk), rest[PublicKeyLen:], nil
	default:
		return OptionalKey{}, nil, fmt.Errorf("%w: bad key discriminant %d", ErrInvalidInstruction, data[0])
	}
}
