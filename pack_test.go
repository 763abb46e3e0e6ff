package faucet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func keyOf(b byte) PublicKey {
	var pk PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func le(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestUnpack(t *testing.T) {
	key := keyOf(1)

	tests := []struct {
		name  string
		input []byte
		want  Instruction
	}{
		{
			name:  "init without admin",
			input: []byte{0, 0, 7, 0, 0, 0, 0, 0, 0, 0},
			want:  InitFaucet{Admin: NoKey(), Amount: 7},
		},
		{
			name:  "init with admin",
			input: concat([]byte{0, 1}, key[:], []byte{7, 3, 0, 0, 0, 0, 0, 0}),
			want:  InitFaucet{Admin: SomeKey(key), Amount: 775},
		},
		{
			name:  "mint",
			input: []byte{1, 7, 3, 0, 0, 0, 0, 0, 0},
			want:  MintTokens{Amount: 775},
		},
		{
			name:  "close",
			input: []byte{2},
			want:  CloseFaucet{},
		},
		{
			name:  "close ignores trailing bytes",
			input: []byte{2, 9, 9, 9, 255},
			want:  CloseFaucet{},
		},
		{
			name:  "mint max amount",
			input: []byte{1, 255, 255, 255, 255, 255, 255, 255, 255},
			want:  MintTokens{Amount: ^uint64(0)},
		},
		{
			name:  "all zero admin key is still present",
			input: concat([]byte{0, 1}, make([]byte, 32), le(1)),
			want:  InitFaucet{Admin: SomeKey(PublicKey{}), Amount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unpack(tt.input)
			if err != nil {
				t.Fatalf("Unpack(%v): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Unpack(%v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnpackInvalid(t *testing.T) {
	key := keyOf(1)

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"empty slice", []byte{}},
		{"unknown tag 3", []byte{3}},
		{"unknown tag 255", []byte{255, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"init missing discriminant", []byte{0}},
		{"init bad discriminant", []byte{0, 2, 7, 0, 0, 0, 0, 0, 0, 0}},
		{"init bad discriminant long", concat([]byte{0, 2}, key[:], le(7))},
		{"init truncated key", concat([]byte{0, 1}, key[:31])},
		{"init key without amount", concat([]byte{0, 1}, key[:])},
		{"init truncated amount", []byte{0, 0, 7, 0, 0}},
		{"init no key short amount", []byte{0, 0}},
		{"mint no amount", []byte{1}},
		{"mint truncated amount", []byte{1, 7, 3, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unpack(tt.input)
			if !errors.Is(err, ErrInvalidInstruction) {
				t.Fatalf("Unpack(%v) error = %v, want ErrInvalidInstruction", tt.input, err)
			}
			if got != nil {
				t.Fatalf("Unpack(%v) returned partial value %#v", tt.input, got)
			}
		})
	}
}

func TestUnpackUnknownTags(t *testing.T) {
	for tag := 3; tag <= 255; tag++ {
		if _, err := Unpack([]byte{byte(tag)}); !errors.Is(err, ErrInvalidInstruction) {
			t.Fatalf("tag %d: expected ErrInvalidInstruction, got %v", tag, err)
		}
	}
}

func TestPack(t *testing.T) {
	key := keyOf(1)

	tests := []struct {
		name string
		ix   Instruction
		want []byte
	}{
		{
			name: "init without admin",
			ix:   InitFaucet{Admin: NoKey(), Amount: 900},
			want: concat([]byte{0, 0}, le(900)),
		},
		{
			name: "init with admin",
			ix:   InitFaucet{Admin: SomeKey(key), Amount: 900},
			want: concat([]byte{0, 1}, key[:], le(900)),
		},
		{
			name: "mint",
			ix:   MintTokens{Amount: 900},
			want: []byte{1, 132, 3, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "close",
			ix:   CloseFaucet{},
			want: []byte{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pack(tt.ix)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Pack(%#v) = %v, want %v", tt.ix, got, tt.want)
			}
			if n := PackedLen(tt.ix); n != len(got) {
				t.Fatalf("PackedLen = %d, encoded %d bytes", n, len(got))
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	instructions := []Instruction{
		InitFaucet{Admin: NoKey(), Amount: 0},
		InitFaucet{Admin: NoKey(), Amount: ^uint64(0)},
		InitFaucet{Admin: SomeKey(keyOf(0xab)), Amount: 1 << 40},
		InitFaucet{Admin: SomeKey(PublicKey{}), Amount: 5},
		MintTokens{Amount: 0},
		MintTokens{Amount: 123456789},
		MintTokens{Amount: ^uint64(0)},
		CloseFaucet{},
	}

	for _, ix := range instructions {
		got, err := Unpack(Pack(ix))
		if err != nil {
			t.Fatalf("Unpack(Pack(%#v)): %v", ix, err)
		}
		if got != ix {
			t.Fatalf("round trip: got %#v, want %#v", got, ix)
		}
	}
}

func TestUnpackTruncated(t *testing.T) {
	instructions := []Instruction{
		InitFaucet{Admin: NoKey(), Amount: 42},
		InitFaucet{Admin: SomeKey(keyOf(7)), Amount: 42},
		MintTokens{Amount: 42},
	}

	for _, ix := range instructions {
		packed := Pack(ix)
		for n := 0; n < len(packed); n++ {
			if _, err := Unpack(packed[:n]); !errors.Is(err, ErrInvalidInstruction) {
				t.Fatalf("%s truncated to %d bytes: expected ErrInvalidInstruction, got %v", ix.Kind(), n, err)
			}
		}
	}
}

func TestUnpackDoesNotAliasInput(t *testing.T) {
	key := keyOf(1)
	input := concat([]byte{0, 1}, key[:], le(3))
	orig := append([]byte(nil), input...)

	ix, err := Unpack(input)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !bytes.Equal(input, orig) {
		t.Fatal("Unpack modified its input")
	}

	for i := range input {
		input[i] = 0xff
	}
	admin, _ := ix.(InitFaucet).Admin.Get()
	if admin != key {
		t.Fatal("decoded key changed after input was overwritten")
	}
}

func TestUnpackTrailingBytesAfterAmount(t *testing.T) {
	ix, err := Unpack([]byte{1, 1, 0, 0, 0, 0, 0, 0, 0, 42, 42})
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if ix != (MintTokens{Amount: 1}) {
		t.Fatalf("got %#v", ix)
	}
}

func TestParsePublicKey(t *testing.T) {
	key := keyOf(0x5a)
	got, err := ParsePublicKey(key.String())
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if got != key {
		t.Fatalf("got %s, want %s", got, key)
	}

	if _, err := ParsePublicKey("abcd"); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := ParsePublicKey("zz"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
}

func TestInstructionKindString(t *testing.T) {
	if KindMintTokens.String() != "mint_tokens" {
		t.Fatalf("got %q", KindMintTokens.String())
	}
	if InstructionKind(9).Valid() {
		t.Fatal("kind 9 should be invalid")
	}
	if InstructionKind(9).String() != "unknown(9)" {
		t.Fatalf("got %q", InstructionKind(9).String())
	}
}

func FuzzUnpack(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{2})
	f.Add([]byte{1, 7, 3, 0, 0, 0, 0, 0, 0})
	f.Add(Pack(InitFaucet{Admin: SomeKey(keyOf(1)), Amount: 775}))

	f.Fuzz(func(t *testing.T, data []byte) {
		ix, err := Unpack(data)
		if err != nil {
			if !errors.Is(err, ErrInvalidInstruction) {
				t.Fatalf("unexpected error type: %v", err)
			}
			return
		}
		packed := Pack(ix)
		if !bytes.HasPrefix(data, packed) {
			t.Fatalf("canonical encoding %v is not a prefix of input %v", packed, data)
		}
	})
}

func TestPackRejectsPointerVariants(t *testing.T) {
	instructions := []Instruction{
		&InitFaucet{Admin: NoKey(), Amount: 5},
		&MintTokens{Amount: 5},
		&CloseFaucet{},
	}

	for _, ix := range instructions {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("Pack(%#v) did not panic", ix)
				}
			}()
			Pack(ix)
		}()
	}
}
