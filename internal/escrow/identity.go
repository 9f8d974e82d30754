package escrow

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// Identity is the public key of an actor that signs requests.
type Identity [32]byte

// Address locates an account in the store. A wallet's address is its owner's identity.
type Address [32]byte

func (id Identity) String() string { return base58.Encode(id[:]) }

func (id Identity) IsZero() bool { return id == Identity{} }

// OnCurve reports whether id decodes to an ed25519 point, i.e. whether anyone
// can hold a private key for it. Program derived addresses never do.
func (id Identity) OnCurve() bool { return onCurve(id[:]) }

// Address returns the wallet address holding the identity's native balance.
func (id Identity) Address() Address { return Address(id) }

func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

func (a Address) String() string { return base58.Encode(a[:]) }

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Compare(b Address) int { return bytes.Compare(a[:], b[:]) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// ParseIdentity decodes a base58 public key.
func ParseIdentity(s string) (Identity, error) {
	b, err := decode32(s)
	if err != nil {
		return Identity{}, fmt.Errorf("parse identity: %w", err)
	}

	return Identity(b), nil
}

// ParseAddress decodes a base58 account address.
func ParseAddress(s string) (Address, error) {
	b, err := decode32(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse address: %w", err)
	}

	return Address(b), nil
}

// MustParseAddress is ParseAddress for compile-time constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}

	return a
}

// AddressFromBytes copies a 32-byte slice read from storage.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 32 {
		return Address{}, fmt.Errorf("address must be 32 bytes, got %d", len(b))
	}

	var a Address
	copy(a[:], b)

	return a, nil
}

func decode32(s string) ([32]byte, error) {
	var out [32]byte

	if s == "" {
		return out, fmt.Errorf("empty value")
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("base58: %w", err)
	}

	if len(raw) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(raw))
	}

	copy(out[:], raw)

	return out, nil
}
