// Package reqsign signs and verifies HTTP requests with ed25519 keys.
//
// The signed message is
//
//	METHOD "\n" PATH "\n" TIMESTAMP "\n" hex(sha256(body))
//
// where TIMESTAMP is unix seconds. Keys and signatures travel base58 encoded.
package reqsign

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/mr-tron/base58"
)

const (
	HeaderIdentity  = "X-Wager-Identity"
	HeaderTimestamp = "X-Wager-Timestamp"
	HeaderSignature = "X-Wager-Signature"
)

var (
	ErrMissingHeaders = errors.New("missing signature headers")
	ErrBadSignature   = errors.New("signature does not verify")
	ErrClockSkew      = errors.New("request timestamp outside allowed window")
)

// Message builds the bytes covered by a request signature.
func Message(method, path string, ts int64, body []byte) []byte {
	sum := sha256.Sum256(body)

	return []byte(strings.ToUpper(method) + "\n" + path + "\n" + strconv.FormatInt(ts, 10) + "\n" + hex.EncodeToString(sum[:]))
}

// Headers is the set of values a signed request carries.
type Headers struct {
	Identity  string
	Timestamp string
	Signature string
}

// Sign produces the auth headers for a request made by key at time at.
func Sign(key ed25519.PrivateKey, method, path string, at time.Time, body []byte) Headers {
	ts := at.Unix()
	sig := ed25519.Sign(key, Message(method, path, ts, body))

	return Headers{
		Identity:  base58.Encode(key.Public().(ed25519.PublicKey)),
		Timestamp: strconv.FormatInt(ts, 10),
		Signature: base58.Encode(sig),
	}
}

// Verifier checks request signatures against the current time.
type Verifier struct {
	MaxSkew time.Duration
	Now     func() time.Time
}

// Verify returns the identity that signed the request.
func (v Verifier) Verify(h Headers, method, path string, body []byte) (escrow.Identity, error) {
	if h.Identity == "" || h.Timestamp == "" || h.Signature == "" {
		return escrow.Identity{}, ErrMissingHeaders
	}

	id, err := escrow.ParseIdentity(h.Identity)
	if err != nil {
		return escrow.Identity{}, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return escrow.Identity{}, fmt.Errorf("%w: timestamp: %w", ErrBadSignature, err)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	skew := now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}

	if v.MaxSkew > 0 && skew > v.MaxSkew {
		return escrow.Identity{}, ErrClockSkew
	}

	sig, err := base58.Decode(h.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return escrow.Identity{}, fmt.Errorf("%w: malformed signature", ErrBadSignature)
	}

	if !ed25519.Verify(ed25519.PublicKey(id[:]), Message(method, path, ts, body), sig) {
		return escrow.Identity{}, ErrBadSignature
	}

	return id, nil
}

// EncodePrivateKey returns the base58 form of a 64-byte ed25519 key.
func EncodePrivateKey(key ed25519.PrivateKey) string { return base58.Encode(key) }

// DecodePrivateKey accepts either the 64-byte key or its 32-byte seed.
func DecodePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, fmt.Errorf("decode key: unexpected length %d", len(raw))
	}
}
