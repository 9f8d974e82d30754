package escrow

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// ProgramID namespaces every derived address of the wager pool.
var ProgramID = MustParseAddress("25jUhpQfPWWJ9e4BaP6eNyH3y1YrhF9CDY5DHPhTBiFW")

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

// Namespace tags separating the derivation domains.
const (
	GameSeed        = "game"
	VaultSeed       = "vault"
	ParticipantSeed = "player"
)

var (
	ErrMaxSeedLength  = errors.New("seed exceeds 32 bytes")
	ErrTooManySeeds   = errors.New("too many seeds")
	ErrAddressOnCurve = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump   = errors.New("unable to find a viable bump seed")
)

// CreateProgramAddress hashes seeds under programID. The result is rejected when it
// is a valid ed25519 point, so no private key can ever sign for it.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > maxSeeds {
		return Address{}, ErrTooManySeeds
	}

	h := sha256.New()

	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return Address{}, ErrMaxSeedLength
		}

		h.Write(seed)
	}

	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr Address
	copy(addr[:], h.Sum(nil))

	if onCurve(addr[:]) {
		return Address{}, ErrAddressOnCurve
	}

	return addr, nil
}

// FindProgramAddress appends a bump byte, starting at 255 and counting down to 1,
// until CreateProgramAddress yields an off-curve address.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	var addr Address

	bump, err := searchBump(func(bump uint8) error {
		withBump[len(seeds)] = []byte{bump}

		var err error
		addr, err = CreateProgramAddress(withBump, programID)

		return err
	})
	if err != nil {
		return Address{}, 0, err
	}

	return addr, bump, nil
}

// searchBump calls try for bumps 255 down to 1 and returns the first that does
// not land on the curve. Bump 0 is never tried.
func searchBump(try func(bump uint8) error) (uint8, error) {
	for bump := 255; bump >= 1; bump-- {
		err := try(uint8(bump))
		if err == nil {
			return uint8(bump), nil
		}

		if !errors.Is(err, ErrAddressOnCurve) {
			return 0, err
		}
	}

	return 0, ErrNoViableBump
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func gameIDSeed(gameID uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], gameID)

	return b[:]
}

// GameAddress derives the game record address from ["game", le64(gameID)].
func GameAddress(gameID uint64) (Address, uint8, error) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte(GameSeed), gameIDSeed(gameID)}, ProgramID)
	if err != nil {
		return Address{}, 0, fmt.Errorf("derive game address: %w", err)
	}

	return addr, bump, nil
}

// VaultAddress derives the custody account address from ["vault", le64(gameID)].
func VaultAddress(gameID uint64) (Address, uint8, error) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte(VaultSeed), gameIDSeed(gameID)}, ProgramID)
	if err != nil {
		return Address{}, 0, fmt.Errorf("derive vault address: %w", err)
	}

	return addr, bump, nil
}

// ParticipantAddress derives ["player", game, player]. Occupancy of this address is the
// only record that player joined game.
func ParticipantAddress(game Address, player Identity) (Address, uint8, error) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte(ParticipantSeed), game[:], player[:]}, ProgramID)
	if err != nil {
		return Address{}, 0, fmt.Errorf("derive participant address: %w", err)
	}

	return addr, bump, nil
}
