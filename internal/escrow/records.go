package escrow

import (
	"encoding/json"
	"fmt"
)

// OptionalIdentity is either Some(identity) or None.
type OptionalIdentity struct {
	id  Identity
	set bool
}

func Some(id Identity) OptionalIdentity { return OptionalIdentity{id: id, set: true} }

func None() OptionalIdentity { return OptionalIdentity{} }

func (o OptionalIdentity) Get() (Identity, bool) { return o.id, o.set }

func (o OptionalIdentity) IsSome() bool { return o.set }

func (o OptionalIdentity) String() string {
	if !o.set {
		return "None"
	}

	return fmt.Sprintf("Some(%s)", o.id)
}

func (o OptionalIdentity) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}

	return json.Marshal(o.id.String())
}

func (o *OptionalIdentity) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = None()
		return nil
	}

	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return fmt.Errorf("optional identity: %w", err)
	}

	id, err := ParseIdentity(s)
	if err != nil {
		return err
	}

	*o = Some(id)

	return nil
}

// GameRecord is the durable configuration and state of one game.
type GameRecord struct {
	Authority    Identity
	GameID       uint64
	EntryFee     uint64
	PrizePool    uint64
	IsActive     bool
	PlayerCount  uint64
	Winner       OptionalIdentity
	FeeRecipient Identity
}

// NewGameRecord returns an active game with an empty pool.
func NewGameRecord(gameID, entryFee uint64, authority, feeRecipient Identity) GameRecord {
	return GameRecord{
		Authority:    authority,
		GameID:       gameID,
		EntryFee:     entryFee,
		PrizePool:    0,
		IsActive:     true,
		PlayerCount:  0,
		Winner:       None(),
		FeeRecipient: feeRecipient,
	}
}

// RecordJoin adds one entry fee to the pool and one player to the count.
// The record is left untouched on error.
func (g *GameRecord) RecordJoin() error {
	if !g.IsActive {
		return ErrGameNotActive
	}

	pool, err := CheckedAdd(g.PrizePool, g.EntryFee)
	if err != nil {
		return fmt.Errorf("prize pool: %w", err)
	}

	count, err := CheckedAdd(g.PlayerCount, 1)
	if err != nil {
		return fmt.Errorf("player count: %w", err)
	}

	g.PrizePool = pool
	g.PlayerCount = count

	return nil
}

// Resolve checks that caller may settle the game, computes the payout and moves the
// record to its terminal state. Nothing is mutated unless every check passes.
func (g *GameRecord) Resolve(caller, winner, feeRecipient Identity) (Payout, error) {
	if !g.IsActive {
		return Payout{}, ErrGameNotActive
	}

	if caller != g.Authority {
		return Payout{}, ErrUnauthorized
	}

	if feeRecipient != g.FeeRecipient {
		return Payout{}, ErrFeeRecipientMismatch
	}

	payout, err := SplitPrizePool(g.PrizePool)
	if err != nil {
		return Payout{}, fmt.Errorf("split prize pool: %w", err)
	}

	g.IsActive = false
	g.Winner = Some(winner)

	return payout, nil
}

// ParticipantRecord marks that Player joined the game at Game.
type ParticipantRecord struct {
	Player   Identity
	Game     Address
	JoinedAt int64 // unix seconds
}
