package games

import (
	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
)

type InitializeGame struct {
	GameID       uint64
	EntryFee     uint64
	Authority    escrow.Identity
	FeeRecipient escrow.Identity
}

type EndGame struct {
	GameID       uint64
	Caller       escrow.Identity
	Winner       escrow.Identity
	FeeRecipient escrow.Identity
}

// Game is a decoded game record together with its vault.
type Game struct {
	Address      escrow.Address
	Bump         uint8
	Vault        escrow.Address
	VaultBump    uint8
	VaultBalance uint64
	RentReserve  uint64
	Record       escrow.GameRecord
}

type Participant struct {
	Address     escrow.Address
	Bump        uint8
	RentReserve uint64
	Record      escrow.ParticipantRecord
}

type JoinResult struct {
	Participant Participant
	Game        Game
}

type Settlement struct {
	Game   Game
	Payout escrow.Payout
}

type Account = accounts.Account
