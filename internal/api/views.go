package api

import (
	"math/big"
	"strconv"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/services/games"
	"github.com/shopspring/decimal"
)

// lamportsPerCoin is the decimal shift between base units and display amounts.
const lamportsPerCoin = 9

type amountView struct {
	Lamports string `json:"lamports"`
	Display  string `json:"display"`
}

func newAmount(v uint64) amountView {
	return amountView{
		Lamports: strconv.FormatUint(v, 10),
		Display:  decimal.NewFromBigInt(new(big.Int).SetUint64(v), -lamportsPerCoin).StringFixed(lamportsPerCoin),
	}
}

type gameView struct {
	Address      escrow.Address          `json:"address"`
	Bump         uint8                   `json:"bump"`
	Vault        escrow.Address          `json:"vault"`
	VaultBump    uint8                   `json:"vaultBump"`
	GameID       string                  `json:"gameId"`
	Authority    escrow.Identity         `json:"authority"`
	FeeRecipient escrow.Identity         `json:"feeRecipient"`
	EntryFee     amountView              `json:"entryFee"`
	PrizePool    amountView              `json:"prizePool"`
	VaultBalance amountView              `json:"vaultBalance"`
	RentReserve  amountView              `json:"rentReserve"`
	PlayerCount  string                  `json:"playerCount"`
	IsActive     bool                    `json:"isActive"`
	Winner       escrow.OptionalIdentity `json:"winner"`
}

func newGameView(g games.Game) gameView {
	r := g.Record

	return gameView{
		Address:      g.Address,
		Bump:         g.Bump,
		Vault:        g.Vault,
		VaultBump:    g.VaultBump,
		GameID:       strconv.FormatUint(r.GameID, 10),
		Authority:    r.Authority,
		FeeRecipient: r.FeeRecipient,
		EntryFee:     newAmount(r.EntryFee),
		PrizePool:    newAmount(r.PrizePool),
		VaultBalance: newAmount(g.VaultBalance),
		RentReserve:  newAmount(g.RentReserve),
		PlayerCount:  strconv.FormatUint(r.PlayerCount, 10),
		IsActive:     r.IsActive,
		Winner:       r.Winner,
	}
}

type participantView struct {
	Address     escrow.Address  `json:"address"`
	Bump        uint8           `json:"bump"`
	Player      escrow.Identity `json:"player"`
	Game        escrow.Address  `json:"game"`
	JoinedAt    time.Time       `json:"joinedAt"`
	RentReserve amountView      `json:"rentReserve"`
}

func newParticipantView(p games.Participant) participantView {
	return participantView{
		Address:     p.Address,
		Bump:        p.Bump,
		Player:      p.Record.Player,
		Game:        p.Record.Game,
		JoinedAt:    time.Unix(p.Record.JoinedAt, 0).UTC(),
		RentReserve: newAmount(p.RentReserve),
	}
}

type joinView struct {
	Participant participantView `json:"participant"`
	Game        gameView        `json:"game"`
}

type settlementView struct {
	Game        gameView   `json:"game"`
	WinnerPrize amountView `json:"winnerPrize"`
	Fee         amountView `json:"fee"`
}

type accountView struct {
	Address     escrow.Address `json:"address"`
	Kind        string         `json:"kind"`
	Lamports    amountView     `json:"lamports"`
	RentReserve amountView     `json:"rentReserve"`
	DataLen     int            `json:"dataLen"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func newAccountView(a games.Account) accountView {
	return accountView{
		Address:     a.Address,
		Kind:        string(a.Kind),
		Lamports:    newAmount(a.Lamports),
		RentReserve: newAmount(a.RentReserve),
		DataLen:     len(a.Data),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}
