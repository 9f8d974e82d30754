package accounts

import (
	"context"
	"database/sql"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
)

type Kind string

const (
	KindWallet      Kind = "wallet"
	KindGame        Kind = "game"
	KindVault       Kind = "vault"
	KindParticipant Kind = "participant"
)

// Account is one row of the keyed record store.
type Account struct {
	Address     escrow.Address
	Kind        Kind
	Lamports    uint64 // spendable balance
	RentReserve uint64 // locked minimum balance, never spendable
	Data        []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Accounts is the keyed record store. Methods taking a *sql.Tx only take effect
// when that transaction commits.
type Accounts interface {
	// Create inserts acc unless its address is taken (escrow.ErrAddressOccupied).
	Create(tx *sql.Tx, acc Account) error
	// LockForUpdate reads the account and holds its row lock until tx ends.
	LockForUpdate(tx *sql.Tx, addr escrow.Address) (Account, error)
	Get(ctx context.Context, addr escrow.Address) (Account, error)
	WriteData(tx *sql.Tx, addr escrow.Address, data []byte) error
	// Debit fails with escrow.ErrInsufficientBalance when the account is missing or short.
	Debit(tx *sql.Tx, addr escrow.Address, amount uint64) error
	// Credit adds to an existing account of any kind.
	Credit(tx *sql.Tx, addr escrow.Address, amount uint64) error
	// CreditWallet adds to a wallet, creating it when absent. Other kinds are refused
	// with escrow.ErrNotAWallet.
	CreditWallet(tx *sql.Tx, addr escrow.Address, amount uint64) error
}
