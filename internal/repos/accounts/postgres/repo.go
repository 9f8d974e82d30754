package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

// lamports are stored as NUMERIC(20,0) constrained to the u64 range.
func toNumeric(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func fromNumeric(d decimal.Decimal) (uint64, error) {
	if d.Sign() < 0 || !d.IsInteger() {
		return 0, fmt.Errorf("%w: balance %s", escrow.ErrInvalidRecord, d)
	}

	bi := d.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("balance %s: %w", d, escrow.ErrArithmeticOverflow)
	}

	return bi.Uint64(), nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
