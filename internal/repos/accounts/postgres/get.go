package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
	"github.com/shopspring/decimal"
)

const selectAccount = `
	SELECT kind, lamports, rent_reserve, data, created_at, updated_at
	FROM accounts
	WHERE address = $1
`

func (r *accountsRepo) Get(ctx context.Context, addr escrow.Address) (accounts.Account, error) {
	acc, err := scanAccount(addr, r.db.QueryRowContext(ctx, selectAccount, addr.Bytes()))
	if err != nil {
		return accounts.Account{}, fmt.Errorf("get account: %w", err)
	}

	return acc, nil
}

func (r *accountsRepo) LockForUpdate(tx *sql.Tx, addr escrow.Address) (accounts.Account, error) {
	acc, err := scanAccount(addr, tx.QueryRow(selectAccount+` FOR UPDATE`, addr.Bytes()))
	if err != nil {
		return accounts.Account{}, fmt.Errorf("lock/get account: %w", err)
	}

	return acc, nil
}

func scanAccount(addr escrow.Address, row *sql.Row) (accounts.Account, error) {
	var (
		acc               accounts.Account
		kind              string
		lamports, reserve decimal.Decimal
	)

	err := row.Scan(&kind, &lamports, &reserve, &acc.Data, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, fmt.Errorf("%s: %w", addr, escrow.ErrNotFound)
		}

		return accounts.Account{}, fmt.Errorf("scan: %w", err)
	}

	acc.Address = addr
	acc.Kind = accounts.Kind(kind)

	acc.Lamports, err = fromNumeric(lamports)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("lamports: %w", err)
	}

	acc.RentReserve, err = fromNumeric(reserve)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("rent reserve: %w", err)
	}

	return acc, nil
}
