package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
)

func (r *accountsRepo) Create(tx *sql.Tx, acc accounts.Account) error {
	data := acc.Data
	if data == nil {
		data = []byte{}
	}

	_, err := tx.Exec(`
		INSERT INTO accounts (address, kind, lamports, rent_reserve, data)
		VALUES ($1, $2, $3, $4, $5)
	`, acc.Address.Bytes(), string(acc.Kind), toNumeric(acc.Lamports), toNumeric(acc.RentReserve), data)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return fmt.Errorf("create %s %s: %w", acc.Kind, acc.Address, escrow.ErrAddressOccupied)
		}

		return fmt.Errorf("create account: %w", err)
	}

	return nil
}
