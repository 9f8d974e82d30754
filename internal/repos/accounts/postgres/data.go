package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerpool/internal/escrow"
)

func (r *accountsRepo) WriteData(tx *sql.Tx, addr escrow.Address, data []byte) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET data = $2, updated_at = now()
		WHERE address = $1
		  AND kind <> 'wallet'
		  AND octet_length(data) = octet_length($2::bytea)
	`, addr.Bytes(), data)
	if err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("write data %s: %w", addr, escrow.ErrNotFound)
	}

	return nil
}
