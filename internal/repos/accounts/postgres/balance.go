package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerpool/internal/escrow"
)

func (r *accountsRepo) Debit(tx *sql.Tx, addr escrow.Address, amount uint64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET lamports = lamports - $2, updated_at = now()
		WHERE address = $1
		  AND lamports >= $2
	`, addr.Bytes(), toNumeric(amount))
	if err != nil {
		return fmt.Errorf("debit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("debit %d from %s: %w", amount, addr, escrow.ErrInsufficientBalance)
	}

	return nil
}

func (r *accountsRepo) Credit(tx *sql.Tx, addr escrow.Address, amount uint64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET lamports = lamports + $2, updated_at = now()
		WHERE address = $1
	`, addr.Bytes(), toNumeric(amount))
	if err != nil {
		if pgCode(err) == pgCheckViolation {
			return fmt.Errorf("credit %d to %s: %w", amount, addr, escrow.ErrArithmeticOverflow)
		}

		return fmt.Errorf("credit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("credit %s: %w", addr, escrow.ErrNotFound)
	}

	return nil
}

func (r *accountsRepo) CreditWallet(tx *sql.Tx, addr escrow.Address, amount uint64) error {
	res, err := tx.Exec(`
		INSERT INTO accounts (address, kind, lamports)
		VALUES ($1, 'wallet', $2)
		ON CONFLICT (address) DO UPDATE
		SET lamports = accounts.lamports + EXCLUDED.lamports, updated_at = now()
		WHERE accounts.kind = 'wallet'
	`, addr.Bytes(), toNumeric(amount))
	if err != nil {
		if pgCode(err) == pgCheckViolation {
			return fmt.Errorf("credit %d to %s: %w", amount, addr, escrow.ErrArithmeticOverflow)
		}

		return fmt.Errorf("credit wallet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("credit %s: %w", addr, escrow.ErrNotAWallet)
	}

	return nil
}
