package accounts

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_PgErrorMapping(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		query   string
		result  error
		call    func(r *accountsRepo, tx *sql.Tx) error
		wantErr error
	}{
		{
			name:    "create_unique_violation",
			query:   "INSERT INTO accounts",
			result:  &pgconn.PgError{Code: pgUniqueViolation},
			call:    func(r *accountsRepo, tx *sql.Tx) error { return r.Create(tx, accounts.Account{Kind: accounts.KindGame}) },
			wantErr: escrow.ErrAddressOccupied,
		},
		{
			name:    "credit_check_violation",
			query:   "UPDATE accounts",
			result:  &pgconn.PgError{Code: pgCheckViolation},
			call:    func(r *accountsRepo, tx *sql.Tx) error { return r.Credit(tx, escrow.Address{}, 1) },
			wantErr: escrow.ErrArithmeticOverflow,
		},
		{
			name:    "credit_wallet_check_violation",
			query:   "INSERT INTO accounts",
			result:  &pgconn.PgError{Code: pgCheckViolation},
			call:    func(r *accountsRepo, tx *sql.Tx) error { return r.CreditWallet(tx, escrow.Address{}, 1) },
			wantErr: escrow.ErrArithmeticOverflow,
		},
		{
			name:    "other_errors_pass_through",
			query:   "UPDATE accounts",
			result:  errBoom,
			call:    func(r *accountsRepo, tx *sql.Tx) error { return r.Debit(tx, escrow.Address{}, 1) },
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(tt.query)).WillReturnError(tt.result)
			mock.ExpectRollback()

			tx, err := db.Begin()
			require.NoError(t, err)

			err = tt.call(New(db), tx)
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, tx.Rollback())

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccounts_ZeroRowsMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		call    func(r *accountsRepo, tx *sql.Tx) error
		wantErr error
	}{
		{name: "debit", call: func(r *accountsRepo, tx *sql.Tx) error { return r.Debit(tx, escrow.Address{}, 1) }, wantErr: escrow.ErrInsufficientBalance},
		{name: "credit", call: func(r *accountsRepo, tx *sql.Tx) error { return r.Credit(tx, escrow.Address{}, 1) }, wantErr: escrow.ErrNotFound},
		{name: "credit_wallet", call: func(r *accountsRepo, tx *sql.Tx) error { return r.CreditWallet(tx, escrow.Address{}, 1) }, wantErr: escrow.ErrNotAWallet},
		{name: "write_data", call: func(r *accountsRepo, tx *sql.Tx) error { return r.WriteData(tx, escrow.Address{}, nil) }, wantErr: escrow.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))

			tx, err := db.Begin()
			require.NoError(t, err)

			require.ErrorIs(t, tt.call(New(db), tx), tt.wantErr)
		})
	}
}

func TestNumericConversion(t *testing.T) {
	t.Parallel()

	for _, v := range []uint64{0, 1, 1 << 63, ^uint64(0)} {
		got, err := fromNumeric(toNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := fromNumeric(toNumeric(1).Neg())
	require.ErrorIs(t, err, escrow.ErrInvalidRecord)

	_, err = fromNumeric(toNumeric(^uint64(0)).Add(toNumeric(1)))
	require.ErrorIs(t, err, escrow.ErrArithmeticOverflow)
}
