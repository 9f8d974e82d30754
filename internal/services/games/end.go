package games

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/infra/events"
	"github.com/fastprodman/wagerpool/internal/infra/metrics"
	"github.com/fastprodman/wagerpool/internal/infra/pgutils"
)

type credit struct {
	to     escrow.Address
	amount uint64
}

// EndGame settles an active game. All checks run against the locked record
// before anything is written; the record is marked resolved before the vault
// is drained to the winner and the fee recipient.
func (s *Service) EndGame(ctx context.Context, req EndGame) (_ Settlement, err error) {
	defer s.observe("end_game", time.Now(), &err)

	addrs, err := deriveAddresses(req.GameID)
	if err != nil {
		return Settlement{}, err
	}

	res, err := pgutils.InTx(ctx, s.db, func(tx *sql.Tx) (Settlement, error) {
		gameAcc, err := s.accounts.LockForUpdate(tx, addrs.game)
		if err != nil {
			return Settlement{}, fmt.Errorf("lock game: %w", err)
		}

		record, err := decodeGame(gameAcc)
		if err != nil {
			return Settlement{}, err
		}

		payout, err := record.Resolve(req.Caller, req.Winner, req.FeeRecipient)
		if err != nil {
			return Settlement{}, fmt.Errorf("resolve: %w", err)
		}

		gameData, err := record.MarshalBinary()
		if err != nil {
			return Settlement{}, fmt.Errorf("encode game: %w", err)
		}

		err = s.accounts.WriteData(tx, addrs.game, gameData)
		if err != nil {
			return Settlement{}, fmt.Errorf("persist game: %w", err)
		}

		err = s.debitVault(tx, addrs.vault, payout.WinnerPrize)
		if err != nil {
			return Settlement{}, fmt.Errorf("winner share: %w", err)
		}

		err = s.debitVault(tx, addrs.vault, payout.Fee)
		if err != nil {
			return Settlement{}, fmt.Errorf("fee share: %w", err)
		}

		// Wallet rows are locked in address order so two settlements paying the
		// same pair of wallets cannot deadlock.
		credits := []credit{
			{to: req.Winner.Address(), amount: payout.WinnerPrize},
			{to: req.FeeRecipient.Address(), amount: payout.Fee},
		}
		slices.SortStableFunc(credits, func(a, b credit) int { return a.to.Compare(b.to) })

		for _, c := range credits {
			if c.amount == 0 {
				continue
			}

			err = s.accounts.CreditWallet(tx, c.to, c.amount)
			if err != nil {
				return Settlement{}, fmt.Errorf("pay %s: %w", c.to, err)
			}
		}

		vaultAcc, err := s.accounts.LockForUpdate(tx, addrs.vault)
		if err != nil {
			return Settlement{}, fmt.Errorf("read vault: %w", err)
		}

		return Settlement{
			Game:   addrs.view(record, gameAcc, vaultAcc),
			Payout: payout,
		}, nil
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("end game %d: %w", req.GameID, err)
	}

	metrics.RecordPayout(res.Payout.WinnerPrize, res.Payout.Fee)

	s.publish(ctx, events.GameEnded, res.Game, map[string]string{
		"winner":       req.Winner.String(),
		"feeRecipient": req.FeeRecipient.String(),
		"winnerPrize":  fmt.Sprint(res.Payout.WinnerPrize),
		"fee":          fmt.Sprint(res.Payout.Fee),
	})

	return res, nil
}
