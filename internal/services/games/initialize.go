package games

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/infra/events"
	"github.com/fastprodman/wagerpool/internal/infra/pgutils"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
)

// InitializeGame creates the game record and its vault in one transaction.
// The authority pays the rent reserve of both. Either address being taken
// fails the call with escrow.ErrAddressOccupied.
func (s *Service) InitializeGame(ctx context.Context, req InitializeGame) (_ Game, err error) {
	defer s.observe("initialize_game", time.Now(), &err)

	addrs, err := deriveAddresses(req.GameID)
	if err != nil {
		return Game{}, err
	}

	record := escrow.NewGameRecord(req.GameID, req.EntryFee, req.Authority, req.FeeRecipient)

	data, err := record.MarshalBinary()
	if err != nil {
		return Game{}, fmt.Errorf("encode game: %w", err)
	}

	gameRent, err := s.rent.MinimumBalance(len(data))
	if err != nil {
		return Game{}, fmt.Errorf("game rent: %w", err)
	}

	vaultRent, err := s.rent.MinimumBalance(0)
	if err != nil {
		return Game{}, fmt.Errorf("vault rent: %w", err)
	}

	totalRent, err := escrow.CheckedAdd(gameRent, vaultRent)
	if err != nil {
		return Game{}, fmt.Errorf("total rent: %w", err)
	}

	gameAcc := accounts.Account{
		Address:     addrs.game,
		Kind:        accounts.KindGame,
		RentReserve: gameRent,
		Data:        data,
	}
	vaultAcc := accounts.Account{
		Address:     addrs.vault,
		Kind:        accounts.KindVault,
		RentReserve: vaultRent,
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.Create(tx, gameAcc)
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		err = s.accounts.Create(tx, vaultAcc)
		if err != nil {
			return fmt.Errorf("create vault: %w", err)
		}

		if totalRent == 0 {
			return nil
		}

		err = s.accounts.Debit(tx, req.Authority.Address(), totalRent)
		if err != nil {
			return fmt.Errorf("charge rent to authority: %w", err)
		}

		return nil
	})
	if err != nil {
		return Game{}, fmt.Errorf("initialize game %d: %w", req.GameID, err)
	}

	g := addrs.view(record, gameAcc, vaultAcc)

	s.publish(ctx, events.GameInitialized, g, map[string]string{
		"authority":    req.Authority.String(),
		"entryFee":     fmt.Sprint(req.EntryFee),
		"feeRecipient": req.FeeRecipient.String(),
	})

	return g, nil
}
