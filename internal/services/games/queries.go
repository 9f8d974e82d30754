package games

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/infra/pgutils"
)

// GetGame returns the game record and vault balance (no locks).
func (s *Service) GetGame(ctx context.Context, gameID uint64) (Game, error) {
	addrs, err := deriveAddresses(gameID)
	if err != nil {
		return Game{}, err
	}

	gameAcc, err := s.accounts.Get(ctx, addrs.game)
	if err != nil {
		return Game{}, fmt.Errorf("get game %d: %w", gameID, err)
	}

	record, err := decodeGame(gameAcc)
	if err != nil {
		return Game{}, err
	}

	vaultAcc, err := s.accounts.Get(ctx, addrs.vault)
	if err != nil {
		return Game{}, fmt.Errorf("get vault of game %d: %w", gameID, err)
	}

	return addrs.view(record, gameAcc, vaultAcc), nil
}

func (s *Service) GetParticipant(ctx context.Context, gameID uint64, player escrow.Identity) (Participant, error) {
	game, _, err := escrow.GameAddress(gameID)
	if err != nil {
		return Participant{}, fmt.Errorf("derive game address: %w", err)
	}

	addr, bump, err := escrow.ParticipantAddress(game, player)
	if err != nil {
		return Participant{}, fmt.Errorf("derive participant address: %w", err)
	}

	acc, err := s.accounts.Get(ctx, addr)
	if err != nil {
		return Participant{}, fmt.Errorf("get participant: %w", err)
	}

	record, err := decodeParticipant(acc)
	if err != nil {
		return Participant{}, err
	}

	return Participant{
		Address:     addr,
		Bump:        bump,
		RentReserve: acc.RentReserve,
		Record:      record,
	}, nil
}

func (s *Service) GetAccount(ctx context.Context, addr escrow.Address) (Account, error) {
	acc, err := s.accounts.Get(ctx, addr)
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}

	return acc, nil
}

// Airdrop mints lamports into a wallet. It exists for development networks
// only and refuses addresses nobody can sign for.
func (s *Service) Airdrop(ctx context.Context, to escrow.Identity, lamports uint64) (_ Account, err error) {
	defer s.observe("airdrop", time.Now(), &err)

	if !to.OnCurve() {
		return Account{}, fmt.Errorf("airdrop to %s: %w", to, escrow.ErrInvalidIdentity)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.accounts.CreditWallet(tx, to.Address(), lamports)
	})
	if err != nil {
		return Account{}, fmt.Errorf("airdrop to %s: %w", to, err)
	}

	return s.GetAccount(ctx, to.Address())
}
