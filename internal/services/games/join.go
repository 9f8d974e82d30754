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

// JoinGame runs the full join flow in a single DB transaction:
//
// 1) Lock the game row (FOR UPDATE) and require it to be active.
// 2) Insert the participant record (unique address -> ErrAddressOccupied).
// 3) Add the fee to the pool and the player to the count, overflow-checked.
// 4) Move entry_fee from the player's wallet to the vault.
// 5) Charge the player the participant record's rent and persist the game.
//
// A failure at any step leaves every balance and record as it was.
func (s *Service) JoinGame(ctx context.Context, gameID uint64, player escrow.Identity) (_ JoinResult, err error) {
	defer s.observe("join_game", time.Now(), &err)

	addrs, err := deriveAddresses(gameID)
	if err != nil {
		return JoinResult{}, err
	}

	partAddr, partBump, err := escrow.ParticipantAddress(addrs.game, player)
	if err != nil {
		return JoinResult{}, fmt.Errorf("derive participant address: %w", err)
	}

	partRent, err := s.rent.MinimumBalance(escrow.ParticipantRecordSize)
	if err != nil {
		return JoinResult{}, fmt.Errorf("participant rent: %w", err)
	}

	entry := escrow.ParticipantRecord{
		Player:   player,
		Game:     addrs.game,
		JoinedAt: s.now().Unix(),
	}

	entryData, err := entry.MarshalBinary()
	if err != nil {
		return JoinResult{}, fmt.Errorf("encode participant: %w", err)
	}

	res, err := pgutils.InTx(ctx, s.db, func(tx *sql.Tx) (JoinResult, error) {
		gameAcc, err := s.accounts.LockForUpdate(tx, addrs.game)
		if err != nil {
			return JoinResult{}, fmt.Errorf("lock game: %w", err)
		}

		record, err := decodeGame(gameAcc)
		if err != nil {
			return JoinResult{}, err
		}

		if !record.IsActive {
			return JoinResult{}, escrow.ErrGameNotActive
		}

		err = s.accounts.Create(tx, accounts.Account{
			Address:     partAddr,
			Kind:        accounts.KindParticipant,
			RentReserve: partRent,
			Data:        entryData,
		})
		if err != nil {
			return JoinResult{}, fmt.Errorf("create participant: %w", err)
		}

		err = record.RecordJoin()
		if err != nil {
			return JoinResult{}, fmt.Errorf("record join: %w", err)
		}

		if record.EntryFee > 0 {
			err = s.accounts.Debit(tx, player.Address(), record.EntryFee)
			if err != nil {
				return JoinResult{}, fmt.Errorf("collect entry fee: %w", err)
			}

			err = s.accounts.Credit(tx, addrs.vault, record.EntryFee)
			if err != nil {
				return JoinResult{}, fmt.Errorf("deposit to vault: %w", err)
			}
		}

		if partRent > 0 {
			err = s.accounts.Debit(tx, player.Address(), partRent)
			if err != nil {
				return JoinResult{}, fmt.Errorf("charge participant rent: %w", err)
			}
		}

		gameData, err := record.MarshalBinary()
		if err != nil {
			return JoinResult{}, fmt.Errorf("encode game: %w", err)
		}

		err = s.accounts.WriteData(tx, addrs.game, gameData)
		if err != nil {
			return JoinResult{}, fmt.Errorf("persist game: %w", err)
		}

		vaultAcc, err := s.accounts.LockForUpdate(tx, addrs.vault)
		if err != nil {
			return JoinResult{}, fmt.Errorf("read vault: %w", err)
		}

		return JoinResult{
			Participant: Participant{
				Address:     partAddr,
				Bump:        partBump,
				RentReserve: partRent,
				Record:      entry,
			},
			Game: addrs.view(record, gameAcc, vaultAcc),
		}, nil
	})
	if err != nil {
		return JoinResult{}, fmt.Errorf("join game %d: %w", gameID, err)
	}

	s.publish(ctx, events.GameJoined, res.Game, map[string]string{
		"player":      player.String(),
		"participant": partAddr.String(),
		"prizePool":   fmt.Sprint(res.Game.Record.PrizePool),
		"playerCount": fmt.Sprint(res.Game.Record.PlayerCount),
	})

	return res, nil
}
