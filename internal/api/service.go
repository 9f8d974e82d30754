package api

import (
	"context"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/services/games"
)

// GameService is what the HTTP layer needs from the game lifecycle.
type GameService interface {
	InitializeGame(ctx context.Context, req games.InitializeGame) (games.Game, error)
	JoinGame(ctx context.Context, gameID uint64, player escrow.Identity) (games.JoinResult, error)
	EndGame(ctx context.Context, req games.EndGame) (games.Settlement, error)
	GetGame(ctx context.Context, gameID uint64) (games.Game, error)
	GetParticipant(ctx context.Context, gameID uint64, player escrow.Identity) (games.Participant, error)
	GetAccount(ctx context.Context, addr escrow.Address) (games.Account, error)
	Airdrop(ctx context.Context, to escrow.Identity, lamports uint64) (games.Account, error)
}

var _ GameService = (*games.Service)(nil)
