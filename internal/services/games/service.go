package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/wagerpool/internal/escrow"
	"github.com/fastprodman/wagerpool/internal/infra/events"
	"github.com/fastprodman/wagerpool/internal/infra/metrics"
	"github.com/fastprodman/wagerpool/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/wagerpool/internal/repos/accounts/postgres"
)

// Service runs the game lifecycle. Every mutating call is one database
// transaction; calls touching the same game are serialized on its row lock.
type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	rent     escrow.Rent
	events   events.Publisher
	now      func() time.Time
}

type Option func(*Service)

func WithRent(r escrow.Rent) Option { return func(s *Service) { s.rent = r } }

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the source of participant join timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithAccounts(a accounts.Accounts) Option { return func(s *Service) { s.accounts = a } }

func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		accounts: pgaccounts.New(db),
		rent:     escrow.DefaultRent(),
		events:   events.Nop{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// observe records the outcome of one operation. Use as
// defer s.observe("join", time.Now(), &err).
func (s *Service) observe(op string, start time.Time, errp *error) {
	err := *errp
	metrics.RecordOperation(op, err, time.Since(start))

	if err != nil {
		slog.Debug("game operation rejected", "operation", op, "result", metrics.Result(err), "error", err)
	}
}

func decodeGame(acc accounts.Account) (escrow.GameRecord, error) {
	if acc.Kind != accounts.KindGame {
		return escrow.GameRecord{}, fmt.Errorf("%s holds a %s account: %w", acc.Address, acc.Kind, escrow.ErrInvalidRecord)
	}

	var record escrow.GameRecord

	err := record.UnmarshalBinary(acc.Data)
	if err != nil {
		return escrow.GameRecord{}, fmt.Errorf("decode game %s: %w", acc.Address, err)
	}

	return record, nil
}

func decodeParticipant(acc accounts.Account) (escrow.ParticipantRecord, error) {
	if acc.Kind != accounts.KindParticipant {
		return escrow.ParticipantRecord{}, fmt.Errorf("%s holds a %s account: %w", acc.Address, acc.Kind, escrow.ErrInvalidRecord)
	}

	var record escrow.ParticipantRecord

	err := record.UnmarshalBinary(acc.Data)
	if err != nil {
		return escrow.ParticipantRecord{}, fmt.Errorf("decode participant %s: %w", acc.Address, err)
	}

	return record, nil
}

// debitVault moves funds out of a vault. A vault short of its pool means the
// pool accounting is broken, which is reported as an underflow.
func (s *Service) debitVault(tx *sql.Tx, vault escrow.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	err := s.accounts.Debit(tx, vault, amount)
	if errors.Is(err, escrow.ErrInsufficientBalance) {
		return fmt.Errorf("vault %s: %w", vault, escrow.ErrArithmeticUnderflow)
	}

	return err
}

type addresses struct {
	game, vault         escrow.Address
	gameBump, vaultBump uint8
}

func deriveAddresses(gameID uint64) (addresses, error) {
	var (
		a   addresses
		err error
	)

	a.game, a.gameBump, err = escrow.GameAddress(gameID)
	if err != nil {
		return addresses{}, fmt.Errorf("derive game address: %w", err)
	}

	a.vault, a.vaultBump, err = escrow.VaultAddress(gameID)
	if err != nil {
		return addresses{}, fmt.Errorf("derive vault address: %w", err)
	}

	return a, nil
}

func (a addresses) view(record escrow.GameRecord, gameAcc, vaultAcc accounts.Account) Game {
	return Game{
		Address:      a.game,
		Bump:         a.gameBump,
		Vault:        a.vault,
		VaultBump:    a.vaultBump,
		VaultBalance: vaultAcc.Lamports,
		RentReserve:  gameAcc.RentReserve,
		Record:       record,
	}
}

func (s *Service) publish(ctx context.Context, typ events.Type, g Game, data any) {
	s.events.Publish(ctx, events.New(typ, g.Record.GameID, g.Address.String(), s.now(), data))
}
