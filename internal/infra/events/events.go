// Package events publishes game lifecycle notifications after their
// transaction has committed. Delivery is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/wagerpool/internal/config"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Type string

const (
	GameInitialized Type = "game.initialized"
	GameJoined      Type = "game.joined"
	GameEnded       Type = "game.ended"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	GameID     uint64    `json:"gameId,string"`
	Game       string    `json:"game"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// New stamps an event with a fresh id.
func New(typ Type, gameID uint64, game string, occurredAt time.Time, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		GameID:     gameID,
		Game:       game,
		OccurredAt: occurredAt.UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	nc     conn
	prefix string
}

// Connect dials NATS. An empty URL yields a Nop publisher and a nil closer.
func Connect(cfg config.NATSConfig) (Publisher, func(context.Context) error, error) {
	if cfg.URL == "" {
		return Nop{}, nil, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.ConnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	p := newPublisher(nc, cfg.SubjectPrefix)

	return p, p.Close, nil
}

func newPublisher(nc conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject an event of typ is published on.
func (p *NATSPublisher) Subject(typ Type) string {
	if p.prefix == "" {
		return string(typ)
	}

	return p.prefix + "." + string(typ)
}

// Publish encodes and sends e. Failures are logged and swallowed: the
// operation that produced the event has already committed.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.ErrorContext(ctx, "encode event", "type", e.Type, "error", err)
		return
	}

	err = p.nc.Publish(p.Subject(e.Type), data)
	if err != nil {
		slog.WarnContext(ctx, "publish event", "type", e.Type, "event_id", e.ID, "error", err)
		return
	}

	slog.DebugContext(ctx, "event published", "type", e.Type, "event_id", e.ID)
}

// Close drains buffered messages before the connection is released.
func (p *NATSPublisher) Close(context.Context) error {
	err := p.nc.Drain()
	if err != nil {
		return fmt.Errorf("drain nats: %w", err)
	}

	return nil
}
