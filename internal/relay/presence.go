package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"

	"github.com/samber/lo"
)

// PresenceStore persists per-identity online state and last-seen timestamps.
type PresenceStore interface {
	SetOnline(ctx context.Context, identity string) error
	SetOffline(ctx context.Context, identity string, lastSeen time.Time) error
	Statuses(ctx context.Context, identities []string) (map[string]domain.Presence, error)
}

// Publisher computes and fans out online/offline transitions and answers
// status queries. Deltas are targeted: only identities that share message
// history with the transitioning identity and are currently reachable get a
// user-status event. There is deliberately no broadcast to every session.
type Publisher struct {
	store        PresenceStore
	counterparts CounterpartSource

	// deliver pushes an event to one identity; bound by the engine.
	deliver func(ctx context.Context, identity string, ev Event) bool
}

// CounterpartSource lists identities that have exchanged messages with the
// given one. The message store implements this.
type CounterpartSource interface {
	Counterparts(ctx context.Context, identity string) ([]string, error)
}

func NewPublisher(store PresenceStore, counterparts CounterpartSource) *Publisher {
	return &Publisher{store: store, counterparts: counterparts}
}

// Online records the transition and fans the delta out. Persistence and
// fan-out failures are logged and swallowed: presence is best-effort and
// must never surface an error to the registering session.
func (p *Publisher) Online(ctx context.Context, identity string) {
	if err := p.store.SetOnline(ctx, identity); err != nil {
		slog.Warn("presence: set online failed", "identity", identity, "err", err)
	}
	p.fanOut(ctx, identity, UserStatusPayload{Identity: identity, IsOnline: true})
}

// Offline records the transition with a last-seen timestamp and fans the
// delta out.
func (p *Publisher) Offline(ctx context.Context, identity string) {
	now := time.Now()
	if err := p.store.SetOffline(ctx, identity, now); err != nil {
		slog.Warn("presence: set offline failed", "identity", identity, "err", err)
	}
	p.fanOut(ctx, identity, UserStatusPayload{Identity: identity, IsOnline: false, LastSeen: &now})
}

// BatchStatus answers the coarse identity -> online map. Identities that
// never registered are reported offline, not as errors.
func (p *Publisher) BatchStatus(ctx context.Context, identities []string) (map[string]bool, error) {
	detailed, err := p.store.Statuses(ctx, identities)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(identities, func(id string) (string, bool) {
		return id, detailed[id].IsOnline
	}), nil
}

// DetailedStatus answers the fine-grained query with last-seen timestamps.
func (p *Publisher) DetailedStatus(ctx context.Context, identities []string) (map[string]UserStatusPayload, error) {
	stored, err := p.store.Statuses(ctx, identities)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(identities, func(id string) (string, UserStatusPayload) {
		s := stored[id]
		return id, UserStatusPayload{Identity: id, IsOnline: s.IsOnline, LastSeen: s.LastSeen}
	}), nil
}

func (p *Publisher) bindDeliver(fn func(ctx context.Context, identity string, ev Event) bool) {
	p.deliver = fn
}

func (p *Publisher) fanOut(ctx context.Context, identity string, delta UserStatusPayload) {
	if p.deliver == nil {
		return
	}
	targets, err := p.counterparts.Counterparts(ctx, identity)
	if err != nil {
		slog.Warn("presence: counterpart lookup failed", "identity", identity, "err", err)
		return
	}
	ev := Event{Type: TypeUserStatus, Payload: delta}
	for _, target := range targets {
		p.deliver(ctx, target, ev)
	}
}
