package relay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Srinivas-559/chat-app/internal/domain"
)

const maxTextLen = 4000

// MessageStore is the durable message record the engine relays through.
type MessageStore interface {
	CounterpartSource
	Append(ctx context.Context, from, to, text string) (*domain.Message, error)
	MarkRead(ctx context.Context, author, reader string) (int64, error)
	LatestRead(ctx context.Context, author, reader string, limit int) ([]domain.Message, error)
}

// Bus forwards events for identities that have no live session on this
// instance. Optional; without one, off-instance recipients simply fall back
// to history fetch.
type Bus interface {
	Publish(ctx context.Context, identity string, ev Event) error
}

// Engine drives the relay pipeline: it owns the registry, persists through
// the message store, and notifies through live sessions. It is constructed
// with its collaborators and holds no ambient state.
type Engine struct {
	registry *Registry
	store    MessageStore
	presence *Publisher
	bus      Bus
}

func NewEngine(registry *Registry, store MessageStore, presence *Publisher) *Engine {
	e := &Engine{registry: registry, store: store, presence: presence}
	presence.bindDeliver(e.push)
	return e
}

// SetBus attaches the optional cross-instance delivery bus.
func (e *Engine) SetBus(b Bus) {
	e.bus = b
}

// Register binds the session to identity, flips presence, and replies with
// an all-statuses snapshot of the identity's counterparts so the client can
// seed its UI without a follow-up query.
func (e *Engine) Register(ctx context.Context, sess Session, identity string) error {
	if err := e.registry.Register(identity, sess); err != nil {
		return err
	}
	e.presence.Online(ctx, identity)

	counterparts, err := e.store.Counterparts(ctx, identity)
	if err != nil {
		slog.Warn("register: counterpart snapshot failed", "identity", identity, "err", err)
		return nil
	}
	if len(counterparts) == 0 {
		return nil
	}
	statuses, err := e.presence.BatchStatus(ctx, counterparts)
	if err != nil {
		slog.Warn("register: status snapshot failed", "identity", identity, "err", err)
		return nil
	}
	e.send(sess, Event{Type: TypeAllStatuses, Payload: statuses})
	return nil
}

// Disconnect removes the session if it is still the registered one and
// broadcasts the offline transition. Safe to call more than once per
// session: the second call finds no match and does nothing.
func (e *Engine) Disconnect(ctx context.Context, sess Session) {
	identity, ok := e.registry.Unregister(sess)
	if !ok {
		return
	}
	e.presence.Offline(ctx, identity)
}

// Send runs the relay state machine for one message: validate, persist, ack
// the sender with the stored record, then best-effort live delivery to the
// recipient. The sender is only ever told "sent" after the durable write.
func (e *Engine) Send(ctx context.Context, sender Session, p SendPayload) {
	if err := validateSend(p); err != nil {
		slog.Debug("send rejected", "from", p.From, "to", p.To, "err", err)
		e.send(sender, Event{Type: TypeMessageError, Payload: MessageErrorPayload{Text: p.Text}})
		return
	}

	msg, err := e.store.Append(ctx, p.From, p.To, strings.TrimSpace(p.Text))
	if err != nil {
		slog.Error("message append failed", "from", p.From, "to", p.To, "err", err)
		e.send(sender, Event{Type: TypeMessageError, Payload: MessageErrorPayload{Text: p.Text}})
		return
	}

	e.send(sender, Event{Type: TypeMessageSent, Payload: msg})

	// Live delivery is lossy on purpose: an offline recipient recovers the
	// message from history on the next fetch.
	e.push(ctx, p.To, Event{Type: TypePrivateMessage, Payload: msg})
}

// Typing forwards the transient indicator to the recipient or drops it.
func (e *Engine) Typing(ctx context.Context, p TypingPayload) {
	if p.From == "" || p.To == "" {
		return
	}
	e.push(ctx, p.To, Event{Type: TypeTyping, Payload: TypingPayload{From: p.From}})
}

// MarkRead flips unread messages authored by p.To and addressed to p.From,
// then notifies both identity channels. A zero flip count emits nothing,
// which makes repeated mark-read calls silent no-ops.
func (e *Engine) MarkRead(ctx context.Context, p MarkReadPayload) {
	reader, author := p.From, p.To
	if reader == "" || author == "" {
		return
	}

	flipped, err := e.store.MarkRead(ctx, author, reader)
	if err != nil {
		slog.Error("mark read failed", "reader", reader, "author", author, "err", err)
		return
	}
	if flipped == 0 {
		return
	}

	latest, err := e.store.LatestRead(ctx, author, reader, 1)
	if err != nil {
		slog.Error("latest read fetch failed", "reader", reader, "author", author, "err", err)
		return
	}

	e.push(ctx, reader, Event{Type: TypeMessagesRead, Payload: MessagesReadPayload{From: author, Messages: latest}})
	e.push(ctx, author, Event{Type: TypeReadConfirm, Payload: ReadConfirmPayload{To: reader, Messages: latest}})
}

// AllStatuses replies to the coarse bulk status query on the same session.
func (e *Engine) AllStatuses(ctx context.Context, sess Session, identities []string) {
	if len(identities) == 0 {
		return
	}
	statuses, err := e.presence.BatchStatus(ctx, identities)
	if err != nil {
		slog.Error("batch status failed", "err", err)
		return
	}
	e.send(sess, Event{Type: TypeAllStatuses, Payload: statuses})
}

// UserStatuses replies to the detailed bulk status query.
func (e *Engine) UserStatuses(ctx context.Context, sess Session, identities []string) {
	if len(identities) == 0 {
		return
	}
	statuses, err := e.presence.DetailedStatus(ctx, identities)
	if err != nil {
		slog.Error("detailed status failed", "err", err)
		return
	}
	e.send(sess, Event{Type: TypeUserStatuses, Payload: statuses})
}

// DeliverLocal hands the event to the identity's live session on this
// instance, if any. Used directly by the bus subscriber so that bus traffic
// never re-enters the bus.
func (e *Engine) DeliverLocal(ctx context.Context, identity string, ev Event) bool {
	sess, ok := e.registry.Lookup(identity)
	if !ok {
		return false
	}
	e.send(sess, ev)
	return true
}

// push delivers locally when possible and otherwise forwards through the
// bus. Returns whether the event left this process at all.
func (e *Engine) push(ctx context.Context, identity string, ev Event) bool {
	if e.DeliverLocal(ctx, identity, ev) {
		return true
	}
	if e.bus == nil {
		return false
	}
	if err := e.bus.Publish(ctx, identity, ev); err != nil {
		slog.Warn("bus publish failed", "identity", identity, "type", ev.Type, "err", err)
		return false
	}
	return true
}

func (e *Engine) send(sess Session, ev Event) {
	if err := sess.Deliver(ev); err != nil {
		slog.Debug("session deliver failed", "session", sess.ID(), "type", ev.Type, "err", err)
	}
}

func validateSend(p SendPayload) error {
	if p.From == "" || p.To == "" {
		return domain.ErrEmptyIdentity
	}
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return domain.ErrEmptyText
	}
	if len(text) > maxTextLen {
		return domain.ErrTextTooLong
	}
	return nil
}
