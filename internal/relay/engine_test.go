package relay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
	"github.com/Srinivas-559/chat-app/internal/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestEngine wires an engine with quiet presence defaults: transitions
// persist fine and nobody shares history unless a test says otherwise.
func newTestEngine(t *testing.T) (*relay.Engine, *relay.Registry, *MockMessageStore, *MockPresenceStore) {
	t.Helper()
	store := new(MockMessageStore)
	presence := new(MockPresenceStore)
	presence.On("SetOnline", mock.Anything, mock.Anything).Return(nil).Maybe()
	presence.On("SetOffline", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	reg := relay.NewRegistry()
	pub := relay.NewPublisher(presence, store)
	return relay.NewEngine(reg, store, pub), reg, store, presence
}

func registerQuiet(t *testing.T, e *relay.Engine, store *MockMessageStore, sess *fakeSession, identity string) {
	t.Helper()
	store.On("Counterparts", mock.Anything, identity).Return([]string{}, nil).Maybe()
	require.NoError(t, e.Register(context.Background(), sess, identity))
}

func storedMessage(id, from, to, text string) *domain.Message {
	return &domain.Message{ID: id, From: from, To: to, Text: text, CreatedAt: time.Now()}
}

func TestEngine_SendDeliversLive(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, alice, "alice")
	registerQuiet(t, e, store, bob, "bob")

	msg := storedMessage("m1", "alice", "bob", "hi")
	store.On("Append", mock.Anything, "alice", "bob", "hi").Return(msg, nil)

	e.Send(context.Background(), alice, relay.SendPayload{From: "alice", To: "bob", Text: "hi"})

	acks := alice.received(relay.TypeMessageSent)
	require.Len(t, acks, 1)
	assert.Equal(t, msg, acks[0].Payload)

	delivered := bob.received(relay.TypePrivateMessage)
	require.Len(t, delivered, 1)
	assert.Equal(t, msg, delivered[0].Payload, "recipient gets the stored record verbatim")
}

func TestEngine_SendOfflineRecipientIsAckedOnly(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	registerQuiet(t, e, store, alice, "alice")

	msg := storedMessage("m1", "alice", "bob", "hi")
	store.On("Append", mock.Anything, "alice", "bob", "hi").Return(msg, nil)

	e.Send(context.Background(), alice, relay.SendPayload{From: "alice", To: "bob", Text: "hi"})

	require.Len(t, alice.received(relay.TypeMessageSent), 1, "durability precedes delivery, ack is unconditional")
	assert.Empty(t, alice.received(relay.TypeMessageError))
}

func TestEngine_SendStorageFailure(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, alice, "alice")
	registerQuiet(t, e, store, bob, "bob")

	store.On("Append", mock.Anything, "alice", "bob", "hi").Return(nil, errors.New("write failed"))

	e.Send(context.Background(), alice, relay.SendPayload{From: "alice", To: "bob", Text: "hi"})

	errs := alice.received(relay.TypeMessageError)
	require.Len(t, errs, 1)
	assert.Equal(t, relay.MessageErrorPayload{Text: "hi"}, errs[0].Payload, "error carries the original text for retry")

	assert.Empty(t, alice.received(relay.TypeMessageSent))
	assert.Empty(t, bob.received(relay.TypePrivateMessage), "no delivery after failed persistence")
}

func TestEngine_SendValidation(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	registerQuiet(t, e, store, alice, "alice")

	e.Send(context.Background(), alice, relay.SendPayload{From: "alice", To: "bob", Text: "   "})

	require.Len(t, alice.received(relay.TypeMessageError), 1)
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_SendFallsBackToBus(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	registerQuiet(t, e, store, alice, "alice")

	b := &fakeBus{}
	e.SetBus(b)

	msg := storedMessage("m1", "alice", "bob", "hi")
	store.On("Append", mock.Anything, "alice", "bob", "hi").Return(msg, nil)

	e.Send(context.Background(), alice, relay.SendPayload{From: "alice", To: "bob", Text: "hi"})

	records := b.records()
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].identity)
	assert.Equal(t, relay.TypePrivateMessage, records[0].event.Type)
}

func TestEngine_MarkReadNotifiesBothParties(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, alice, "alice")
	registerQuiet(t, e, store, bob, "bob")

	latest := []domain.Message{{ID: "m9", From: "bob", To: "alice", Text: "last", Read: true}}
	store.On("MarkRead", mock.Anything, "bob", "alice").Return(int64(3), nil).Once()
	store.On("LatestRead", mock.Anything, "bob", "alice", 1).Return(latest, nil).Once()

	// alice read bob's messages
	e.MarkRead(context.Background(), relay.MarkReadPayload{From: "alice", To: "bob"})

	reads := alice.received(relay.TypeMessagesRead)
	require.Len(t, reads, 1)
	assert.Equal(t, relay.MessagesReadPayload{From: "bob", Messages: latest}, reads[0].Payload)

	confirms := bob.received(relay.TypeReadConfirm)
	require.Len(t, confirms, 1)
	assert.Equal(t, relay.ReadConfirmPayload{To: "alice", Messages: latest}, confirms[0].Payload)
}

func TestEngine_MarkReadIdempotent(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, alice, "alice")
	registerQuiet(t, e, store, bob, "bob")

	latest := []domain.Message{{ID: "m9", From: "bob", To: "alice", Text: "last", Read: true}}
	store.On("MarkRead", mock.Anything, "bob", "alice").Return(int64(2), nil).Once()
	store.On("MarkRead", mock.Anything, "bob", "alice").Return(int64(0), nil).Once()
	store.On("LatestRead", mock.Anything, "bob", "alice", 1).Return(latest, nil).Once()

	e.MarkRead(context.Background(), relay.MarkReadPayload{From: "alice", To: "bob"})
	e.MarkRead(context.Background(), relay.MarkReadPayload{From: "alice", To: "bob"})

	assert.Len(t, alice.received(relay.TypeMessagesRead), 1, "zero flips emit nothing")
	assert.Len(t, bob.received(relay.TypeReadConfirm), 1)
}

func TestEngine_TypingForwardOrDrop(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	alice := newFakeSession("h-alice")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, alice, "alice")
	registerQuiet(t, e, store, bob, "bob")

	e.Typing(context.Background(), relay.TypingPayload{From: "alice", To: "bob"})

	typing := bob.received(relay.TypeTyping)
	require.Len(t, typing, 1)
	assert.Equal(t, relay.TypingPayload{From: "alice"}, typing[0].Payload, "recipient only learns who is typing")

	// offline recipient: silent drop
	before := alice.count()
	e.Typing(context.Background(), relay.TypingPayload{From: "bob", To: "carol"})
	assert.Equal(t, before, alice.count())
}

func TestEngine_RegisterSendsStatusSnapshot(t *testing.T) {
	e, _, store, presence := newTestEngine(t)
	alice := newFakeSession("h-alice")

	store.On("Counterparts", mock.Anything, "alice").Return([]string{"bob", "carol"}, nil)
	lastSeen := time.Now().Add(-time.Hour)
	presence.On("Statuses", mock.Anything, []string{"bob", "carol"}).Return(map[string]domain.Presence{
		"bob": {Identity: "bob", IsOnline: true},
		"carol": {Identity: "carol", IsOnline: false, LastSeen: &lastSeen},
	}, nil)

	require.NoError(t, e.Register(context.Background(), alice, "alice"))

	snaps := alice.received(relay.TypeAllStatuses)
	require.Len(t, snaps, 1)
	assert.Equal(t, map[string]bool{"bob": true, "carol": false}, snaps[0].Payload)
}

func TestEngine_SupersededSessionGetsNothing(t *testing.T) {
	e, _, store, _ := newTestEngine(t)
	h1 := newFakeSession("h1")
	h2 := newFakeSession("h2")
	bob := newFakeSession("h-bob")
	registerQuiet(t, e, store, h1, "alice")
	registerQuiet(t, e, store, bob, "bob")

	// alice reconnects without h1 ever disconnecting
	require.NoError(t, e.Register(context.Background(), h2, "alice"))

	msg := storedMessage("m1", "bob", "alice", "hi")
	store.On("Append", mock.Anything, "bob", "alice", "hi").Return(msg, nil)
	e.Send(context.Background(), bob, relay.SendPayload{From: "bob", To: "alice", Text: "hi"})

	assert.Empty(t, h1.received(relay.TypePrivateMessage))
	require.Len(t, h2.received(relay.TypePrivateMessage), 1)

	// the stale handle disconnecting must not take alice offline
	e.Disconnect(context.Background(), h1)
	e.Send(context.Background(), bob, relay.SendPayload{From: "bob", To: "alice", Text: "hi"})
	assert.Len(t, h2.received(relay.TypePrivateMessage), 2)
}
