package relay_test

import (
	"context"
	"sync"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
	"github.com/Srinivas-559/chat-app/internal/relay"

	"github.com/stretchr/testify/mock"
)

// MockMessageStore implements relay.MessageStore with testify/mock so tests
// can set expectations per scenario.
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Append(ctx context.Context, from, to, text string) (*domain.Message, error) {
	args := m.Called(ctx, from, to, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageStore) MarkRead(ctx context.Context, author, reader string) (int64, error) {
	args := m.Called(ctx, author, reader)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageStore) LatestRead(ctx context.Context, author, reader string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, author, reader, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageStore) Counterparts(ctx context.Context, identity string) ([]string, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPresenceStore implements relay.PresenceStore.
type MockPresenceStore struct {
	mock.Mock
}

func (m *MockPresenceStore) SetOnline(ctx context.Context, identity string) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockPresenceStore) SetOffline(ctx context.Context, identity string, lastSeen time.Time) error {
	args := m.Called(ctx, identity, lastSeen)
	return args.Error(0)
}

func (m *MockPresenceStore) Statuses(ctx context.Context, identities []string) (map[string]domain.Presence, error) {
	args := m.Called(ctx, identities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Presence), args.Error(1)
}

// fakeSession records every delivered event.
type fakeSession struct {
	id string

	mu     sync.Mutex
	events []relay.Event
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Deliver(ev relay.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSession) received(eventType string) []relay.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []relay.Event
	for _, ev := range s.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (s *fakeSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// fakeBus records publishes for identities with no local session.
type fakeBus struct {
	mu        sync.Mutex
	published []busRecord
}

type busRecord struct {
	identity string
	event    relay.Event
}

func (b *fakeBus) Publish(_ context.Context, identity string, ev relay.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, busRecord{identity: identity, event: ev})
	return nil
}

func (b *fakeBus) records() []busRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]busRecord(nil), b.published...)
}
