package service

import (
	"context"
	"log/slog"

	"github.com/Srinivas-559/chat-app/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// HistoryStore is the slice of the message store the REST surface needs.
type HistoryStore interface {
	Conversation(ctx context.Context, a, b string, page, limit int) ([]domain.Message, int64, error)
	MarkRead(ctx context.Context, author, reader string) (int64, error)
	LatestPerConversation(ctx context.Context, identity string) ([]domain.ChatPreview, error)
}

type MessageService struct {
	store HistoryStore
}

func NewMessageService(store HistoryStore) *MessageService {
	return &MessageService{store: store}
}

// History returns one page of the conversation between from and to plus the
// total count. Fetching history also marks the counterpart's messages to
// the requester as read; that mirrors opening the thread in the UI. The
// flip happens without receipt notifications: those belong to the explicit
// mark-read event on the live channel.
func (s *MessageService) History(ctx context.Context, from, to string, page, limit int) ([]domain.Message, int64, error) {
	if from == "" || to == "" {
		return nil, 0, domain.ErrEmptyIdentity
	}
	page, limit = normalizePage(page, limit)

	msgs, total, err := s.store.Conversation(ctx, from, to, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if _, err := s.store.MarkRead(ctx, to, from); err != nil {
		slog.Warn("history: mark read failed", "reader", from, "author", to, "err", err)
	}
	return msgs, total, nil
}

// Inbox returns the latest message per counterpart with unread counts.
func (s *MessageService) Inbox(ctx context.Context, identity string) ([]domain.ChatPreview, error) {
	if identity == "" {
		return nil, domain.ErrEmptyIdentity
	}
	return s.store.LatestPerConversation(ctx, identity)
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return page, limit
}
