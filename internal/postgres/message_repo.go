package postgres

import (
	"context"

	"github.com/Srinivas-559/chat-app/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository is the durable, append-only message store. The read
// flag is the only mutable column and only ever flips false -> true.
type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, from, to, text string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, queryAppendMessage, from, to, text)

	var m domain.Message
	if err := row.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Read, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Conversation returns one page of the thread between a and b (either
// direction) together with the total message count. The page window is
// anchored at the newest message; rows come back oldest-first.
func (r *MessageRepository) Conversation(ctx context.Context, a, b string, page, limit int) ([]domain.Message, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, queryCountConversation, a, b).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, queryConversationPage, a, b, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Read, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// newest-first from the query; flip for display order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, total, nil
}

// MarkRead flips every unread message from author to reader and reports how
// many were flipped. Zero is a normal no-op, not an error.
func (r *MessageRepository) MarkRead(ctx context.Context, author, reader string) (int64, error) {
	cmd, err := r.db.Exec(ctx, queryMarkRead, author, reader)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *MessageRepository) LatestRead(ctx context.Context, author, reader string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := r.db.Query(ctx, queryLatestRead, author, reader, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Counterparts(ctx context.Context, identity string) ([]string, error) {
	rows, err := r.db.Query(ctx, queryCounterparts, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LatestPerConversation builds the inbox: newest message per counterpart,
// newest thread first, unread counts for messages addressed to identity.
// Ties on created_at break on id so the order is stable.
func (r *MessageRepository) LatestPerConversation(ctx context.Context, identity string) ([]domain.ChatPreview, error) {
	rows, err := r.db.Query(ctx, queryLatestPerConversation, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatPreview
	for rows.Next() {
		var p domain.ChatPreview
		if err := rows.Scan(&p.ID, &p.From, &p.To, &p.Text, &p.Read, &p.CreatedAt, &p.Counterpart, &p.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
