package domain

import "time"

// Message is the durable record of one direct message. Immutable after
// creation except for Read, which only ever flips false -> true.
type Message struct {
	ID        string    `json:"id" db:"id"`
	From      string    `json:"from" db:"from_user"`
	To        string    `json:"to" db:"to_user"`
	Text      string    `json:"text" db:"text"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ChatPreview is one inbox row: the newest message exchanged with a
// counterpart plus the number of their messages still unread.
type ChatPreview struct {
	Message
	Counterpart string `json:"counterpart"`
	UnreadCount int64  `json:"unreadCount"`
}
