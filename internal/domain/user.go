package domain

import "time"

type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	IsOnline     bool       `db:"is_online"`
	LastSeen     *time.Time `db:"last_seen"`
	CreatedAt    time.Time  `db:"created_at"`
}
