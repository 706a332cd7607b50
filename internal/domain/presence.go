package domain

import "time"

// Presence is the persisted online/offline state for one identity.
// LastSeen is nil until the identity has disconnected at least once.
type Presence struct {
	Identity string     `json:"identity"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}
