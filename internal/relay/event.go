package relay

import (
	"encoding/json"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
)

// Event types carried over the bidirectional channel.
const (
	TypeRegister        = "register"          // client -> core: bind identity to the session
	TypeGetAllStatuses  = "get-all-statuses"  // client -> core: coarse bulk query
	TypeGetUserStatuses = "get-user-statuses" // client -> core: detailed bulk query
	TypePrivateMessage  = "private-message"   // client -> core (send) and core -> recipient (live delivery)
	TypeMessageSent     = "message-sent"      // core -> sender: persisted message ack
	TypeMessageError    = "message-error"     // core -> sender: persistence failed
	TypeTyping          = "typing"            // client -> core and core -> recipient
	TypeMarkRead        = "mark-read"         // client -> core
	TypeMessagesRead    = "messages-read"     // core -> reader
	TypeReadConfirm     = "messages-read-confirm" // core -> author
	TypeUserStatus      = "user-status"       // core -> client: single presence delta
	TypeAllStatuses     = "all-statuses"      // core -> client: identity -> online map
	TypeUserStatuses    = "user-statuses"     // core -> client: identity -> detailed status map
)

// Event is the wire envelope for every message on the channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type RegisterPayload struct {
	Identity string `json:"identity"`
}

type StatusQueryPayload struct {
	Identities []string `json:"identities"`
}

type SendPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type MessageErrorPayload struct {
	Text string `json:"text"`
}

type TypingPayload struct {
	From string `json:"from"`
	To   string `json:"to,omitempty"`
}

type MarkReadPayload struct {
	From string `json:"from"` // the reader
	To   string `json:"to"`   // the author whose messages are being read
}

type MessagesReadPayload struct {
	From     string           `json:"from"` // counterpart whose messages were read
	Messages []domain.Message `json:"messages"`
}

type ReadConfirmPayload struct {
	To       string           `json:"to"` // the reader who consumed the messages
	Messages []domain.Message `json:"messages"`
}

type UserStatusPayload struct {
	Identity string     `json:"identity"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

// DecodePayload re-marshals a decoded envelope payload into a concrete
// payload struct. Inbound envelopes decode Payload into map[string]any, so
// a marshal round trip is the cheapest faithful conversion.
func DecodePayload(payload any, dst any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
