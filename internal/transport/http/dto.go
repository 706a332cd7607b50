package http

import (
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
}

type HistoryResponse struct {
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Messages   []domain.Message `json:"messages"`
}

type ChatsResponse struct {
	Items []domain.ChatPreview `json:"items"`
}

type UserItem struct {
	Username string     `json:"username"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

type UsersResponse struct {
	Items []UserItem `json:"items"`
}
