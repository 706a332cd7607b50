package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
	"github.com/Srinivas-559/chat-app/internal/service"
	httpmw "github.com/Srinivas-559/chat-app/internal/transport/http/middleware"

	"github.com/samber/lo"
)

type Handler struct {
	authSvc *service.AuthService
	msgSvc  *service.MessageService
}

func NewHandler(auth *service.AuthService, msg *service.MessageService) *Handler {
	return &Handler{authSvc: auth, msgSvc: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	u, err := h.authSvc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "username already taken"})
		case errors.Is(err, domain.ErrEmptyIdentity), errors.Is(err, domain.ErrBadCredentials):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username and password are required"})
		default:
			slog.Error("handler.Register:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": u.Username})
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	token, u, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		slog.Error("handler.Login:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token, Username: u.Username})
}

// GET /messages?to=&page=&limit=
// The requester is the authenticated user; fetching a thread marks the
// counterpart's messages read, as the original UI expects.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	from := httpmw.UsernameFromCtx(r.Context())
	to := r.URL.Query().Get("to")
	if to == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing to parameter"})
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	msgs, total, err := h.msgSvc.History(r.Context(), from, to, page, limit)
	if err != nil {
		slog.Error("handler.GetMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Messages:   msgs,
	})
}

// GET /chats returns the inbox: latest message per counterpart with unread counts.
func (h *Handler) GetChats(w http.ResponseWriter, r *http.Request) {
	identity := httpmw.UsernameFromCtx(r.Context())

	items, err := h.msgSvc.Inbox(r.Context(), identity)
	if err != nil {
		slog.Error("handler.GetChats:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}

	writeJSON(w, http.StatusOK, ChatsResponse{Items: items})
}

// GET /users returns the contact directory with persisted presence.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	me := httpmw.UsernameFromCtx(r.Context())

	users, err := h.authSvc.Directory(r.Context(), me)
	if err != nil {
		slog.Error("handler.GetUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "server error"})
		return
	}

	writeJSON(w, http.StatusOK, UsersResponse{
		Items: lo.Map(users, func(u domain.User, _ int) UserItem {
			return UserItem{Username: u.Username, IsOnline: u.IsOnline, LastSeen: truncated(u.LastSeen)}
		}),
	})
}

func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func truncated(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := t.Truncate(time.Millisecond)
	return &tt
}
