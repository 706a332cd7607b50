package http

import (
	"net/http"
	"time"

	httpmw "github.com/Srinivas-559/chat-app/internal/transport/http/middleware"
	"github.com/Srinivas-559/chat-app/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, validator httpmw.TokenValidator, wsServer *ws.Server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httpmw.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// WS endpoint authenticates via access_token query param
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.Register)
		ar.Post("/login", h.Login)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.Auth(validator))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/messages", h.GetMessages)
		pr.Get("/chats", h.GetChats)
		pr.Get("/users", h.GetUsers)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
