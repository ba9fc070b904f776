package ws

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cameronthecoder/django-ban/models"
)

// TokenValidator, access token doğrulaması için gereken tek metod.
// services.AuthService bunu karşılar; ws → services import döngüsü oluşmaz.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// BanChecker, bağlantı anında ban kontrolü. services.ModerationService karşılar.
type BanChecker interface {
	IsBanned(ctx context.Context, userID string, now time.Time) (bool, error)
}

// Handler, /ws bağlantı isteklerini işler.
type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	bans     BanChecker
	upgrader websocket.Upgrader
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// allowedOrigins boşsa veya "*" içeriyorsa tüm origin'ler kabul edilir.
func NewHandler(hub *Hub, tokens TokenValidator, bans BanChecker, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		bans:   bans,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleConnection, token'ı (?token=) doğrular, ban kontrolü yapar ve
// bağlantıyı WebSocket'e yükseltir. Tarayıcılar WS handshake'inde
// Authorization header gönderemediği için token query'den gelir.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	banned, err := h.bans.IsBanned(r.Context(), claims.UserID, time.Now())
	if err != nil {
		h.hub.log.Error("ban check failed", "user_id", claims.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if banned {
		http.Error(w, "account is banned", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Debug("upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		userID:  claims.UserID,
		isAdmin: claims.IsAdmin,
		send:    make(chan []byte, sendBufferSize),
	}

	// ready, client Hub'a eklenmeden kuyruğa alınır: Hub'a girdikten sonra
	// gelen event'ler her zaman ready'den sonra gelir.
	if data, ok := h.hub.encode(Event{Op: OpReady, Data: ReadyData{UserID: claims.UserID, IsAdmin: claims.IsAdmin}}); ok {
		client.send <- data
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
