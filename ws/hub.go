package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının event yayınlamak için kullandığı interface.
// Service'ler Hub'ın kendisine değil bu interface'e bağımlıdır; testlerde
// kayıt tutan sahte bir publisher kullanılabilir.
type EventPublisher interface {
	BroadcastToAdmins(event Event)
	BroadcastToUser(userID string, event Event)

	// DisconnectUser, kullanıcının tüm bağlantılarına force_disconnect
	// gönderir ve bağlantıları kapatır.
	DisconnectUser(userID, reason string)
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapı.
type Hub struct {
	// clients: userID → client set (bir kullanıcının birden fazla sekmesi olabilir).
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	seq atomic.Int64
	log *slog.Logger
}

// NewHub, yeni bir Hub oluşturur. Run ayrı bir goroutine'de başlatılmalıdır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        slog.With("component", "ws"),
	}
}

// Run, register/unregister sinyallerini işleyen ana döngü.
// Shutdown çağrılınca döner.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.log.Debug("client connected", "user_id", client.userID, "connections", len(h.clients[client.userID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(client)
}

// detachLocked, client'ı map'ten çıkarıp send channel'ını kapatır.
// Zaten çıkarılmış client için no-op. h.mu yazma kilidi tutulmalıdır.
func (h *Hub) detachLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.log.Debug("client disconnected", "user_id", client.userID, "remaining", len(clients))
}

func (h *Hub) encode(event Event) ([]byte, bool) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", "op", event.Op, "error", err)
		return nil, false
	}
	return data, true
}

// trySend, buffer doluysa client'ı (yavaş/donmuş) düşürür.
func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.Warn("send buffer full, dropping connection", "user_id", client.userID)
		go func(c *Client) {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		}(client)
	}
}

// BroadcastToAdmins, admin olarak bağlanmış tüm client'lara event gönderir.
func (h *Hub) BroadcastToAdmins(event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			if client.isAdmin {
				h.trySend(client, data)
			}
		}
	}
}

// BroadcastToUser, kullanıcının tüm bağlantılarına event gönderir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		h.trySend(client, data)
	}
}

// DisconnectUser, kullanıcının bağlantılarına force_disconnect yazar ve kapatır.
// send channel'ı kapatıldığında WritePump bekleyen mesajları yazıp close frame gönderir.
func (h *Hub) DisconnectUser(userID, reason string) {
	data, ok := h.encode(Event{Op: OpForceDisconnect, Data: ForceDisconnectData{Reason: reason}})
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[userID]
	if len(clients) == 0 {
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
		}
		h.detachLocked(client)
	}

	h.log.Info("user disconnected", "user_id", userID, "reason", reason)
}

// IsOnline, kullanıcının en az bir açık bağlantısı olup olmadığını döner.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID]) > 0
}

// Shutdown, tüm bağlantıları kapatır ve Run döngüsünü sonlandırır.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)

	select {
	case <-h.done:
	default:
		close(h.done)
	}
	h.log.Info("hub shut down")
}
