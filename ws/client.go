package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait: tek bir mesajı yazmak için süre sınırı.
	writeWait = 10 * time.Second

	// pongWait: 3 kaçırılmış heartbeat (3 × 30sn) sonrası bağlantı kopmuş sayılır.
	pongWait = 90 * time.Second

	// maxMessageSize: client'tan kabul edilen en büyük mesaj (byte).
	maxMessageSize = 4096

	// sendBufferSize: client başına outbound buffer. Dolarsa client düşürülür.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısı.
//
// Her bağlantı için iki goroutine çalışır: ReadPump gelen mesajları okur,
// WritePump send channel'ındaki mesajları yazar. gorilla/websocket aynı
// anda tek okuyucu ve tek yazıcıya izin verir.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	userID  string
	isAdmin bool
	send    chan []byte
	mu      sync.Mutex // conn yazmalarını korur
}

// ReadPump, bağlantı kapanana kadar gelen mesajları okur.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("unexpected close", "user_id", c.userID, "error", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.log.Debug("invalid message", "user_id", c.userID, "error", err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})
	}
}

// sendEvent, tek client'a event kuyruklar. Buffer doluysa mesaj düşer.
func (c *Client) sendEvent(event Event) {
	data, ok := c.hub.encode(event)
	if !ok {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	// Hub client'ı çıkardıysa send kapalıdır; yazmak panic olur.
	if !c.hub.clients[c.userID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// WritePump, send channel'ı kapanana kadar mesajları bağlantıya yazar.
// Kapanınca kalan mesajlar yazılır, ardından close frame gönderilir.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	_ = c.writeMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""))
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
