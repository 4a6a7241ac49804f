// handlers/realtime.go - WebSocket change feed for live sessions
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval

	// Send channel buffer size
	sendBufferSize = 256
)

// Message is the wire envelope for every WebSocket frame.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one connected WebSocket viewer. Clients subscribe to game
// feeds by public game id and receive change notifications; all reads
// of actual game state go through the REST API.
type Client struct {
	ID       string
	UserID   *uint // nil for anonymous viewers
	Username string
	Conn     *websocket.Conn
	send     chan Message
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	closed   bool            // no more queueing once the connection is going away
	games    map[string]bool // subscribed game ids
}

var (
	clients   = make(map[*websocket.Conn]*Client)
	feeds     = make(map[string]map[*Client]bool) // gameID -> subscribers
	clientsMu sync.RWMutex
)

// HubNotifier broadcasts game change events to subscribed clients.
// Notifications are fire-and-forget: a slow or absent subscriber never
// blocks or fails the mutation that triggered the event.
type HubNotifier struct{}

func NewHubNotifier() *HubNotifier {
	return &HubNotifier{}
}

func (h *HubNotifier) GameChanged(gameID, scope string) {
	clientsMu.RLock()
	subscribers := feeds[gameID]
	targets := make([]*Client, 0, len(subscribers))
	for c := range subscribers {
		targets = append(targets, c)
	}
	clientsMu.RUnlock()

	for _, c := range targets {
		c.sendMessage("game_updated", map[string]interface{}{
			"game_id": gameID,
			"scope":   scope,
		})
	}
}

// WebSocketHandler is a pure net/http handler for WebSocket connections
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	// Authenticate using JWT from cookie or Authorization header
	var userID *uint
	var username string

	authHeader := r.Header.Get("Authorization")
	var tokenString string

	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	// Fall back to cookie
	if tokenString == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			tokenString = cookie.Value
		}
	}

	// Parse JWT if present; anonymous viewers are allowed
	if tokenString != "" {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("invalid signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if userIDVal, ok := claims["user_id"].(float64); ok {
					uid := uint(userIDVal)
					userID = &uid
				}
				if usernameVal, ok := claims["username"].(string); ok {
					username = usernameVal
				}
			}
		}
	}

	handleWebSocket(w, r, userID, username)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, userID *uint, username string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // TODO: restrict origins once the frontend domain is fixed
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()
	if username == "" {
		username = "Viewer" + clientID[:6]
	}

	clientCtx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &Client{
		ID:       clientID,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		send:     make(chan Message, sendBufferSize),
		ctx:      clientCtx,
		cancel:   cancel,
		games:    make(map[string]bool),
	}

	clientsMu.Lock()
	clients[conn] = client
	clientsMu.Unlock()

	log.Printf("🎮 Viewer connected: %s (ID: %s, UserID: %v)", username, clientID, userID)

	client.sendMessage("connected", map[string]interface{}{
		"client_id": clientID,
		"username":  username,
		"user_id":   userID,
	})

	// Start write pump in separate goroutine
	go client.writePump()

	// Read pump blocks until disconnect
	client.readPump()

	clientsMu.Lock()
	delete(clients, conn)
	clientsMu.Unlock()

	// The send channel is never closed: a notifier holding a stale
	// subscriber snapshot may still call sendMessage. markClosed turns
	// those late sends into no-ops; writePump exits via ctx cancel.
	client.markClosed()
	client.unsubscribeAll()
	log.Printf("🔌 Viewer disconnected: %s (ID: %s)", client.Username, client.ID)
}

// sendMessage queues a message to be sent to the client via WebSocket.
// Safe to call from any goroutine at any point of the client lifecycle.
func (c *Client) sendMessage(msgType string, payload interface{}) {
	msg := Message{Type: msgType, Payload: payload}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- msg:
		// Message queued successfully
	default:
		// Send buffer full - drop message and log warning
		log.Printf("⚠️ Send buffer full for client %s, dropping message type: %s", c.ID, msgType)
	}
}

func (c *Client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func handleMessage(client *Client, msg Message) {
	switch msg.Type {
	case "subscribe":
		handleSubscribe(client, msg.Payload)
	case "unsubscribe":
		handleUnsubscribe(client, msg.Payload)
	case "ping":
		// Pong response for latency measurement
		client.sendMessage("pong", map[string]interface{}{})
	}
}

func handleSubscribe(client *Client, payload interface{}) {
	data := parsePayload(payload)
	gameID := getString(data, "game_id", "")
	if gameID == "" {
		client.sendMessage("error", map[string]interface{}{"error": "Missing game_id"})
		return
	}

	clientsMu.Lock()
	if feeds[gameID] == nil {
		feeds[gameID] = make(map[*Client]bool)
	}
	feeds[gameID][client] = true
	clientsMu.Unlock()

	client.mu.Lock()
	client.games[gameID] = true
	client.mu.Unlock()

	log.Printf("📡 Client %s subscribed to game %s", client.ID, gameID)
	client.sendMessage("subscribed", map[string]interface{}{"game_id": gameID})
}

func handleUnsubscribe(client *Client, payload interface{}) {
	data := parsePayload(payload)
	gameID := getString(data, "game_id", "")
	if gameID == "" {
		return
	}

	removeSubscription(client, gameID)
	client.sendMessage("unsubscribed", map[string]interface{}{"game_id": gameID})
}

func removeSubscription(client *Client, gameID string) {
	clientsMu.Lock()
	if subs, ok := feeds[gameID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(feeds, gameID)
		}
	}
	clientsMu.Unlock()

	client.mu.Lock()
	delete(client.games, gameID)
	client.mu.Unlock()
}

func (c *Client) unsubscribeAll() {
	c.mu.RLock()
	ids := make([]string, 0, len(c.games))
	for id := range c.games {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	for _, id := range ids {
		removeSubscription(c, id)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.Conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var msg Message
		err := wsjson.Read(c.ctx, c.Conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway {
				log.Printf("WebSocket read error for client %s: %v", c.ID, err)
			}
			break
		}

		handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := wsjson.Write(writeCtx, c.Conn, msg)
			cancel()

			if err != nil {
				log.Printf("❌ Error writing to WebSocket: %v", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.Conn.Ping(pingCtx)
			cancel()

			if err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func parsePayload(payload interface{}) map[string]interface{} {
	if payload == nil {
		return make(map[string]interface{})
	}
	if data, ok := payload.(map[string]interface{}); ok {
		return data
	}
	return make(map[string]interface{})
}

func getString(data map[string]interface{}, key string, defaultVal string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultVal
}
