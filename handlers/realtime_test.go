package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:       id,
		Username: "viewer-" + id,
		send:     make(chan Message, 4),
		ctx:      ctx,
		cancel:   cancel,
		games:    make(map[string]bool),
	}
}

func subscribeClient(c *Client, gameID string) {
	clientsMu.Lock()
	if feeds[gameID] == nil {
		feeds[gameID] = make(map[*Client]bool)
	}
	feeds[gameID][c] = true
	clientsMu.Unlock()

	c.mu.Lock()
	c.games[gameID] = true
	c.mu.Unlock()
}

func TestGameChangedDelivers(t *testing.T) {
	client := newTestClient("c-1")
	subscribeClient(client, "g-1")
	defer removeSubscription(client, "g-1")

	NewHubNotifier().GameChanged("g-1", "participants")

	require.Len(t, client.send, 1)
	msg := <-client.send
	require.Equal(t, "game_updated", msg.Type)
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "g-1", payload["game_id"])
	require.Equal(t, "participants", payload["scope"])
}

func TestGameChangedRacingDisconnect(t *testing.T) {
	client := newTestClient("c-2")
	subscribeClient(client, "g-2")
	defer removeSubscription(client, "g-2")

	// A notifier that snapshotted the subscriber list before the
	// disconnect landed may still deliver; it must find a no-op, not a
	// panic.
	client.markClosed()

	require.NotPanics(t, func() {
		NewHubNotifier().GameChanged("g-2", "game")
	})
	require.Empty(t, client.send)
}

func TestSendMessageDropsWhenBufferFull(t *testing.T) {
	client := newTestClient("c-3")

	for i := 0; i < cap(client.send)+2; i++ {
		client.sendMessage("pong", map[string]interface{}{})
	}

	// Overflow is dropped, never blocked on
	require.Len(t, client.send, cap(client.send))
}
