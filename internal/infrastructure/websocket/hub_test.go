package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	hub.Start()

	conn := &Connection{Send: make(chan []byte, 4)}
	hub.Register(conn)

	// 等待注册完成
	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyDocumentIngested("lease.pdf", 3)

	select {
	case data := <-conn.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, "document_ingested", event.Type)

		payload, ok := event.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "lease.pdf", payload["name"])
		assert.Equal(t, float64(3), payload["chunks"])
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}

	hub.Unregister(conn)
	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
