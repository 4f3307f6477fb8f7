package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// testClient builds a Client with a buffered send channel and no real
// connection.
func testClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := testClient(hub)
	c2 := testClient(hub)

	hub.register(c1)
	hub.register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}

	// Unregistering twice must not panic.
	hub.unregister(c1)
	hub.unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := testClient(hub)
	c2 := testClient(hub)
	hub.register(c1)
	hub.register(c2)

	hub.Broadcast(NewMessage(EntityGroceryItem, "created", 42).ForUser(7))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "grocery_item_created" {
				t.Errorf("type = %q", got.Type)
			}
			if got.ID != 42 {
				t.Errorf("id = %d, want 42", got.ID)
			}
			if got.UserID == nil || *got.UserID != 7 {
				t.Errorf("user_id = %v, want 7", got.UserID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic with no clients.
	hub.Notify(EntityItem, "deleted", 1)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := testClient(hub)
	hub.register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Notify(EntityTask, "created", int64(i))
	}

	// Buffer is full; this one is dropped rather than blocking.
	hub.Notify(EntityTask, "created", 999)

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			if count != sendBufferSize {
				t.Errorf("expected %d buffered messages, got %d", sendBufferSize, count)
			}
			return
		}
	}
}

func TestMessageWith(t *testing.T) {
	msg := NewMessage(EntityTemplate, "applied", 5).With("items_added", 3)
	if msg.Type != "grocery_template_applied" {
		t.Errorf("type = %q", msg.Type)
	}
	if msg.Extra["items_added"] != 3 {
		t.Errorf("extra = %v", msg.Extra)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := testClient(hub)
			hub.register(c)
			hub.Notify(EntityStore, "updated", 0)
			for {
				select {
				case <-c.send:
				default:
					hub.unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients, got %d", got)
	}
}
