package kds

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/utils"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func init() {
	utils.SilenceLoggers()
}

func TestPublishReachesEveryClient(t *testing.T) {
	hub := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(a, 1, "admin")
	hub.Register(b, 2, "admin")

	hub.Publish(EventOrderCreated, map[string]interface{}{"id": 5})

	for _, conn := range []*fakeConn{a, b} {
		require.Len(t, conn.messages, 1)
		var msg struct {
			Event string         `json:"event"`
			Data  map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(conn.messages[0], &msg))
		assert.Equal(t, EventOrderCreated, msg.Event)
		assert.Equal(t, 5, msg.Data["id"])
	}
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	hub := NewHub()
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	hub.Register(good, 1, "admin")
	hub.Register(bad, 2, "admin")

	hub.Publish(EventReservationStatus, nil)

	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, bad.closed)
	assert.False(t, good.closed)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := hub.Register(conn, 1, "admin")

	hub.Unregister(client)
	hub.Unregister(client)

	assert.Zero(t, hub.ClientCount())
	assert.True(t, conn.closed)
}

func TestConcurrentPublish(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, 1, "admin")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish(EventReviewSubmitted, nil)
		}()
	}
	wg.Wait()

	assert.Len(t, conn.messages, 20)
}
