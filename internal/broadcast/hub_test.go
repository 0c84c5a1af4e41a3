package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	written  [][]byte
	closed   chan struct{}
	once     sync.Once
	writeErr error
	block    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, io.EOF
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

func serve(t *testing.T, h *Hub, conn *fakeConn) <-chan struct{} {
	t.Helper()

	before := h.Count()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Serve(conn)
	}()
	require.Eventually(t, func() bool { return h.Count() == before+1 }, time.Second, time.Millisecond)
	return done
}

func TestHubPublishReachesEveryClient(t *testing.T) {
	h := NewHub()
	a, b := newFakeConn(), newFakeConn()
	doneA := serve(t, h, a)
	doneB := serve(t, h, b)

	require.NoError(t, h.Publish(context.Background(), "totals_updated", map[string]int{"grandTotal": 25000}))

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(c.messages()) == 1 }, time.Second, time.Millisecond)

		var env struct {
			Event string         `json:"event"`
			Data  map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(c.messages()[0], &env))
		assert.Equal(t, "totals_updated", env.Event)
		assert.Equal(t, 25000, env.Data["grandTotal"])
	}

	a.Close()
	b.Close()
	<-doneA
	<-doneB
	assert.Zero(t, h.Count())
}

func TestHubWithoutClients(t *testing.T) {
	h := NewHub()
	assert.NoError(t, h.Publish(context.Background(), "totals_updated", struct{}{}))
}

func TestHubDisconnectDoesNotAffectOthers(t *testing.T) {
	h := NewHub()
	leaving, staying := newFakeConn(), newFakeConn()
	doneLeaving := serve(t, h, leaving)
	doneStaying := serve(t, h, staying)

	leaving.Close()
	<-doneLeaving
	assert.Equal(t, 1, h.Count())

	h.Broadcast([]byte(`{"event":"totals_updated","data":{}}`))
	require.Eventually(t, func() bool { return len(staying.messages()) == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, leaving.messages())

	staying.Close()
	<-doneStaying
}

func TestHubWriteFailureDropsClient(t *testing.T) {
	h := NewHub()
	broken := newFakeConn()
	broken.writeErr = errors.New("broken pipe")
	done := serve(t, h, broken)

	h.Broadcast([]byte(`{}`))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client was not dropped after write failure")
	}
	assert.Zero(t, h.Count())
}

func TestHubSlowClientMissesMessages(t *testing.T) {
	h := NewHub()
	h.queueSize = 1

	slow := newFakeConn()
	slow.block = make(chan struct{})
	done := serve(t, h, slow)

	// the first message is taken by the blocked writer, the second fills the
	// queue and the rest are dropped
	for i := 0; i < 5; i++ {
		h.Broadcast([]byte(`{}`))
		time.Sleep(5 * time.Millisecond)
	}

	close(slow.block)
	require.Eventually(t, func() bool { return len(slow.messages()) == 2 }, time.Second, time.Millisecond)

	slow.Close()
	<-done
	assert.Len(t, slow.messages(), 2)
}
