package socket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tectoast/wizard/internal/game"
)

type fakeWS struct {
	mu      sync.Mutex
	frames  []string
	closed  bool
	code    websocket.StatusCode
	failing bool
	block   chan struct{}
}

func (f *fakeWS) Write(ctx context.Context, _ websocket.MessageType, p []byte) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, string(p))
	return nil
}

func (f *fakeWS) Close(code websocket.StatusCode, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.code = code
	return nil
}

func (f *fakeWS) snapshot() ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.frames...), f.closed
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) IncOnlinePlayers() { c.mu.Lock(); c.n++; c.mu.Unlock() }
func (c *counter) DecOnlinePlayers() { c.mu.Lock(); c.n--; c.mu.Unlock() }
func (c *counter) value() int        { c.mu.Lock(); defer c.mu.Unlock(); return c.n }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func eventTypes(t *testing.T, frames []string) []string {
	t.Helper()
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		var h struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(f), &h))
		out = append(out, h.Type)
	}
	return out
}

func TestSendAndBroadcast(t *testing.T) {
	online := &counter{}
	m := NewManager(quietLogger(), online)
	alice, bob := &fakeWS{}, &fakeWS{}
	m.Register(NewConn("alice", alice, quietLogger()))
	m.Register(NewConn("bob", bob, quietLogger()))
	assert.Equal(t, 2, online.value())
	assert.True(t, m.Online("alice"))

	m.Send("alice", game.NewGameCreated(0))
	m.Broadcast(game.NewOpenGames(nil))
	m.Send("carol", game.NewRedirectHome())

	assert.Eventually(t, func() bool {
		a, _ := alice.snapshot()
		b, _ := bob.snapshot()
		return len(a) == 2 && len(b) == 1
	}, time.Second, 5*time.Millisecond)

	frames, _ := alice.snapshot()
	assert.Equal(t, []string{"GameCreated", "OpenGames"}, eventTypes(t, frames), "per-connection order is kept")
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	online := &counter{}
	m := NewManager(quietLogger(), online)
	first, second := &fakeWS{}, &fakeWS{}
	c1 := NewConn("alice", first, quietLogger())
	c2 := NewConn("alice", second, quietLogger())

	m.Register(c1)
	m.Register(c2)
	assert.Equal(t, 1, online.value())
	assert.Equal(t, 1, m.Count())

	select {
	case <-c1.Done():
	case <-time.After(time.Second):
		t.Fatal("replaced connection not closed")
	}
	assert.Eventually(t, func() bool {
		_, closed := first.snapshot()
		return closed
	}, time.Second, 5*time.Millisecond)
	first.mu.Lock()
	assert.Equal(t, websocket.StatusPolicyViolation, first.code)
	first.mu.Unlock()

	assert.False(t, m.Unregister(c1), "a stale connection cannot remove its successor")
	assert.True(t, m.Online("alice"))
	assert.True(t, m.Unregister(c2))
	assert.False(t, m.Online("alice"))
	assert.Equal(t, 0, online.value())
}

func TestQueueOverflowClosesConnection(t *testing.T) {
	ws := &fakeWS{block: make(chan struct{})}
	m := NewManager(quietLogger(), nil)
	c := NewConn("alice", ws, quietLogger())
	m.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+16; i++ {
			m.Send("alice", game.NewRedirectHome())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a slow connection")
	}

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("overflowing connection left open")
	}
	assert.Eventually(t, func() bool {
		_, closed := ws.snapshot()
		return closed
	}, time.Second, 5*time.Millisecond)
	ws.mu.Lock()
	assert.Equal(t, websocket.StatusTryAgainLater, ws.code)
	ws.mu.Unlock()
	close(ws.block)

	assert.True(t, m.Unregister(c), "the read loop unregisters the closed connection")
}

func TestWriteFailureClosesConnection(t *testing.T) {
	ws := &fakeWS{failing: true}
	m := NewManager(quietLogger(), nil)
	c := NewConn("alice", ws, quietLogger())
	m.Register(c)
	m.Send("alice", game.NewRedirectHome())

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("connection not closed after a failed write")
	}
	_, closed := ws.snapshot()
	assert.True(t, closed)
}

func TestCloseAll(t *testing.T) {
	online := &counter{}
	m := NewManager(quietLogger(), online)
	a, b := &fakeWS{}, &fakeWS{}
	m.Register(NewConn("a", a, quietLogger()))
	m.Register(NewConn("b", b, quietLogger()))

	m.CloseAll()
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, online.value())
	assert.Equal(t, websocket.StatusGoingAway, a.code)
	assert.Equal(t, websocket.StatusGoingAway, b.code)
}
