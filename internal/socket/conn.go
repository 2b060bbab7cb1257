// internal/socket/conn.go
package socket

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout = 3 * time.Second
	sendBuffer   = 64
)

// WSConn is the part of *websocket.Conn the writer needs.
type WSConn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Conn is one registered websocket. Outbound frames are queued and written by a single
// goroutine so writes never interleave.
type Conn struct {
	ID       uuid.UUID
	Username string

	ws   WSConn
	out  chan []byte
	done chan struct{}
	once sync.Once
	log  *logrus.Entry
}

// NewConn wraps ws for username. The writer starts when the connection is registered.
func NewConn(username string, ws WSConn, logger *logrus.Logger) *Conn {
	id := uuid.New()
	return &Conn{
		ID:       id,
		Username: username,
		ws:       ws,
		out:      make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		log:      logger.WithFields(logrus.Fields{"user": username, "conn": id}),
	}
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close stops the writer and closes the websocket. Later calls are no-ops.
func (c *Conn) Close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.closeWS(code, reason)
	})
}

func (c *Conn) closeWS(code websocket.StatusCode, reason string) {
	if err := c.ws.Close(code, reason); err != nil {
		c.log.WithError(err).Debug("websocket close")
	}
}

// enqueue queues a frame. A full queue means the client fell behind and would miss events,
// so the connection is closed and the client resyncs on reconnect. It never blocks.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
	}
	c.once.Do(func() {
		close(c.done)
		c.log.Warn("send queue full, closing connection")
		go c.closeWS(websocket.StatusTryAgainLater, "send queue overflow")
	})
	return false
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.WithError(err).Warn("failed to write websocket message")
				c.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}
