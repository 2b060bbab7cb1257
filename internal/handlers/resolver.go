// internal/handlers/resolver.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/tectoast/wizard/internal/auth"
)

// ErrNoSession is returned when a request carries no session token.
var ErrNoSession = errors.New("no session token")

// UsernameResolver maps an accepted websocket connection to the user's stable identity.
type UsernameResolver interface {
	Resolve(ctx context.Context, r *http.Request, c *websocket.Conn) (string, error)
}

// SessionResolver takes the username from the session JWT.
type SessionResolver struct {
	Sessions *auth.Sessions
}

func (s SessionResolver) Resolve(_ context.Context, r *http.Request, _ *websocket.Conn) (string, error) {
	token := sessionToken(r, auth.CookieName)
	if token == "" {
		return "", ErrNoSession
	}
	return s.Sessions.Verify(token)
}

// DevResolver trusts the first text frame as the username. The frame may be a JSON string
// or raw text. Development only.
type DevResolver struct {
	Timeout time.Duration
}

func (d DevResolver) Resolve(ctx context.Context, _ *http.Request, c *websocket.Conn) (string, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	typ, data, err := c.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read username frame: %w", err)
	}
	if typ != websocket.MessageText {
		return "", fmt.Errorf("username frame is not text")
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		name = string(data)
	}
	if !validUsername(name) {
		return "", fmt.Errorf("invalid username %q", name)
	}
	return name, nil
}
