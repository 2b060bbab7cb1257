// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom websocket close codes.
const (
	InvalidAuthTokenError websocket.StatusCode = 3001 // session cookie missing, invalid or expired
	InvalidUsernameError  websocket.StatusCode = 3002 // username frame empty or too long
)
