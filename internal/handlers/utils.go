package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxUsernameLength matches the users table.
const maxUsernameLength = 30

func validUsername(name string) bool {
	return name != "" && len([]rune(name)) <= maxUsernameLength && strings.TrimSpace(name) == name
}

// sessionToken returns the session cookie, falling back to a bearer Authorization header.
func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
