package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/auth"
	"github.com/tectoast/wizard/internal/database"
	"github.com/tectoast/wizard/internal/models"
)

// UserStore is the account persistence used by the HTTP endpoints.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	SetPassword(ctx context.Context, username, passwordHash string) error
}

// Accounts serves /login and /register.
type Accounts struct {
	Users       UserStore
	Sessions    *auth.Sessions
	RegisterKey string
	Logger      *logrus.Logger
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// RegisterHandler creates an account. The Authorization header must carry the register key;
// an empty key disables registration. The password is optional: an account without one is
// claimed by its first login.
func (a *Accounts) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if a.RegisterKey == "" ||
		subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(a.RegisterKey)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !validUsername(req.Username) {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}

	var hash string
	if req.Password != "" {
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			a.Logger.WithError(err).Error("failed to hash password")
			http.Error(w, "error creating user", http.StatusInternalServerError)
			return
		}
	}

	if err := a.Users.CreateUser(r.Context(), req.Username, hash); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			http.Error(w, "username already exists", http.StatusConflict)
			return
		}
		a.Logger.WithError(err).WithField("user", req.Username).Error("failed to create user")
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}
	a.Logger.WithField("user", req.Username).Info("user registered")
	writeJSON(w, http.StatusCreated, models.User{Username: req.Username})
}

// LoginHandler checks the credentials and sets the session cookie. The token is also
// returned in the body.
func (a *Accounts) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if err := a.authenticate(r.Context(), req); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.Logger.WithField("user", req.Username).Debug("login rejected")
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}
		a.Logger.WithError(err).WithField("user", req.Username).Error("login failed")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := a.Sessions.Issue(req.Username)
	if err != nil {
		a.Logger.WithError(err).Error("failed to sign session token")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := a.Sessions.TTL(); ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: req.Username})
}

func (a *Accounts) authenticate(ctx context.Context, req credentials) error {
	if req.Username == "" || req.Password == "" {
		return auth.ErrInvalidCredentials
	}
	u, err := a.Users.GetUser(ctx, req.Username)
	if errors.Is(err, database.ErrUserNotFound) {
		return auth.ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	if !u.HasPassword() {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		if err := a.Users.SetPassword(ctx, u.Username, hash); err != nil {
			return err
		}
		a.Logger.WithField("user", u.Username).Info("account claimed")
		return nil
	}

	ok, err := auth.VerifyPassword(req.Password, *u.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrInvalidCredentials
	}
	return nil
}
