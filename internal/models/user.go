package models

// User is an account. The username is the identity players are known by in games.
// PasswordHash is nil for accounts that were registered without a password; the first
// successful login sets it.
type User struct {
	Username     string  `json:"username"`
	PasswordHash *string `json:"-"`
}

// HasPassword reports whether the account has been claimed.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
