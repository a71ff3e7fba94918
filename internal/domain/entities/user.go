package entities

import (
	"strings"
	"time"
)

// User represents a bot user.
type User struct {
	ID        int64 // Telegram user ID
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
}

func NewUser(id, chatID int64, username, firstName, lastName string) *User {
	return &User{
		ID:        id,
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// DisplayName returns the name shown to other players according to pref.
func (u *User) DisplayName(pref NamePreference) string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if pref == NameUsername && u.Username != "" {
		return "@" + u.Username
	}
	if full != "" {
		return full
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "Player"
}
