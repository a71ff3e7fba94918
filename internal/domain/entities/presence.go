package entities

import "time"

// PresenceState is what the lobby shows next to a player.
type PresenceState string

const (
	PresenceOnline PresenceState = "online"
	PresenceInGame PresenceState = "in-game"
)

// Presence is the last known activity of a player.
type Presence struct {
	UserID      int64
	DisplayName string
	State       PresenceState
	LastSeen    time.Time
}
