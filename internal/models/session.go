package models

// SessionData is the server-side record stored for a session id.
type SessionData struct {
	UserID int `json:"userId,omitempty"`
}
