package models

import "time"

// Event types published to the events topic.
const (
	EventUserRegistered         = "user.registered"
	EventUserLoggedIn           = "user.logged_in"
	EventUserLoggedOut          = "user.logged_out"
	EventPasswordResetRequested = "password.reset_requested"
	EventPasswordChanged        = "password.changed"
	EventPostCreated            = "post.created"
	EventPostUpdated            = "post.updated"
	EventPostDeleted            = "post.deleted"
)

// Event is a domain event emitted after a state change.
type Event struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     int       `json:"user_id"`
	PostID     int       `json:"post_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
