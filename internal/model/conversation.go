package model

import "time"

// Conversation is a derived view, not a table. One entry exists per
// (ride, counterparty) pair with at least one message exchanged between the
// two parties, so a single ride can host several independent conversations.
type Conversation struct {
	RideType      RideType  `json:"ride_type"`
	RideID        string    `json:"ride_id"`
	OtherUserID   string    `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	Ride          *RideMeta `json:"ride,omitempty"`
	LastMessage   *Message  `json:"last_message"`
	UnreadCount   int64     `json:"unread_count"`
	LastActivity  time.Time `json:"last_activity"`
}
