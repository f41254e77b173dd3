package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a chat message scoped to a ride. There is no conversation table;
// a conversation is derived from (ride_type, ride_id, counterparty) at query
// time. ReceiverID is resolved server-side when the message is created, never
// taken from the request body.
type Message struct {
	ID                string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RideType          RideType   `gorm:"type:varchar(10);not null;index:idx_messages_ride" json:"ride_type"`
	RideID            string     `gorm:"type:uuid;not null;index:idx_messages_ride" json:"ride_id"`
	SenderID          string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID        string     `gorm:"type:uuid;not null;index:idx_messages_receiver_read" json:"receiver_id"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	IsRead            bool       `gorm:"default:false;index:idx_messages_receiver_read" json:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
	ReadBy            *string    `gorm:"type:uuid" json:"read_by,omitempty"`
	EditedAt          *time.Time `json:"edited_at,omitempty"`
	DeletedForAll     bool       `gorm:"default:false" json:"deleted_for_all"`
	DeletedForUserIDs string     `gorm:"type:jsonb;default:'[]'" json:"-"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Sender   User `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}

// Ride returns the ride this message is scoped to.
func (m *Message) Ride() RideRef {
	return RideRef{Type: m.RideType, ID: m.RideID}
}

// GetDeletedForUserIDs returns the per-viewer exclusion list.
func (m *Message) GetDeletedForUserIDs() []string {
	if m.DeletedForUserIDs == "" || m.DeletedForUserIDs == "[]" {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(m.DeletedForUserIDs), &ids); err != nil {
		return []string{}
	}
	return ids
}

// SetDeletedForUserIDs sets the per-viewer exclusion list.
func (m *Message) SetDeletedForUserIDs(ids []string) error {
	if len(ids) == 0 {
		m.DeletedForUserIDs = "[]"
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	m.DeletedForUserIDs = string(data)
	return nil
}

// IsDeletedFor reports whether the message is hidden from the given viewer,
// either by a for-everyone delete or a per-viewer soft delete.
func (m *Message) IsDeletedFor(userID string) bool {
	if m.DeletedForAll {
		return true
	}
	for _, id := range m.GetDeletedForUserIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkDeletedFor appends the viewer to the exclusion list. Idempotent:
// marking an already-excluded viewer is a no-op and returns false.
func (m *Message) MarkDeletedFor(userID string) bool {
	ids := m.GetDeletedForUserIDs()
	for _, id := range ids {
		if id == userID {
			return false
		}
	}
	_ = m.SetDeletedForUserIDs(append(ids, userID))
	return true
}
