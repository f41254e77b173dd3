package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking links a passenger to an offer. A booking in any status counts as
// participation for messaging access, including cancelled ones, so a thread
// survives a cancelled booking via message history.
type Booking struct {
	ID          string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OfferID     string         `gorm:"type:uuid;not null;index" json:"offer_id"`
	PassengerID string         `gorm:"type:uuid;not null;index" json:"passenger_id"`
	Seats       int            `gorm:"not null;default:1" json:"seats"`
	Status      string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Offer     Offer `gorm:"foreignKey:OfferID;references:ID" json:"offer,omitempty"`
	Passenger User  `gorm:"foreignKey:PassengerID;references:ID" json:"passenger,omitempty"`
}

// BeforeCreate hook to generate UUID
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
