package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RideStatusActive    = "active"
	RideStatusCancelled = "cancelled"
	RideStatusCompleted = "completed"
)

// Offer is a driver-posted trip that passengers can book seats on.
type Offer struct {
	ID            string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DriverID      string         `gorm:"type:uuid;not null;index" json:"driver_id"`
	Origin        string         `gorm:"type:varchar(255);not null" json:"origin"`
	Destination   string         `gorm:"type:varchar(255);not null" json:"destination"`
	DepartureTime time.Time      `gorm:"not null;index" json:"departure_time"`
	Seats         int            `gorm:"not null" json:"seats"`
	PricePerSeat  float64        `gorm:"not null" json:"price_per_seat"`
	Status        string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Driver User `gorm:"foreignKey:DriverID;references:ID" json:"driver,omitempty"`
}

// BeforeCreate hook to generate UUID
func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Offer) TableName() string {
	return "offers"
}

// Meta returns the ride metadata surfaced on conversation summaries.
func (o *Offer) Meta() *RideMeta {
	return &RideMeta{
		Origin:        o.Origin,
		Destination:   o.Destination,
		DepartureTime: o.DepartureTime.Format(time.RFC3339),
		Price:         o.PricePerSeat,
		Status:        o.Status,
	}
}
