package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Demand is a passenger-posted trip request that drivers can respond to.
type Demand struct {
	ID           string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PassengerID  string         `gorm:"type:uuid;not null;index" json:"passenger_id"`
	Origin       string         `gorm:"type:varchar(255);not null" json:"origin"`
	Destination  string         `gorm:"type:varchar(255);not null" json:"destination"`
	EarliestTime time.Time      `gorm:"not null;index" json:"earliest_time"`
	LatestTime   time.Time      `gorm:"not null" json:"latest_time"`
	Seats        int            `gorm:"not null" json:"seats"`
	MaxPrice     float64        `json:"max_price"`
	Status       string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Passenger User `gorm:"foreignKey:PassengerID;references:ID" json:"passenger,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Demand) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Demand) TableName() string {
	return "demands"
}

// Meta returns the ride metadata surfaced on conversation summaries.
func (d *Demand) Meta() *RideMeta {
	return &RideMeta{
		Origin:        d.Origin,
		Destination:   d.Destination,
		DepartureTime: d.EarliestTime.Format(time.RFC3339),
		Price:         d.MaxPrice,
		Status:        d.Status,
	}
}
