package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemandResponse links a driver to a demand, the demand-side counterpart of a
// booking.
type DemandResponse struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DemandID  string         `gorm:"type:uuid;not null;index" json:"demand_id"`
	DriverID  string         `gorm:"type:uuid;not null;index" json:"driver_id"`
	Message   *string        `gorm:"type:text" json:"message,omitempty"`
	Status    string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Demand Demand `gorm:"foreignKey:DemandID;references:ID" json:"demand,omitempty"`
	Driver User   `gorm:"foreignKey:DriverID;references:ID" json:"driver,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *DemandResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (DemandResponse) TableName() string {
	return "demand_responses"
}
