package model

import "fmt"

// RideType distinguishes the two kinds of rides a conversation can be scoped
// to. It is parsed once at the transport boundary; everything below works with
// the typed value.
type RideType string

const (
	RideTypeOffer  RideType = "offer"
	RideTypeDemand RideType = "demand"
)

// ParseRideType validates a ride type coming from a request path or body.
func ParseRideType(s string) (RideType, error) {
	switch RideType(s) {
	case RideTypeOffer, RideTypeDemand:
		return RideType(s), nil
	}
	return "", fmt.Errorf("invalid ride type %q", s)
}

// RideRef identifies a ride across both variants.
type RideRef struct {
	Type RideType `json:"ride_type"`
	ID   string   `json:"ride_id"`
}

// RideMeta is the slice of ride data the messaging layer surfaces on
// conversation summaries. It is owned by the offer/demand modules.
type RideMeta struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
}
