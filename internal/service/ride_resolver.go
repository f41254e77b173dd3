package service

import (
	"errors"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

// RideInfo is what the messaging layer needs to know about a ride: who owns
// it and the display metadata for conversation summaries.
type RideInfo struct {
	OwnerID string
	Meta    *model.RideMeta
}

// RideResolver answers ownership and participation questions for both ride
// variants. Offers are owned by drivers with passengers as booked
// participants; demands are owned by passengers with responding drivers as
// participants.
type RideResolver interface {
	Resolve(ride model.RideRef) (*RideInfo, error)
	IsParticipant(ride model.RideRef, userID string) (bool, error)
}

// rideVariant carries the owner lookup and participant check for one ride
// type, so the type dispatch happens exactly once.
type rideVariant interface {
	resolve(rideID string) (*RideInfo, error)
	isParticipant(rideID, userID string) (bool, error)
}

type rideResolver struct {
	variants map[model.RideType]rideVariant
}

func NewRideResolver(
	offerRepo repository.OfferRepository,
	demandRepo repository.DemandRepository,
	bookingRepo repository.BookingRepository,
	responseRepo repository.DemandResponseRepository,
) RideResolver {
	return &rideResolver{
		variants: map[model.RideType]rideVariant{
			model.RideTypeOffer:  &offerVariant{offers: offerRepo, bookings: bookingRepo},
			model.RideTypeDemand: &demandVariant{demands: demandRepo, responses: responseRepo},
		},
	}
}

func (r *rideResolver) variant(ride model.RideRef) (rideVariant, error) {
	v, ok := r.variants[ride.Type]
	if !ok {
		return nil, apperr.InvalidInput("invalid ride type")
	}
	return v, nil
}

func (r *rideResolver) Resolve(ride model.RideRef) (*RideInfo, error) {
	v, err := r.variant(ride)
	if err != nil {
		return nil, err
	}
	return v.resolve(ride.ID)
}

func (r *rideResolver) IsParticipant(ride model.RideRef, userID string) (bool, error) {
	v, err := r.variant(ride)
	if err != nil {
		return false, err
	}
	return v.isParticipant(ride.ID, userID)
}

type offerVariant struct {
	offers   repository.OfferRepository
	bookings repository.BookingRepository
}

func (v *offerVariant) resolve(rideID string) (*RideInfo, error) {
	offer, err := v.offers.FindByID(rideID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Ride not found")
		}
		return nil, apperr.Internal("failed to load offer", err)
	}
	return &RideInfo{OwnerID: offer.DriverID, Meta: offer.Meta()}, nil
}

func (v *offerVariant) isParticipant(rideID, userID string) (bool, error) {
	return v.bookings.ExistsByOfferAndPassenger(rideID, userID)
}

type demandVariant struct {
	demands   repository.DemandRepository
	responses repository.DemandResponseRepository
}

func (v *demandVariant) resolve(rideID string) (*RideInfo, error) {
	demand, err := v.demands.FindByID(rideID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Ride not found")
		}
		return nil, apperr.Internal("failed to load demand", err)
	}
	return &RideInfo{OwnerID: demand.PassengerID, Meta: demand.Meta()}, nil
}

func (v *demandVariant) isParticipant(rideID, userID string) (bool, error) {
	return v.responses.ExistsByDemandAndDriver(rideID, userID)
}
