package service

import (
	"errors"
	"time"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

type CreateOfferInput struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	Seats         int
	PricePerSeat  float64
	Notes         *string
}

type OfferService interface {
	CreateOffer(driverID string, input CreateOfferInput) (*model.Offer, error)
	GetOffer(id string) (*model.Offer, error)
	ListOffers(page, limit int) ([]*model.Offer, int64, error)
	ListMyOffers(driverID string, page, limit int) ([]*model.Offer, error)
	CancelOffer(id, callerID string) error
}

type offerService struct {
	offerRepo repository.OfferRepository
}

func NewOfferService(offerRepo repository.OfferRepository) OfferService {
	return &offerService{offerRepo: offerRepo}
}

func (s *offerService) CreateOffer(driverID string, input CreateOfferInput) (*model.Offer, error) {
	if input.Origin == "" || input.Destination == "" {
		return nil, apperr.InvalidInput("origin and destination are required")
	}
	if input.Seats < 1 {
		return nil, apperr.InvalidInput("at least one seat is required")
	}
	if input.PricePerSeat < 0 {
		return nil, apperr.InvalidInput("price cannot be negative")
	}
	if input.DepartureTime.Before(time.Now()) {
		return nil, apperr.InvalidInput("departure time must be in the future")
	}

	offer := &model.Offer{
		DriverID:      driverID,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureTime: input.DepartureTime,
		Seats:         input.Seats,
		PricePerSeat:  input.PricePerSeat,
		Status:        model.RideStatusActive,
		Notes:         input.Notes,
	}
	if err := s.offerRepo.Create(offer); err != nil {
		return nil, apperr.Internal("failed to create offer", err)
	}
	return s.GetOffer(offer.ID)
}

func (s *offerService) GetOffer(id string) (*model.Offer, error) {
	offer, err := s.offerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Offer not found")
		}
		return nil, apperr.Internal("failed to load offer", err)
	}
	return offer, nil
}

func (s *offerService) ListOffers(page, limit int) ([]*model.Offer, int64, error) {
	limit, offset := normalizePage(page, limit)
	offers, total, err := s.offerRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list offers", err)
	}
	return offers, total, nil
}

func (s *offerService) ListMyOffers(driverID string, page, limit int) ([]*model.Offer, error) {
	limit, offset := normalizePage(page, limit)
	offers, err := s.offerRepo.FindByDriverID(driverID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to list offers", err)
	}
	return offers, nil
}

func (s *offerService) CancelOffer(id, callerID string) error {
	offer, err := s.GetOffer(id)
	if err != nil {
		return err
	}
	if offer.DriverID != callerID {
		return apperr.AccessDenied("only the driver can cancel an offer")
	}
	if offer.Status == model.RideStatusCancelled {
		return nil
	}
	if err := s.offerRepo.UpdateStatus(id, model.RideStatusCancelled); err != nil {
		return apperr.Internal("failed to cancel offer", err)
	}
	return nil
}
