package service

import (
	"errors"
	"log"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

type BookingService interface {
	CreateBooking(offerID, passengerID string, seats int) (*model.Booking, error)
	GetBooking(id, callerID string) (*model.Booking, error)
	ListMyBookings(passengerID string, page, limit int) ([]*model.Booking, error)
	ListOfferBookings(offerID, callerID string) ([]*model.Booking, error)
	ConfirmBooking(id, callerID string) error
	CancelBooking(id, callerID string) error
}

type bookingService struct {
	bookingRepo   repository.BookingRepository
	offerRepo     repository.OfferRepository
	userRepo      repository.UserRepository
	notifications NotificationService
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		offerRepo:     offerRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *bookingService) CreateBooking(offerID, passengerID string, seats int) (*model.Booking, error) {
	if seats < 1 {
		return nil, apperr.InvalidInput("at least one seat is required")
	}

	offer, err := s.offerRepo.FindByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Offer not found")
		}
		return nil, apperr.Internal("failed to load offer", err)
	}

	if offer.DriverID == passengerID {
		return nil, apperr.PolicyViolation("cannot book your own offer")
	}
	if offer.Status != model.RideStatusActive {
		return nil, apperr.PolicyViolation("offer is no longer active")
	}
	if seats > offer.Seats {
		return nil, apperr.PolicyViolation("not enough seats available")
	}

	booking := &model.Booking{
		OfferID:     offerID,
		PassengerID: passengerID,
		Seats:       seats,
		Status:      model.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, apperr.Internal("failed to create booking", err)
	}

	if passengerName, err := s.userRepo.GetDisplayName(passengerID); err == nil {
		if err := s.notifications.CreateBookingNotification(
			offer.DriverID, passengerID, passengerName, booking.ID, model.NotificationTypeBookingRequested,
		); err != nil {
			log.Printf("Failed to notify driver %s of booking: %v", offer.DriverID, err)
		}
	}

	return s.bookingRepo.FindByID(booking.ID)
}

func (s *bookingService) GetBooking(id, callerID string) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Booking not found")
		}
		return nil, apperr.Internal("failed to load booking", err)
	}
	if booking.PassengerID != callerID && booking.Offer.DriverID != callerID {
		return nil, apperr.NotFound("Booking not found")
	}
	return booking, nil
}

func (s *bookingService) ListMyBookings(passengerID string, page, limit int) ([]*model.Booking, error) {
	limit, offset := normalizePage(page, limit)
	bookings, err := s.bookingRepo.FindByPassengerID(passengerID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListOfferBookings(offerID, callerID string) ([]*model.Booking, error) {
	offer, err := s.offerRepo.FindByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Offer not found")
		}
		return nil, apperr.Internal("failed to load offer", err)
	}
	if offer.DriverID != callerID {
		return nil, apperr.AccessDenied("only the driver can view bookings")
	}
	bookings, err := s.bookingRepo.FindByOfferID(offerID)
	if err != nil {
		return nil, apperr.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ConfirmBooking(id, callerID string) error {
	booking, err := s.GetBooking(id, callerID)
	if err != nil {
		return err
	}
	if booking.Offer.DriverID != callerID {
		return apperr.AccessDenied("only the driver can confirm a booking")
	}
	if booking.Status != model.BookingStatusPending {
		return apperr.PolicyViolation("booking is not pending")
	}
	if err := s.bookingRepo.UpdateStatus(id, model.BookingStatusConfirmed); err != nil {
		return apperr.Internal("failed to confirm booking", err)
	}

	if driverName, err := s.userRepo.GetDisplayName(callerID); err == nil {
		if err := s.notifications.CreateBookingNotification(
			booking.PassengerID, callerID, driverName, booking.ID, model.NotificationTypeBookingConfirmed,
		); err != nil {
			log.Printf("Failed to notify passenger %s of confirmation: %v", booking.PassengerID, err)
		}
	}

	return nil
}

func (s *bookingService) CancelBooking(id, callerID string) error {
	booking, err := s.GetBooking(id, callerID)
	if err != nil {
		return err
	}
	if booking.PassengerID != callerID && booking.Offer.DriverID != callerID {
		return apperr.AccessDenied("not your booking")
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil
	}
	if err := s.bookingRepo.UpdateStatus(id, model.BookingStatusCancelled); err != nil {
		return apperr.Internal("failed to cancel booking", err)
	}

	// Notify the other party
	recipient := booking.Offer.DriverID
	if callerID == booking.Offer.DriverID {
		recipient = booking.PassengerID
	}
	if callerName, err := s.userRepo.GetDisplayName(callerID); err == nil {
		if err := s.notifications.CreateBookingNotification(
			recipient, callerID, callerName, booking.ID, model.NotificationTypeBookingCancelled,
		); err != nil {
			log.Printf("Failed to notify user %s of cancellation: %v", recipient, err)
		}
	}

	return nil
}
