package repository

import (
	"ridelink/internal/model"

	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(booking *model.Booking) error
	FindByID(id string) (*model.Booking, error)
	FindByOfferID(offerID string) ([]*model.Booking, error)
	FindByPassengerID(passengerID string, limit, offset int) ([]*model.Booking, error)
	ExistsByOfferAndPassenger(offerID, passengerID string) (bool, error)
	UpdateStatus(id, status string) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(booking *model.Booking) error {
	return r.db.Create(booking).Error
}

func (r *bookingRepository) FindByID(id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.Preload("Offer").Preload("Passenger").Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByOfferID(offerID string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.Preload("Passenger").
		Where("offer_id = ?", offerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByPassengerID(passengerID string, limit, offset int) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.Preload("Offer").Preload("Offer.Driver").
		Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ExistsByOfferAndPassenger reports whether the passenger has any booking on
// the offer, regardless of status. Cancelled bookings still count for
// messaging access.
func (r *bookingRepository) ExistsByOfferAndPassenger(offerID, passengerID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Booking{}).
		Where("offer_id = ? AND passenger_id = ?", offerID, passengerID).
		Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&model.Booking{}).Where("id = ?", id).Update("status", status).Error
}
