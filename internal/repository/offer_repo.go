package repository

import (
	"ridelink/internal/model"

	"gorm.io/gorm"
)

type OfferRepository interface {
	Create(offer *model.Offer) error
	FindByID(id string) (*model.Offer, error)
	FindAll(limit, offset int) ([]*model.Offer, int64, error)
	FindByDriverID(driverID string, limit, offset int) ([]*model.Offer, error)
	Update(offer *model.Offer) error
	UpdateStatus(id, status string) error
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(offer *model.Offer) error {
	return r.db.Create(offer).Error
}

func (r *offerRepository) FindByID(id string) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.Preload("Driver").Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) FindAll(limit, offset int) ([]*model.Offer, int64, error) {
	var offers []*model.Offer
	var total int64

	if err := r.db.Model(&model.Offer{}).Where("status = ?", model.RideStatusActive).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Driver").
		Where("status = ?", model.RideStatusActive).
		Order("departure_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&offers).Error
	if err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

func (r *offerRepository) FindByDriverID(driverID string, limit, offset int) ([]*model.Offer, error) {
	var offers []*model.Offer
	err := r.db.Where("driver_id = ?", driverID).
		Order("departure_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) Update(offer *model.Offer) error {
	return r.db.Save(offer).Error
}

func (r *offerRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&model.Offer{}).Where("id = ?", id).Update("status", status).Error
}
