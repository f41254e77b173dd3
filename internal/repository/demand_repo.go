package repository

import (
	"ridelink/internal/model"

	"gorm.io/gorm"
)

type DemandRepository interface {
	Create(demand *model.Demand) error
	FindByID(id string) (*model.Demand, error)
	FindAll(limit, offset int) ([]*model.Demand, int64, error)
	FindByPassengerID(passengerID string, limit, offset int) ([]*model.Demand, error)
	Update(demand *model.Demand) error
	UpdateStatus(id, status string) error
}

type demandRepository struct {
	db *gorm.DB
}

func NewDemandRepository(db *gorm.DB) DemandRepository {
	return &demandRepository{db: db}
}

func (r *demandRepository) Create(demand *model.Demand) error {
	return r.db.Create(demand).Error
}

func (r *demandRepository) FindByID(id string) (*model.Demand, error) {
	var demand model.Demand
	err := r.db.Preload("Passenger").Where("id = ?", id).First(&demand).Error
	if err != nil {
		return nil, err
	}
	return &demand, nil
}

func (r *demandRepository) FindAll(limit, offset int) ([]*model.Demand, int64, error) {
	var demands []*model.Demand
	var total int64

	if err := r.db.Model(&model.Demand{}).Where("status = ?", model.RideStatusActive).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Passenger").
		Where("status = ?", model.RideStatusActive).
		Order("earliest_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&demands).Error
	if err != nil {
		return nil, 0, err
	}
	return demands, total, nil
}

func (r *demandRepository) FindByPassengerID(passengerID string, limit, offset int) ([]*model.Demand, error) {
	var demands []*model.Demand
	err := r.db.Where("passenger_id = ?", passengerID).
		Order("earliest_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&demands).Error
	if err != nil {
		return nil, err
	}
	return demands, nil
}

func (r *demandRepository) Update(demand *model.Demand) error {
	return r.db.Save(demand).Error
}

func (r *demandRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&model.Demand{}).Where("id = ?", id).Update("status", status).Error
}
