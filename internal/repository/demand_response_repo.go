package repository

import (
	"ridelink/internal/model"

	"gorm.io/gorm"
)

type DemandResponseRepository interface {
	Create(response *model.DemandResponse) error
	FindByID(id string) (*model.DemandResponse, error)
	FindByDemandID(demandID string) ([]*model.DemandResponse, error)
	FindByDriverID(driverID string, limit, offset int) ([]*model.DemandResponse, error)
	ExistsByDemandAndDriver(demandID, driverID string) (bool, error)
	UpdateStatus(id, status string) error
}

type demandResponseRepository struct {
	db *gorm.DB
}

func NewDemandResponseRepository(db *gorm.DB) DemandResponseRepository {
	return &demandResponseRepository{db: db}
}

func (r *demandResponseRepository) Create(response *model.DemandResponse) error {
	return r.db.Create(response).Error
}

func (r *demandResponseRepository) FindByID(id string) (*model.DemandResponse, error) {
	var response model.DemandResponse
	err := r.db.Preload("Demand").Preload("Driver").Where("id = ?", id).First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *demandResponseRepository) FindByDemandID(demandID string) ([]*model.DemandResponse, error) {
	var responses []*model.DemandResponse
	err := r.db.Preload("Driver").
		Where("demand_id = ?", demandID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *demandResponseRepository) FindByDriverID(driverID string, limit, offset int) ([]*model.DemandResponse, error) {
	var responses []*model.DemandResponse
	err := r.db.Preload("Demand").Preload("Demand.Passenger").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ExistsByDemandAndDriver reports whether the driver has responded to the
// demand, regardless of status.
func (r *demandResponseRepository) ExistsByDemandAndDriver(demandID, driverID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.DemandResponse{}).
		Where("demand_id = ? AND driver_id = ?", demandID, driverID).
		Count(&count).Error
	return count > 0, err
}

func (r *demandResponseRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&model.DemandResponse{}).Where("id = ?", id).Update("status", status).Error
}
