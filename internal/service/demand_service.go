package service

import (
	"errors"
	"log"
	"time"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

type CreateDemandInput struct {
	Origin       string
	Destination  string
	EarliestTime time.Time
	LatestTime   time.Time
	Seats        int
	MaxPrice     float64
	Notes        *string
}

type DemandService interface {
	CreateDemand(passengerID string, input CreateDemandInput) (*model.Demand, error)
	GetDemand(id string) (*model.Demand, error)
	ListDemands(page, limit int) ([]*model.Demand, int64, error)
	ListMyDemands(passengerID string, page, limit int) ([]*model.Demand, error)
	CancelDemand(id, callerID string) error

	RespondToDemand(demandID, driverID string, message *string) (*model.DemandResponse, error)
	ListResponses(demandID, callerID string) ([]*model.DemandResponse, error)
}

type demandService struct {
	demandRepo    repository.DemandRepository
	responseRepo  repository.DemandResponseRepository
	userRepo      repository.UserRepository
	notifications NotificationService
}

func NewDemandService(
	demandRepo repository.DemandRepository,
	responseRepo repository.DemandResponseRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
) DemandService {
	return &demandService{
		demandRepo:    demandRepo,
		responseRepo:  responseRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *demandService) CreateDemand(passengerID string, input CreateDemandInput) (*model.Demand, error) {
	if input.Origin == "" || input.Destination == "" {
		return nil, apperr.InvalidInput("origin and destination are required")
	}
	if input.Seats < 1 {
		return nil, apperr.InvalidInput("at least one seat is required")
	}
	if input.LatestTime.Before(input.EarliestTime) {
		return nil, apperr.InvalidInput("latest time must be after earliest time")
	}

	demand := &model.Demand{
		PassengerID:  passengerID,
		Origin:       input.Origin,
		Destination:  input.Destination,
		EarliestTime: input.EarliestTime,
		LatestTime:   input.LatestTime,
		Seats:        input.Seats,
		MaxPrice:     input.MaxPrice,
		Status:       model.RideStatusActive,
		Notes:        input.Notes,
	}
	if err := s.demandRepo.Create(demand); err != nil {
		return nil, apperr.Internal("failed to create demand", err)
	}
	return s.GetDemand(demand.ID)
}

func (s *demandService) GetDemand(id string) (*model.Demand, error) {
	demand, err := s.demandRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Demand not found")
		}
		return nil, apperr.Internal("failed to load demand", err)
	}
	return demand, nil
}

func (s *demandService) ListDemands(page, limit int) ([]*model.Demand, int64, error) {
	limit, offset := normalizePage(page, limit)
	demands, total, err := s.demandRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list demands", err)
	}
	return demands, total, nil
}

func (s *demandService) ListMyDemands(passengerID string, page, limit int) ([]*model.Demand, error) {
	limit, offset := normalizePage(page, limit)
	demands, err := s.demandRepo.FindByPassengerID(passengerID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to list demands", err)
	}
	return demands, nil
}

func (s *demandService) CancelDemand(id, callerID string) error {
	demand, err := s.GetDemand(id)
	if err != nil {
		return err
	}
	if demand.PassengerID != callerID {
		return apperr.AccessDenied("only the passenger can cancel a demand")
	}
	if demand.Status == model.RideStatusCancelled {
		return nil
	}
	if err := s.demandRepo.UpdateStatus(id, model.RideStatusCancelled); err != nil {
		return apperr.Internal("failed to cancel demand", err)
	}
	return nil
}

func (s *demandService) RespondToDemand(demandID, driverID string, message *string) (*model.DemandResponse, error) {
	demand, err := s.GetDemand(demandID)
	if err != nil {
		return nil, err
	}
	if demand.PassengerID == driverID {
		return nil, apperr.PolicyViolation("cannot respond to your own demand")
	}
	if demand.Status != model.RideStatusActive {
		return nil, apperr.PolicyViolation("demand is no longer active")
	}

	exists, err := s.responseRepo.ExistsByDemandAndDriver(demandID, driverID)
	if err != nil {
		return nil, apperr.Internal("failed to check existing response", err)
	}
	if exists {
		return nil, apperr.PolicyViolation("you have already responded to this demand")
	}

	response := &model.DemandResponse{
		DemandID: demandID,
		DriverID: driverID,
		Message:  message,
		Status:   "pending",
	}
	if err := s.responseRepo.Create(response); err != nil {
		return nil, apperr.Internal("failed to create response", err)
	}

	if driverName, err := s.userRepo.GetDisplayName(driverID); err == nil {
		if err := s.notifications.CreateResponseNotification(demand.PassengerID, driverID, driverName, response.ID); err != nil {
			log.Printf("Failed to notify passenger %s of response: %v", demand.PassengerID, err)
		}
	}

	return s.responseRepo.FindByID(response.ID)
}

func (s *demandService) ListResponses(demandID, callerID string) ([]*model.DemandResponse, error) {
	demand, err := s.GetDemand(demandID)
	if err != nil {
		return nil, err
	}
	if demand.PassengerID != callerID {
		return nil, apperr.AccessDenied("only the passenger can view responses")
	}
	responses, err := s.responseRepo.FindByDemandID(demandID)
	if err != nil {
		return nil, apperr.Internal("failed to list responses", err)
	}
	return responses, nil
}
