package service

import (
	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"
)

// AccessService decides who may read or write messages on a ride, and
// resolves the receiver for outbound messages.
type AccessService interface {
	// CanAccess returns the ride info when the user may participate in its
	// message threads. A missing ride and a ride the user has no standing
	// relationship to produce the same NotFound error, so existence is not
	// leaked to strangers.
	CanAccess(ride model.RideRef, userID string) (*RideInfo, error)

	// ResolveReceiver determines who an outbound message is addressed to.
	// Non-owners always message the owner. The owner messages whoever wrote
	// last on the thread; with no prior counterparty the send is rejected.
	ResolveReceiver(ride model.RideRef, senderID string) (string, *RideInfo, error)
}

type accessService struct {
	rides    RideResolver
	messages repository.MessageRepository
}

func NewAccessService(rides RideResolver, messages repository.MessageRepository) AccessService {
	return &accessService{
		rides:    rides,
		messages: messages,
	}
}

func (s *accessService) CanAccess(ride model.RideRef, userID string) (*RideInfo, error) {
	info, err := s.rides.Resolve(ride)
	if err != nil {
		return nil, err
	}

	if info.OwnerID == userID {
		return info, nil
	}

	participant, err := s.rides.IsParticipant(ride, userID)
	if err != nil {
		return nil, apperr.Internal("failed to check participation", err)
	}
	if participant {
		return info, nil
	}

	// Prior message history keeps a thread accessible after a booking or
	// response is cancelled.
	messaged, err := s.messages.HasParticipated(ride, userID)
	if err != nil {
		return nil, apperr.Internal("failed to check message history", err)
	}
	if messaged {
		return info, nil
	}

	return nil, apperr.NotFound("Ride not found")
}

func (s *accessService) ResolveReceiver(ride model.RideRef, senderID string) (string, *RideInfo, error) {
	info, err := s.CanAccess(ride, senderID)
	if err != nil {
		return "", nil, err
	}

	if senderID != info.OwnerID {
		return info.OwnerID, info, nil
	}

	// The owner can reply to many independent counterparties; route to
	// whoever wrote on this ride most recently.
	counterpart, err := s.messages.LatestCounterpartSender(ride, senderID)
	if err != nil {
		return "", nil, apperr.Internal("failed to resolve counterparty", err)
	}
	if counterpart == "" {
		return "", nil, apperr.PolicyViolation("no one has messaged on this ride yet")
	}
	return counterpart, info, nil
}
