package service

import (
	"log"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"
)

// ConversationService derives the conversation list from the flat message
// table. No conversation row is ever stored; messages remain the single
// source of truth.
type ConversationService interface {
	GetConversationList(callerID string, page, limit int) ([]*model.Conversation, error)
}

type conversationService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	rides       RideResolver
}

func NewConversationService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	rides RideResolver,
) ConversationService {
	return &conversationService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		rides:       rides,
	}
}

// GetConversationList returns one entry per (ride, counterparty) pair the
// caller has exchanged messages with, newest activity first. A single ride
// can appear several times, once per counterparty.
func (s *conversationService) GetConversationList(callerID string, page, limit int) ([]*model.Conversation, error) {
	limit, offset := normalizePage(page, limit)

	heads, err := s.messageRepo.GetConversationHeads(callerID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to derive conversations", err)
	}

	conversations := make([]*model.Conversation, 0, len(heads))
	for _, head := range heads {
		ride := model.RideRef{Type: head.RideType, ID: head.RideID}

		conv := &model.Conversation{
			RideType:     head.RideType,
			RideID:       head.RideID,
			OtherUserID:  head.OtherUserID,
			UnreadCount:  head.UnreadCount,
			LastActivity: head.LastActivity,
		}

		last, err := s.messageRepo.GetLastBetween(ride, callerID, head.OtherUserID)
		if err != nil {
			log.Printf("Failed to load last message for ride %s/%s: %v", head.RideType, head.RideID, err)
		} else {
			conv.LastMessage = last
		}

		name, err := s.userRepo.GetDisplayName(head.OtherUserID)
		if err != nil {
			log.Printf("Failed to load display name for user %s: %v", head.OtherUserID, err)
		} else {
			conv.OtherUserName = name
		}

		// The conversation stays listed even when the ride record is gone.
		if info, err := s.rides.Resolve(ride); err == nil {
			conv.Ride = info.Meta
		}

		conversations = append(conversations, conv)
	}

	return conversations, nil
}
