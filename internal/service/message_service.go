package service

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

const (
	// editWindow bounds how long after creation the sender may edit a message.
	editWindow = 15 * time.Minute

	defaultMaxContentLength = 1000
	minContentLength        = 2
	maxRepeatedChars        = 10
	maxWhitespaceRun        = 4
)

type MessageService interface {
	SendMessage(ride model.RideRef, senderID, content string) (*model.Message, error)
	GetRideMessages(ride model.RideRef, callerID, otherUserID string, page, limit int) ([]*model.Message, error)
	EditMessage(messageID, callerID, newContent string) (*model.Message, error)
	DeleteMessage(messageID, callerID string, forEveryone bool) error
	DeleteConversation(ride model.RideRef, callerID string) (int64, error)
	MarkMessageRead(messageID, callerID string) (*model.Message, error)
	MarkConversationRead(ride model.RideRef, callerID string) (int64, error)
	GetUnreadCount(callerID string) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	access      AccessService
	notifier    DeliveryNotifier
	maxLength   int
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	access AccessService,
	notifier DeliveryNotifier,
	maxLength int,
) MessageService {
	if maxLength <= 0 {
		maxLength = defaultMaxContentLength
	}
	return &messageService{
		messageRepo: messageRepo,
		access:      access,
		notifier:    notifier,
		maxLength:   maxLength,
	}
}

// validateContent applies length bounds and spam heuristics to message text.
func (s *messageService) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < minContentLength {
		return "", apperr.InvalidInput("message must be at least 2 characters")
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return "", apperr.InvalidInput("message is too long")
	}

	var prev rune
	repeat := 0
	spaces := 0
	for _, r := range content {
		if r == prev {
			repeat++
			if repeat > maxRepeatedChars {
				return "", apperr.InvalidInput("message contains excessive character repetition")
			}
		} else {
			prev = r
			repeat = 1
		}
		if unicode.IsSpace(r) {
			spaces++
			if spaces > maxWhitespaceRun {
				return "", apperr.InvalidInput("message contains excessive whitespace")
			}
		} else {
			spaces = 0
		}
	}

	return content, nil
}

// SendMessage validates, resolves the receiver, persists, and dispatches
// delivery asynchronously. The send succeeds or fails on persistence alone;
// delivery is best-effort.
func (s *messageService) SendMessage(ride model.RideRef, senderID, content string) (*model.Message, error) {
	content, err := s.validateContent(content)
	if err != nil {
		return nil, err
	}

	receiverID, _, err := s.access.ResolveReceiver(ride, senderID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		RideType:   ride.Type,
		RideID:     ride.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil, apperr.Internal("failed to save message", err)
	}

	stored, err := s.messageRepo.FindByID(msg.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load saved message", err)
	}

	go s.notifier.NewMessage(receiverID, stored)

	return stored, nil
}

// GetRideMessages returns the two-party thread between the caller and
// otherUserID. Without a counterparty the result is empty rather than the
// whole ride, which would leak other users' threads.
func (s *messageService) GetRideMessages(ride model.RideRef, callerID, otherUserID string, page, limit int) ([]*model.Message, error) {
	if _, err := s.access.CanAccess(ride, callerID); err != nil {
		return nil, err
	}

	if otherUserID == "" {
		return []*model.Message{}, nil
	}

	limit, offset := normalizePage(page, limit)
	messages, err := s.messageRepo.GetByRideStrict(ride, callerID, otherUserID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to load messages", err)
	}
	return messages, nil
}

func (s *messageService) EditMessage(messageID, callerID, newContent string) (*model.Message, error) {
	msg, err := s.findVisible(messageID, callerID)
	if err != nil {
		return nil, err
	}

	if msg.SenderID != callerID {
		return nil, apperr.AccessDenied("only the sender can edit a message")
	}
	if time.Since(msg.CreatedAt) > editWindow {
		return nil, apperr.PolicyViolation("edit window has expired")
	}

	content, err := s.validateContent(newContent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg.Content = content
	msg.EditedAt = &now
	if err := s.messageRepo.Update(msg); err != nil {
		return nil, apperr.Internal("failed to update message", err)
	}

	go s.notifier.MessageEdited(msg.ReceiverID, msg)

	return msg, nil
}

func (s *messageService) DeleteMessage(messageID, callerID string, forEveryone bool) error {
	// Deliberately not findVisible: deleting an already-hidden message must
	// stay a no-op instead of turning into an error.
	msg, err := s.findWithStanding(messageID, callerID)
	if err != nil {
		return err
	}
	if msg.DeletedForAll {
		return nil
	}

	if forEveryone {
		if msg.SenderID != callerID {
			return apperr.PolicyViolation("only the sender can delete a message for everyone")
		}
		msg.DeletedForAll = true
		if err := s.messageRepo.Update(msg); err != nil {
			return apperr.Internal("failed to delete message", err)
		}
		go s.notifier.MessageDeleted(msg.ReceiverID, msg.ID, msg.Ride())
		return nil
	}

	// Per-viewer delete; a repeat call is a no-op.
	if !msg.MarkDeletedFor(callerID) {
		return nil
	}
	if err := s.messageRepo.Update(msg); err != nil {
		return apperr.Internal("failed to delete message", err)
	}
	return nil
}

func (s *messageService) DeleteConversation(ride model.RideRef, callerID string) (int64, error) {
	if _, err := s.access.CanAccess(ride, callerID); err != nil {
		return 0, err
	}

	count, err := s.messageRepo.SoftDeleteConversation(ride, callerID)
	if err != nil {
		return 0, apperr.Internal("failed to delete conversation", err)
	}
	return count, nil
}

func (s *messageService) MarkMessageRead(messageID, callerID string) (*model.Message, error) {
	msg, err := s.findVisible(messageID, callerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.CanAccess(msg.Ride(), callerID); err != nil {
		return nil, err
	}
	if msg.ReceiverID != callerID {
		return nil, apperr.AccessDenied("only the recipient can mark a message as read")
	}

	// Read state only moves forward.
	if msg.IsRead {
		return msg, nil
	}

	if err := s.messageRepo.MarkAsRead(messageID, callerID); err != nil {
		return nil, apperr.Internal("failed to mark message as read", err)
	}

	updated, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, apperr.Internal("failed to load message", err)
	}

	go s.notifier.MessageRead(updated.SenderID, updated.ID, callerID)

	return updated, nil
}

// MarkConversationRead marks everything unread addressed to the caller on the
// ride, matching the observed contract of the original API: the bulk update
// spans all counterparties on the ride, not just the thread being viewed.
func (s *messageService) MarkConversationRead(ride model.RideRef, callerID string) (int64, error) {
	if _, err := s.access.CanAccess(ride, callerID); err != nil {
		return 0, err
	}

	count, err := s.messageRepo.MarkConversationAsRead(ride, callerID)
	if err != nil {
		return 0, apperr.Internal("failed to mark conversation as read", err)
	}
	return count, nil
}

func (s *messageService) GetUnreadCount(callerID string) (int64, error) {
	count, err := s.messageRepo.GetUnreadCount(callerID)
	if err != nil {
		return 0, apperr.Internal("failed to count unread messages", err)
	}
	return count, nil
}

// findWithStanding loads a message for a caller who is its sender or
// receiver; anyone else gets NotFound.
func (s *messageService) findWithStanding(messageID, callerID string) (*model.Message, error) {
	msg, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Message not found")
		}
		return nil, apperr.Internal("failed to load message", err)
	}
	if msg.SenderID != callerID && msg.ReceiverID != callerID {
		return nil, apperr.NotFound("Message not found")
	}
	return msg, nil
}

// findVisible additionally hides messages deleted for the caller.
func (s *messageService) findVisible(messageID, callerID string) (*model.Message, error) {
	msg, err := s.findWithStanding(messageID, callerID)
	if err != nil {
		return nil, err
	}
	if msg.IsDeletedFor(callerID) {
		return nil, apperr.NotFound("Message not found")
	}
	return msg, nil
}

// normalizePage converts 1-based page/limit into limit/offset with bounds.
func normalizePage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}
