package service

import (
	"errors"
	"fmt"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

type NotificationService interface {
	CreateMessageNotification(userID string, msg *model.Message) error
	CreateBookingNotification(userID, senderID, senderName, bookingID, notifType string) error
	CreateResponseNotification(userID, senderID, senderName, responseID string) error
	GetNotifications(userID string, page, limit int) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(notificationID, userID string) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo}
}

func (s *notificationService) create(userID, senderID, notifType, title, message, targetID string) error {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if senderID != "" {
		notification.SenderID = &senderID
	}
	if targetID != "" {
		notification.TargetID = &targetID
	}
	return s.notifRepo.Create(notification)
}

// CreateMessageNotification persists a notification for a recipient who had
// no live connection when a message arrived.
func (s *notificationService) CreateMessageNotification(userID string, msg *model.Message) error {
	preview := msg.Content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	title := fmt.Sprintf("New message from %s", msg.Sender.Name)
	return s.create(userID, msg.SenderID, model.NotificationTypeNewMessage, title, preview, msg.ID)
}

func (s *notificationService) CreateBookingNotification(userID, senderID, senderName, bookingID, notifType string) error {
	var title string
	switch notifType {
	case model.NotificationTypeBookingRequested:
		title = fmt.Sprintf("%s requested a booking on your offer", senderName)
	case model.NotificationTypeBookingConfirmed:
		title = fmt.Sprintf("%s confirmed your booking", senderName)
	case model.NotificationTypeBookingCancelled:
		title = fmt.Sprintf("%s cancelled a booking", senderName)
	default:
		title = "Booking update"
	}
	return s.create(userID, senderID, notifType, title, "", bookingID)
}

func (s *notificationService) CreateResponseNotification(userID, senderID, senderName, responseID string) error {
	title := fmt.Sprintf("%s responded to your ride request", senderName)
	return s.create(userID, senderID, model.NotificationTypeDemandResponse, title, "", responseID)
}

func (s *notificationService) GetNotifications(userID string, page, limit int) ([]*model.Notification, error) {
	limit, offset := normalizePage(page, limit)
	notifications, err := s.notifRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to load notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	count, err := s.notifRepo.CountUnreadByUserID(userID)
	if err != nil {
		return 0, apperr.Internal("failed to count notifications", err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.findOwned(notificationID, userID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	if err := s.notifRepo.MarkAsRead(notificationID); err != nil {
		return apperr.Internal("failed to mark notification as read", err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	if err := s.notifRepo.MarkAllAsRead(userID); err != nil {
		return apperr.Internal("failed to mark notifications as read", err)
	}
	return nil
}

func (s *notificationService) DeleteNotification(notificationID, userID string) error {
	if _, err := s.findOwned(notificationID, userID); err != nil {
		return err
	}
	if err := s.notifRepo.Delete(notificationID); err != nil {
		return apperr.Internal("failed to delete notification", err)
	}
	return nil
}

func (s *notificationService) findOwned(notificationID, userID string) (*model.Notification, error) {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Notification not found")
		}
		return nil, apperr.Internal("failed to load notification", err)
	}
	if notification.UserID != userID {
		return nil, apperr.NotFound("Notification not found")
	}
	return notification, nil
}
