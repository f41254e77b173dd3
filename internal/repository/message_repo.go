package repository

import (
	"encoding/json"
	"strconv"
	"time"

	"ridelink/internal/model"
	"ridelink/internal/util"

	"gorm.io/gorm"
)

// ConversationHead is one row of the grouped conversation query: a
// (ride, counterparty) pair with its activity summary. The caller joins in
// the last message and display data afterwards.
type ConversationHead struct {
	RideType     model.RideType `gorm:"column:ride_type"`
	RideID       string         `gorm:"column:ride_id"`
	OtherUserID  string         `gorm:"column:other_user_id"`
	UnreadCount  int64          `gorm:"column:unread_count"`
	LastActivity time.Time      `gorm:"column:last_activity"`
}

type MessageRepository interface {
	Create(msg *model.Message) error
	FindByID(id string) (*model.Message, error)
	GetByRideStrict(ride model.RideRef, userID, otherUserID string, limit, offset int) ([]*model.Message, error)
	GetLastBetween(ride model.RideRef, userID, otherUserID string) (*model.Message, error)
	HasParticipated(ride model.RideRef, userID string) (bool, error)
	LatestCounterpartSender(ride model.RideRef, ownerID string) (string, error)
	Update(msg *model.Message) error
	MarkAsRead(messageID, readerID string) error
	MarkConversationAsRead(ride model.RideRef, readerID string) (int64, error)
	GetUnreadCount(userID string) (int64, error)
	GetConversationHeads(userID string, limit, offset int) ([]*ConversationHead, error)
	SoftDeleteConversation(ride model.RideRef, userID string) (int64, error)
}

type messageRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	unreadCountCachePrefix = "messages:unread:"
	unreadCountCacheTTL    = 5 * time.Minute
)

func NewMessageRepository(db *gorm.DB, redis *util.RedisClient) MessageRepository {
	return &messageRepository{
		db:    db,
		redis: redis,
	}
}

// deletedForJSON renders a single-element JSON array for jsonb containment
// checks against deleted_for_user_ids.
func deletedForJSON(userID string) string {
	data, _ := json.Marshal([]string{userID})
	return string(data)
}

func (r *messageRepository) Create(msg *model.Message) error {
	if msg.DeletedForUserIDs == "" {
		msg.DeletedForUserIDs = "[]"
	}
	if err := r.db.Create(msg).Error; err != nil {
		return err
	}
	r.invalidateUnreadCache(msg.ReceiverID)
	return nil
}

func (r *messageRepository) FindByID(id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.Preload("Sender").Preload("Receiver").Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetByRideStrict returns the two-party thread between userID and otherUserID
// on the given ride, oldest first. Messages exchanged with anyone else on the
// same ride are never included, and neither are messages deleted for the
// caller or for everyone.
func (r *messageRepository) GetByRideStrict(ride model.RideRef, userID, otherUserID string, limit, offset int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Preload("Sender").
		Where("ride_type = ? AND ride_id = ?", ride.Type, ride.ID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Where("deleted_for_all = ?", false).
		Where("NOT (deleted_for_user_ids @> CAST(? AS jsonb))", deletedForJSON(userID)).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastBetween returns the latest message of the two-party thread, or nil
// when none exists in the caller's view.
func (r *messageRepository) GetLastBetween(ride model.RideRef, userID, otherUserID string) (*model.Message, error) {
	var messages []*model.Message
	err := r.db.Preload("Sender").
		Where("ride_type = ? AND ride_id = ?", ride.Type, ride.ID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Where("deleted_for_all = ?", false).
		Where("NOT (deleted_for_user_ids @> CAST(? AS jsonb))", deletedForJSON(userID)).
		Order("created_at DESC").
		Limit(1).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// HasParticipated reports whether the user has ever sent or received a
// message on the ride. Used to bootstrap access after a booking is cancelled.
func (r *messageRepository) HasParticipated(ride model.RideRef, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("ride_type = ? AND ride_id = ?", ride.Type, ride.ID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Count(&count).Error
	return count > 0, err
}

// LatestCounterpartSender returns the sender of the most recent message on
// the ride not sent by the owner, or "" when no counterparty has written yet.
func (r *messageRepository) LatestCounterpartSender(ride model.RideRef, ownerID string) (string, error) {
	var msg model.Message
	err := r.db.Select("sender_id").
		Where("ride_type = ? AND ride_id = ?", ride.Type, ride.ID).
		Where("sender_id <> ?", ownerID).
		Where("deleted_for_all = ?", false).
		Order("created_at DESC").
		First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return msg.SenderID, nil
}

func (r *messageRepository) Update(msg *model.Message) error {
	if err := r.db.Save(msg).Error; err != nil {
		return err
	}
	r.invalidateUnreadCache(msg.ReceiverID)
	return nil
}

func (r *messageRepository) MarkAsRead(messageID, readerID string) error {
	now := time.Now()
	err := r.db.Model(&model.Message{}).
		Where("id = ? AND is_read = ?", messageID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
			"read_by": readerID,
		}).Error
	if err != nil {
		return err
	}
	r.invalidateUnreadCache(readerID)
	return nil
}

// MarkConversationAsRead bulk-marks everything unread addressed to the reader
// on the ride, across all counterparties, and returns the number of rows
// updated.
func (r *messageRepository) MarkConversationAsRead(ride model.RideRef, readerID string) (int64, error) {
	now := time.Now()
	res := r.db.Model(&model.Message{}).
		Where("ride_type = ? AND ride_id = ?", ride.Type, ride.ID).
		Where("receiver_id = ? AND is_read = ?", readerID, false).
		Where("deleted_for_all = ?", false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
			"read_by": readerID,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	r.invalidateUnreadCache(readerID)
	return res.RowsAffected, nil
}

// GetUnreadCount counts unread messages addressed to the user. Receiver IDs
// are resolved at send time, so a single indexed count covers every ride the
// user participates in.
func (r *messageRepository) GetUnreadCount(userID string) (int64, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.redis.Get(unreadCountCachePrefix + userID)
		if err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Where("deleted_for_all = ?", false).
		Where("NOT (deleted_for_user_ids @> CAST(? AS jsonb))", deletedForJSON(userID)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	// Cache the result
	if r.redis != nil {
		_ = r.redis.Set(unreadCountCachePrefix+userID, strconv.FormatInt(count, 10), unreadCountCacheTTL)
	}

	return count, nil
}

// GetConversationHeads groups the flat message table into derived
// conversations for the user: one row per (ride, counterparty) pair with at
// least one visible message, newest activity first.
func (r *messageRepository) GetConversationHeads(userID string, limit, offset int) ([]*ConversationHead, error) {
	var heads []*ConversationHead
	query := `
		SELECT ride_type, ride_id, other_user_id,
		       MAX(created_at) AS last_activity,
		       COUNT(*) FILTER (WHERE receiver_id = ? AND is_read = false) AS unread_count
		FROM (
			SELECT *, CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS other_user_id
			FROM messages
			WHERE (sender_id = ? OR receiver_id = ?)
			  AND deleted_for_all = false
			  AND NOT (deleted_for_user_ids @> CAST(? AS jsonb))
		) t
		GROUP BY ride_type, ride_id, other_user_id
		ORDER BY last_activity DESC
		LIMIT ? OFFSET ?
	`
	err := r.db.Raw(query,
		userID, userID, userID, userID, deletedForJSON(userID), limit, offset,
	).Scan(&heads).Error
	if err != nil {
		return nil, err
	}
	return heads, nil
}

// SoftDeleteConversation appends the user to the exclusion list of every
// message in their view of the ride thread. Already-excluded messages are
// left untouched, so repeated calls are no-ops.
func (r *messageRepository) SoftDeleteConversation(ride model.RideRef, userID string) (int64, error) {
	res := r.db.Exec(`
		UPDATE messages
		SET deleted_for_user_ids = deleted_for_user_ids || CAST(? AS jsonb)
		WHERE ride_type = ? AND ride_id = ?
		  AND (sender_id = ? OR receiver_id = ?)
		  AND deleted_for_all = false
		  AND NOT (deleted_for_user_ids @> CAST(? AS jsonb))
	`, deletedForJSON(userID), ride.Type, ride.ID, userID, userID, deletedForJSON(userID))
	if res.Error != nil {
		return 0, res.Error
	}
	r.invalidateUnreadCache(userID)
	return res.RowsAffected, nil
}

func (r *messageRepository) invalidateUnreadCache(userID string) {
	if r.redis != nil {
		_ = r.redis.Delete(unreadCountCachePrefix + userID)
	}
}
