package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
	"ridelink/internal/repository"

	"gorm.io/gorm"
)

// fakeMessageRepo is an in-memory MessageRepository mirroring the semantics
// of the SQL implementation closely enough for service-level tests.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
	seq      int
	now      time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	// Anchored near the real clock because edit-window checks use time.Since.
	return &fakeMessageRepo{now: time.Now().Add(-time.Minute)}
}

// tick advances the fake clock so created messages get distinct timestamps.
func (r *fakeMessageRepo) tick() time.Time {
	r.now = r.now.Add(time.Second)
	return r.now
}

func (r *fakeMessageRepo) Create(msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.tick()
	}
	if msg.DeletedForUserIDs == "" {
		msg.DeletedForUserIDs = "[]"
	}
	stored := *msg
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *fakeMessageRepo) FindByID(id string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func sameRide(m *model.Message, ride model.RideRef) bool {
	return m.RideType == ride.Type && m.RideID == ride.ID
}

func (r *fakeMessageRepo) GetByRideStrict(ride model.RideRef, userID, otherUserID string, limit, offset int) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Message
	for _, m := range r.messages {
		if !sameRide(m, ride) {
			continue
		}
		pair := (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID)
		if !pair || m.DeletedForAll || m.IsDeletedFor(userID) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*model.Message{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) GetLastBetween(ride model.RideRef, userID, otherUserID string) (*model.Message, error) {
	msgs, err := r.GetByRideStrict(ride, userID, otherUserID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (r *fakeMessageRepo) HasParticipated(ride model.RideRef, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if sameRide(m, ride) && (m.SenderID == userID || m.ReceiverID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMessageRepo) LatestCounterpartSender(ride model.RideRef, ownerID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Message
	for _, m := range r.messages {
		if !sameRide(m, ride) || m.SenderID == ownerID {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.SenderID, nil
}

func (r *fakeMessageRepo) Update(msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == msg.ID {
			cp := *msg
			r.messages[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) MarkAsRead(messageID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID {
			now := r.tick()
			m.IsRead = true
			m.ReadAt = &now
			m.ReadBy = &readerID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) MarkConversationAsRead(ride model.RideRef, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	now := r.tick()
	for _, m := range r.messages {
		if sameRide(m, ride) && m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			m.ReadBy = &readerID
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) GetUnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.IsRead && !m.DeletedForAll && !m.IsDeletedFor(userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) GetConversationHeads(userID string, limit, offset int) ([]*repository.ConversationHead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type key struct {
		rideType model.RideType
		rideID   string
		other    string
	}
	heads := map[key]*repository.ConversationHead{}
	for _, m := range r.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		if m.DeletedForAll || m.IsDeletedFor(userID) {
			continue
		}
		other := m.SenderID
		if m.SenderID == userID {
			other = m.ReceiverID
		}
		k := key{m.RideType, m.RideID, other}
		h, ok := heads[k]
		if !ok {
			h = &repository.ConversationHead{
				RideType:    m.RideType,
				RideID:      m.RideID,
				OtherUserID: other,
			}
			heads[k] = h
		}
		if m.CreatedAt.After(h.LastActivity) {
			h.LastActivity = m.CreatedAt
		}
		if m.ReceiverID == userID && !m.IsRead {
			h.UnreadCount++
		}
	}
	out := make([]*repository.ConversationHead, 0, len(heads))
	for _, h := range heads {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	if offset >= len(out) {
		return []*repository.ConversationHead{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) SoftDeleteConversation(ride model.RideRef, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if !sameRide(m, ride) {
			continue
		}
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		if m.MarkDeletedFor(userID) {
			count++
		}
	}
	return count, nil
}

// fakeRideResolver serves a fixed set of rides with owner and participant data.
type fakeRideResolver struct {
	rides        map[model.RideRef]*RideInfo
	participants map[model.RideRef][]string
}

func newFakeRideResolver() *fakeRideResolver {
	return &fakeRideResolver{
		rides:        map[model.RideRef]*RideInfo{},
		participants: map[model.RideRef][]string{},
	}
}

func (f *fakeRideResolver) addRide(ride model.RideRef, ownerID string, participants ...string) {
	f.rides[ride] = &RideInfo{OwnerID: ownerID, Meta: &model.RideMeta{Origin: "A", Destination: "B", Status: "active"}}
	f.participants[ride] = participants
}

func (f *fakeRideResolver) Resolve(ride model.RideRef) (*RideInfo, error) {
	info, ok := f.rides[ride]
	if !ok {
		return nil, apperr.NotFound("Ride not found")
	}
	return info, nil
}

func (f *fakeRideResolver) IsParticipant(ride model.RideRef, userID string) (bool, error) {
	for _, p := range f.participants[ride] {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

// fakeNotifier records delivery calls; SendMessage dispatches asynchronously
// so it is mutex-guarded even though most tests never read it.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) record(ev string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeNotifier) NewMessage(recipientID string, msg *model.Message) {
	f.record("new:" + recipientID)
}

func (f *fakeNotifier) MessageEdited(recipientID string, msg *model.Message) {
	f.record("edited:" + recipientID)
}

func (f *fakeNotifier) MessageDeleted(recipientID, messageID string, ride model.RideRef) {
	f.record("deleted:" + recipientID)
}

func (f *fakeNotifier) MessageRead(recipientID, messageID, readerID string) {
	f.record("read:" + recipientID)
}

// fakeUserRepo implements the slice of UserRepository the conversation
// service touches.
type fakeUserRepo struct {
	names map[string]string
}

func (f *fakeUserRepo) Create(user *model.User) error                  { return nil }
func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error)  { return nil, gorm.ErrRecordNotFound }
func (f *fakeUserRepo) Update(user *model.User) error                  { return nil }
func (f *fakeUserRepo) UpdateAvatar(userID, avatarURL string) error    { return nil }
func (f *fakeUserRepo) UpdateLastLogin(userID string) error            { return nil }
func (f *fakeUserRepo) SearchUsers(keyword string, limit, offset int) ([]model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) FindByID(id string) (*model.User, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.User{ID: id, Name: name}, nil
}

func (f *fakeUserRepo) GetDisplayName(userID string) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return name, nil
}
