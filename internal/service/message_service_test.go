package service

import (
	"strings"
	"testing"
	"time"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
)

func newTestMessageService(rides *fakeRideResolver, repo *fakeMessageRepo) MessageService {
	access := NewAccessService(rides, repo)
	return NewMessageService(repo, access, &fakeNotifier{}, 0)
}

func offerRide(id string) model.RideRef {
	return model.RideRef{Type: model.RideTypeOffer, ID: id}
}

func TestMessageService_ValidateContent(t *testing.T) {
	rides := newFakeRideResolver()
	ride := offerRide("offer-1")
	rides.addRide(ride, "driver", "alice")
	svc := newTestMessageService(rides, newFakeMessageRepo())

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "normal message", content: "Is the seat still free?", wantErr: false},
		{name: "trimmed to valid", content: "  ok  ", wantErr: false},
		{name: "too short", content: "a", wantErr: true},
		{name: "whitespace only", content: "      ", wantErr: true},
		{name: "too long", content: strings.Repeat("word ", 300), wantErr: true},
		{name: "excessive repetition", content: "aaaaaaaaaaaaaaaa", wantErr: true},
		{name: "excessive whitespace run", content: "hello          world", wantErr: true},
		{name: "length counted in runes not bytes", content: strings.Repeat("ño", 400), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ride, "alice", tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("SendMessage() expected validation error, got none")
				}
				if got := apperr.KindOf(err); got != apperr.KindInvalidInput {
					t.Errorf("error kind = %v, want KindInvalidInput", got)
				}
				return
			}
			if err != nil {
				t.Errorf("SendMessage() unexpected error: %v", err)
			}
		})
	}
}

func TestMessageService_SendMessage_ReceiverResolution(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	msg, err := svc.SendMessage(ride, "alice", "is this still available?")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if msg.ReceiverID != "driver" {
		t.Errorf("receiver = %q, want driver", msg.ReceiverID)
	}
	if msg.SenderID != "alice" {
		t.Errorf("sender = %q, want alice", msg.SenderID)
	}

	reply, err := svc.SendMessage(ride, "driver", "yes it is")
	if err != nil {
		t.Fatalf("SendMessage() reply error: %v", err)
	}
	if reply.ReceiverID != "alice" {
		t.Errorf("reply receiver = %q, want alice", reply.ReceiverID)
	}
}

func TestMessageService_SendMessage_OwnerCannotStartThread(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	svc := newTestMessageService(rides, newFakeMessageRepo())

	_, err := svc.SendMessage(ride, "driver", "anyone interested?")
	if err == nil {
		t.Fatal("expected error when owner messages an empty ride")
	}
	if got := apperr.KindOf(err); got != apperr.KindPolicyViolation {
		t.Errorf("error kind = %v, want KindPolicyViolation", got)
	}
}

func TestMessageService_SendMessage_StrangerGetsNotFound(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	svc := newTestMessageService(rides, newFakeMessageRepo())

	_, err := svc.SendMessage(ride, "stranger", "let me in")
	if err == nil {
		t.Fatal("expected error for stranger")
	}
	if got := apperr.KindOf(err); got != apperr.KindNotFound {
		t.Errorf("error kind = %v, want KindNotFound", got)
	}
}

// Two passengers messaging the same driver must never see each other's
// threads, and the driver sees each thread separately.
func TestMessageService_GetRideMessages_PrivacyPartition(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice", "bob")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	mustSend := func(sender, content string) {
		t.Helper()
		if _, err := svc.SendMessage(ride, sender, content); err != nil {
			t.Fatalf("SendMessage(%s) error: %v", sender, err)
		}
	}

	mustSend("alice", "hi from alice")
	mustSend("driver", "hello alice") // replies to latest sender: alice
	mustSend("bob", "hi from bob")
	mustSend("driver", "hello bob") // now replies to bob

	aliceView, err := svc.GetRideMessages(ride, "alice", "driver", 1, 50)
	if err != nil {
		t.Fatalf("GetRideMessages(alice) error: %v", err)
	}
	if len(aliceView) != 2 {
		t.Fatalf("alice sees %d messages, want 2", len(aliceView))
	}
	for _, m := range aliceView {
		if m.SenderID == "bob" || m.ReceiverID == "bob" {
			t.Errorf("alice's thread leaked a message involving bob: %+v", m)
		}
	}

	bobView, err := svc.GetRideMessages(ride, "bob", "driver", 1, 50)
	if err != nil {
		t.Fatalf("GetRideMessages(bob) error: %v", err)
	}
	if len(bobView) != 2 {
		t.Fatalf("bob sees %d messages, want 2", len(bobView))
	}

	driverAlice, err := svc.GetRideMessages(ride, "driver", "alice", 1, 50)
	if err != nil {
		t.Fatalf("GetRideMessages(driver, alice) error: %v", err)
	}
	if len(driverAlice) != 2 {
		t.Errorf("driver's alice thread has %d messages, want 2", len(driverAlice))
	}

	// Chronological order within a thread.
	for i := 1; i < len(aliceView); i++ {
		if aliceView[i].CreatedAt.Before(aliceView[i-1].CreatedAt) {
			t.Error("messages not in chronological order")
		}
	}
}

func TestMessageService_GetRideMessages_NoCounterpartyIsEmpty(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	if _, err := svc.SendMessage(ride, "alice", "hi there"); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	msgs, err := svc.GetRideMessages(ride, "driver", "", 1, 50)
	if err != nil {
		t.Fatalf("GetRideMessages() error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages without a counterparty, want 0", len(msgs))
	}
}

func TestMessageService_EditMessage(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	msg, err := svc.SendMessage(ride, "alice", "original text")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	t.Run("receiver cannot edit", func(t *testing.T) {
		_, err := svc.EditMessage(msg.ID, "driver", "tampered")
		if got := apperr.KindOf(err); got != apperr.KindAccessDenied {
			t.Errorf("error kind = %v, want KindAccessDenied", got)
		}
	})

	t.Run("sender edits within window", func(t *testing.T) {
		edited, err := svc.EditMessage(msg.ID, "alice", "corrected text")
		if err != nil {
			t.Fatalf("EditMessage() error: %v", err)
		}
		if edited.Content != "corrected text" {
			t.Errorf("content = %q, want corrected text", edited.Content)
		}
		if edited.EditedAt == nil {
			t.Error("EditedAt not set after edit")
		}
	})

	t.Run("edit window expires", func(t *testing.T) {
		stale := &model.Message{
			RideType: ride.Type, RideID: ride.ID,
			SenderID: "alice", ReceiverID: "driver",
			Content: "old message", CreatedAt: time.Now().Add(-16 * time.Minute),
		}
		if err := repo.Create(stale); err != nil {
			t.Fatal(err)
		}
		_, err := svc.EditMessage(stale.ID, "alice", "too late")
		if got := apperr.KindOf(err); got != apperr.KindPolicyViolation {
			t.Errorf("error kind = %v, want KindPolicyViolation", got)
		}
	})

	t.Run("unknown message is not found", func(t *testing.T) {
		_, err := svc.EditMessage("missing", "alice", "whatever")
		if got := apperr.KindOf(err); got != apperr.KindNotFound {
			t.Errorf("error kind = %v, want KindNotFound", got)
		}
	})
}

func TestMessageService_DeleteMessage(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")

	setup := func(t *testing.T) (MessageService, *fakeMessageRepo, *model.Message) {
		t.Helper()
		repo := newFakeMessageRepo()
		svc := newTestMessageService(rides, repo)
		msg, err := svc.SendMessage(ride, "alice", "delete me maybe")
		if err != nil {
			t.Fatalf("SendMessage() error: %v", err)
		}
		return svc, repo, msg
	}

	t.Run("delete for self hides from caller only", func(t *testing.T) {
		svc, _, msg := setup(t)
		if err := svc.DeleteMessage(msg.ID, "alice", false); err != nil {
			t.Fatalf("DeleteMessage() error: %v", err)
		}

		aliceView, _ := svc.GetRideMessages(ride, "alice", "driver", 1, 50)
		if len(aliceView) != 0 {
			t.Errorf("alice still sees %d messages after self-delete", len(aliceView))
		}
		driverView, _ := svc.GetRideMessages(ride, "driver", "alice", 1, 50)
		if len(driverView) != 1 {
			t.Errorf("driver sees %d messages, want 1 (self-delete must not affect others)", len(driverView))
		}
	})

	t.Run("delete for self is idempotent", func(t *testing.T) {
		svc, _, msg := setup(t)
		if err := svc.DeleteMessage(msg.ID, "alice", false); err != nil {
			t.Fatalf("first delete error: %v", err)
		}
		if err := svc.DeleteMessage(msg.ID, "alice", false); err != nil {
			t.Errorf("repeat delete should be a no-op, got: %v", err)
		}
	})

	t.Run("delete for everyone hides from both", func(t *testing.T) {
		svc, _, msg := setup(t)
		if err := svc.DeleteMessage(msg.ID, "alice", true); err != nil {
			t.Fatalf("DeleteMessage() error: %v", err)
		}
		driverView, _ := svc.GetRideMessages(ride, "driver", "alice", 1, 50)
		if len(driverView) != 0 {
			t.Errorf("driver sees %d messages after delete-for-everyone, want 0", len(driverView))
		}
	})

	t.Run("only sender deletes for everyone", func(t *testing.T) {
		svc, _, msg := setup(t)
		err := svc.DeleteMessage(msg.ID, "driver", true)
		if got := apperr.KindOf(err); got != apperr.KindPolicyViolation {
			t.Errorf("error kind = %v, want KindPolicyViolation", got)
		}
	})

	t.Run("outsider gets not found", func(t *testing.T) {
		svc, _, msg := setup(t)
		err := svc.DeleteMessage(msg.ID, "stranger", false)
		if got := apperr.KindOf(err); got != apperr.KindNotFound {
			t.Errorf("error kind = %v, want KindNotFound", got)
		}
	})
}

func TestMessageService_DeleteConversation_Asymmetry(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	if _, err := svc.SendMessage(ride, "alice", "first message"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(ride, "driver", "a reply here"); err != nil {
		t.Fatal(err)
	}

	count, err := svc.DeleteConversation(ride, "alice")
	if err != nil {
		t.Fatalf("DeleteConversation() error: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted %d messages, want 2", count)
	}

	aliceView, _ := svc.GetRideMessages(ride, "alice", "driver", 1, 50)
	if len(aliceView) != 0 {
		t.Errorf("alice sees %d messages after deleting the conversation", len(aliceView))
	}
	driverView, _ := svc.GetRideMessages(ride, "driver", "alice", 1, 50)
	if len(driverView) != 2 {
		t.Errorf("driver sees %d messages, want 2 (delete is per-viewer)", len(driverView))
	}
}

func TestMessageService_MarkMessageRead(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	msg, err := svc.SendMessage(ride, "alice", "please read this")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("sender cannot mark own message read", func(t *testing.T) {
		_, err := svc.MarkMessageRead(msg.ID, "alice")
		if got := apperr.KindOf(err); got != apperr.KindAccessDenied {
			t.Errorf("error kind = %v, want KindAccessDenied", got)
		}
	})

	t.Run("recipient marks read", func(t *testing.T) {
		read, err := svc.MarkMessageRead(msg.ID, "driver")
		if err != nil {
			t.Fatalf("MarkMessageRead() error: %v", err)
		}
		if !read.IsRead {
			t.Error("message not marked read")
		}
		if read.ReadAt == nil || read.ReadBy == nil || *read.ReadBy != "driver" {
			t.Errorf("read metadata not set: ReadAt=%v ReadBy=%v", read.ReadAt, read.ReadBy)
		}
	})

	t.Run("marking read is idempotent", func(t *testing.T) {
		first, err := svc.MarkMessageRead(msg.ID, "driver")
		if err != nil {
			t.Fatal(err)
		}
		second, err := svc.MarkMessageRead(msg.ID, "driver")
		if err != nil {
			t.Fatal(err)
		}
		if !second.IsRead || !first.ReadAt.Equal(*second.ReadAt) {
			t.Error("repeat mark-as-read changed read state")
		}
	})
}

func TestMessageService_MarkConversationRead_RideWide(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice", "bob")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	if _, err := svc.SendMessage(ride, "alice", "from alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(ride, "bob", "from bob"); err != nil {
		t.Fatal(err)
	}

	unread, err := svc.GetUnreadCount("driver")
	if err != nil {
		t.Fatal(err)
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}

	// The bulk update spans every counterparty on the ride.
	count, err := svc.MarkConversationRead(ride, "driver")
	if err != nil {
		t.Fatalf("MarkConversationRead() error: %v", err)
	}
	if count != 2 {
		t.Errorf("marked %d messages, want 2", count)
	}

	unread, err = svc.GetUnreadCount("driver")
	if err != nil {
		t.Fatal(err)
	}
	if unread != 0 {
		t.Errorf("unread = %d after mark-all, want 0", unread)
	}

	// Repeating is a no-op.
	count, err = svc.MarkConversationRead(ride, "driver")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("repeat marked %d messages, want 0", count)
	}
}

func TestMessageService_UnreadCount_DropsWithSoftDelete(t *testing.T) {
	ride := offerRide("offer-1")
	rides := newFakeRideResolver()
	rides.addRide(ride, "driver", "alice")
	repo := newFakeMessageRepo()
	svc := newTestMessageService(rides, repo)

	msg, err := svc.SendMessage(ride, "alice", "unread message")
	if err != nil {
		t.Fatal(err)
	}

	unread, _ := svc.GetUnreadCount("driver")
	if unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}

	if err := svc.DeleteMessage(msg.ID, "driver", false); err != nil {
		t.Fatal(err)
	}

	unread, _ = svc.GetUnreadCount("driver")
	if unread != 0 {
		t.Errorf("unread = %d after recipient hid the message, want 0", unread)
	}
}
