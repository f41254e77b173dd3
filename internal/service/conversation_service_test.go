package service

import (
	"testing"

	"ridelink/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestConversationService_GetConversationList(t *testing.T) {
	offer := model.RideRef{Type: model.RideTypeOffer, ID: "offer-1"}
	demand := model.RideRef{Type: model.RideTypeDemand, ID: "demand-1"}

	rides := newFakeRideResolver()
	rides.addRide(offer, "driver", "alice", "bob")
	rides.addRide(demand, "alice", "driver")

	repo := newFakeMessageRepo()
	users := &fakeUserRepo{names: map[string]string{
		"driver": "Dana Driver",
		"alice":  "Alice",
		"bob":    "Bob",
	}}

	msgSvc := NewMessageService(repo, NewAccessService(rides, repo), &fakeNotifier{}, 0)
	convSvc := NewConversationService(repo, users, rides)

	mustSend := func(ride model.RideRef, sender, content string) {
		t.Helper()
		if _, err := msgSvc.SendMessage(ride, sender, content); err != nil {
			t.Fatalf("SendMessage(%s) error: %v", sender, err)
		}
	}

	mustSend(offer, "alice", "hi, seat free?")
	mustSend(offer, "bob", "me too please")
	mustSend(demand, "driver", "I can take you")

	t.Run("one entry per ride and counterparty", func(t *testing.T) {
		conversations, err := convSvc.GetConversationList("driver", 1, 50)
		if err != nil {
			t.Fatalf("GetConversationList() error: %v", err)
		}
		if len(conversations) != 3 {
			t.Fatalf("got %d conversations, want 3", len(conversations))
		}

		// Newest activity first.
		got := []string{}
		for _, c := range conversations {
			got = append(got, string(c.RideType)+"/"+c.OtherUserID)
		}
		want := []string{"demand/alice", "offer/bob", "offer/alice"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("conversation order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("entries carry names, last message and unread counts", func(t *testing.T) {
		conversations, err := convSvc.GetConversationList("driver", 1, 50)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range conversations {
			if c.OtherUserName == "" {
				t.Errorf("conversation with %s has no display name", c.OtherUserID)
			}
			if c.LastMessage == nil {
				t.Errorf("conversation with %s has no last message", c.OtherUserID)
			}
			if c.Ride == nil {
				t.Errorf("conversation with %s has no ride metadata", c.OtherUserID)
			}
		}

		// The driver has two inbound unread messages on the offer, none on
		// the demand thread they started.
		for _, c := range conversations {
			wantUnread := int64(1)
			if c.RideType == model.RideTypeDemand {
				wantUnread = 0
			}
			if c.UnreadCount != wantUnread {
				t.Errorf("conversation %s/%s unread = %d, want %d", c.RideType, c.OtherUserID, c.UnreadCount, wantUnread)
			}
		}
	})

	t.Run("same ride appears once per counterparty", func(t *testing.T) {
		conversations, err := convSvc.GetConversationList("driver", 1, 50)
		if err != nil {
			t.Fatal(err)
		}
		offers := 0
		for _, c := range conversations {
			if c.RideID == offer.ID {
				offers++
			}
		}
		if offers != 2 {
			t.Errorf("offer ride appears %d times, want 2 (alice and bob)", offers)
		}
	})

	t.Run("soft deleted conversations disappear", func(t *testing.T) {
		if _, err := msgSvc.DeleteConversation(offer, "driver"); err != nil {
			t.Fatal(err)
		}
		conversations, err := convSvc.GetConversationList("driver", 1, 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(conversations) != 1 {
			t.Fatalf("got %d conversations after delete, want 1", len(conversations))
		}
		if conversations[0].RideType != model.RideTypeDemand {
			t.Errorf("remaining conversation ride type = %s, want demand", conversations[0].RideType)
		}

		// The counterparties' views are untouched.
		aliceConvs, err := convSvc.GetConversationList("alice", 1, 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(aliceConvs) != 2 {
			t.Errorf("alice has %d conversations, want 2", len(aliceConvs))
		}
	})
}
