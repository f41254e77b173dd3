package service

import (
	"testing"

	"ridelink/internal/apperr"
	"ridelink/internal/model"
)

func TestAccessService_CanAccess(t *testing.T) {
	offer := model.RideRef{Type: model.RideTypeOffer, ID: "offer-1"}
	ghost := model.RideRef{Type: model.RideTypeOffer, ID: "no-such-ride"}

	rides := newFakeRideResolver()
	rides.addRide(offer, "driver", "passenger")

	messages := newFakeMessageRepo()
	// "historic" messaged the driver before their booking was cancelled.
	messages.Create(&model.Message{
		RideType: offer.Type, RideID: offer.ID,
		SenderID: "historic", ReceiverID: "driver", Content: "hello",
	})

	access := NewAccessService(rides, messages)

	tests := []struct {
		name     string
		ride     model.RideRef
		userID   string
		wantKind apperr.Kind
		wantOK   bool
	}{
		{name: "owner has access", ride: offer, userID: "driver", wantOK: true},
		{name: "participant has access", ride: offer, userID: "passenger", wantOK: true},
		{name: "prior message history grants access", ride: offer, userID: "historic", wantOK: true},
		{name: "stranger gets not found", ride: offer, userID: "stranger", wantKind: apperr.KindNotFound},
		{name: "missing ride gets not found", ride: ghost, userID: "driver", wantKind: apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := access.CanAccess(tt.ride, tt.userID)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("CanAccess() unexpected error: %v", err)
				}
				if info == nil || info.OwnerID != "driver" {
					t.Errorf("CanAccess() info = %+v, want owner driver", info)
				}
				return
			}
			if err == nil {
				t.Fatal("CanAccess() expected error, got none")
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("CanAccess() error kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestAccessService_CanAccess_SameErrorForMissingAndForbidden(t *testing.T) {
	offer := model.RideRef{Type: model.RideTypeOffer, ID: "offer-1"}
	rides := newFakeRideResolver()
	rides.addRide(offer, "driver")
	access := NewAccessService(rides, newFakeMessageRepo())

	_, errStranger := access.CanAccess(offer, "stranger")
	_, errMissing := access.CanAccess(model.RideRef{Type: model.RideTypeOffer, ID: "gone"}, "stranger")

	if errStranger == nil || errMissing == nil {
		t.Fatal("expected errors for both cases")
	}
	if errStranger.Error() != errMissing.Error() {
		t.Errorf("error messages differ, existence is leaked: %q vs %q", errStranger, errMissing)
	}
}

func TestAccessService_ResolveReceiver(t *testing.T) {
	offer := model.RideRef{Type: model.RideTypeOffer, ID: "offer-1"}
	rides := newFakeRideResolver()
	rides.addRide(offer, "driver", "alice", "bob")
	messages := newFakeMessageRepo()
	access := NewAccessService(rides, messages)

	t.Run("non-owner always messages the owner", func(t *testing.T) {
		receiver, _, err := access.ResolveReceiver(offer, "alice")
		if err != nil {
			t.Fatalf("ResolveReceiver() error: %v", err)
		}
		if receiver != "driver" {
			t.Errorf("receiver = %q, want driver", receiver)
		}
	})

	t.Run("owner with no inbound messages is rejected", func(t *testing.T) {
		_, _, err := access.ResolveReceiver(offer, "driver")
		if err == nil {
			t.Fatal("expected error for owner first message")
		}
		if got := apperr.KindOf(err); got != apperr.KindPolicyViolation {
			t.Errorf("error kind = %v, want KindPolicyViolation", got)
		}
	})

	t.Run("owner replies to the latest counterpart sender", func(t *testing.T) {
		messages.Create(&model.Message{RideType: offer.Type, RideID: offer.ID, SenderID: "alice", ReceiverID: "driver", Content: "hi"})
		messages.Create(&model.Message{RideType: offer.Type, RideID: offer.ID, SenderID: "bob", ReceiverID: "driver", Content: "hey"})

		receiver, _, err := access.ResolveReceiver(offer, "driver")
		if err != nil {
			t.Fatalf("ResolveReceiver() error: %v", err)
		}
		if receiver != "bob" {
			t.Errorf("receiver = %q, want bob (latest sender)", receiver)
		}

		// The owner replying does not change who wrote last.
		messages.Create(&model.Message{RideType: offer.Type, RideID: offer.ID, SenderID: "driver", ReceiverID: "bob", Content: "re"})
		receiver, _, err = access.ResolveReceiver(offer, "driver")
		if err != nil {
			t.Fatalf("ResolveReceiver() error: %v", err)
		}
		if receiver != "bob" {
			t.Errorf("receiver = %q, want bob", receiver)
		}
	})
}
