package service

import (
	"encoding/json"
	"log"
	"time"

	"ridelink/internal/model"
	"ridelink/internal/util"
)

// Delivery event kinds pushed to a recipient's live connection.
const (
	DeliveryEventNewMessage     = "message:new"
	DeliveryEventMessageEdited  = "message:edited"
	DeliveryEventMessageDeleted = "message:deleted"
	DeliveryEventMessageRead    = "message:read"

	DeliveryQueueName  = "delivery_queue"
	DeliveryExchange   = "delivery_exchange"
	DeliveryRoutingKey = "delivery"
)

// DeliveryNotifier pushes message events to the resolved recipient only,
// never to all ride participants. Every method is fire-and-forget: failures
// are logged and swallowed, a send never fails because delivery did.
type DeliveryNotifier interface {
	NewMessage(recipientID string, msg *model.Message)
	MessageEdited(recipientID string, msg *model.Message)
	MessageDeleted(recipientID, messageID string, ride model.RideRef)
	MessageRead(recipientID, messageID, readerID string)
}

// WSHub is the slice of the websocket hub the notifier needs.
type WSHub interface {
	BroadcastToUser(userID string, payload map[string]interface{})
	GetClientCount(userID string) int
}

// DeliveryEvent is the payload published to the delivery queue.
type DeliveryEvent struct {
	Event       string                 `json:"event"`
	RecipientID string                 `json:"recipient_id"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   time.Time              `json:"timestamp"`
}

type deliveryNotifier struct {
	rabbitMQ      *util.RabbitMQClient
	wsHub         WSHub
	notifications NotificationService
}

func NewDeliveryNotifier(rabbitMQ *util.RabbitMQClient, wsHub WSHub, notifications NotificationService) DeliveryNotifier {
	return &deliveryNotifier{
		rabbitMQ:      rabbitMQ,
		wsHub:         wsHub,
		notifications: notifications,
	}
}

func (n *deliveryNotifier) NewMessage(recipientID string, msg *model.Message) {
	n.dispatch(DeliveryEventNewMessage, recipientID, map[string]interface{}{
		"id":          msg.ID,
		"ride_type":   msg.RideType,
		"ride_id":     msg.RideID,
		"sender_id":   msg.SenderID,
		"sender_name": msg.Sender.Name,
		"content":     msg.Content,
		"created_at":  msg.CreatedAt,
	})

	// Offline recipients get a persisted notification instead.
	if n.wsHub != nil && n.wsHub.GetClientCount(recipientID) == 0 && n.notifications != nil {
		if err := n.notifications.CreateMessageNotification(recipientID, msg); err != nil {
			log.Printf("Failed to persist message notification for user %s: %v", recipientID, err)
		}
	}
}

func (n *deliveryNotifier) MessageEdited(recipientID string, msg *model.Message) {
	n.dispatch(DeliveryEventMessageEdited, recipientID, map[string]interface{}{
		"id":        msg.ID,
		"ride_type": msg.RideType,
		"ride_id":   msg.RideID,
		"content":   msg.Content,
		"edited_at": msg.EditedAt,
	})
}

func (n *deliveryNotifier) MessageDeleted(recipientID, messageID string, ride model.RideRef) {
	n.dispatch(DeliveryEventMessageDeleted, recipientID, map[string]interface{}{
		"id":        messageID,
		"ride_type": ride.Type,
		"ride_id":   ride.ID,
	})
}

func (n *deliveryNotifier) MessageRead(recipientID, messageID, readerID string) {
	n.dispatch(DeliveryEventMessageRead, recipientID, map[string]interface{}{
		"id":      messageID,
		"read_by": readerID,
	})
}

// dispatch publishes the event to the delivery queue, falling back to a
// direct websocket push when the queue is unavailable.
func (n *deliveryNotifier) dispatch(event, recipientID string, payload map[string]interface{}) {
	ev := DeliveryEvent{
		Event:       event,
		RecipientID: recipientID,
		Payload:     payload,
		Timestamp:   time.Now(),
	}

	if n.rabbitMQ != nil && n.rabbitMQ.GetChannel() != nil {
		body, err := json.Marshal(ev)
		if err == nil {
			if err := n.rabbitMQ.Publish(DeliveryExchange, DeliveryRoutingKey, body); err == nil {
				return
			} else {
				log.Printf("Failed to publish delivery event %s: %v", event, err)
			}
		}
	}

	n.pushDirect(ev)
}

func (n *deliveryNotifier) pushDirect(ev DeliveryEvent) {
	if n.wsHub == nil {
		return
	}
	n.wsHub.BroadcastToUser(ev.RecipientID, map[string]interface{}{
		"type":    ev.Event,
		"payload": ev.Payload,
	})
}
