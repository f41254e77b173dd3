package service

import (
	"encoding/json"
	"log"

	"ridelink/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliveryWorker consumes delivery events from RabbitMQ and pushes them to
// the recipient's live websocket connection, if any.
type DeliveryWorker struct {
	rabbitMQ *util.RabbitMQClient
	wsHub    WSHub
	stopChan chan bool
}

func NewDeliveryWorker(rabbitMQ *util.RabbitMQClient, wsHub WSHub) *DeliveryWorker {
	return &DeliveryWorker{
		rabbitMQ: rabbitMQ,
		wsHub:    wsHub,
		stopChan: make(chan bool),
	}
}

// Start begins consuming delivery events. Returns without error when
// RabbitMQ is unavailable; the notifier falls back to direct pushes then.
func (w *DeliveryWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := w.rabbitMQ.DeclareDirectQueue(DeliveryExchange, DeliveryQueueName, DeliveryRoutingKey); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		DeliveryQueueName,
		"delivery_worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		log.Println("Delivery worker started, consuming events...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Delivery worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Delivery queue closed")
					return
				}
				if err := w.processDeliveryEvent(msg); err != nil {
					log.Printf("Failed to process delivery event: %v", err)
					// Drop malformed events instead of requeueing forever
					msg.Nack(false, false)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (w *DeliveryWorker) processDeliveryEvent(msg amqp.Delivery) error {
	var ev DeliveryEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return err
	}

	if w.wsHub != nil {
		w.wsHub.BroadcastToUser(ev.RecipientID, map[string]interface{}{
			"type":    ev.Event,
			"payload": ev.Payload,
		})
	}

	return nil
}

// Stop stops the delivery worker
func (w *DeliveryWorker) Stop() {
	close(w.stopChan)
}
