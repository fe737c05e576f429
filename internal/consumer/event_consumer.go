package consumer

import (
	"encoding/json"
	"log"

	"github.com/eventrift/payment-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventConsumer syncs events published by the Event Service into the local
// read model so checkout can price orders without a synchronous call.
type EventConsumer struct {
	db *gorm.DB
}

func NewEventConsumer(db *gorm.DB) *EventConsumer {
	return &EventConsumer{db: db}
}

func (ec *EventConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(msg)
		}
		log.Println("[EventConsumer] channel closed, stopping consumer")
	}()
}

func (ec *EventConsumer) handleMessage(msg amqp.Delivery) {
	var event models.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("[EventConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	// Upsert: insert or update on conflict (same ID from Event Service)
	result := ec.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "ticket_price", "booking_start_at", "booking_end_at", "updated_at"}),
	}).Create(&event)

	if result.Error != nil {
		log.Printf("[EventConsumer] failed to upsert event %d: %v", event.ID, result.Error)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[EventConsumer] synced event %d: %s", event.ID, event.Name)
	msg.Ack(false)
}
