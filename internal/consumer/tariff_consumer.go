package consumer

import (
	"encoding/json"
	"log"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TariffConsumer keeps the local fare tier table in sync with updates the
// fare service broadcasts over RabbitMQ.
type TariffConsumer struct {
	db *gorm.DB
}

func NewTariffConsumer(db *gorm.DB) *TariffConsumer {
	return &TariffConsumer{db: db}
}

func (tc *TariffConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			tc.handleMessage(msg)
		}
		log.Println("[TariffConsumer] channel closed, stopping consumer")
	}()
}

func (tc *TariffConsumer) handleMessage(msg amqp.Delivery) {
	var tier models.FareTier
	if err := json.Unmarshal(msg.Body, &tier); err != nil {
		log.Printf("[TariffConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	// Upsert on lap count, the fare service's natural key.
	result := tc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lap_count"}},
		DoUpdates: clause.AssignmentColumns([]string{"duration_minutes", "base_price", "active", "updated_at"}),
	}).Create(&tier)

	if result.Error != nil {
		log.Printf("[TariffConsumer] failed to upsert fare tier %d laps: %v", tier.LapCount, result.Error)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[TariffConsumer] synced fare tier: %d laps / %d min", tier.LapCount, tier.DurationMinutes)
	msg.Ack(false)
}
