package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"parksmart/internal/model"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// bookingEvent is the payload published for each confirmed booking
type bookingEvent struct {
	Event   string              `json:"event"`
	Booking model.BookingRecord `json:"booking"`
	Ticket  string              `json:"ticket"`
	SentAt  string              `json:"sent_at"`
}

// MQTTPublisher announces confirmed bookings on an MQTT topic
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to brokerURL as clientID
func NewMQTTPublisher(brokerURL, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL).SetClientID(clientID)
	opts = opts.SetOrderMatters(false).SetAutoReconnect(true).SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", token.Error())
	}
	log.Printf("✅ Connected to MQTT broker %s as %s", brokerURL, clientID)

	return &MQTTPublisher{client: client, topic: topic}, nil
}

// PublishBooking sends the record to the configured topic and waits for the broker or ctx
func (p *MQTTPublisher) PublishBooking(ctx context.Context, record *model.BookingRecord) error {
	data, err := EncodeBooking(record, time.Now())
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish error: %w", err)
	}
	log.Printf("📣 Published booking %s to %s", record.BookingID, p.topic)
	return nil
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// EncodeBooking renders the JSON event for record
func EncodeBooking(record *model.BookingRecord, sentAt time.Time) ([]byte, error) {
	data, err := json.Marshal(bookingEvent{
		Event:   "booking.confirmed",
		Booking: *record,
		Ticket:  record.Ticket(),
		SentAt:  sentAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	return data, nil
}
