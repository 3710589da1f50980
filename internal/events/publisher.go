// internal/events/publisher.go
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// ConversationEvent is published whenever the correlator accepts an inbound
// reply. The worker forwards these to the automation webhook.
type ConversationEvent struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	CampaignID     string    `json:"campaign_id"`
	ContactPhone   string    `json:"contact_phone"`
	ContactName    string    `json:"contact_name"`
	MessageType    string    `json:"message_type"`
	MessageContent string    `json:"message_content"`
	ReceivedAt     time.Time `json:"received_at"`
}

// Publisher fans conversation events out to interested consumers. Publishing
// is best-effort; a publish failure never fails the webhook request.
type Publisher interface {
	PublishConversation(event ConversationEvent)
}

type AMQPPublisher struct {
	channel *amqp.Channel
	queue   string
}

// NewAMQPPublisher declares the durable queue and returns a publisher bound
// to it. The caller owns the connection lifecycle.
func NewAMQPPublisher(conn *amqp.Connection, queue string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		return nil, err
	}

	return &AMQPPublisher{channel: ch, queue: queue}, nil
}

func (p *AMQPPublisher) PublishConversation(event ConversationEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Println("failed to marshal conversation event:", err)
		return
	}

	err = p.channel.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Println("failed to publish conversation event:", err)
	}
}

func (p *AMQPPublisher) Close() error {
	return p.channel.Close()
}

// NoopPublisher drops events. Used when AMQP is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishConversation(event ConversationEvent) {}

var _ Publisher = (*AMQPPublisher)(nil)
var _ Publisher = NoopPublisher{}
