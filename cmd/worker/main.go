package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/wikizap/wikizap-backend/internal/automation"
	"github.com/wikizap/wikizap-backend/internal/config"
	"github.com/wikizap/wikizap-backend/internal/events"
)

// The worker drains the conversation_events queue and forwards each accepted
// inbound reply to the automation webhook so downstream flows can react.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}
	if !cfg.AMQP.Enabled {
		log.Fatal("AMQP_URL must be set for the worker")
	}
	if cfg.Webhook.AutomationURL == "" {
		log.Fatal("AUTOMATION_WEBHOOK_URL must be set for the worker")
	}

	forwarder := automation.NewClient(cfg.Webhook.AutomationURL)

	conn, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.AMQP.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatal("failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var event events.ConversationEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Println("invalid event payload:", err)
				d.Ack(false)
				continue
			}

			if err := forwarder.Forward(context.Background(), event); err != nil {
				log.Println("failed to forward conversation", event.ConversationID, ":", err)
				// Retry logic: requeue up to 3 times
				var retryCount int
				if d.Headers["x-retry-count"] != nil {
					retryCount, _ = d.Headers["x-retry-count"].(int)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("worker running, waiting for conversation events on", q.Name)
	<-forever
}
