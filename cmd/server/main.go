// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"

	"github.com/wikizap/wikizap-backend/internal/cache"
	"github.com/wikizap/wikizap-backend/internal/config"
	"github.com/wikizap/wikizap-backend/internal/controller"
	"github.com/wikizap/wikizap-backend/internal/db"
	"github.com/wikizap/wikizap-backend/internal/events"
	"github.com/wikizap/wikizap-backend/internal/handler"
	"github.com/wikizap/wikizap-backend/internal/repository"
	"github.com/wikizap/wikizap-backend/internal/service"
	"github.com/wikizap/wikizap-backend/internal/whatsapp"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}

	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	queueRepo := &repository.MessageQueueRepository{DB: db.DB}
	conversationRepo := &repository.ConversationRepository{DB: db.DB}
	configRepo := &repository.ProviderConfigRepository{DB: db.DB}
	templateRepo := &repository.TemplateRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}

	waClient := whatsapp.NewClient(cfg.WhatsApp.GraphBaseURL)

	var dedup cache.Dedup = cache.NoopDedup{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dedup = cache.NewRedisDedup(rdb, cfg.Redis.TTL)
		log.Println("webhook dedup enabled via redis at", cfg.Redis.Address)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQP.Enabled {
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ:", err)
		}
		defer conn.Close()

		amqpPublisher, err := events.NewAMQPPublisher(conn, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal("failed to set up event publisher:", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Println("conversation events published to queue", cfg.AMQP.Queue)
	}

	dispatcher := &service.DispatcherService{
		Configs:            configRepo,
		Queue:              queueRepo,
		Sender:             waClient,
		DefaultCountryCode: cfg.WhatsApp.DefaultCountryCode,
		TemplateLanguage:   cfg.WhatsApp.TemplateLanguage,
		SendDelay:          cfg.WhatsApp.SendDelay,
	}

	correlator := &service.CorrelatorService{
		Configs:       configRepo,
		Queue:         queueRepo,
		Conversations: conversationRepo,
		Dedup:         dedup,
		Events:        publisher,
	}

	settings := &service.SettingsService{
		Configs:   configRepo,
		Templates: templateRepo,
		Client:    waClient,
	}

	campaignController := &controller.CampaignController{
		Dispatcher:   dispatcher,
		CampaignRepo: campaignRepo,
	}
	webhookController := &controller.WebhookController{
		Correlator:  correlator,
		VerifyToken: cfg.Webhook.VerifyToken,
	}
	configController := &controller.ConfigController{
		Settings:     settings,
		TemplateRepo: templateRepo,
	}
	conversationHandler := &handler.ConversationHandler{
		Conversations: conversationRepo,
		Contacts:      contactRepo,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)

	// Provider webhooks
	r.Get("/webhooks/whatsapp", webhookController.Verify)
	r.Post("/webhooks/whatsapp", webhookController.Receive)
	r.Post("/webhooks/automation", webhookController.ReceiveAutomation)

	// Settings
	r.Post("/config", configController.SaveConfig)
	r.Get("/config", configController.GetConfig)
	r.Post("/config/test", configController.TestConnection)
	r.Post("/templates/sync", configController.SyncTemplates)
	r.Get("/templates", configController.ListTemplates)

	// Inbox and contact book
	r.Get("/conversations", conversationHandler.ListConversations)
	r.Post("/conversations/{id}/read", conversationHandler.MarkRead)
	r.Get("/contacts", conversationHandler.ListContacts)
	r.Post("/contacts", conversationHandler.ImportContacts)

	log.Println("server running on", cfg.Server.Address)
	log.Fatal(http.ListenAndServe(cfg.Server.Address, r))
}
