package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	WhatsApp WhatsAppConfig
	Webhook  WebhookConfig
}

type ServerConfig struct {
	Address string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type AMQPConfig struct {
	Enabled bool
	URL     string
	Queue   string
}

type WhatsAppConfig struct {
	GraphBaseURL       string
	DefaultCountryCode string
	TemplateLanguage   string
	SendDelay          time.Duration
}

type WebhookConfig struct {
	VerifyToken   string
	AutomationURL string
}

func LoadAll() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		WhatsApp: WhatsAppConfig{
			GraphBaseURL:       getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v21.0"),
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "55"),
			TemplateLanguage:   getEnv("TEMPLATE_LANGUAGE", "pt_BR"),
			SendDelay:          time.Duration(getEnvInt("SEND_DELAY_MS", 100)) * time.Millisecond,
		},
		Webhook: WebhookConfig{
			VerifyToken:   os.Getenv("WEBHOOK_VERIFY_TOKEN"),
			AutomationURL: os.Getenv("AUTOMATION_WEBHOOK_URL"),
		},
		Redis: loadRedisConfig(),
		AMQP:  loadAMQPConfig(),
	}

	if cfg.WhatsApp.DefaultCountryCode == "" {
		return nil, fmt.Errorf("DEFAULT_COUNTRY_CODE must not be empty")
	}

	return cfg, nil
}

func loadRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
		TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 86400)) * time.Second,
	}
}

func loadAMQPConfig() AMQPConfig {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		return AMQPConfig{Enabled: false}
	}

	return AMQPConfig{
		Enabled: true,
		URL:     url,
		Queue:   getEnv("AMQP_QUEUE", "conversation_events"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("invalid int for env %s: %s", key, v))
	}
	return i
}
