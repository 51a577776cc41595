package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultHubEndpoint  = "https://huggingface.co"
	defaultInferenceURL = "https://router.huggingface.co/hf-inference/models"
)

// ErrTokenMissing возвращается, когда не задан HF_TOKEN
var ErrTokenMissing = errors.New("HF_TOKEN environment variable not set")

type Config struct {
	HFToken        string
	HubEndpoint    string
	InferenceURL   string
	TelegramToken  string
	TelegramChatID int64
	Debug          bool
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HFToken:       os.Getenv("HF_TOKEN"),
		HubEndpoint:   getenv("HF_ENDPOINT", defaultHubEndpoint),
		InferenceURL:  getenv("HF_INFERENCE_URL", defaultInferenceURL),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	if raw := os.Getenv("LOG_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_DEBUG %q: %w", raw, err)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// NotificationsEnabled сообщает, настроены ли уведомления в Telegram
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// RequireToken проверяет наличие токена хостинга датасетов
func (c *Config) RequireToken() error {
	if c.HFToken == "" {
		return ErrTokenMissing
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
