package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string        `envconfig:"BOT_TOKEN" required:"true"`
	ChatID      int64         `envconfig:"CHAT_ID" required:"true"`
	StatePath   string        `envconfig:"STATE_PATH" default:"./data/schedules.json"`
	HistoryPath string        `envconfig:"HISTORY_DB_PATH" default:"./data/history.db"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
