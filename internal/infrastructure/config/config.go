package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TwitchClientID     string
	TwitchClientSecret string
	BotUsername        string
	StreamerChannel    string
	DatabasePath       string
	ScriptsDir         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		BotUsername:        strings.ToLower(os.Getenv("TWITCH_BOT_USERNAME")),
		StreamerChannel:    strings.ToLower(strings.TrimPrefix(os.Getenv("TWITCH_CHANNEL"), "#")),
		DatabasePath:       os.Getenv("DATABASE_PATH"),
		ScriptsDir:         os.Getenv("SCRIPTS_DIR"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "steelbot.db"
	}

	if cfg.BotUsername == "" || cfg.StreamerChannel == "" {
		log.Println("Warning: TWITCH_BOT_USERNAME or TWITCH_CHANNEL not set")
	}

	return cfg, nil
}
