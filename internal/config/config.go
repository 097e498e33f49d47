package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server  ServerConfig  `envPrefix:"SERVER_"`
	Stream  StreamConfig  `envPrefix:"STREAM_"`
	History HistoryConfig `envPrefix:"HISTORY_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:"0.0.0.0:8080"`
}

// StreamConfig configures the live chat websocket. Token is the bearer token
// of the authenticated session; the auth flow that produces it is outside
// this service.
type StreamConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	URL     string `env:"URL" envDefault:"wss://api.omniwire.app/ws/chat/"`
	Token   string `env:"TOKEN,required"`
}

type HistoryConfig struct {
	BaseURL string `env:"BASE_URL,required"`
	Token   string `env:"TOKEN"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}
