package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RelayURL        string `envconfig:"RELAY_URL" default:"http://localhost:3000"`
	RelayHealthAddr string `envconfig:"RELAY_HEALTH_ADDR" default:"localhost:3001"`
	ProcessorURL    string `envconfig:"PROCESSOR_URL" default:"http://localhost:4000"`
	ProcessorAPIKey string `envconfig:"PROCESSOR_API_KEY"`
	// E2E_DEBUG_JSON dumps every frame and response body
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized step headers
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
