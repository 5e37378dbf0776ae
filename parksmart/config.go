package parksmart

import (
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultLocation is the fallback search origin used when no device
// position is available.
type DefaultLocation struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type Config struct {
	Backend string `yaml:"backend"`
	APIKey  string `yaml:"api_key"`

	DefaultLocation DefaultLocation `yaml:"default_location"`
}

var defaultConfigFilePath = xdg.ConfigHome + "/parkctl/config.yaml"

func GetConfigFromFile(inputConfigFile string) (*Config, error) {
	if inputConfigFile == "" {
		inputConfigFile = defaultConfigFilePath
	}
	f, err := os.Open(inputConfigFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	err = yaml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config, configFile string) error {
	f, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewEncoder(f).Encode(cfg)
}
