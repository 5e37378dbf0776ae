package parksmart

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		Backend: "http://backend.example.com",
		APIKey:  "secret",
		DefaultLocation: DefaultLocation{
			Latitude:  12.9716,
			Longitude: 77.5946,
		},
	}
	assert.Nil(t, SaveConfig(cfg, path))

	loaded, err := GetConfigFromFile(path)
	assert.Nil(t, err)
	assert.Equal(t, cfg.Backend, loaded.Backend)
	assert.Equal(t, cfg.APIKey, loaded.APIKey)
	assert.Equal(t, 12.9716, loaded.DefaultLocation.Latitude)
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := GetConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}
