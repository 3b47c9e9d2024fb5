package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 4000,
		},
		Bungie: structures.BungieConfig{
			PlatformURL: "https://www.bungie.net/Platform",
			ContentURL:  "https://www.bungie.net",
			APIKeys:     []string{"key-1"},
		},
		Crawler: structures.CrawlerConfig{
			Interval: 6 * time.Hour,
		},
		Database: structures.DatabaseConfig{
			DSN: "host=localhost user=crawler dbname=crawler",
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingPlatformURL(t *testing.T) {
	c := validConfig()
	c.Bungie.PlatformURL = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MalformedPlatformURL(t *testing.T) {
	c := validConfig()
	c.Bungie.PlatformURL = "not a url"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_NoAPIKeys(t *testing.T) {
	c := validConfig()
	c.Bungie.APIKeys = nil
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingDSN(t *testing.T) {
	c := validConfig()
	c.Database.DSN = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
