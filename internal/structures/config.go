package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type BungieConfig struct {
	PlatformURL       string        `yaml:"platformUrl" validate:"required|fullUrl"`
	ContentURL        string        `yaml:"contentUrl" validate:"required|fullUrl"`
	APIKeys           []string      `yaml:"apiKeys" validate:"required"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	RequestTimeout    time.Duration `yaml:"requestTimeout"`
}

type CrawlerConfig struct {
	Interval              time.Duration `yaml:"interval" validate:"required|min:1"`
	PageSize              int           `yaml:"pageSize"`
	BatchSize             int           `yaml:"batchSize"`
	Concurrency           int           `yaml:"concurrency"`
	DefaultMembershipType int           `yaml:"defaultMembershipType"`
	DefinitionTTL         time.Duration `yaml:"definitionTTL"`
	LeaderboardSize       int           `yaml:"leaderboardSize"`
	SeedPlayers           []string      `yaml:"seedPlayers"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Bungie    BungieConfig   `yaml:"bungie"`
	Crawler   CrawlerConfig  `yaml:"crawler"`
	Database  DatabaseConfig `yaml:"database"`
	Discord   DiscordConfig  `yaml:"discord"`
	Archive   ArchiveConfig  `yaml:"archive"`
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// ApplyDefaults fills in the crawler knobs that are optional in the config
// file. The defaults mirror the limits the Bungie API tolerates.
func (c *Config) ApplyDefaults() {
	if c.Crawler.PageSize <= 0 {
		c.Crawler.PageSize = 250
	}
	if c.Crawler.BatchSize <= 0 {
		c.Crawler.BatchSize = 50
	}
	if c.Crawler.Concurrency <= 0 {
		c.Crawler.Concurrency = 2
	}
	if c.Crawler.DefaultMembershipType <= 0 {
		c.Crawler.DefaultMembershipType = 3
	}
	if c.Crawler.DefinitionTTL <= 0 {
		c.Crawler.DefinitionTTL = 6 * time.Hour
	}
	if c.Crawler.LeaderboardSize <= 0 {
		c.Crawler.LeaderboardSize = 10
	}
	if c.Bungie.RequestsPerSecond <= 0 {
		c.Bungie.RequestsPerSecond = 20
	}
	if c.Bungie.RequestTimeout <= 0 {
		c.Bungie.RequestTimeout = 15 * time.Second
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 30 * time.Second
	}
}
