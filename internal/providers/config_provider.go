package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("bungie.apiKeys", "TR3_BUNGIE_API_KEYS")
	viper.BindEnv("database.dsn", "TR3_DATABASE_DSN")
	viper.BindEnv("discord.webhookUrl", "TR3_DISCORD_WEBHOOK_URL")
	viper.BindEnv("logger.level", "TR3_LOG_LEVEL")
	viper.BindEnv("crawler.interval", "TR3_CRAWL_INTERVAL")
	viper.BindEnv("crawler.concurrency", "TR3_CONCURRENCY")
	viper.BindEnv("cache.enabled", "TR3_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TR3_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	// The key pool may arrive as one comma separated env value.
	if len(conf.Bungie.APIKeys) == 1 && strings.Contains(conf.Bungie.APIKeys[0], ",") {
		parts := strings.Split(conf.Bungie.APIKeys[0], ",")
		conf.Bungie.APIKeys = conf.Bungie.APIKeys[:0]
		for _, p := range parts {
			if key := strings.TrimSpace(p); key != "" {
				conf.Bungie.APIKeys = append(conf.Bungie.APIKeys, key)
			}
		}
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TR3VanguardCrawler"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.ApplyDefaults()

	return &conf, nil
}
