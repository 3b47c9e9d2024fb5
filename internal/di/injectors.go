//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/aidengarrett501/tr3-vrcrawler/internal"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/archive"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/controllers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/crawler"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/discord"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository/postgres"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/services"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		postgres.NewConnection,
		postgres.NewRepositories,

		bungie.NewClient,
		wire.Bind(new(crawler.BungieAPI), new(*bungie.Client)),

		discord.NewWebhook,
		wire.Bind(new(crawler.Notifier), new(*discord.Webhook)),

		archive.NewZstdCompressor,
		archive.NewPGCRArchive,
		wire.Bind(new(crawler.Archiver), new(*archive.PGCRArchive)),

		crawler.NewDefinitionService,
		services.NewLeaderboardService,
		crawler.NewCoordinator,
		wire.Bind(new(controllers.CrawlerStatus), new(*crawler.Coordinator)),
		crawler.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
