package internal

import (
	"net/http"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/controllers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/leaderboard", http.HandlerFunc(apiController.GetLeaderboard))
	routers.Get("/player", http.HandlerFunc(apiController.GetPlayer))
	return routers
}
