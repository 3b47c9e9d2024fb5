package providers

import (
	"net/http"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

// RouterProvider collects the read-only API routes. The crawl pipeline
// never accepts writes over HTTP, so there is no verb surface beyond GET.
type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: getHandler(handler),
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

// getHandler rejects every verb but GET and HEAD. HEAD rides along so
// load balancer probes get a status without a body.
func getHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
