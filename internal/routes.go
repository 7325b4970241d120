package internal

import (
	"net/http"

	"emd/internal/controllers"
	"emd/internal/providers"
	"emd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, dashboardController *controllers.DashboardController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/events", http.HandlerFunc(apiController.ReceiveEvents))
	routers.Post("/flush", http.HandlerFunc(apiController.Flush))
	routers.Post("/reconcile", http.HandlerFunc(apiController.Reconcile))

	routers.Get("/users", http.HandlerFunc(apiController.GetUsers))
	routers.Get("/posts", http.HandlerFunc(apiController.GetPosts))
	routers.Get("/totals", http.HandlerFunc(apiController.GetTotals))
	routers.Get("/series/scatter", http.HandlerFunc(apiController.GetScatterSeries))
	routers.Get("/series/views", http.HandlerFunc(apiController.GetViewSeries))
	routers.Get("/series/followers", http.HandlerFunc(apiController.GetFollowerSeries))
	routers.Get("/export", http.HandlerFunc(apiController.ExportCSV))

	routers.Get("/override", http.HandlerFunc(apiController.GetOverride))
	routers.Post("/override", http.HandlerFunc(apiController.SetOverride))
	routers.Delete("/override", http.HandlerFunc(apiController.ClearOverride))

	routers.Get("/visibility", http.HandlerFunc(apiController.GetVisibility))
	routers.Post("/visibility", http.HandlerFunc(apiController.SetVisibility))
	routers.Get("/zoom", http.HandlerFunc(apiController.GetZoom))
	routers.Post("/zoom", http.HandlerFunc(apiController.SetZoom))

	routers.Get("/dashboard", http.HandlerFunc(dashboardController.Dashboard))

	return routers
}
