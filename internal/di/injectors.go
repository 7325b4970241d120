//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"emd/internal"
	"emd/internal/controllers"
	"emd/internal/providers"
	"emd/internal/services"
	"emd/internal/storage"
	"emd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,

		storage.NewZstdCompressor,
		services.NewMetricsService,
		storage.NewFileManager,
		storage.NewScheduler,
		controllers.NewApiController,
		controllers.NewDashboardController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
