package config

import (
	"file-conversion-server/internal/domain"
	"file-conversion-server/internal/handler"
	"file-conversion-server/internal/service"
	"file-conversion-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config           domain.Config
	Logger           domain.Logger
	Dispatcher       *service.Dispatcher
	RatesService     *service.RatesService
	OperationHandler *handler.OperationHandler
	RatesHandler     *handler.RatesHandler
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires every component from config.
func NewContainerWithConfig(config domain.Config) *Container {
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Services
	adapter := service.NewPDFAdapter(appLogger)
	dispatcher := service.NewDispatcher(
		service.NewPDFOperations(adapter, appLogger),
		service.NewFormatConverter(appLogger),
		service.NewWordConverter(service.NewPDFTextExtractor(appLogger), appLogger),
		appLogger,
	)
	ratesService := service.NewRatesService(
		service.NewLiveRatesProvider(config.GetRatesURL(), config.GetRatesTimeout()),
		service.NewStaticRatesProvider(),
		appLogger,
	)

	// Handlers
	gateway := handler.NewUploadGateway(config.GetMaxFileSize(), config.GetMaxFiles())

	return &Container{
		Config:           config,
		Logger:           appLogger,
		Dispatcher:       dispatcher,
		RatesService:     ratesService,
		OperationHandler: handler.NewOperationHandler(gateway, dispatcher, appLogger),
		RatesHandler:     handler.NewRatesHandler(ratesService, appLogger),
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
