package di

import (
	"go.uber.org/dig"

	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/factory"
	"github.com/mikey/email-classifier/internal/logging"
)

// BuildWebContainer creates and configures a dependency injection container
// for the web front end
func BuildWebContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewWebFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.WebFactory) (*web.Server, error) {
		return f.CreateWebServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
