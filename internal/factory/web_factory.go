package factory

import (
	"github.com/mikey/email-classifier/internal/adapters/classifyapi"
	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

// WebFactory creates the pieces of the web front end
type WebFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewWebFactory creates a new web factory
func NewWebFactory(cfg *config.Config, logger *zap.Logger) *WebFactory {
	return &WebFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateWebServer creates the web server with its session store and the
// classification service client
func (f *WebFactory) CreateWebServer() (*web.Server, error) {
	webCfg, err := f.cfg.GetWeb()
	if err != nil {
		return nil, err
	}

	client := classifyapi.NewClient(webCfg.ClassifierURL, webCfg.RequestTimeout, f.logger)
	f.logger.Info("Using classification service", zap.String("url", webCfg.ClassifierURL))

	store := web.NewSessionStore(func() *form.Controller {
		return form.NewController(client, f.logger)
	}, webCfg.SessionTTL, webCfg.SessionCleanup, f.logger)

	return web.NewServer(store, f.logger, web.Options{
		ListenAddress:  webCfg.ListenAddress,
		RequestTimeout: webCfg.RequestTimeout,
		MaxUploadSize:  webCfg.MaxUploadSize,
		SecureCookies:  webCfg.SecureCookies,
	})
}
