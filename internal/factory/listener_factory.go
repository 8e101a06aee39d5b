package factory

import (
	"github.com/mikey/email-classifier/internal/adapters/api"
	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/allowlist"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/ports"
	"go.uber.org/zap"
)

// ListenerFactory creates the intakes of the classification daemon
type ListenerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ClassificationService
}

// NewListenerFactory creates a new listener factory
func NewListenerFactory(cfg *config.Config, logger *zap.Logger, service *core.ClassificationService) *ListenerFactory {
	return &ListenerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateAPIServer creates the HTTP classification API
func (f *ListenerFactory) CreateAPIServer() *api.Server {
	apiCfg := f.cfg.GetAPI()
	return api.NewServer(
		f.service,
		allowlist.NewChecker(apiCfg.AllowedOrigins, f.logger),
		f.logger,
		apiCfg.ListenAddress,
		apiCfg.MaxUploadSize,
	)
}

// CreateSMTPIntake creates the SMTP intake
func (f *ListenerFactory) CreateSMTPIntake() *intake.SMTPIntake {
	return intake.NewSMTPIntake(f.service, f.logger, f.cfg.GetSMTP())
}

// CreateListeners returns the HTTP API and, when enabled, the SMTP intake
func (f *ListenerFactory) CreateListeners() []ports.Listener {
	listeners := []ports.Listener{f.CreateAPIServer()}
	if f.cfg.GetSMTP().Enabled {
		listeners = append(listeners, f.CreateSMTPIntake())
	}
	return listeners
}
