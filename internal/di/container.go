package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/factory"
	"github.com/mikey/email-classifier/internal/logging"
	"github.com/mikey/email-classifier/internal/ports"
	"github.com/mikey/email-classifier/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the classification daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(factory.NewListenerFactory); err != nil {
		return nil, err
	}

	// Register listeners
	if err := container.Provide(func(f *factory.ListenerFactory) []ports.Listener {
		return f.CreateListeners()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers the factories, the LLM client, the text helpers
// and the classification service. The cache repository is left to the
// caller.
func provideService(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register text processor and document extractor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) core.TextExtractor {
		return f.CreateExtractor()
	}); err != nil {
		return err
	}

	// Register classification service
	return container.Provide(newClassificationService)
}

func newClassificationService(
	cfg *config.Config,
	llmClient core.LLMClient,
	cacheRepo core.CacheRepository,
	extractor core.TextExtractor,
	text *utils.TextProcessor,
	logger *zap.Logger,
) (*core.ClassificationService, error) {
	cacheCfg, err := cfg.GetCache()
	if err != nil {
		return nil, err
	}
	pre := cfg.GetPreprocess()

	if cacheCfg.Enabled && cacheRepo != nil {
		logger.Info("Model output cache enabled",
			zap.String("type", cacheCfg.Type),
			zap.Duration("ttl", cacheCfg.TTL))
	}

	return core.NewClassificationService(
		llmClient,
		cacheRepo,
		extractor,
		text,
		logger,
		cacheCfg.Enabled,
		cacheCfg.TTL,
		core.PreprocessOptions{
			MaxPromptChars: pre.MaxPromptChars,
			KeywordCount:   pre.KeywordCount,
			PreviewChars:   pre.PreviewChars,
		},
	), nil
}
