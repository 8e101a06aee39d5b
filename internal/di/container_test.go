package di

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"

	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/ports"
)

func TestBuildContainer(t *testing.T) {
	t.Setenv("EMAIL_CLASSIFIER_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	container, err := BuildContainer()
	if err != nil {
		t.Fatalf("BuildContainer: %v", err)
	}

	err = container.Invoke(func(listeners []ports.Listener, cacheRepo core.CacheRepository, llm core.LLMClient) {
		if len(listeners) != 1 {
			t.Errorf("listeners = %d, want 1", len(listeners))
		}
		if llm.ModelName() != "gpt-4o-mini" {
			t.Errorf("model = %q", llm.ModelName())
		}
		if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestBuildWebContainer(t *testing.T) {
	container, err := BuildWebContainer()
	if err != nil {
		t.Fatalf("BuildWebContainer: %v", err)
	}
	if err := container.Invoke(func(srv *web.Server) { _ = srv.Stop() }); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestBuildCLIContainer(t *testing.T) {
	flags := &CLIFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, flags)
	if err := fs.Parse([]string{"--provider", "openai", "--openai-api-key", "sk-test", "--keywords", "5"}); err != nil {
		t.Fatal(err)
	}

	container, err := BuildCLIContainer(flags, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("BuildCLIContainer: %v", err)
	}

	err = container.Invoke(func(cli *intake.CLIIntake, cfg *config.Config, cacheRepo core.CacheRepository) {
		if cli == nil {
			t.Error("nil CLI intake")
		}
		if cacheRepo != nil {
			t.Error("CLI runs without a cache")
		}
		if got := cfg.GetPreprocess().KeywordCount; got != 5 {
			t.Errorf("keyword count = %d", got)
		}
		if got := cfg.GetOpenAI().APIKey; got != "sk-test" {
			t.Errorf("api key = %q", got)
		}
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}
