package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/intake"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &di.CLIFlags{}

	cmd := &cobra.Command{
		Use:   "email-classify [file]",
		Short: "Classify an email and draft a reply",
		Long: `Classify an email as Produtivo or Improdutivo and suggest a reply.

The input is a .txt or .pdf document, or a .eml message. Without a file,
or with "-", a message is read from standard input.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			container, err := di.BuildCLIContainer(flags, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}

			return container.Invoke(func(logger *zap.Logger, cli *intake.CLIIntake, llmClient core.LLMClient) error {
				defer logger.Sync()

				if path == "" || path == "-" {
					logger.Info("Reading email from stdin")
				} else {
					logger.Info("Reading email from file", zap.String("file", path))
				}

				submission, err := intake.LoadSubmission(path, cmd.InOrStdin())
				if err != nil {
					return err
				}

				_, err = cli.Classify(cmd.Context(), submission)

				if closer, ok := llmClient.(interface{ Close() error }); ok {
					if cerr := closer.Close(); cerr != nil {
						logger.Error("Failed to close LLM client", zap.Error(cerr))
					}
				}
				return err
			})
		},
	}

	di.RegisterFlags(cmd.Flags(), flags)
	return cmd
}
