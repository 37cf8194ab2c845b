package cli

import (
	"context"
	"fmt"

	"keyplan/internal/common"
	"keyplan/internal/config"
	"keyplan/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCmd builds the keyplan command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "keyplan",
		Short: "Extract job description keywords and plan resume tailoring",
		Long: `Keyplan reads a job description, ranks the keywords a recruiter or
applicant tracking system will look for, and recommends where each one
belongs in your resume, with evidence lines and ready-to-edit snippets.

It can also classify keywords against a resume with an AI model, validate
extracted keywords against the job description, and serve everything over
an HTTP API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: config.yaml in /etc/keyplan, $HOME/.keyplan or .)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(
		newPlanCmd(),
		newPlanBatchCmd(),
		newMatchCmd(),
		newValidateCmd(),
		newCategorizeCmd(),
		newDebugMatchCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command tree with ctx, which is cancelled on shutdown
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration and the logger unless the context already
// carries them.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(configKey).(*config.Config); ok {
		return nil
	}

	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load configuration", err)
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}

	logger, err := errors.New(cfg.App.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	logger.Debug("Configuration loaded",
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider,
		"vault", cfg.Vault.Enabled)

	cmd.SetContext(withRuntime(ctx, cfg, logger))
	return nil
}

// withRuntime attaches the config and logger for subcommands
func withRuntime(ctx context.Context, cfg *config.Config, logger *errors.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey, cfg)
	return context.WithValue(ctx, loggerKey, logger)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// addOutputFlags registers -o and --format and the format validation that
// runs before the command.
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if cmdConfig.OutputFormat == "" {
			cmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		cmdConfig.MaxFileSize = cfg.App.MaxFileSize
		format, err := common.NormalizeOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		cmdConfig.OutputFormat = format
		return nil
	}
}

// runner returns the shared collaborators for file-based commands
func runner(cmd *cobra.Command) common.Runner {
	return common.Runner{
		Logger: getLoggerFromContext(cmd.Context()),
		Stdout: cmd.OutOrStdout(),
	}
}
