package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"keyplan/internal/ai"
	"keyplan/internal/common"
	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/semantic"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var cmdConfig common.CommandConfig
	var keywordList []string
	var noAI bool

	cmd := &cobra.Command{
		Use:   "match [keywords-file] [resume-file]",
		Short: "Classify keywords as matched or missed in a resume",
		Long: `Classify each keyword as matched or missed in the resume, using the
configured AI model when available and deterministic substring matching
otherwise. The model is never required: on timeout, error or an inconsistent
answer the deterministic result is returned and its source is reported.

Keywords come from a file (one per line, comma separated, or a JSON array)
given before the resume, or from --keywords with the resume as the only
argument. A resume ending in .json is matched on its string values.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())

			if len(keywordList) > 0 && len(args) == 2 {
				return fmt.Errorf("use either a keywords file or --keywords, not both")
			}
			if len(keywordList) == 0 && len(args) == 1 {
				return fmt.Errorf("a keywords file or --keywords is required")
			}

			matcher, provider, err := newMatcher(cmd.Context(), getConfigFromContext(cmd.Context()), logger, noAI)
			if err != nil {
				return err
			}
			if provider != nil {
				defer func() { _ = provider.Close() }()
			}

			createInput := func(contents []string) (semantic.Request, error) {
				resume := contents[len(contents)-1]
				req := semantic.Request{Keywords: keywordList, Resume: resume}
				if strings.EqualFold(filepath.Ext(args[len(args)-1]), ".json") {
					var structured any
					if err := json.Unmarshal([]byte(resume), &structured); err != nil {
						return req, errors.NewValidationError(errors.ErrCodeInvalidFormat, "Resume JSON is malformed", err)
					}
					req.Resume = structured
				}
				if len(contents) > 1 {
					list, err := common.ParseKeywordList(contents[0])
					if err != nil {
						return req, err
					}
					req.Keywords = list
				}
				if len(req.Keywords) == 0 {
					return req, fmt.Errorf("no keywords to match")
				}
				return req, nil
			}

			logDetails := func(req semantic.Request, cfg common.CommandConfig) {
				logger.Info("Matching keywords",
					"keywords", len(req.Keywords),
					"ai", matcher.HasPrimary(),
					"output_format", cfg.OutputFormat)
			}

			match := func(ctx context.Context, req semantic.Request) (semantic.Result, *semantic.Usage, error) {
				res := matcher.Match(ctx, req)
				if res.Source == semantic.SourceFallback && res.FallbackReason != "" {
					logger.Warn("Deterministic matching used", "reason", res.FallbackReason)
				}
				return res, res.Usage, nil
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args, createInput, match, logDetails)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringSliceVarP(&keywordList, "keywords", "k", nil, "Keywords to match (comma separated or repeated)")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Skip the AI model and use deterministic matching only")
	return cmd
}

// newMatcher builds the semantic matcher. A missing API key leaves the
// matcher on deterministic matching; other provider errors are returned.
func newMatcher(ctx context.Context, cfg *config.Config, logger *errors.Logger, noAI bool) (*semantic.Matcher, ai.Provider, error) {
	op := cfg.SemanticMatchConfig()

	var opts []semantic.MatcherOption
	if op.Timeout != nil {
		opts = append(opts, semantic.WithTimeout(*op.Timeout))
	}
	if noAI {
		return semantic.NewMatcher(nil, logger, opts...), nil, nil
	}

	provider, err := newProvider(ctx, op, logger)
	if err != nil {
		return nil, nil, err
	}
	if provider == nil {
		return semantic.NewMatcher(nil, logger, opts...), nil, nil
	}
	return semantic.NewMatcher(provider, logger, opts...), provider, nil
}

// newProvider creates the AI provider, or nil when the operation is disabled
// or no API key is configured.
func newProvider(ctx context.Context, op config.OperationAIConfig, logger *errors.Logger) (ai.Provider, error) {
	provider, err := ai.NewProvider(ctx, op, logger)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeMissingAPIKey {
			logger.Warn("No AI API key configured, using deterministic matching")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return provider, nil
}
