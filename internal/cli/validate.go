package cli

import (
	"context"
	"fmt"

	"keyplan/internal/common"
	"keyplan/internal/semantic"
	"keyplan/internal/validate"

	"github.com/spf13/cobra"
)

// keywordsInput parses the keyword list from the first file unless the list
// was given on the command line.
func keywordsInput(flagList []string, contents []string) ([]string, []string, error) {
	if len(flagList) > 0 {
		return flagList, contents, nil
	}
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("a keywords file or --keywords is required")
	}
	list, err := common.ParseKeywordList(contents[0])
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		return nil, nil, fmt.Errorf("keywords file is empty")
	}
	return list, contents[1:], nil
}

type validateInput struct {
	keywords       []string
	jobDescription string
}

func newValidateCmd() *cobra.Command {
	var cmdConfig common.CommandConfig
	var keywordList []string

	cmd := &cobra.Command{
		Use:   "validate [keywords-file] [job-description-file]",
		Short: "Check extracted keywords against their job description",
		Long: `Report which keywords actually appear in the job description, the
overall coverage, and a category and resume suggestion for each keyword.
Keywords come from a file or from --keywords, in which case only the job
description file is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			if want := 2 - min(1, len(keywordList)); len(args) != want {
				return fmt.Errorf("expected %d file arguments, got %d", want, len(args))
			}

			createInput := func(contents []string) (validateInput, error) {
				list, rest, err := keywordsInput(keywordList, contents)
				if err != nil {
					return validateInput{}, err
				}
				return validateInput{keywords: list, jobDescription: rest[0]}, nil
			}

			logDetails := func(in validateInput, cfg common.CommandConfig) {
				logger.Info("Validating keywords",
					"keywords", len(in.keywords),
					"job_chars", len(in.jobDescription),
					"output_format", cfg.OutputFormat)
			}

			run := func(_ context.Context, in validateInput) (validate.Report, *semantic.Usage, error) {
				return validate.BuildReport(in.keywords, in.jobDescription), nil, nil
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args, createInput, run, logDetails)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringSliceVarP(&keywordList, "keywords", "k", nil, "Keywords to validate (comma separated or repeated)")
	return cmd
}

func newCategorizeCmd() *cobra.Command {
	var cmdConfig common.CommandConfig
	var keywordList []string

	cmd := &cobra.Command{
		Use:   "categorize [keywords-file]",
		Short: "Categorize keywords and suggest where each belongs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(keywordList) > 0 {
				// Nothing to read; format the flag list directly.
				return common.NewOutputHandlerWithWriter(getLoggerFromContext(cmd.Context()), cmd.OutOrStdout()).
					HandleOutput(validate.Categorize(keywordList), cmdConfig)
			}
			if len(args) == 0 {
				return fmt.Errorf("a keywords file or --keywords is required")
			}

			createInput := func(contents []string) ([]string, error) {
				list, _, err := keywordsInput(nil, contents)
				return list, err
			}

			run := func(_ context.Context, list []string) ([]validate.KeywordReport, *semantic.Usage, error) {
				return validate.Categorize(list), nil, nil
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args, createInput, run, nil)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringSliceVarP(&keywordList, "keywords", "k", nil, "Keywords to categorize (comma separated or repeated)")
	return cmd
}

func newDebugMatchCmd() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "debug-match [keyword] [resume-file]",
		Short: "Explain how a keyword is matched against a resume",
		Long: `Show the normalized keyword, the matching strategy it uses, the outcome
of the substring and token checks, and, when it is missing, resume words that
share its first letters.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := args[0]

			createInput := func(contents []string) (string, error) {
				return contents[0], nil
			}

			run := func(_ context.Context, resume string) (validate.MatchDebug, *semantic.Usage, error) {
				return validate.DebugKeywordMatch(keyword, resume), nil, nil
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args[1:], createInput, run, nil)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	return cmd
}
