package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"keyplan/internal/common"
	"keyplan/internal/keywords"
	"keyplan/internal/semantic"
	"keyplan/internal/types"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var cmdConfig common.CommandConfig
	var jobTitle, roleTitle string

	cmd := &cobra.Command{
		Use:   "plan [job-description-file] [resume-file]",
		Short: "Rank job description keywords and plan where they go in a resume",
		Long: `Extract and rank the keywords of a job description, check which ones
your resume already covers, and recommend placements with evidence lines and
snippets for the top ten.

The job description may be plain text or an HTML page saved from a job
board. The resume file is optional; without it every keyword is reported as
missing.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())
			engine := keywords.NewEngine(cfg.Engine.EngineOptions()...)

			createInput := func(contents []string) (keywords.PlanInput, error) {
				in := keywords.PlanInput{
					JobDescription: contents[0],
					JobTitle:       jobTitle,
					RoleTitle:      roleTitle,
				}
				if in.RoleTitle == "" {
					in.RoleTitle = jobTitle
				}
				if len(contents) > 1 {
					in.Resume = contents[1]
				}
				if strings.TrimSpace(in.JobDescription) == "" {
					return in, fmt.Errorf("job description file %s is empty", args[0])
				}
				return in, nil
			}

			logDetails := func(in keywords.PlanInput, cfg common.CommandConfig) {
				logger.Info("Building keyword plan",
					"job_chars", len(in.JobDescription),
					"resume_chars", len(in.Resume),
					"output_format", cfg.OutputFormat)
			}

			plan := func(_ context.Context, in keywords.PlanInput) (keywords.Plan, *semantic.Usage, error) {
				return engine.BuildPlan(in), nil, nil
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args, createInput, plan, logDetails)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringVar(&jobTitle, "title", "", "Job title reported in the plan")
	cmd.Flags().StringVar(&roleTitle, "role", "", "Role title used in the headline snippet (default: job title)")
	return cmd
}

func newPlanBatchCmd() *cobra.Command {
	var cmdConfig common.CommandConfig
	var roleTitle string

	cmd := &cobra.Command{
		Use:   "plan-batch [resume-file] [job-description-file...]",
		Short: "Plan one resume against several job descriptions",
		Long: `Build a keyword plan for each job description against the same resume.
Plans run concurrently and are reported in argument order, each identified by
its job description file name.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())
			engine := keywords.NewEngine(cfg.Engine.EngineOptions()...)

			if n := len(args) - 1; cfg.Engine.MaxBatchSize > 0 && n > cfg.Engine.MaxBatchSize {
				return fmt.Errorf("too many job descriptions: %d (max %d)", n, cfg.Engine.MaxBatchSize)
			}

			createInput := func(contents []string) (types.BatchPlanRequest, error) {
				req := types.BatchPlanRequest{Resume: contents[0], RoleTitle: roleTitle}
				for i, jd := range contents[1:] {
					name := filepath.Base(args[i+1])
					req.Jobs = append(req.Jobs, types.BatchJob{
						ID:             strings.TrimSuffix(name, filepath.Ext(name)),
						JobDescription: jd,
					})
				}
				return req, nil
			}

			logDetails := func(req types.BatchPlanRequest, cc common.CommandConfig) {
				logger.Info("Building keyword plans",
					"jobs", len(req.Jobs),
					"resume_chars", len(req.Resume),
					"concurrency", cfg.Engine.BatchConcurrency,
					"output_format", cc.OutputFormat)
			}

			planAll := func(ctx context.Context, req types.BatchPlanRequest) (types.BatchPlanResponse, *semantic.Usage, error) {
				resp, err := common.PlanBatch(ctx, req, cfg.Engine.BatchConcurrency,
					func(_ context.Context, in keywords.PlanInput) keywords.Plan {
						return engine.BuildPlan(in)
					})
				return resp, nil, err
			}

			return common.RunCommand(cmd.Context(), runner(cmd), cmdConfig, args, createInput, planAll, logDetails)
		},
	}

	addOutputFlags(cmd, &cmdConfig)
	cmd.Flags().StringVar(&roleTitle, "role", "", "Role title used in the headline snippets")
	return cmd
}
