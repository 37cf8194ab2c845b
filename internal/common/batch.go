package common

import (
	"context"
	"strconv"

	"keyplan/internal/keywords"
	"keyplan/internal/types"

	"golang.org/x/sync/errgroup"
)

// PlanFunc builds one plan. It is called concurrently.
type PlanFunc func(ctx context.Context, in keywords.PlanInput) keywords.Plan

// PlanBatch plans the request's resume against each job with at most
// concurrency plans in flight. Results keep request order and jobs without
// an ID are numbered from 1. It fails only when ctx is cancelled.
func PlanBatch(ctx context.Context, req types.BatchPlanRequest, concurrency int, plan PlanFunc) (types.BatchPlanResponse, error) {
	results := make([]types.BatchPlanItem, len(req.Jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))
	for i, job := range req.Jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := job.ID
			if id == "" {
				id = strconv.Itoa(i + 1)
			}
			results[i] = types.BatchPlanItem{
				ID: id,
				Plan: plan(gctx, keywords.PlanInput{
					JobDescription: job.JobDescription,
					Resume:         req.Resume,
					JobTitle:       job.JobTitle,
					RoleTitle:      req.RoleTitle,
				}),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.BatchPlanResponse{}, err
	}
	return types.BatchPlanResponse{Results: results}, nil
}
