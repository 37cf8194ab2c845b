package common

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"keyplan/internal/keywords"
	"keyplan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBatchKeepsOrderAndLimitsConcurrency(t *testing.T) {
	req := types.BatchPlanRequest{
		Resume:    "resume",
		RoleTitle: "Analyst",
		Jobs: []types.BatchJob{
			{ID: "a", JobDescription: "first", JobTitle: "A"},
			{JobDescription: "second"},
			{ID: "c", JobDescription: "third"},
		},
	}

	var inFlight, peak atomic.Int32
	plan := func(_ context.Context, in keywords.PlanInput) keywords.Plan {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		assert.Equal(t, "resume", in.Resume)
		assert.Equal(t, "Analyst", in.RoleTitle)
		return keywords.Plan{JobTitle: in.JobDescription}
	}

	resp, err := PlanBatch(context.Background(), req, 2, plan)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, "2", resp.Results[1].ID)
	assert.Equal(t, "c", resp.Results[2].ID)
	assert.Equal(t, "first", resp.Results[0].Plan.JobTitle)
	assert.Equal(t, "third", resp.Results[2].Plan.JobTitle)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPlanBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := types.BatchPlanRequest{Jobs: []types.BatchJob{{JobDescription: "jd"}}}
	_, err := PlanBatch(ctx, req, 0, func(context.Context, keywords.PlanInput) keywords.Plan {
		t.Fatal("plan must not run after cancellation")
		return keywords.Plan{}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
