package keywords

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanSQLScenario(t *testing.T) {
	engine := NewEngine()
	in := PlanInput{
		JobDescription: "Requirements: 3+ years SQL. Responsibilities: Build dashboards with SQL.",
		Resume:         "Built SQL queries to track metrics.",
	}

	candidates, meta := engine.Candidates(in)
	assert.Contains(t, meta.Sections.RequiredQualifications, "3+ years SQL")
	assert.Contains(t, meta.Sections.Responsibilities, "Build dashboards with SQL")

	var sql *Candidate
	for i := range candidates {
		if candidates[i].Term == "sql" {
			sql = &candidates[i]
		}
	}
	require.NotNil(t, sql)
	assert.Equal(t, 2, sql.JDTf)
	assert.True(t, sql.ResumePresent)
	assert.Equal(t, Tool, sql.Type)
	assert.True(t, sql.Where.Has(Skills))
	assert.True(t, sql.Where.Has(Bullet))
	assert.Equal(t, Critical, sql.Priority)
	require.NotNil(t, sql.Evidence)
	assert.True(t, sql.Evidence.Supported)
	assert.Contains(t, sql.Evidence.Excerpt, "SQL queries to track metrics")

	plan := engine.BuildPlan(in)
	require.NotEmpty(t, plan.Top10)
	assert.Equal(t, "sql", plan.Top10[0].Term)
	assert.Equal(t, "sql", plan.Top10[0].Snippets.Skills)
	assert.Equal(t, []string{"sql"}, plan.Validation.Valid)
	assert.Empty(t, plan.Validation.Invalid)
	assert.Equal(t, []string{"sql"}, plan.Keywords.Resume)
}

func TestBuildPlanHeaderless(t *testing.T) {
	in := PlanInput{
		JobDescription: "We build data tools. Our data tools help teams ship data products faster with Python and Python notebooks.",
		Resume:         "Analyst who ships Python notebooks.",
	}
	plan := NewEngine().BuildPlan(in)

	assert.Equal(t, strings.TrimSpace(in.JobDescription), plan.Metadata.Sections.Other)
	assert.Empty(t, plan.Metadata.Sections.RequiredQualifications)
	require.NotEmpty(t, plan.Top10)
	for _, s := range plan.Top10 {
		assert.Equal(t, Nice, s.Priority, s.Term)
	}
	assert.Contains(t, plan.Keywords.Resume, "python")
	assert.Contains(t, plan.Keywords.Missing, "data")
}

func TestBuildPlanEmptyInputs(t *testing.T) {
	engine := NewEngine()
	for _, in := range []PlanInput{{}, {JobDescription: "Go Go Go"}, {Resume: "Go developer"}} {
		plan := engine.BuildPlan(in)
		assert.NotNil(t, plan.Top10)
		for _, s := range plan.Top10 {
			assert.False(t, s.Supported)
		}
	}
}

func TestBuildPlanTruncatesToTopN(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Requirements:\n")
	for i := range 40 {
		fmt.Fprintf(&sb, "tool%02d tool%02d\n", i, i)
	}
	plan := NewEngine().BuildPlan(PlanInput{JobDescription: sb.String()})

	assert.Len(t, plan.Top10, TopN)
	assert.LessOrEqual(t, len(plan.Candidates), 30)
	assert.Len(t, plan.Keywords.JD, len(plan.Candidates))

	small := NewEngine(WithTopN(3), WithMaxTerms(5)).BuildPlan(PlanInput{JobDescription: sb.String()})
	assert.Len(t, small.Top10, 3)
	assert.Len(t, small.Candidates, 5)
}

func TestBuildPlanDeterministic(t *testing.T) {
	in := PlanInput{
		JobDescription: "Responsibilities:\nOwn Kafka pipelines and Kafka consumers.\nRequirements:\nGo, Go modules, SQL, SQL tuning, A/B testing, A/B testing culture",
		Resume:         "Go engineer. Tuned SQL. Ran A/B testing.",
		RoleTitle:      "Backend Engineer",
	}
	engine := NewEngine()
	first, err := json.Marshal(engine.BuildPlan(in))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = json.Marshal(engine.BuildPlan(in))
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.JSONEq(t, string(first), string(r))
	}
}

func TestBuildPlanJSONShape(t *testing.T) {
	plan := NewEngine().BuildPlan(PlanInput{
		JobDescription: "Requirements: SQL and SQL. Nice to have: Agile, agile rituals.",
		Resume:         "SQL",
		RoleTitle:      "Analyst",
	})
	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "top10")
	assert.Contains(t, decoded, "keywords")
	assert.Contains(t, decoded, "validation")

	top := decoded["top10"].([]any)
	require.NotEmpty(t, top)
	first := top[0].(map[string]any)
	assert.Equal(t, "critical", first["priority"])
	assert.Equal(t, []any{"skills", "bullet"}, first["where"])
}

func TestWithWeightsKeepsTables(t *testing.T) {
	custom := Weights{Section: 10, Frequency: 1, Type: 1, Presence: 0, Discount: 0}
	engine := NewEngine(WithWeights(custom))
	candidates, _ := engine.Candidates(PlanInput{JobDescription: "Requirements: SQL. SQL."})

	require.NotEmpty(t, candidates)
	assert.InDelta(t, 10*3+1*2+1*2, candidates[0].Score, 1e-9)
}
