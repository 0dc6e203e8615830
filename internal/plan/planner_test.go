package plan_test

import (
	"testing"

	"github.com/mongrate/mongrate/internal/mapping"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/plan"
	"github.com/mongrate/mongrate/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSamplePlan(t *testing.T) *plan.Plan {
	t.Helper()
	s := models.SampleSchema()
	analysis := schema.Analyze(s)
	m := mapping.Map(s, analysis)
	return plan.Build(s, analysis, m)
}

func TestBuildOverview(t *testing.T) {
	p := buildSamplePlan(t)

	assert.Equal(t, 5, p.Overview.TotalTables)
	assert.Equal(t, 5, p.Overview.TotalCollections)
	assert.Equal(t, "Low", p.Overview.ComplexityLevel)
	assert.Equal(t, "3-5 days", p.Overview.EstimatedDuration)
	assert.Equal(t, "MongoDB", p.Overview.TargetDatabase)
}

func TestBuildPhases(t *testing.T) {
	p := buildSamplePlan(t)

	require.Len(t, p.Phases, 5)
	for i, phase := range p.Phases {
		assert.Equal(t, i+1, phase.Phase)
		assert.NotEmpty(t, phase.Name)
		assert.NotEmpty(t, phase.Tasks)
	}

	// Each phase after the first depends on its predecessor.
	assert.Empty(t, p.Phases[0].Dependencies)
	assert.Equal(t, []string{"Phase 1"}, p.Phases[1].Dependencies)
	assert.Equal(t, []string{"Phase 4"}, p.Phases[4].Dependencies)
}

func TestBuildTimelineScalesWithComplexity(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"Low", "5 days"},
		{"Medium", "10 days"},
		{"High", "20 days"},
		{"unknown", "10 days"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			s := models.SampleSchema()
			analysis := schema.Analyze(s)
			analysis.Complexity.Level = tt.level
			p := plan.Build(s, analysis, mapping.Map(s, analysis))
			assert.Equal(t, tt.want, p.Timeline.TotalDuration)
		})
	}
}

func TestGenerateScripts(t *testing.T) {
	s := models.SampleSchema()
	analysis := schema.Analyze(s)
	m := mapping.Map(s, analysis)
	scripts := plan.GenerateScripts(s, m)

	require.Len(t, scripts.SetupScripts, 5)
	require.Len(t, scripts.MigrationScripts, 5)
	require.Len(t, scripts.ValidationScripts, 1)

	var names []string
	for _, sc := range scripts.SetupScripts {
		names = append(names, sc.Filename)
	}
	assert.Contains(t, names, "setup_users.js")
	assert.Contains(t, names, "setup_order_items.js")

	names = names[:0]
	for _, sc := range scripts.MigrationScripts {
		names = append(names, sc.Filename)
	}
	assert.Contains(t, names, "migrate_users.py")
	assert.Contains(t, names, "migrate_order_items.py")

	assert.Equal(t, "validate_migration.py", scripts.ValidationScripts[0].Filename)
}

func TestSetupScriptContent(t *testing.T) {
	p := buildSamplePlan(t)

	var users plan.Script
	for _, sc := range p.Scripts.SetupScripts {
		if sc.Filename == "setup_users.js" {
			users = sc
		}
	}
	require.NotEmpty(t, users.Content)

	assert.Contains(t, users.Content, `db.createCollection("users");`)
	assert.Contains(t, users.Content, `db.users.createIndex({"_id": 1});`)
	assert.Contains(t, users.Content, `db.users.createIndex({"email": 1}, {unique: true});`)
	assert.Contains(t, users.Content, "$jsonSchema")
	assert.Contains(t, users.Content, `"email"`)
}

func TestMigrationScriptContent(t *testing.T) {
	p := buildSamplePlan(t)

	var orders plan.Script
	for _, sc := range p.Scripts.MigrationScripts {
		if sc.Filename == "migrate_orders.py" {
			orders = sc
		}
	}
	require.NotEmpty(t, orders.Content)

	assert.Contains(t, orders.Content, "SELECT * FROM orders")
	assert.Contains(t, orders.Content, `"_id": row.id`)
	assert.Contains(t, orders.Content, `"user_id": row.user_id`)
}

func TestAssessRisksFlagsLargeTables(t *testing.T) {
	s := models.SampleSchema()
	s.Tables[0].EstimatedRows = 5_000_000
	analysis := schema.Analyze(s)
	p := plan.Build(s, analysis, mapping.Map(s, analysis))

	var found bool
	for _, r := range p.RiskAssessment.IdentifiedRisks {
		if r.Risk == "Large table migration: users" {
			found = true
			assert.Equal(t, "Batch processing and monitoring", r.Mitigation)
		}
	}
	assert.True(t, found, "expected a large table risk for users")
}

func TestAssessRisksOverallLevel(t *testing.T) {
	p := buildSamplePlan(t)
	assert.Equal(t, "Medium", p.RiskAssessment.OverallRiskLevel)
	assert.NotEmpty(t, p.RiskAssessment.Recommendations)

	s := models.SampleSchema()
	for i := range s.Tables {
		s.Tables[i].EstimatedRows = 2_000_000
	}
	analysis := schema.Analyze(s)
	p = plan.Build(s, analysis, mapping.Map(s, analysis))
	assert.Equal(t, "High", p.RiskAssessment.OverallRiskLevel)
}
