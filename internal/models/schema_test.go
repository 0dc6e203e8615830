package models_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSample(t *testing.T) {
	require.NoError(t, models.SampleSchema().Validate())
}

func TestValidateRejectsMalformedSchemas(t *testing.T) {
	tests := []struct {
		name    string
		schema  models.SchemaDescription
		wantErr string
	}{
		{
			name:    "missing database name",
			schema:  models.SchemaDescription{Tables: []models.Table{{Name: "t", Columns: []models.Column{{Name: "id", Type: "INT"}}}}},
			wantErr: "database_name",
		},
		{
			name:    "no tables",
			schema:  models.SchemaDescription{DatabaseName: "db"},
			wantErr: "at least one table",
		},
		{
			name: "duplicate table",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t", Columns: []models.Column{{Name: "id", Type: "INT"}}},
				{Name: "t", Columns: []models.Column{{Name: "id", Type: "INT"}}},
			}},
			wantErr: "duplicate table",
		},
		{
			name: "table without columns",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t"},
			}},
			wantErr: "has no columns",
		},
		{
			name: "duplicate column",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t", Columns: []models.Column{{Name: "id", Type: "INT"}, {Name: "id", Type: "INT"}}},
			}},
			wantErr: "duplicate column",
		},
		{
			name: "column without type",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t", Columns: []models.Column{{Name: "id"}}},
			}},
			wantErr: "has no type",
		},
		{
			name: "foreign key without references",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t", Columns: []models.Column{{Name: "other_id", Type: "INT", IsForeignKey: true}}},
			}},
			wantErr: "missing references",
		},
		{
			name: "foreign key to unknown table",
			schema: models.SchemaDescription{DatabaseName: "db", Tables: []models.Table{
				{Name: "t", Columns: []models.Column{{Name: "other_id", Type: "INT", IsForeignKey: true, ReferencesTable: "missing", ReferencesColumn: "id"}}},
			}},
			wantErr: "unknown table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	content := `{
		"database_name": "shop",
		"tables": [
			{
				"name": "users",
				"columns": [
					{"name": "id", "type": "INT", "is_primary_key": true},
					{"name": "email", "type": "VARCHAR(100)", "is_unique": true}
				]
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	schema, err := models.LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", schema.DatabaseName)
	require.Len(t, schema.Tables, 1)
	assert.True(t, schema.Tables[0].Columns[0].IsPrimaryKey)
}

func TestLoadSchemaErrors(t *testing.T) {
	_, err := models.LoadSchema(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = models.LoadSchema(path)
	require.Error(t, err)
}

func TestTableLookup(t *testing.T) {
	s := models.SampleSchema()
	require.NotNil(t, s.Table("orders"))
	assert.Equal(t, "orders", s.Table("orders").Name)
	assert.Nil(t, s.Table("nonexistent"))
}

func TestRunAccessors(t *testing.T) {
	run := &models.PipelineRun{
		Results: []models.StageResult{
			{Stage: models.StageAnalyze, Status: models.StageStatusCompleted},
			{Stage: models.StageMap, Status: models.StageStatusFailed, Error: "boom"},
		},
	}

	assert.Equal(t, 2, run.Attempts())
	assert.Equal(t, []models.StageName{models.StageMap}, run.FailedStages())
	require.NotNil(t, run.Result(models.StageMap))
	assert.Equal(t, "boom", run.Result(models.StageMap).Error)
	assert.Nil(t, run.Result(models.StagePlan))
}
