package schema_test

import (
	"fmt"
	"testing"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipsFromForeignKeys(t *testing.T) {
	s := models.SampleSchema()
	rels := schema.Relationships(s)

	require.Len(t, rels, 5)

	byFrom := map[string]models.Relationship{}
	for _, r := range rels {
		byFrom[r.FromTable+"."+r.FromColumn] = r
	}

	// A required FK column reads many rows pointing at one parent.
	products := byFrom["products.category_id"]
	assert.Equal(t, "categories", products.ToTable)
	assert.Equal(t, models.RelationshipManyToOne, products.Kind)

	// A nullable FK column is treated as the optional side of one_to_many.
	parent := byFrom["categories.parent_id"]
	assert.Equal(t, "categories", parent.ToTable)
	assert.Equal(t, models.RelationshipOneToMany, parent.Kind)

	orders := byFrom["orders.user_id"]
	assert.Equal(t, "users", orders.ToTable)
	assert.Equal(t, models.RelationshipManyToOne, orders.Kind)
}

func TestRelationshipsEmptyWithoutForeignKeys(t *testing.T) {
	s := &models.SchemaDescription{
		DatabaseName: "flat",
		Tables: []models.Table{
			{Name: "events", Columns: []models.Column{{Name: "id", Type: "INT", IsPrimaryKey: true}}},
		},
	}
	assert.Empty(t, schema.Relationships(s))
}

func TestExtractConstraints(t *testing.T) {
	cs := schema.ExtractConstraints(models.SampleSchema())

	assert.Len(t, cs.PrimaryKeys, 5)
	for _, pk := range cs.PrimaryKeys {
		assert.Equal(t, "id", pk.Column)
	}

	uniques := map[string]bool{}
	for _, u := range cs.UniqueConstraints {
		uniques[u.Table+"."+u.Column] = true
	}
	assert.True(t, uniques["users.username"])
	assert.True(t, uniques["users.email"])
	assert.True(t, uniques["categories.name"])

	assert.NotEmpty(t, cs.NotNull)
}

func TestAssessComplexitySampleIsLow(t *testing.T) {
	c := schema.AssessComplexity(models.SampleSchema())

	assert.Equal(t, 0, c.Score)
	assert.Equal(t, "Low", c.Level)
	assert.Empty(t, c.Factors)
}

func TestAssessComplexityScoring(t *testing.T) {
	wide := &models.SchemaDescription{DatabaseName: "wide"}
	for i := 0; i < 25; i++ {
		wide.Tables = append(wide.Tables, models.Table{
			Name: fmt.Sprintf("table_%d", i),
			Columns: []models.Column{
				{Name: "id", Type: "INT", IsPrimaryKey: true},
				{Name: "payload", Type: "JSON"},
			},
		})
	}

	c := schema.AssessComplexity(wide)
	// 3 for table count, 2 for JSON columns.
	assert.Equal(t, 5, c.Score)
	assert.Equal(t, "High", c.Level)
	assert.Contains(t, c.Factors, "Large number of tables")
	assert.Contains(t, c.Factors, "Complex data types present")
}

func TestAssessComplexityMediumBand(t *testing.T) {
	medium := &models.SchemaDescription{DatabaseName: "medium"}
	for i := 0; i < 12; i++ {
		medium.Tables = append(medium.Tables, models.Table{
			Name:    fmt.Sprintf("table_%d", i),
			Columns: []models.Column{{Name: "id", Type: "INT", IsPrimaryKey: true}, {Name: "blob_col", Type: "BLOB"}},
		})
	}

	c := schema.AssessComplexity(medium)
	assert.Equal(t, 4, c.Score)
	assert.Equal(t, "Medium", c.Level)
}

func TestRecommendations(t *testing.T) {
	// The sample has only 5 relationships and no _details tables.
	assert.Empty(t, schema.Recommendations(models.SampleSchema()))

	dense := &models.SchemaDescription{DatabaseName: "dense"}
	dense.Tables = append(dense.Tables, models.Table{
		Name:    "hub",
		Columns: []models.Column{{Name: "id", Type: "INT", IsPrimaryKey: true}},
	})
	for i := 0; i < 11; i++ {
		dense.Tables = append(dense.Tables, models.Table{
			Name: fmt.Sprintf("spoke_%d", i),
			Columns: []models.Column{
				{Name: "id", Type: "INT", IsPrimaryKey: true},
				{Name: "hub_id", Type: "INT", IsForeignKey: true, ReferencesTable: "hub", ReferencesColumn: "id"},
			},
		})
	}
	dense.Tables = append(dense.Tables, models.Table{
		Name:    "order_details",
		Columns: []models.Column{{Name: "id", Type: "INT", IsPrimaryKey: true}},
	})

	recs := schema.Recommendations(dense)
	require.Len(t, recs, 2)
	assert.Equal(t, "denormalization", recs[0].Type)
	assert.Equal(t, "document_structure", recs[1].Type)
}

func TestAnalyzeAssemblesAllSections(t *testing.T) {
	a := schema.Analyze(models.SampleSchema())

	assert.Len(t, a.Tables, 5)
	assert.Len(t, a.Relationships, 5)
	assert.Len(t, a.Constraints.PrimaryKeys, 5)
	assert.Equal(t, "Low", a.Complexity.Level)
}
