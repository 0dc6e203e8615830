package schema

import (
	"strings"

	"github.com/mongrate/mongrate/internal/models"
)

// Analysis is the structured output of the analyze stage.
type Analysis struct {
	Tables          []models.Table        `json:"tables"`
	Relationships   []models.Relationship `json:"relationships"`
	Constraints     Constraints           `json:"constraints"`
	Complexity      Complexity            `json:"migration_complexity"`
	Recommendations []Recommendation      `json:"recommendations"`
}

type Constraints struct {
	PrimaryKeys       []ColumnRef `json:"primary_keys"`
	UniqueConstraints []ColumnRef `json:"unique_constraints"`
	NotNull           []ColumnRef `json:"not_null_constraints"`
}

type ColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Type   string `json:"type,omitempty"`
}

type Complexity struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

type Recommendation struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func Analyze(s *models.SchemaDescription) *Analysis {
	return &Analysis{
		Tables:          s.Tables,
		Relationships:   Relationships(s),
		Constraints:     ExtractConstraints(s),
		Complexity:      AssessComplexity(s),
		Recommendations: Recommendations(s),
	}
}

// Relationships derives the foreign-key edges of the schema. A nullable FK
// column yields one_to_many, a required one many_to_one.
func Relationships(s *models.SchemaDescription) []models.Relationship {
	var rels []models.Relationship
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if !c.IsForeignKey {
				continue
			}
			kind := models.RelationshipManyToOne
			if c.Nullable {
				kind = models.RelationshipOneToMany
			}
			rels = append(rels, models.Relationship{
				FromTable:  t.Name,
				FromColumn: c.Name,
				ToTable:    c.ReferencesTable,
				ToColumn:   c.ReferencesColumn,
				Kind:       kind,
			})
		}
	}
	return rels
}

func ExtractConstraints(s *models.SchemaDescription) Constraints {
	var cs Constraints
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if c.IsPrimaryKey {
				cs.PrimaryKeys = append(cs.PrimaryKeys, ColumnRef{Table: t.Name, Column: c.Name, Type: c.Type})
			}
			if c.IsUnique {
				cs.UniqueConstraints = append(cs.UniqueConstraints, ColumnRef{Table: t.Name, Column: c.Name})
			}
			if !c.Nullable {
				cs.NotNull = append(cs.NotNull, ColumnRef{Table: t.Name, Column: c.Name})
			}
		}
	}
	return cs
}

var complexTypes = []string{"JSON", "BLOB", "CLOB", "XML"}

func AssessComplexity(s *models.SchemaDescription) Complexity {
	rels := Relationships(s)

	score := 0
	var factors []string

	switch {
	case len(s.Tables) > 20:
		score += 3
		factors = append(factors, "Large number of tables")
	case len(s.Tables) > 10:
		score += 2
		factors = append(factors, "Moderate number of tables")
	}

	switch {
	case len(rels) > 50:
		score += 3
		factors = append(factors, "Complex relationship network")
	case len(rels) > 20:
		score += 2
		factors = append(factors, "Moderate relationship complexity")
	}

	if hasComplexTypes(s) {
		score += 2
		factors = append(factors, "Complex data types present")
	}

	level := "Low"
	if score >= 5 {
		level = "High"
	} else if score >= 3 {
		level = "Medium"
	}

	return Complexity{Score: score, Level: level, Factors: factors}
}

func hasComplexTypes(s *models.SchemaDescription) bool {
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			upper := strings.ToUpper(c.Type)
			for _, ct := range complexTypes {
				if upper == ct {
					return true
				}
			}
		}
	}
	return false
}

func Recommendations(s *models.SchemaDescription) []Recommendation {
	var recs []Recommendation

	if len(Relationships(s)) > 10 {
		recs = append(recs, Recommendation{
			Type:        "denormalization",
			Description: "Consider denormalizing frequently accessed related data into single documents",
			Priority:    "high",
		})
	}

	for _, t := range s.Tables {
		if strings.HasSuffix(t.Name, "_details") {
			recs = append(recs, Recommendation{
				Type:        "document_structure",
				Description: "Consider embedding detail tables as subdocuments in parent collections",
				Priority:    "medium",
			})
			break
		}
	}

	return recs
}
