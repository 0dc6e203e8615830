package mapping

import (
	"fmt"
	"strings"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/schema"
)

// Mapping is the structured output of the map stage: per-table collection
// mappings plus relationship, index and embedding strategies.
type Mapping struct {
	Collections         []CollectionMapping    `json:"collections"`
	Relationships       []RelationshipStrategy `json:"relationships"`
	Indexes             []IndexSuggestion      `json:"indexes"`
	EmbeddingStrategies []EmbeddingStrategy    `json:"embedding_strategies"`
}

type CollectionMapping struct {
	SQLTable          string                `json:"sql_table"`
	Collection        string                `json:"nosql_collection"`
	PrimaryKeyMapping PrimaryKeyMapping     `json:"primary_key_mapping"`
	Fields            []FieldMapping        `json:"field_mappings"`
	Relationships     []models.Relationship `json:"relationships,omitempty"`
}

type PrimaryKeyMapping struct {
	SQLColumn string `json:"sql_column"`
	Field     string `json:"nosql_field"`
	Type      string `json:"type"`
}

type FieldMapping struct {
	SQLColumn string `json:"sql_column"`
	Field     string `json:"nosql_field"`
	Type      string `json:"type"`
	Required  bool   `json:"required"`
	Unique    bool   `json:"unique,omitempty"`
	Indexed   bool   `json:"indexed,omitempty"`
}

type RelationshipStrategy struct {
	FromCollection string                  `json:"from_collection"`
	ToCollection   string                  `json:"to_collection"`
	Kind           models.RelationshipKind `json:"relationship_type"`
	Strategy       string                  `json:"strategy"`
	FieldName      string                  `json:"field_name"`
	Description    string                  `json:"description"`
}

type IndexSuggestion struct {
	Collection  string         `json:"collection"`
	Keys        map[string]int `json:"index"`
	Unique      bool           `json:"unique"`
	Description string         `json:"description"`
}

type EmbeddingStrategy struct {
	ParentCollection string             `json:"parent_collection"`
	Opportunities    []EmbedOpportunity `json:"embedding_opportunities"`
}

type EmbedOpportunity struct {
	ChildTable      string `json:"child_table"`
	ChildCollection string `json:"child_collection"`
	Reason          string `json:"reason"`
}

// sqlTypeMapping maps SQL type keywords to BSON type names. Matching is a
// substring check against the upper-cased declared type, so VARCHAR(50) and
// DECIMAL(10,2) resolve the same as their bare forms.
var sqlTypeMapping = []struct {
	sql  string
	bson string
}{
	{"VARCHAR", "string"},
	{"TEXT", "string"},
	{"BIGINT", "int64"},
	{"INT", "int32"},
	{"DECIMAL", "decimal128"},
	{"FLOAT", "double"},
	{"DOUBLE", "double"},
	{"BOOLEAN", "bool"},
	{"DATETIME", "date"},
	{"DATE", "date"},
	{"TIMESTAMP", "timestamp"},
	{"JSON", "object"},
	{"BLOB", "binData"},
}

func BSONType(sqlType string) string {
	upper := strings.ToUpper(sqlType)
	for _, m := range sqlTypeMapping {
		if strings.Contains(upper, m.sql) {
			return m.bson
		}
	}
	return "string"
}

func CollectionName(table string) string {
	return strings.ToLower(table)
}

func Map(s *models.SchemaDescription, analysis *schema.Analysis) *Mapping {
	m := &Mapping{}

	for _, t := range s.Tables {
		m.Collections = append(m.Collections, mapCollection(t, analysis.Relationships))
	}
	m.Relationships = relationshipStrategies(analysis.Relationships)
	m.Indexes = suggestIndexes(m.Collections)
	m.EmbeddingStrategies = embeddingStrategies(s, analysis.Relationships)

	return m
}

func mapCollection(t models.Table, rels []models.Relationship) CollectionMapping {
	cm := CollectionMapping{
		SQLTable:          t.Name,
		Collection:        CollectionName(t.Name),
		PrimaryKeyMapping: mapPrimaryKey(t),
	}

	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			continue
		}
		cm.Fields = append(cm.Fields, FieldMapping{
			SQLColumn: c.Name,
			Field:     c.Name,
			Type:      BSONType(c.Type),
			Required:  !c.Nullable,
			Unique:    c.IsUnique,
			Indexed:   c.IsUnique,
		})
	}

	for _, r := range rels {
		if r.FromTable == t.Name {
			cm.Relationships = append(cm.Relationships, r)
		}
	}

	return cm
}

func mapPrimaryKey(t models.Table) PrimaryKeyMapping {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return PrimaryKeyMapping{SQLColumn: c.Name, Field: "_id", Type: BSONType(c.Type)}
		}
	}
	return PrimaryKeyMapping{SQLColumn: "id", Field: "_id", Type: "ObjectId"}
}

func relationshipStrategies(rels []models.Relationship) []RelationshipStrategy {
	var strategies []RelationshipStrategy
	for _, r := range rels {
		strategy := chooseStrategy(r)
		rs := RelationshipStrategy{
			FromCollection: CollectionName(r.FromTable),
			ToCollection:   CollectionName(r.ToTable),
			Kind:           r.Kind,
			Strategy:       strategy,
		}
		if strategy == "embed" {
			rs.FieldName = r.ToTable + "_data"
			rs.Description = fmt.Sprintf("Embed %s documents in %s", r.ToTable, r.FromTable)
		} else {
			rs.FieldName = r.ToTable + "_id"
			rs.Description = fmt.Sprintf("Store reference to %s in %s", r.ToTable, r.FromTable)
		}
		strategies = append(strategies, rs)
	}
	return strategies
}

// chooseStrategy embeds low-cardinality one_to_many edges and references
// everything else. Reference is the safe default.
func chooseStrategy(r models.Relationship) string {
	if r.Kind == models.RelationshipOneToMany {
		return "embed"
	}
	return "reference"
}

func suggestIndexes(collections []CollectionMapping) []IndexSuggestion {
	var indexes []IndexSuggestion
	for _, cm := range collections {
		indexes = append(indexes, IndexSuggestion{
			Collection:  cm.Collection,
			Keys:        map[string]int{"_id": 1},
			Unique:      true,
			Description: "Primary key index",
		})
		for _, f := range cm.Fields {
			if f.Indexed {
				indexes = append(indexes, IndexSuggestion{
					Collection:  cm.Collection,
					Keys:        map[string]int{f.Field: 1},
					Unique:      f.Unique,
					Description: fmt.Sprintf("Index on %s", f.Field),
				})
			}
		}
	}
	return indexes
}

func embeddingStrategies(s *models.SchemaDescription, rels []models.Relationship) []EmbeddingStrategy {
	var strategies []EmbeddingStrategy
	for _, t := range s.Tables {
		var opportunities []EmbedOpportunity
		for _, r := range rels {
			if r.FromTable == t.Name && r.Kind == models.RelationshipOneToMany {
				opportunities = append(opportunities, EmbedOpportunity{
					ChildTable:      r.ToTable,
					ChildCollection: CollectionName(r.ToTable),
					Reason:          "Frequently accessed together",
				})
			}
		}
		if len(opportunities) > 0 {
			strategies = append(strategies, EmbeddingStrategy{
				ParentCollection: CollectionName(t.Name),
				Opportunities:    opportunities,
			})
		}
	}
	return strategies
}
