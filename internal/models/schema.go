package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// SchemaDescription is the input to the pipeline: an ordered set of SQL table
// descriptors. It is constructed once (from a file or the built-in sample) and
// never mutated afterwards.
type SchemaDescription struct {
	DatabaseName string  `json:"database_name"`
	Tables       []Table `json:"tables"`
}

type Table struct {
	Name          string   `json:"name"`
	Columns       []Column `json:"columns"`
	EstimatedRows int64    `json:"estimated_rows,omitempty"`
}

type Column struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	Nullable         bool   `json:"nullable"`
	IsPrimaryKey     bool   `json:"is_primary_key,omitempty"`
	IsUnique         bool   `json:"is_unique,omitempty"`
	IsForeignKey     bool   `json:"is_foreign_key,omitempty"`
	ReferencesTable  string `json:"references_table,omitempty"`
	ReferencesColumn string `json:"references_column,omitempty"`
}

type RelationshipKind string

const (
	RelationshipOneToMany RelationshipKind = "one_to_many"
	RelationshipManyToOne RelationshipKind = "many_to_one"
)

// Relationship is a foreign-key edge derived from the schema. A nullable FK
// column is treated as one_to_many, a required one as many_to_one.
type Relationship struct {
	FromTable  string           `json:"from_table"`
	FromColumn string           `json:"from_column"`
	ToTable    string           `json:"to_table"`
	ToColumn   string           `json:"to_column"`
	Kind       RelationshipKind `json:"relationship_type"`
}

func LoadSchema(path string) (*SchemaDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schema SchemaDescription
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return &schema, nil
}

// Validate checks the schema before stage 1 runs. Every downstream stage
// depends on it, so a malformed schema fails the whole run up front.
func (s *SchemaDescription) Validate() error {
	if s.DatabaseName == "" {
		return fmt.Errorf("schema validation: database_name is required")
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("schema validation: at least one table is required")
	}

	tableNames := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.Name == "" {
			return fmt.Errorf("schema validation: table with empty name")
		}
		if tableNames[t.Name] {
			return fmt.Errorf("schema validation: duplicate table %q", t.Name)
		}
		tableNames[t.Name] = true

		if len(t.Columns) == 0 {
			return fmt.Errorf("schema validation: table %q has no columns", t.Name)
		}
		colNames := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("schema validation: table %q has a column with empty name", t.Name)
			}
			if colNames[c.Name] {
				return fmt.Errorf("schema validation: duplicate column %q in table %q", c.Name, t.Name)
			}
			colNames[c.Name] = true
			if c.Type == "" {
				return fmt.Errorf("schema validation: column %s.%s has no type", t.Name, c.Name)
			}
			if c.IsForeignKey && (c.ReferencesTable == "" || c.ReferencesColumn == "") {
				return fmt.Errorf("schema validation: foreign key %s.%s is missing references", t.Name, c.Name)
			}
		}
	}

	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if c.IsForeignKey && !tableNames[c.ReferencesTable] {
				return fmt.Errorf("schema validation: foreign key %s.%s references unknown table %q", t.Name, c.Name, c.ReferencesTable)
			}
		}
	}

	return nil
}

func (s *SchemaDescription) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
