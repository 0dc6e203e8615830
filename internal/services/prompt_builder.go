package services

import (
	"fmt"
	"strings"

	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/schema"
)

// PromptBuilder turns the schema plus every prior stage result into one stage
// prompt. Building is deterministic; only the model's reply is not.
type PromptBuilder func(s *models.SchemaDescription, prior []models.StageResult) string

func BuildAnalyzePrompt(s *models.SchemaDescription, prior []models.StageResult) string {
	return fmt.Sprintf(`You are an expert database architect with 15+ years of experience in both SQL and NoSQL databases. Analyze the following SQL database schema for a migration to MongoDB.

## Schema
%s

## Your Task

Provide an analysis covering:
1. Table relationships and foreign key dependencies
2. Data types and constraints
3. Normalization level and denormalization opportunities
4. Data access patterns implied by the structure
5. Migration complexity assessment

Respond in concise markdown.`, renderSchema(s))
}

func BuildMapPrompt(s *models.SchemaDescription, prior []models.StageResult) string {
	return fmt.Sprintf(`You are a senior data architect who designs MongoDB document structures for relational workloads. Based on the schema and the analysis below, map each SQL table to a MongoDB collection.

## Schema
%s

## Relationships
%s
%s
## Your Task

For each table, recommend:
1. The collection name and document structure
2. Embedding vs referencing for each relationship
3. Indexes to create
4. Any denormalization worth applying

Respond in concise markdown.`, renderSchema(s), renderRelationships(s), renderPrior(prior))
}

func BuildPlanPrompt(s *models.SchemaDescription, prior []models.StageResult) string {
	return fmt.Sprintf(`You are a senior database migration specialist with 20+ years of experience in large-scale migrations. Using the schema, analysis and mapping below, describe an execution strategy for the migration.

## Schema
%s
%s
## Your Task

Cover:
1. The order in which tables should be migrated
2. Validation steps between phases
3. Rollback triggers and procedures
4. The main risks and their mitigations

Respond in concise markdown.`, renderSchema(s), renderPrior(prior))
}

func BuildDocumentPrompt(s *models.SchemaDescription, prior []models.StageResult) string {
	return fmt.Sprintf(`You are a senior technical writer documenting a SQL to MongoDB migration. Using the schema and the outputs of the previous stages, write an executive summary of the migration for both technical and non-technical stakeholders.

## Schema
%s
%s
## Your Task

Summarize in a few paragraphs:
1. What is being migrated and why the chosen document model fits
2. How relationships are handled after the migration
3. What a reader should review before running the migration

Respond in concise markdown.`, renderSchema(s), renderPrior(prior))
}

func renderSchema(s *models.SchemaDescription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s\n", s.DatabaseName)
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "\nTable %s:\n", t.Name)
		for _, c := range t.Columns {
			var flags []string
			if c.IsPrimaryKey {
				flags = append(flags, "PK")
			}
			if c.IsUnique {
				flags = append(flags, "unique")
			}
			if c.Nullable {
				flags = append(flags, "nullable")
			}
			if c.IsForeignKey {
				flags = append(flags, fmt.Sprintf("FK -> %s.%s", c.ReferencesTable, c.ReferencesColumn))
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = fmt.Sprintf(" [%s]", strings.Join(flags, ", "))
			}
			fmt.Fprintf(&b, "- %s %s%s\n", c.Name, c.Type, suffix)
		}
	}
	return b.String()
}

func renderRelationships(s *models.SchemaDescription) string {
	rels := schema.Relationships(s)
	if len(rels) == 0 {
		return "No foreign key relationships.\n"
	}
	var b strings.Builder
	for _, r := range rels {
		fmt.Fprintf(&b, "- %s.%s -> %s.%s (%s)\n", r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.Kind)
	}
	return b.String()
}

func renderPrior(prior []models.StageResult) string {
	if len(prior) == 0 {
		return ""
	}
	var b strings.Builder
	for _, res := range prior {
		fmt.Fprintf(&b, "\n## Output of the %s stage\n\n", res.Stage)
		if res.Status == models.StageStatusFailed {
			fmt.Fprintf(&b, "(stage failed: %s)\n", res.Error)
			continue
		}
		fmt.Fprintf(&b, "%s\n", res.Narrative)
	}
	b.WriteString("\n")
	return b.String()
}
