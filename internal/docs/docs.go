package docs

import (
	"fmt"
	"strings"
	"time"

	"github.com/mongrate/mongrate/internal/mapping"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/plan"
	"github.com/mongrate/mongrate/internal/schema"
)

// DocumentSet is the structured output of the document stage: one markdown
// document per well-known name.
type DocumentSet map[string]string

const (
	DocMigrationGuide  = "migration_guide"
	DocAPIReference    = "api_documentation"
	DocDataModel       = "data_model_documentation"
	DocTroubleshooting = "troubleshooting_guide"
	DocUserManual      = "user_manual"
	DocTechnicalSpec   = "technical_specifications"
)

// Generate renders the full documentation set from the accumulated run
// context. The generatedAt timestamp is injected so two renders of the same
// run produce identical bytes.
func Generate(s *models.SchemaDescription, analysis *schema.Analysis, m *mapping.Mapping, p *plan.Plan, generatedAt time.Time) DocumentSet {
	return DocumentSet{
		DocMigrationGuide:  migrationGuide(s, analysis, m, p, generatedAt),
		DocAPIReference:    apiDocumentation(m),
		DocDataModel:       dataModelDocumentation(m),
		DocTroubleshooting: troubleshootingGuide(p),
		DocUserManual:      userManual(m),
		DocTechnicalSpec:   technicalSpecifications(s, analysis, m),
	}
}

func migrationGuide(s *models.SchemaDescription, analysis *schema.Analysis, m *mapping.Mapping, p *plan.Plan, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# SQL to MongoDB Migration Guide\n\n")
	fmt.Fprintf(&b, "## Overview\n\n")
	fmt.Fprintf(&b, "This document describes the migration of the `%s` database from a relational schema to MongoDB collections.\n\n", s.DatabaseName)
	fmt.Fprintf(&b, "**Generated:** %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Source Database:** SQL Database\n")
	fmt.Fprintf(&b, "**Target Database:** MongoDB\n")
	fmt.Fprintf(&b, "**Complexity Level:** %s\n\n", analysis.Complexity.Level)

	fmt.Fprintf(&b, "## Migration Summary\n\n")
	fmt.Fprintf(&b, "- **Total Tables:** %d\n", len(s.Tables))
	fmt.Fprintf(&b, "- **Total Collections:** %d\n", len(m.Collections))
	fmt.Fprintf(&b, "- **Estimated Duration:** %s\n", p.Timeline.TotalDuration)
	fmt.Fprintf(&b, "- **Migration Strategy:** %s\n\n", p.Overview.MigrationStrategy)

	fmt.Fprintf(&b, "## Pre-Migration Checklist\n\n")
	fmt.Fprintf(&b, "- [ ] Set up MongoDB cluster\n")
	fmt.Fprintf(&b, "- [ ] Configure network connectivity\n")
	fmt.Fprintf(&b, "- [ ] Create backup of source database\n")
	fmt.Fprintf(&b, "- [ ] Set up monitoring and logging\n\n")

	fmt.Fprintf(&b, "## Migration Phases\n\n")
	for _, phase := range p.Phases {
		fmt.Fprintf(&b, "### Phase %d: %s\n\n", phase.Phase, phase.Name)
		fmt.Fprintf(&b, "**Duration:** %s\n", phase.Duration)
		fmt.Fprintf(&b, "**Description:** %s\n\n", phase.Description)
		fmt.Fprintf(&b, "**Tasks:**\n")
		for _, task := range phase.Tasks {
			fmt.Fprintf(&b, "- %s\n", task)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## Post-Migration Validation\n\n")
	for _, check := range p.ValidationPlan.DataIntegrityChecks {
		fmt.Fprintf(&b, "- %s\n", check)
	}

	fmt.Fprintf(&b, "\n## Rollback Procedures\n\n")
	for i, step := range p.RollbackPlan.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	return b.String()
}

func apiDocumentation(m *mapping.Mapping) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# MongoDB API Documentation\n\n")
	fmt.Fprintf(&b, "## Database Connection\n\n")
	fmt.Fprintf(&b, "```python\nfrom pymongo import MongoClient\n\nclient = MongoClient('mongodb://localhost:27017/')\ndb = client['migrated_db']\n```\n\n")
	fmt.Fprintf(&b, "## Collection APIs\n\n")

	for _, cm := range m.Collections {
		fmt.Fprintf(&b, "### %s Collection\n\n", cm.Collection)
		fmt.Fprintf(&b, "**Original SQL Table:** %s\n\n", cm.SQLTable)
		fmt.Fprintf(&b, "```python\n")
		fmt.Fprintf(&b, "# Find one document\ndb.%s.find_one({'_id': value})\n\n", cm.Collection)
		fmt.Fprintf(&b, "# Insert a document\ndb.%s.insert_one(document)\n\n", cm.Collection)
		fmt.Fprintf(&b, "# Update a document\ndb.%s.update_one({'_id': value}, {'$set': changes})\n", cm.Collection)
		fmt.Fprintf(&b, "```\n\n")
	}

	return b.String()
}

func dataModelDocumentation(m *mapping.Mapping) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Model Documentation\n\n")

	for _, cm := range m.Collections {
		fmt.Fprintf(&b, "## %s\n\n", cm.Collection)
		fmt.Fprintf(&b, "Mapped from SQL table `%s`.\n\n", cm.SQLTable)
		fmt.Fprintf(&b, "| Field | Type | Required | Unique |\n")
		fmt.Fprintf(&b, "|-------|------|----------|--------|\n")
		fmt.Fprintf(&b, "| _id | %s | yes | yes |\n", cm.PrimaryKeyMapping.Type)
		for _, f := range cm.Fields {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.Field, f.Type, yesNo(f.Required), yesNo(f.Unique))
		}
		fmt.Fprintf(&b, "\n")

		if len(cm.Relationships) > 0 {
			fmt.Fprintf(&b, "**Relationships:**\n\n")
			for _, r := range cm.Relationships {
				fmt.Fprintf(&b, "- `%s.%s` → `%s.%s` (%s)\n", r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.Kind)
			}
			fmt.Fprintf(&b, "\n")
		}
	}

	if len(m.Indexes) > 0 {
		fmt.Fprintf(&b, "## Indexes\n\n")
		for _, idx := range m.Indexes {
			fmt.Fprintf(&b, "- `%s`: %s\n", idx.Collection, idx.Description)
		}
	}

	return b.String()
}

func troubleshootingGuide(p *plan.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Troubleshooting Guide\n\n")
	fmt.Fprintf(&b, "## Common Issues\n\n")
	fmt.Fprintf(&b, "### Record count mismatch\n\n")
	fmt.Fprintf(&b, "Run `validate_migration.py` to compare per-collection counts against the source tables. Re-run the affected migration script after resolving the cause.\n\n")
	fmt.Fprintf(&b, "### Slow queries after migration\n\n")
	fmt.Fprintf(&b, "Verify the suggested indexes were created. Use `db.collection.explain()` on slow queries to confirm index usage.\n\n")
	fmt.Fprintf(&b, "### Document validation failures\n\n")
	fmt.Fprintf(&b, "The setup scripts install $jsonSchema validators for required fields. Inspect rejected documents for missing fields from non-nullable SQL columns.\n\n")

	fmt.Fprintf(&b, "## Rollback Triggers\n\n")
	for _, trigger := range p.RollbackPlan.Triggers {
		fmt.Fprintf(&b, "- %s\n", trigger)
	}

	fmt.Fprintf(&b, "\n## Rollback Steps\n\n")
	for i, step := range p.RollbackPlan.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\nExpected rollback window: %s.\n", p.RollbackPlan.Timeline)

	return b.String()
}

func userManual(m *mapping.Mapping) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# User Manual\n\n")
	fmt.Fprintf(&b, "## Working With the Migrated Database\n\n")
	fmt.Fprintf(&b, "The migrated system stores data in %d MongoDB collections. Each collection corresponds to one table of the original SQL database:\n\n", len(m.Collections))
	for _, cm := range m.Collections {
		fmt.Fprintf(&b, "- `%s` (was table `%s`)\n", cm.Collection, cm.SQLTable)
	}
	fmt.Fprintf(&b, "\n## Accessing Data\n\n")
	fmt.Fprintf(&b, "Use any MongoDB client or driver. Primary keys from the SQL tables are preserved as the `_id` field, so existing identifiers remain valid lookups.\n\n")
	fmt.Fprintf(&b, "## Related Data\n\n")
	fmt.Fprintf(&b, "Foreign key relationships are represented either as references (an `_id` stored in a field) or embedded subdocuments. See the data model documentation for the strategy chosen per relationship.\n")

	return b.String()
}

func technicalSpecifications(s *models.SchemaDescription, analysis *schema.Analysis, m *mapping.Mapping) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Technical Specifications\n\n")
	fmt.Fprintf(&b, "## Source Schema\n\n")
	fmt.Fprintf(&b, "- Database: `%s`\n", s.DatabaseName)
	fmt.Fprintf(&b, "- Tables: %d\n", len(s.Tables))
	fmt.Fprintf(&b, "- Foreign key relationships: %d\n", len(analysis.Relationships))
	fmt.Fprintf(&b, "- Migration complexity: %s (score %d)\n\n", analysis.Complexity.Level, analysis.Complexity.Score)

	fmt.Fprintf(&b, "## Type Mappings\n\n")
	fmt.Fprintf(&b, "| Collection | SQL Column | SQL Type | BSON Type |\n")
	fmt.Fprintf(&b, "|------------|-----------|----------|----------|\n")
	for _, cm := range m.Collections {
		table := s.Table(cm.SQLTable)
		for _, f := range cm.Fields {
			sqlType := ""
			if table != nil {
				for _, c := range table.Columns {
					if c.Name == f.SQLColumn {
						sqlType = c.Type
						break
					}
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cm.Collection, f.SQLColumn, sqlType, f.Type)
		}
	}

	fmt.Fprintf(&b, "\n## Relationship Strategies\n\n")
	if len(m.Relationships) == 0 {
		fmt.Fprintf(&b, "No foreign key relationships in the source schema.\n")
	} else {
		for _, rs := range m.Relationships {
			fmt.Fprintf(&b, "- %s → %s: %s (%s)\n", rs.FromCollection, rs.ToCollection, rs.Strategy, rs.Kind)
		}
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
