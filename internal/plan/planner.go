package plan

import (
	"fmt"

	"github.com/mongrate/mongrate/internal/mapping"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/schema"
)

// Plan is the structured output of the plan stage. Validation and rollback are
// advisory content only; nothing in this repository executes them.
type Plan struct {
	Overview       Overview       `json:"migration_overview"`
	Phases         []Phase        `json:"phases"`
	Scripts        Scripts        `json:"scripts"`
	ValidationPlan ValidationPlan `json:"validation_plan"`
	RollbackPlan   RollbackPlan   `json:"rollback_plan"`
	Timeline       Timeline       `json:"timeline"`
	RiskAssessment RiskAssessment `json:"risk_assessment"`
}

type Overview struct {
	SourceDatabase    string `json:"source_database"`
	TargetDatabase    string `json:"target_database"`
	TotalTables       int    `json:"total_tables"`
	TotalCollections  int    `json:"total_collections"`
	MigrationStrategy string `json:"migration_strategy"`
	EstimatedDuration string `json:"estimated_duration"`
	ComplexityLevel   string `json:"complexity_level"`
}

type Phase struct {
	Phase        int      `json:"phase"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tasks        []string `json:"tasks"`
	Duration     string   `json:"duration"`
	Dependencies []string `json:"dependencies"`
}

type Scripts struct {
	MigrationScripts  []Script `json:"migration_scripts"`
	SetupScripts      []Script `json:"setup_scripts"`
	ValidationScripts []Script `json:"validation_scripts"`
}

type Script struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

type ValidationPlan struct {
	DataIntegrityChecks []string `json:"data_integrity_checks"`
	PerformanceChecks   []string `json:"performance_checks"`
	FunctionalChecks    []string `json:"functional_checks"`
}

type RollbackPlan struct {
	Triggers           []string `json:"rollback_triggers"`
	Steps              []string `json:"rollback_steps"`
	Timeline           string   `json:"rollback_timeline"`
	DataBackupStrategy string   `json:"data_backup_strategy"`
}

type Timeline struct {
	TotalDuration string   `json:"total_duration"`
	Preparation   string   `json:"preparation"`
	Migration     string   `json:"migration"`
	Validation    string   `json:"validation"`
	Factors       []string `json:"factors,omitempty"`
}

type RiskAssessment struct {
	IdentifiedRisks  []Risk   `json:"identified_risks"`
	OverallRiskLevel string   `json:"overall_risk_level"`
	Recommendations  []string `json:"recommendations"`
}

type Risk struct {
	Risk        string `json:"risk"`
	Impact      string `json:"impact"`
	Probability string `json:"probability"`
	Mitigation  string `json:"mitigation"`
}

func Build(s *models.SchemaDescription, analysis *schema.Analysis, m *mapping.Mapping) *Plan {
	return &Plan{
		Overview:       overview(s, analysis, m),
		Phases:         phases(),
		Scripts:        GenerateScripts(s, m),
		ValidationPlan: validationPlan(),
		RollbackPlan:   rollbackPlan(),
		Timeline:       timeline(analysis.Complexity),
		RiskAssessment: assessRisks(s, analysis.Complexity),
	}
}

func overview(s *models.SchemaDescription, analysis *schema.Analysis, m *mapping.Mapping) Overview {
	return Overview{
		SourceDatabase:    "SQL Database",
		TargetDatabase:    "MongoDB",
		TotalTables:       len(s.Tables),
		TotalCollections:  len(m.Collections),
		MigrationStrategy: "Phased approach with validation",
		EstimatedDuration: estimateDuration(analysis.Complexity.Level),
		ComplexityLevel:   analysis.Complexity.Level,
	}
}

func phases() []Phase {
	return []Phase{
		{
			Phase:       1,
			Name:        "Preparation and Setup",
			Description: "Set up target database, create collections, and prepare migration environment",
			Tasks: []string{
				"Create MongoDB database and collections",
				"Set up indexes as defined in mapping",
				"Prepare migration scripts and tools",
				"Set up monitoring and logging",
			},
			Duration:     "1-2 days",
			Dependencies: []string{},
		},
		{
			Phase:       2,
			Name:        "Data Migration - Core Tables",
			Description: "Migrate core business tables with minimal dependencies",
			Tasks: []string{
				"Migrate lookup and reference tables",
				"Migrate core entity tables",
				"Validate data integrity",
				"Test basic functionality",
			},
			Duration:     "2-3 days",
			Dependencies: []string{"Phase 1"},
		},
		{
			Phase:       3,
			Name:        "Data Migration - Related Tables",
			Description: "Migrate tables with foreign key relationships",
			Tasks: []string{
				"Migrate related tables in dependency order",
				"Update embedded documents",
				"Create and validate references",
				"Test relationship integrity",
			},
			Duration:     "3-5 days",
			Dependencies: []string{"Phase 2"},
		},
		{
			Phase:       4,
			Name:        "Validation and Testing",
			Description: "Comprehensive validation and performance testing",
			Tasks: []string{
				"Run data validation scripts",
				"Performance testing and optimization",
				"Application integration testing",
				"User acceptance testing",
			},
			Duration:     "2-3 days",
			Dependencies: []string{"Phase 3"},
		},
		{
			Phase:       5,
			Name:        "Cutover and Go-Live",
			Description: "Final cutover to new database system",
			Tasks: []string{
				"Final data synchronization",
				"Application deployment",
				"Monitoring and support",
				"Documentation updates",
			},
			Duration:     "1 day",
			Dependencies: []string{"Phase 4"},
		},
	}
}

func validationPlan() ValidationPlan {
	return ValidationPlan{
		DataIntegrityChecks: []string{
			"Record count validation",
			"Primary key uniqueness validation",
			"Foreign key relationship validation",
			"Data type validation",
			"Constraint validation",
		},
		PerformanceChecks: []string{
			"Query performance comparison",
			"Index effectiveness validation",
			"Response time benchmarking",
		},
		FunctionalChecks: []string{
			"Application integration testing",
			"API endpoint validation",
			"User workflow testing",
		},
	}
}

func rollbackPlan() RollbackPlan {
	return RollbackPlan{
		Triggers: []string{
			"Data integrity failures",
			"Performance degradation",
			"Application errors",
			"User acceptance issues",
		},
		Steps: []string{
			"Stop application traffic to new database",
			"Restore from backup if necessary",
			"Revert application configuration",
			"Restart services with original database",
			"Validate system functionality",
		},
		Timeline:           "2-4 hours",
		DataBackupStrategy: "Full backup before migration start",
	}
}

func timeline(c schema.Complexity) Timeline {
	baseDays := map[string]int{"Low": 5, "Medium": 10, "High": 20}
	days, ok := baseDays[c.Level]
	if !ok {
		days = 10
	}
	return Timeline{
		TotalDuration: fmt.Sprintf("%d days", days),
		Preparation:   "2-3 days",
		Migration:     fmt.Sprintf("%d days", days-4),
		Validation:    "2-3 days",
		Factors:       c.Factors,
	}
}

func assessRisks(s *models.SchemaDescription, c schema.Complexity) RiskAssessment {
	var risks []Risk

	if c.Level == "High" {
		risks = append(risks, Risk{
			Risk:        "High complexity migration",
			Impact:      "High",
			Probability: "Medium",
			Mitigation:  "Extended testing and validation phases",
		})
	}

	for _, t := range s.Tables {
		if t.EstimatedRows > 1_000_000 {
			risks = append(risks, Risk{
				Risk:        fmt.Sprintf("Large table migration: %s", t.Name),
				Impact:      "Medium",
				Probability: "High",
				Mitigation:  "Batch processing and monitoring",
			})
		}
	}

	level := "Medium"
	if len(risks) >= 3 {
		level = "High"
	}

	return RiskAssessment{
		IdentifiedRisks:  risks,
		OverallRiskLevel: level,
		Recommendations: []string{
			"Perform thorough testing in staging environment",
			"Implement comprehensive monitoring",
			"Prepare detailed rollback procedures",
			"Schedule migration during low-traffic periods",
		},
	}
}

func estimateDuration(level string) string {
	durations := map[string]string{
		"Low":    "3-5 days",
		"Medium": "7-10 days",
		"High":   "15-20 days",
	}
	if d, ok := durations[level]; ok {
		return d
	}
	return "7-10 days"
}
