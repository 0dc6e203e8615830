package plan

import (
	"fmt"
	"strings"

	"github.com/mongrate/mongrate/internal/mapping"
	"github.com/mongrate/mongrate/internal/models"
)

// GenerateScripts renders the per-table script stubs: a mongosh setup script
// per collection, a migration stub per table and one validation script. The
// stubs are artifacts for a human to review, never executed here.
func GenerateScripts(s *models.SchemaDescription, m *mapping.Mapping) Scripts {
	var scripts Scripts

	for _, cm := range m.Collections {
		scripts.SetupScripts = append(scripts.SetupScripts, setupScript(cm))
		scripts.MigrationScripts = append(scripts.MigrationScripts, migrationScript(cm))
	}
	scripts.ValidationScripts = append(scripts.ValidationScripts, validationScript(m.Collections))

	return scripts
}

func setupScript(cm mapping.CollectionMapping) Script {
	var b strings.Builder

	fmt.Fprintf(&b, "// MongoDB setup script for the %s collection\n\n", cm.Collection)
	fmt.Fprintf(&b, "use migrated_db;\n\n")
	fmt.Fprintf(&b, "db.createCollection(%q);\n\n", cm.Collection)

	fmt.Fprintf(&b, "db.%s.createIndex({\"_id\": 1});\n", cm.Collection)
	for _, f := range cm.Fields {
		if f.Indexed {
			fmt.Fprintf(&b, "db.%s.createIndex({%q: 1}, {unique: %t});\n", cm.Collection, f.Field, f.Unique)
		}
	}

	var required []string
	for _, f := range cm.Fields {
		if f.Required {
			required = append(required, fmt.Sprintf("%q", f.Field))
		}
	}
	if len(required) > 0 {
		fmt.Fprintf(&b, "\ndb.runCommand({\n")
		fmt.Fprintf(&b, "  collMod: %q,\n", cm.Collection)
		fmt.Fprintf(&b, "  validator: {\n")
		fmt.Fprintf(&b, "    $jsonSchema: {\n")
		fmt.Fprintf(&b, "      bsonType: \"object\",\n")
		fmt.Fprintf(&b, "      required: [%s]\n", strings.Join(required, ", "))
		fmt.Fprintf(&b, "    }\n")
		fmt.Fprintf(&b, "  }\n")
		fmt.Fprintf(&b, "});\n")
	}

	return Script{
		Filename:    fmt.Sprintf("setup_%s.js", cm.Collection),
		Content:     b.String(),
		Description: fmt.Sprintf("MongoDB setup script for %s collection", cm.Collection),
	}
}

func migrationScript(cm mapping.CollectionMapping) Script {
	var b strings.Builder

	fmt.Fprintf(&b, "\"\"\"\nMigration script stub for %s -> %s\n\"\"\"\n\n", cm.SQLTable, cm.Collection)
	fmt.Fprintf(&b, "from pymongo import MongoClient\n")
	fmt.Fprintf(&b, "from sqlalchemy import create_engine, text\n\n\n")
	fmt.Fprintf(&b, "def migrate_%s(sql_url, mongo_url):\n", strings.ToLower(cm.SQLTable))
	fmt.Fprintf(&b, "    engine = create_engine(sql_url)\n")
	fmt.Fprintf(&b, "    collection = MongoClient(mongo_url)[\"migrated_db\"][%q]\n\n", cm.Collection)
	fmt.Fprintf(&b, "    with engine.connect() as conn:\n")
	fmt.Fprintf(&b, "        rows = conn.execute(text(\"SELECT * FROM %s\")).fetchall()\n\n", cm.SQLTable)
	fmt.Fprintf(&b, "    documents = [\n")
	fmt.Fprintf(&b, "        {\n")
	fmt.Fprintf(&b, "            \"_id\": row.%s,\n", cm.PrimaryKeyMapping.SQLColumn)
	for _, f := range cm.Fields {
		fmt.Fprintf(&b, "            %q: row.%s,\n", f.Field, f.SQLColumn)
	}
	fmt.Fprintf(&b, "        }\n")
	fmt.Fprintf(&b, "        for row in rows\n")
	fmt.Fprintf(&b, "    ]\n\n")
	fmt.Fprintf(&b, "    if documents:\n")
	fmt.Fprintf(&b, "        collection.insert_many(documents)\n")

	return Script{
		Filename:    fmt.Sprintf("migrate_%s.py", strings.ToLower(cm.SQLTable)),
		Content:     b.String(),
		Description: fmt.Sprintf("Migration script stub for %s table", cm.SQLTable),
	}
}

func validationScript(collections []mapping.CollectionMapping) Script {
	var names []string
	for _, cm := range collections {
		names = append(names, fmt.Sprintf("(%q, %q)", cm.SQLTable, cm.Collection))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"\nRecord count validation for the migrated collections\n\"\"\"\n\n")
	fmt.Fprintf(&b, "from pymongo import MongoClient\n")
	fmt.Fprintf(&b, "from sqlalchemy import create_engine, text\n\n")
	fmt.Fprintf(&b, "PAIRS = [%s]\n\n\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "def validate(sql_url, mongo_url):\n")
	fmt.Fprintf(&b, "    engine = create_engine(sql_url)\n")
	fmt.Fprintf(&b, "    db = MongoClient(mongo_url)[\"migrated_db\"]\n")
	fmt.Fprintf(&b, "    errors = []\n\n")
	fmt.Fprintf(&b, "    for table, collection in PAIRS:\n")
	fmt.Fprintf(&b, "        with engine.connect() as conn:\n")
	fmt.Fprintf(&b, "            sql_count = conn.execute(text(f\"SELECT COUNT(*) FROM {table}\")).scalar()\n")
	fmt.Fprintf(&b, "        mongo_count = db[collection].count_documents({})\n")
	fmt.Fprintf(&b, "        if sql_count != mongo_count:\n")
	fmt.Fprintf(&b, "            errors.append(f\"{collection}: SQL={sql_count} MongoDB={mongo_count}\")\n\n")
	fmt.Fprintf(&b, "    return errors\n")

	return Script{
		Filename:    "validate_migration.py",
		Content:     b.String(),
		Description: "Record count validation script",
	}
}
