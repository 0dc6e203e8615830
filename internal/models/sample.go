package models

// SampleSchema returns the demo e-commerce schema used by `mongrate run --sample`
// and the test suite.
func SampleSchema() *SchemaDescription {
	return &SchemaDescription{
		DatabaseName: "ecommerce_db",
		Tables: []Table{
			{
				Name: "users",
				Columns: []Column{
					{Name: "id", Type: "INT", IsPrimaryKey: true, IsUnique: true},
					{Name: "username", Type: "VARCHAR(50)", IsUnique: true},
					{Name: "email", Type: "VARCHAR(100)", IsUnique: true},
					{Name: "first_name", Type: "VARCHAR(50)"},
					{Name: "last_name", Type: "VARCHAR(50)"},
					{Name: "created_at", Type: "TIMESTAMP"},
					{Name: "updated_at", Type: "TIMESTAMP", Nullable: true},
				},
			},
			{
				Name: "products",
				Columns: []Column{
					{Name: "id", Type: "INT", IsPrimaryKey: true, IsUnique: true},
					{Name: "name", Type: "VARCHAR(100)"},
					{Name: "description", Type: "TEXT", Nullable: true},
					{Name: "price", Type: "DECIMAL(10,2)"},
					{Name: "category_id", Type: "INT", IsForeignKey: true, ReferencesTable: "categories", ReferencesColumn: "id"},
					{Name: "stock_quantity", Type: "INT"},
					{Name: "created_at", Type: "TIMESTAMP"},
				},
			},
			{
				Name: "categories",
				Columns: []Column{
					{Name: "id", Type: "INT", IsPrimaryKey: true, IsUnique: true},
					{Name: "name", Type: "VARCHAR(50)", IsUnique: true},
					{Name: "description", Type: "TEXT", Nullable: true},
					{Name: "parent_id", Type: "INT", Nullable: true, IsForeignKey: true, ReferencesTable: "categories", ReferencesColumn: "id"},
				},
			},
			{
				Name: "orders",
				Columns: []Column{
					{Name: "id", Type: "INT", IsPrimaryKey: true, IsUnique: true},
					{Name: "user_id", Type: "INT", IsForeignKey: true, ReferencesTable: "users", ReferencesColumn: "id"},
					{Name: "order_date", Type: "TIMESTAMP"},
					{Name: "total_amount", Type: "DECIMAL(10,2)"},
					{Name: "status", Type: "VARCHAR(20)"},
					{Name: "shipping_address", Type: "TEXT"},
				},
			},
			{
				Name: "order_items",
				Columns: []Column{
					{Name: "id", Type: "INT", IsPrimaryKey: true, IsUnique: true},
					{Name: "order_id", Type: "INT", IsForeignKey: true, ReferencesTable: "orders", ReferencesColumn: "id"},
					{Name: "product_id", Type: "INT", IsForeignKey: true, ReferencesTable: "products", ReferencesColumn: "id"},
					{Name: "quantity", Type: "INT"},
					{Name: "unit_price", Type: "DECIMAL(10,2)"},
				},
			},
		},
	}
}
