// Package database handles relational database connections and schema
// inspection.
//
// It wraps GORM and configures either a MySQL or a SQLite connection from
// the application's configuration. The sync feature uses it to mirror stored
// documents into a table.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// database within the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for either dialect.
// MissingColumns compares a table against the columns a model expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "synced_documents", []string{"document_id"})
package database
