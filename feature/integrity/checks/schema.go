package checks

import (
	"fmt"

	"project-aggregator/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
}

// CheckSchema verifies table carries every expected column.
func CheckSchema(db *gorm.DB, table string, columns []string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	missing, err := database.MissingColumns(db, table, columns)
	if err != nil {
		return nil, err
	}
	if missing == nil {
		missing = []string{}
	}
	return &SchemaReport{
		Table:          table,
		Matched:        len(missing) == 0,
		MissingColumns: missing,
	}, nil
}
