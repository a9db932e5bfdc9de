package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// Names and types are lower-cased.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Cid       int
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Default: col.DfltValue,
				Null:    "YES",
			}
			if col.Notnull != 0 {
				info.Null = "NO"
			}
			if col.Pk != 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// MissingColumns returns the expected columns absent from tableName, sorted.
// A table that does not exist reports every expected column.
func MissingColumns(db *gorm.DB, tableName string, expected []string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col.Field] = true
	}

	var missing []string
	for _, name := range expected {
		if !present[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
