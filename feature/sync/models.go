package sync

import "time"

// Document kinds mirrored into the database.
const (
	KindSolver   = "solver"
	KindAnalysis = "analysis"
)

// SyncedDocument is a stored result document mirrored into the database.
type SyncedDocument struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID string    `gorm:"column:document_id;size:255;uniqueIndex;not null" json:"document_id"`
	Kind       string    `gorm:"column:kind;size:32;index;not null" json:"kind"`
	Payload    string    `gorm:"column:payload;type:longtext" json:"-"`
	Checksum   string    `gorm:"column:checksum;size:64" json:"checksum"`
	SyncedAt   time.Time `gorm:"column:synced_at" json:"synced_at"`
}

// TableName returns the table name for the model.
func (SyncedDocument) TableName() string {
	return "synced_documents"
}

// Columns lists the columns the service reads and writes.
var Columns = []string{"id", "document_id", "kind", "payload", "checksum", "synced_at"}
