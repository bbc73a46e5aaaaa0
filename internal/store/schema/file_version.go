package schema

import (
	"time"

	"gorm.io/datatypes"
)

// FileVersion represents the file_versions table - one row per attachment batch
// added to a document record. Rows are immutable once written; the document's
// current_file_version always equals the highest version_number here.
type FileVersion struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// DocumentID references the owning document_logs row
	DocumentID int64 `gorm:"column:document_id;not null;uniqueIndex:idx_file_versions_document_version,priority:1"`
	// VersionNumber starts at 1 and increases by exactly 1 per batch
	VersionNumber int `gorm:"column:version_number;not null;uniqueIndex:idx_file_versions_document_version,priority:2"`
	// Files is the batch content as JSON ({originalName, storedName, uploadedBy})
	Files datatypes.JSON `gorm:"column:files;not null;type:jsonb"`
	// UploadedBy is who added the batch
	UploadedBy string `gorm:"column:uploaded_by;type:text"`
	// CreatedAt is when the batch was added
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the FileVersion model
func (FileVersion) TableName() string {
	return "file_versions"
}
