package schema

import (
	"time"
)

// StatusHistory represents the status_history table - append-only audit log of
// status transitions for both record types. Rows are never updated or deleted.
type StatusHistory struct {
	// ID is an auto-incrementing sequence number; the highest ID within a
	// (record_type, record_id) group is that record's latest transition
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// RecordType discriminates which table RecordID points into ("email" or "document")
	RecordType string `gorm:"column:record_type;not null;type:text;index:idx_status_history_record,priority:1"`
	// RecordID is the primary key of the referenced email or document row
	RecordID int64 `gorm:"column:record_id;not null;index:idx_status_history_record,priority:2"`
	// Status is the new status value ("Pending", "In Progress", "Completed", ...)
	Status string `gorm:"column:status;not null;type:text"`
	// Direction is the routing direction at the time of the transition
	Direction string `gorm:"column:direction;type:text"`
	// ForwardedTo is the office or person the record was routed to
	ForwardedTo string `gorm:"column:forwarded_to;type:text"`
	// COF is the care-of person or office
	COF string `gorm:"column:cof;type:text"`
	// Remarks holds free-form notes attached to the transition
	Remarks string `gorm:"column:remarks;type:text"`
	// AttachmentName is the stored name of a single attachment added with the
	// transition, when one was uploaded
	AttachmentName *string `gorm:"column:attachment_name;type:text"`
	// CreatedBy is who performed the transition
	CreatedBy string `gorm:"column:created_by;not null;type:text"`
	// CreatedAt is when the transition occurred
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the StatusHistory model
func (StatusHistory) TableName() string {
	return "status_history"
}
