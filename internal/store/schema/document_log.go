package schema

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentLog represents the document_logs table - one row per logged physical document
type DocumentLog struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TrackingNumber is the allocator-assigned identifier (CTS-YYMMDD-NNN), immutable after creation
	TrackingNumber string `gorm:"column:tracking_number;not null;uniqueIndex;type:text"`
	// SenderName is the name of the person who logged the document
	SenderName string `gorm:"column:sender_name;not null;type:text"`
	// DocType is the document category (e.g., "Memo", "Letter")
	DocType string `gorm:"column:doc_type;not null;type:text"`
	// Subject is the document subject line
	Subject string `gorm:"column:subject;not null;type:text"`
	// Direction records whether the document is incoming or outgoing at creation
	Direction string `gorm:"column:direction;not null;type:text"`
	// Remarks holds free-form notes captured at creation
	Remarks string `gorm:"column:remarks;type:text"`
	// ForwardedTo is the office or person the document was routed to at creation
	ForwardedTo string `gorm:"column:forwarded_to;type:text"`
	// COF is the care-of person or office at creation
	COF string `gorm:"column:cof;type:text"`
	// AttachmentCount is the total file count across all versions
	AttachmentCount int `gorm:"column:attachment_count;not null;default:0"`
	// Attachments is the flat list of attachment files as JSON for quick non-versioned access
	Attachments datatypes.JSON `gorm:"column:attachments;type:jsonb"`
	// CurrentFileVersion equals the highest version number in file_versions (0 = none)
	CurrentFileVersion int `gorm:"column:current_file_version;not null;default:0"`

	// Mutable current-state fields, written only by status updates
	CurrentStatus        string     `gorm:"column:current_status;type:text"`
	CurrentDirection     string     `gorm:"column:current_direction;type:text"`
	CurrentForwardedTo   string     `gorm:"column:current_forwarded_to;type:text"`
	CurrentCOF           string     `gorm:"column:current_cof;type:text"`
	CurrentStatusRemarks string     `gorm:"column:current_status_remarks;type:text"`
	StatusUpdatedAt      *time.Time `gorm:"column:status_updated_at;type:timestamptz"`
	StatusUpdatedBy      string     `gorm:"column:status_updated_by;type:text"`

	// RequesterIP is the client address the submission arrived from
	RequesterIP string `gorm:"column:requester_ip;type:text"`
	// RequesterUserAgent is the client user agent of the submission
	RequesterUserAgent string `gorm:"column:requester_user_agent;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	FileVersions []FileVersion `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the DocumentLog model
func (DocumentLog) TableName() string {
	return "document_logs"
}
