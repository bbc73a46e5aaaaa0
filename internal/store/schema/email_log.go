package schema

import (
	"time"

	"gorm.io/datatypes"
)

// EmailLog represents the email_logs table - one row per logged outgoing email
type EmailLog struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TrackingNumber is the allocator-assigned identifier (CTS-YYMMDD-NNN), immutable after creation
	TrackingNumber string `gorm:"column:tracking_number;not null;uniqueIndex;type:text"`
	// SenderName is the name of the person who logged the email
	SenderName string `gorm:"column:sender_name;not null;type:text"`
	// Recipient is the destination address or name
	Recipient string `gorm:"column:recipient;not null;type:text"`
	// Subject is the email subject line
	Subject string `gorm:"column:subject;not null;type:text"`
	// Body is the email body as submitted
	Body string `gorm:"column:body;not null;type:text"`
	// EmailType is a free-form category (e.g., "Official", "Personal")
	EmailType string `gorm:"column:email_type;type:text"`
	// AttachmentCount is the number of attachments stored for this record
	AttachmentCount int `gorm:"column:attachment_count;not null;default:0"`
	// Attachments is the flat list of attachment files as JSON ({originalName, storedName, uploadedBy})
	Attachments datatypes.JSON `gorm:"column:attachments;type:jsonb"`

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
}

// TableName specifies the table name for the EmailLog model
func (EmailLog) TableName() string {
	return "email_logs"
}
