package store

import (
	"context"
	"time"

	"github.com/commdesk/cts/internal/domain"
	"github.com/commdesk/cts/internal/store/schema"
)

// CreateEmailLogInput holds the origination fields of an email submission
type CreateEmailLogInput struct {
	SenderName         string
	Recipient          string
	Subject            string
	Body               string
	EmailType          string
	Attachments        []domain.AttachmentFile
	RequesterIP        string
	RequesterUserAgent string
}

// CreateDocumentLogInput holds the origination fields of a document submission
type CreateDocumentLogInput struct {
	SenderName         string
	DocType            string
	Subject            string
	Direction          string
	Remarks            string
	ForwardedTo        string
	COF                string
	Attachments        []domain.AttachmentFile
	RequesterIP        string
	RequesterUserAgent string
}

// UpdateStatusInput describes one status transition for a record
type UpdateStatusInput struct {
	Record      domain.RecordRef
	Status      string
	Direction   string
	ForwardedTo string
	COF         string
	Remarks     string
	UpdatedBy   string
	Attachments []domain.AttachmentFile
}

// UpdatedRecord is the record state after a status update; exactly one of
// the two fields is set, matching the record type of the update
type UpdatedRecord struct {
	Email    *schema.EmailLog
	Document *schema.DocumentLog
}

// RecordQueryFilter narrows record listings
type RecordQueryFilter struct {
	// Search matches sender, subject, recipient/doc type and tracking number
	Search    string
	Status    string
	Direction string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// EmailStats holds aggregate figures over all email logs
type EmailStats struct {
	Total            int64      `gorm:"column:total"`
	UniqueRecipients int64      `gorm:"column:unique_recipients"`
	AvgAttachments   float64    `gorm:"column:avg_attachments"`
	LastLoggedAt     *time.Time `gorm:"column:last_logged_at"`
}

// DocumentStats holds aggregate figures over all document logs
type DocumentStats struct {
	Total          int64      `gorm:"column:total"`
	Incoming       int64      `gorm:"column:incoming"`
	Outgoing       int64      `gorm:"column:outgoing"`
	AvgAttachments float64    `gorm:"column:avg_attachments"`
	LastLoggedAt   *time.Time `gorm:"column:last_logged_at"`
}

// FileVersionsResult is the read-side view of a document's version ledger
type FileVersionsResult struct {
	CurrentVersion int
	Versions       []schema.FileVersion
}

// Store defines the interface for database operations
type Store interface {
	// CreateEmailLog persists an email submission with a freshly allocated tracking number
	CreateEmailLog(ctx context.Context, input CreateEmailLogInput) (*schema.EmailLog, error)
	// CreateDocumentLog persists a document submission with a freshly allocated tracking number
	CreateDocumentLog(ctx context.Context, input CreateDocumentLogInput) (*schema.DocumentLog, error)
	// GetEmailLogByID retrieves an email log by its internal ID
	GetEmailLogByID(ctx context.Context, id int64) (*schema.EmailLog, error)
	// GetDocumentLogByID retrieves a document log by its internal ID
	GetDocumentLogByID(ctx context.Context, id int64) (*schema.DocumentLog, error)
	// GetDocumentLogByTrackingNumber retrieves a document log by its tracking number
	GetDocumentLogByTrackingNumber(ctx context.Context, trackingNumber string) (*schema.DocumentLog, error)
	// ListEmailLogs retrieves email logs matching the filter plus the total match count
	ListEmailLogs(ctx context.Context, filter RecordQueryFilter) ([]schema.EmailLog, int64, error)
	// ListDocumentLogs retrieves document logs matching the filter plus the total match count
	ListDocumentLogs(ctx context.Context, filter RecordQueryFilter) ([]schema.DocumentLog, int64, error)
	// GetEmailStats computes aggregate stats over all email logs
	GetEmailStats(ctx context.Context) (*EmailStats, error)
	// GetDocumentStats computes aggregate stats over all document logs
	GetDocumentStats(ctx context.Context) (*DocumentStats, error)
	// UpdateStatus applies one status transition: mutates the record's current
	// fields, appends a history row and, for documents with new attachments, a
	// file version row, all in one transaction
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*UpdatedRecord, error)
	// GetStatusHistory retrieves a record's history entries, newest first
	GetStatusHistory(ctx context.Context, ref domain.RecordRef) ([]schema.StatusHistory, error)
	// GetStatusCounts counts records by their latest status, optionally
	// restricted to one record type
	GetStatusCounts(ctx context.Context, recordType *domain.RecordType) (map[string]int64, error)
	// GetFileVersions retrieves a document's file version ledger
	GetFileVersions(ctx context.Context, documentID int64) (*FileVersionsResult, error)
}
