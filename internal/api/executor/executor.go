package executor

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/commdesk/cts/internal/adapter"
	"github.com/commdesk/cts/internal/api/apierrors"
	"github.com/commdesk/cts/internal/domain"
	"github.com/commdesk/cts/internal/files"
	"github.com/commdesk/cts/internal/store"
	"github.com/commdesk/cts/internal/store/schema"
)

// exportMaxRows caps a single CSV export
const exportMaxRows = 10000

// AttachmentUpload carries one attachment's bytes from the HTTP layer
type AttachmentUpload struct {
	OriginalName string
	Data         []byte
}

// EmailSubmission is a validated-at-the-boundary email log request
type EmailSubmission struct {
	SenderName         string
	Recipient          string
	Subject            string
	Body               string
	EmailType          string
	Attachments        []AttachmentUpload
	RequesterIP        string
	RequesterUserAgent string
}

// DocumentSubmission is a validated-at-the-boundary document log request
type DocumentSubmission struct {
	SenderName         string
	DocType            string
	Subject            string
	Direction          string
	Remarks            string
	ForwardedTo        string
	COF                string
	Attachments        []AttachmentUpload
	RequesterIP        string
	RequesterUserAgent string
}

// StatusUpdate is one status transition request
type StatusUpdate struct {
	Record      domain.RecordRef
	Status      string
	Direction   string
	ForwardedTo string
	COF         string
	Remarks     string
	UpdatedBy   string
	Attachments []AttachmentUpload
}

// ListQuery narrows and paginates record listings
type ListQuery struct {
	Search    string
	Status    string
	Direction string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TimelineEntry is one row of a record's unified status timeline. The leading
// entry is synthesized from the record's origination fields and never persisted.
type TimelineEntry struct {
	Status         string
	Direction      string
	ForwardedTo    string
	COF            string
	Remarks        string
	CreatedBy      string
	AttachmentName *string
	CreatedAt      time.Time
	Origination    bool
}

// FileVersionView is one batch of a document's version ledger
type FileVersionView struct {
	VersionNumber int
	UploadedBy    string
	CreatedAt     time.Time
	Files         []domain.AttachmentFile
	IsCurrent     bool
}

// FileVersionsView splits a document's files into the current batch and
// everything before it
type FileVersionsView struct {
	CurrentVersion int
	NewFiles       []domain.AttachmentFile
	PreviousFiles  []domain.AttachmentFile
	Versions       []FileVersionView
}

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// LogEmail validates and persists an email submission
	LogEmail(ctx context.Context, submission EmailSubmission) (*schema.EmailLog, error)
	// LogDocument validates and persists a document submission
	LogDocument(ctx context.Context, submission DocumentSubmission) (*schema.DocumentLog, error)
	// ListEmails retrieves a page of email logs
	ListEmails(ctx context.Context, query ListQuery) ([]schema.EmailLog, *Pagination, error)
	// ListDocuments retrieves a page of document logs
	ListDocuments(ctx context.Context, query ListQuery) ([]schema.DocumentLog, *Pagination, error)
	// EmailStats computes aggregate email figures
	EmailStats(ctx context.Context) (*store.EmailStats, error)
	// DocumentStats computes aggregate document figures
	DocumentStats(ctx context.Context) (*store.DocumentStats, error)
	// DocumentByTrackingNumber looks a document up by its tracking number; nil when absent
	DocumentByTrackingNumber(ctx context.Context, trackingNumber string) (*schema.DocumentLog, error)
	// UpdateStatus validates and applies one status transition
	UpdateStatus(ctx context.Context, update StatusUpdate) (*store.UpdatedRecord, error)
	// Timeline builds a record's unified status timeline, newest first
	Timeline(ctx context.Context, ref domain.RecordRef) ([]TimelineEntry, error)
	// StatusCounts counts records by their latest status
	StatusCounts(ctx context.Context, recordType *domain.RecordType) (map[string]int64, error)
	// FileVersions retrieves a document's version ledger split into new and previous files
	FileVersions(ctx context.Context, documentID int64) (*FileVersionsView, error)
	// OpenAttachment opens a stored attachment for download
	OpenAttachment(storedName string) (adapter.File, error)
	// ExportCSV streams a filtered record listing as CSV
	ExportCSV(ctx context.Context, recordType domain.RecordType, query ListQuery, w io.Writer) error
}

type executor struct {
	store store.Store
	files files.Service
}

// NewExecutor creates the API executor
func NewExecutor(s store.Store, f files.Service) Executor {
	return &executor{store: s, files: f}
}

// saveAttachments persists the uploaded bytes and maps them to stored files
func (e *executor) saveAttachments(uploads []AttachmentUpload, uploadedBy string) ([]domain.AttachmentFile, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	saved := make([]domain.AttachmentFile, 0, len(uploads))
	for _, upload := range uploads {
		stored, err := e.files.Save(upload.OriginalName, upload.Data)
		if err != nil {
			return nil, apierrors.NewStorageError(fmt.Sprintf("Failed to store attachment: %v", err))
		}
		saved = append(saved, domain.AttachmentFile{
			OriginalName: stored.OriginalName,
			StoredName:   stored.StoredName,
			UploadedBy:   uploadedBy,
		})
	}
	return saved, nil
}

// LogEmail validates and persists an email submission
func (e *executor) LogEmail(ctx context.Context, submission EmailSubmission) (*schema.EmailLog, error) {
	var missing []string
	if submission.SenderName == "" {
		missing = append(missing, "sender_name is required")
	}
	if submission.Recipient == "" {
		missing = append(missing, "recipient is required")
	}
	if submission.Subject == "" {
		missing = append(missing, "subject is required")
	}
	if submission.Body == "" {
		missing = append(missing, "body is required")
	}
	if len(missing) > 0 {
		return nil, apierrors.NewValidationError(missing...)
	}

	attachments, err := e.saveAttachments(submission.Attachments, submission.SenderName)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.CreateEmailLog(ctx, store.CreateEmailLogInput{
		SenderName:         submission.SenderName,
		Recipient:          submission.Recipient,
		Subject:            submission.Subject,
		Body:               submission.Body,
		EmailType:          submission.EmailType,
		Attachments:        attachments,
		RequesterIP:        submission.RequesterIP,
		RequesterUserAgent: submission.RequesterUserAgent,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to log email: %v", err))
	}

	return rec, nil
}

// LogDocument validates and persists a document submission
func (e *executor) LogDocument(ctx context.Context, submission DocumentSubmission) (*schema.DocumentLog, error) {
	var missing []string
	if submission.SenderName == "" {
		missing = append(missing, "sender_name is required")
	}
	if submission.DocType == "" {
		missing = append(missing, "doc_type is required")
	}
	if submission.Subject == "" {
		missing = append(missing, "subject is required")
	}
	if submission.Direction == "" {
		missing = append(missing, "direction is required")
	}
	if len(missing) > 0 {
		return nil, apierrors.NewValidationError(missing...)
	}

	attachments, err := e.saveAttachments(submission.Attachments, submission.SenderName)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.CreateDocumentLog(ctx, store.CreateDocumentLogInput{
		SenderName:         submission.SenderName,
		DocType:            submission.DocType,
		Subject:            submission.Subject,
		Direction:          submission.Direction,
		Remarks:            submission.Remarks,
		ForwardedTo:        submission.ForwardedTo,
		COF:                submission.COF,
		Attachments:        attachments,
		RequesterIP:        submission.RequesterIP,
		RequesterUserAgent: submission.RequesterUserAgent,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to log document: %v", err))
	}

	return rec, nil
}

func (q ListQuery) filter() store.RecordQueryFilter {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}
	return store.RecordQueryFilter{
		Search:    q.Search,
		Status:    q.Status,
		Direction: q.Direction,
		From:      q.From,
		To:        q.To,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
}

func paginate(q ListQuery, total int64) *Pagination {
	filter := q.filter()
	page := filter.Offset/filter.Limit + 1
	return &Pagination{
		Page:       page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
}

// ListEmails retrieves a page of email logs
func (e *executor) ListEmails(ctx context.Context, query ListQuery) ([]schema.EmailLog, *Pagination, error) {
	records, total, err := e.store.ListEmailLogs(ctx, query.filter())
	if err != nil {
		return nil, nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list emails: %v", err))
	}
	return records, paginate(query, total), nil
}

// ListDocuments retrieves a page of document logs
func (e *executor) ListDocuments(ctx context.Context, query ListQuery) ([]schema.DocumentLog, *Pagination, error) {
	records, total, err := e.store.ListDocumentLogs(ctx, query.filter())
	if err != nil {
		return nil, nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list documents: %v", err))
	}
	return records, paginate(query, total), nil
}

// EmailStats computes aggregate email figures
func (e *executor) EmailStats(ctx context.Context) (*store.EmailStats, error) {
	stats, err := e.store.GetEmailStats(ctx)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get email stats: %v", err))
	}
	return stats, nil
}

// DocumentStats computes aggregate document figures
func (e *executor) DocumentStats(ctx context.Context) (*store.DocumentStats, error) {
	stats, err := e.store.GetDocumentStats(ctx)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get document stats: %v", err))
	}
	return stats, nil
}

// DocumentByTrackingNumber looks a document up by its tracking number; nil when absent
func (e *executor) DocumentByTrackingNumber(ctx context.Context, trackingNumber string) (*schema.DocumentLog, error) {
	if !domain.TrackingNumber(trackingNumber).Valid() {
		return nil, apierrors.NewValidationError(fmt.Sprintf("malformed tracking number: %q", trackingNumber))
	}

	rec, err := e.store.GetDocumentLogByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get document: %v", err))
	}
	return rec, nil
}

// UpdateStatus validates and applies one status transition
func (e *executor) UpdateStatus(ctx context.Context, update StatusUpdate) (*store.UpdatedRecord, error) {
	var missing []string
	if update.Record.ID <= 0 {
		missing = append(missing, "record_id is required")
	}
	if !domain.IsValidRecordType(update.Record.Type) {
		missing = append(missing, "record_type must be email or document")
	}
	if update.Status == "" {
		missing = append(missing, "status is required")
	}
	if update.UpdatedBy == "" {
		missing = append(missing, "updated_by is required")
	}
	if len(missing) > 0 {
		return nil, apierrors.NewValidationError(missing...)
	}

	attachments, err := e.saveAttachments(update.Attachments, update.UpdatedBy)
	if err != nil {
		return nil, err
	}

	updated, err := e.store.UpdateStatus(ctx, store.UpdateStatusInput{
		Record:      update.Record,
		Status:      update.Status,
		Direction:   update.Direction,
		ForwardedTo: update.ForwardedTo,
		COF:         update.COF,
		Remarks:     update.Remarks,
		UpdatedBy:   update.UpdatedBy,
		Attachments: attachments,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError("Record not found",
				fmt.Sprintf("%s %d does not exist", update.Record.Type, update.Record.ID))
		}
		if errors.Is(err, domain.ErrInvalidRecordType) {
			return nil, apierrors.NewValidationError("record_type must be email or document")
		}
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to update status: %v", err))
	}

	return updated, nil
}

// Timeline builds a record's unified status timeline, newest first. The
// origination entry is synthesized from the record itself, sorts by the
// record's creation time and is never written back to the ledger.
func (e *executor) Timeline(ctx context.Context, ref domain.RecordRef) ([]TimelineEntry, error) {
	if !ref.Valid() {
		return nil, apierrors.NewValidationError("record_type must be email or document", "record_id is required")
	}

	origination, err := e.originationEntry(ctx, ref)
	if err != nil {
		return nil, err
	}

	history, err := e.store.GetStatusHistory(ctx, ref)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get status history: %v", err))
	}

	timeline := make([]TimelineEntry, 0, len(history)+1)
	for _, entry := range history {
		timeline = append(timeline, TimelineEntry{
			Status:         entry.Status,
			Direction:      entry.Direction,
			ForwardedTo:    entry.ForwardedTo,
			COF:            entry.COF,
			Remarks:        entry.Remarks,
			CreatedBy:      entry.CreatedBy,
			AttachmentName: entry.AttachmentName,
			CreatedAt:      entry.CreatedAt,
		})
	}
	timeline = append(timeline, *origination)

	return timeline, nil
}

// originationEntry reconstructs the record's creation as the leading timeline row
func (e *executor) originationEntry(ctx context.Context, ref domain.RecordRef) (*TimelineEntry, error) {
	switch ref.Type {
	case domain.RecordTypeEmail:
		rec, err := e.store.GetEmailLogByID(ctx, ref.ID)
		if err != nil {
			return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get email log: %v", err))
		}
		if rec == nil {
			return nil, apierrors.NewNotFoundError("Record not found",
				fmt.Sprintf("email %d does not exist", ref.ID))
		}
		return &TimelineEntry{
			Status:      "Sent",
			Direction:   "Outgoing",
			Remarks:     rec.Body,
			CreatedBy:   rec.SenderName,
			CreatedAt:   rec.CreatedAt,
			Origination: true,
		}, nil

	case domain.RecordTypeDocument:
		rec, err := e.store.GetDocumentLogByID(ctx, ref.ID)
		if err != nil {
			return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get document log: %v", err))
		}
		if rec == nil {
			return nil, apierrors.NewNotFoundError("Record not found",
				fmt.Sprintf("document %d does not exist", ref.ID))
		}
		status := "Sent"
		if strings.EqualFold(rec.Direction, "incoming") {
			status = "Received"
		}
		return &TimelineEntry{
			Status:      status,
			Direction:   rec.Direction,
			ForwardedTo: rec.ForwardedTo,
			COF:         rec.COF,
			Remarks:     rec.Remarks,
			CreatedBy:   rec.SenderName,
			CreatedAt:   rec.CreatedAt,
			Origination: true,
		}, nil
	}

	return nil, apierrors.NewValidationError("record_type must be email or document")
}

// StatusCounts counts records by their latest status
func (e *executor) StatusCounts(ctx context.Context, recordType *domain.RecordType) (map[string]int64, error) {
	counts, err := e.store.GetStatusCounts(ctx, recordType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRecordType) {
			return nil, apierrors.NewValidationError("record_type must be email or document")
		}
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get status counts: %v", err))
	}
	return counts, nil
}

// FileVersions retrieves a document's version ledger split into new and previous files
func (e *executor) FileVersions(ctx context.Context, documentID int64) (*FileVersionsView, error) {
	result, err := e.store.GetFileVersions(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError("Record not found",
				fmt.Sprintf("document %d does not exist", documentID))
		}
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get file versions: %v", err))
	}

	view := &FileVersionsView{
		CurrentVersion: result.CurrentVersion,
		Versions:       make([]FileVersionView, 0, len(result.Versions)),
	}

	for _, version := range result.Versions {
		var batch []domain.AttachmentFile
		if err := json.Unmarshal(version.Files, &batch); err != nil {
			return nil, apierrors.NewInternalError(fmt.Sprintf("Failed to decode file version %d: %v", version.VersionNumber, err))
		}

		isCurrent := version.VersionNumber == result.CurrentVersion
		if isCurrent {
			view.NewFiles = append(view.NewFiles, batch...)
		} else {
			view.PreviousFiles = append(view.PreviousFiles, batch...)
		}

		view.Versions = append(view.Versions, FileVersionView{
			VersionNumber: version.VersionNumber,
			UploadedBy:    version.UploadedBy,
			CreatedAt:     version.CreatedAt,
			Files:         batch,
			IsCurrent:     isCurrent,
		})
	}

	return view, nil
}

// OpenAttachment opens a stored attachment for download
func (e *executor) OpenAttachment(storedName string) (adapter.File, error) {
	f, err := e.files.Open(storedName)
	if err != nil {
		return nil, apierrors.NewNotFoundError("Attachment not found", err.Error())
	}
	return f, nil
}

// ExportCSV streams a filtered record listing as CSV
func (e *executor) ExportCSV(ctx context.Context, recordType domain.RecordType, query ListQuery, w io.Writer) error {
	if !domain.IsValidRecordType(recordType) {
		return apierrors.NewValidationError("record_type must be email or document")
	}

	query.Page = 1
	query.Limit = exportMaxRows

	writer := csv.NewWriter(w)
	defer writer.Flush()

	switch recordType {
	case domain.RecordTypeEmail:
		records, _, err := e.store.ListEmailLogs(ctx, query.filter())
		if err != nil {
			return apierrors.NewDatabaseError(fmt.Sprintf("Failed to export emails: %v", err))
		}

		header := []string{"tracking_number", "sender", "recipient", "subject", "type", "attachments", "status", "forwarded_to", "logged_at", "status_updated_at"}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, rec := range records {
			row := []string{
				rec.TrackingNumber,
				rec.SenderName,
				rec.Recipient,
				rec.Subject,
				rec.EmailType,
				strconv.Itoa(rec.AttachmentCount),
				rec.CurrentStatus,
				rec.CurrentForwardedTo,
				rec.CreatedAt.Format(time.RFC3339),
				formatTimePtr(rec.StatusUpdatedAt),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}

	case domain.RecordTypeDocument:
		records, _, err := e.store.ListDocumentLogs(ctx, query.filter())
		if err != nil {
			return apierrors.NewDatabaseError(fmt.Sprintf("Failed to export documents: %v", err))
		}

		header := []string{"tracking_number", "sender", "doc_type", "subject", "direction", "attachments", "status", "forwarded_to", "logged_at", "status_updated_at"}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, rec := range records {
			row := []string{
				rec.TrackingNumber,
				rec.SenderName,
				rec.DocType,
				rec.Subject,
				rec.Direction,
				strconv.Itoa(rec.AttachmentCount),
				rec.CurrentStatus,
				rec.CurrentForwardedTo,
				rec.CreatedAt.Format(time.RFC3339),
				formatTimePtr(rec.StatusUpdatedAt),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	return nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
