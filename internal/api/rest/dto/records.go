package dto

import (
	"encoding/json"
	"time"

	"github.com/commdesk/cts/internal/api/executor"
	"github.com/commdesk/cts/internal/domain"
	"github.com/commdesk/cts/internal/store"
	"github.com/commdesk/cts/internal/store/schema"
)

// AttachmentResponse represents one stored attachment
type AttachmentResponse struct {
	OriginalName string `json:"originalName"`
	StoredName   string `json:"storedName"`
	UploadedBy   string `json:"uploadedBy,omitempty"`
}

// EmailResponse represents a logged email
type EmailResponse struct {
	ID                 int64                `json:"id"`
	TrackingNumber     string               `json:"tracking_number"`
	SenderName         string               `json:"sender_name"`
	Recipient          string               `json:"recipient"`
	Subject            string               `json:"subject"`
	Body               string               `json:"body"`
	EmailType          string               `json:"email_type,omitempty"`
	AttachmentCount    int                  `json:"attachment_count"`
	Attachments        []AttachmentResponse `json:"attachments"`
	CurrentStatus      string               `json:"current_status,omitempty"`
	CurrentDirection   string               `json:"current_direction,omitempty"`
	CurrentForwardedTo string               `json:"current_forwarded_to,omitempty"`
	CurrentCOF         string               `json:"current_cof,omitempty"`
	StatusRemarks      string               `json:"status_remarks,omitempty"`
	StatusUpdatedAt    *time.Time           `json:"status_updated_at,omitempty"`
	StatusUpdatedBy    string               `json:"status_updated_by,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// DocumentResponse represents a logged document
type DocumentResponse struct {
	ID                 int64                `json:"id"`
	TrackingNumber     string               `json:"tracking_number"`
	SenderName         string               `json:"sender_name"`
	DocType            string               `json:"doc_type"`
	Subject            string               `json:"subject"`
	Direction          string               `json:"direction"`
	Remarks            string               `json:"remarks,omitempty"`
	ForwardedTo        string               `json:"forwarded_to,omitempty"`
	COF                string               `json:"cof,omitempty"`
	AttachmentCount    int                  `json:"attachment_count"`
	Attachments        []AttachmentResponse `json:"attachments"`
	CurrentFileVersion int                  `json:"current_file_version"`
	CurrentStatus      string               `json:"current_status,omitempty"`
	CurrentDirection   string               `json:"current_direction,omitempty"`
	CurrentForwardedTo string               `json:"current_forwarded_to,omitempty"`
	CurrentCOF         string               `json:"current_cof,omitempty"`
	StatusRemarks      string               `json:"status_remarks,omitempty"`
	StatusUpdatedAt    *time.Time           `json:"status_updated_at,omitempty"`
	StatusUpdatedBy    string               `json:"status_updated_by,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// PaginatedEmails represents one page of email logs
type PaginatedEmails struct {
	Items      []EmailResponse `json:"items"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// PaginatedDocuments represents one page of document logs
type PaginatedDocuments struct {
	Items      []DocumentResponse `json:"items"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"totalPages"`
}

// EmailStatsResponse represents aggregate email figures
type EmailStatsResponse struct {
	Total            int64      `json:"total"`
	UniqueRecipients int64      `json:"unique_recipients"`
	AvgAttachments   float64    `json:"avg_attachments"`
	LastLoggedAt     *time.Time `json:"last_logged_at,omitempty"`
}

// DocumentStatsResponse represents aggregate document figures
type DocumentStatsResponse struct {
	Total          int64      `json:"total"`
	Incoming       int64      `json:"incoming"`
	Outgoing       int64      `json:"outgoing"`
	AvgAttachments float64    `json:"avg_attachments"`
	LastLoggedAt   *time.Time `json:"last_logged_at,omitempty"`
}

// TimelineEntryResponse is one row of a record's status timeline
type TimelineEntryResponse struct {
	Status         string    `json:"status"`
	Direction      string    `json:"direction,omitempty"`
	ForwardedTo    string    `json:"forwarded_to,omitempty"`
	COF            string    `json:"cof,omitempty"`
	Remarks        string    `json:"remarks,omitempty"`
	CreatedBy      string    `json:"created_by"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Origination    bool      `json:"origination"`
}

// TimelineResponse is a record's full status timeline, newest first
type TimelineResponse struct {
	RecordType domain.RecordType       `json:"record_type"`
	RecordID   int64                   `json:"record_id"`
	Entries    []TimelineEntryResponse `json:"entries"`
}

// StatusCountsResponse maps latest statuses to record counts
type StatusCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

// FileVersionResponse is one batch of a document's version ledger
type FileVersionResponse struct {
	VersionNumber int                  `json:"version_number"`
	UploadedBy    string               `json:"uploaded_by,omitempty"`
	Files         []AttachmentResponse `json:"files"`
	IsCurrent     bool                 `json:"is_current"`
	CreatedAt     time.Time            `json:"created_at"`
}

// FileVersionsResponse splits a document's files into the latest upload batch
// and everything that came before it
type FileVersionsResponse struct {
	DocumentID     int64                 `json:"document_id"`
	CurrentVersion int                   `json:"current_version"`
	NewFiles       []AttachmentResponse  `json:"new_files"`
	PreviousFiles  []AttachmentResponse  `json:"previous_files"`
	Versions       []FileVersionResponse `json:"versions"`
}

// UpdateStatusResponse returns the record state after a status transition
type UpdateStatusResponse struct {
	RecordType domain.RecordType `json:"record_type"`
	Email      *EmailResponse    `json:"email,omitempty"`
	Document   *DocumentResponse `json:"document,omitempty"`
}

func attachmentsFromJSON(raw []byte) []AttachmentResponse {
	if len(raw) == 0 {
		return []AttachmentResponse{}
	}
	var files []domain.AttachmentFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return []AttachmentResponse{}
	}
	out := make([]AttachmentResponse, 0, len(files))
	for _, f := range files {
		out = append(out, AttachmentResponse{
			OriginalName: f.OriginalName,
			StoredName:   f.StoredName,
			UploadedBy:   f.UploadedBy,
		})
	}
	return out
}

func attachmentsFromDomain(files []domain.AttachmentFile) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(files))
	for _, f := range files {
		out = append(out, AttachmentResponse{
			OriginalName: f.OriginalName,
			StoredName:   f.StoredName,
			UploadedBy:   f.UploadedBy,
		})
	}
	return out
}

// FromEmailLog maps a stored email log to its response shape
func FromEmailLog(rec *schema.EmailLog) *EmailResponse {
	if rec == nil {
		return nil
	}
	return &EmailResponse{
		ID:                 rec.ID,
		TrackingNumber:     rec.TrackingNumber,
		SenderName:         rec.SenderName,
		Recipient:          rec.Recipient,
		Subject:            rec.Subject,
		Body:               rec.Body,
		EmailType:          rec.EmailType,
		AttachmentCount:    rec.AttachmentCount,
		Attachments:        attachmentsFromJSON(rec.Attachments),
		CurrentStatus:      rec.CurrentStatus,
		CurrentDirection:   rec.CurrentDirection,
		CurrentForwardedTo: rec.CurrentForwardedTo,
		CurrentCOF:         rec.CurrentCOF,
		StatusRemarks:      rec.CurrentStatusRemarks,
		StatusUpdatedAt:    rec.StatusUpdatedAt,
		StatusUpdatedBy:    rec.StatusUpdatedBy,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// FromDocumentLog maps a stored document log to its response shape
func FromDocumentLog(rec *schema.DocumentLog) *DocumentResponse {
	if rec == nil {
		return nil
	}
	return &DocumentResponse{
		ID:                 rec.ID,
		TrackingNumber:     rec.TrackingNumber,
		SenderName:         rec.SenderName,
		DocType:            rec.DocType,
		Subject:            rec.Subject,
		Direction:          rec.Direction,
		Remarks:            rec.Remarks,
		ForwardedTo:        rec.ForwardedTo,
		COF:                rec.COF,
		AttachmentCount:    rec.AttachmentCount,
		Attachments:        attachmentsFromJSON(rec.Attachments),
		CurrentFileVersion: rec.CurrentFileVersion,
		CurrentStatus:      rec.CurrentStatus,
		CurrentDirection:   rec.CurrentDirection,
		CurrentForwardedTo: rec.CurrentForwardedTo,
		CurrentCOF:         rec.CurrentCOF,
		StatusRemarks:      rec.CurrentStatusRemarks,
		StatusUpdatedAt:    rec.StatusUpdatedAt,
		StatusUpdatedBy:    rec.StatusUpdatedBy,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// FromEmailPage maps a page of email logs to its response shape
func FromEmailPage(records []schema.EmailLog, page *executor.Pagination) *PaginatedEmails {
	items := make([]EmailResponse, 0, len(records))
	for i := range records {
		items = append(items, *FromEmailLog(&records[i]))
	}
	return &PaginatedEmails{
		Items:      items,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

// FromDocumentPage maps a page of document logs to its response shape
func FromDocumentPage(records []schema.DocumentLog, page *executor.Pagination) *PaginatedDocuments {
	items := make([]DocumentResponse, 0, len(records))
	for i := range records {
		items = append(items, *FromDocumentLog(&records[i]))
	}
	return &PaginatedDocuments{
		Items:      items,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

// FromEmailStats maps aggregate email figures to their response shape
func FromEmailStats(stats *store.EmailStats) *EmailStatsResponse {
	return &EmailStatsResponse{
		Total:            stats.Total,
		UniqueRecipients: stats.UniqueRecipients,
		AvgAttachments:   stats.AvgAttachments,
		LastLoggedAt:     stats.LastLoggedAt,
	}
}

// FromDocumentStats maps aggregate document figures to their response shape
func FromDocumentStats(stats *store.DocumentStats) *DocumentStatsResponse {
	return &DocumentStatsResponse{
		Total:          stats.Total,
		Incoming:       stats.Incoming,
		Outgoing:       stats.Outgoing,
		AvgAttachments: stats.AvgAttachments,
		LastLoggedAt:   stats.LastLoggedAt,
	}
}

// FromTimeline maps a record's timeline to its response shape
func FromTimeline(ref domain.RecordRef, entries []executor.TimelineEntry) *TimelineResponse {
	out := make([]TimelineEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, TimelineEntryResponse{
			Status:         entry.Status,
			Direction:      entry.Direction,
			ForwardedTo:    entry.ForwardedTo,
			COF:            entry.COF,
			Remarks:        entry.Remarks,
			CreatedBy:      entry.CreatedBy,
			AttachmentName: entry.AttachmentName,
			CreatedAt:      entry.CreatedAt,
			Origination:    entry.Origination,
		})
	}
	return &TimelineResponse{
		RecordType: ref.Type,
		RecordID:   ref.ID,
		Entries:    out,
	}
}

// FromFileVersions maps a document's version ledger to its response shape
func FromFileVersions(documentID int64, view *executor.FileVersionsView) *FileVersionsResponse {
	versions := make([]FileVersionResponse, 0, len(view.Versions))
	for _, version := range view.Versions {
		versions = append(versions, FileVersionResponse{
			VersionNumber: version.VersionNumber,
			UploadedBy:    version.UploadedBy,
			Files:         attachmentsFromDomain(version.Files),
			IsCurrent:     version.IsCurrent,
			CreatedAt:     version.CreatedAt,
		})
	}
	return &FileVersionsResponse{
		DocumentID:     documentID,
		CurrentVersion: view.CurrentVersion,
		NewFiles:       attachmentsFromDomain(view.NewFiles),
		PreviousFiles:  attachmentsFromDomain(view.PreviousFiles),
		Versions:       versions,
	}
}

// FromUpdatedRecord maps a status update result to its response shape
func FromUpdatedRecord(updated *store.UpdatedRecord) *UpdateStatusResponse {
	resp := &UpdateStatusResponse{}
	if updated.Email != nil {
		resp.RecordType = domain.RecordTypeEmail
		resp.Email = FromEmailLog(updated.Email)
	}
	if updated.Document != nil {
		resp.RecordType = domain.RecordTypeDocument
		resp.Document = FromDocumentLog(updated.Document)
	}
	return resp
}
