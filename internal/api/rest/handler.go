package rest

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commdesk/cts/internal/api/executor"
	"github.com/commdesk/cts/internal/api/rest/dto"
	"github.com/commdesk/cts/internal/domain"
)

// attachmentsField is the multipart field carrying uploaded files
const attachmentsField = "attachments"

// defaultMaxAttachments bounds how many files one request may carry when no
// limit is configured
const defaultMaxAttachments = 10

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// LogEmail records a new email with optional attachments
	// POST /api/v1/emails
	LogEmail(c *gin.Context)

	// ListEmails retrieves emails with filtering and pagination
	// GET /api/v1/emails?search=<term>&status=<status>&from=<date>&to=<date>&page=<page>&limit=<limit>
	ListEmails(c *gin.Context)

	// GetEmailStats retrieves aggregate email figures
	// GET /api/v1/emails/stats
	GetEmailStats(c *gin.Context)

	// LogDocument records a new document with optional attachments
	// POST /api/v1/documents
	LogDocument(c *gin.Context)

	// ListDocuments retrieves documents with filtering and pagination
	// GET /api/v1/documents?search=<term>&status=<status>&direction=<direction>&from=<date>&to=<date>&page=<page>&limit=<limit>
	ListDocuments(c *gin.Context)

	// GetDocumentStats retrieves aggregate document figures
	// GET /api/v1/documents/stats
	GetDocumentStats(c *gin.Context)

	// GetDocumentByTrackingNumber retrieves a document by its tracking number
	// GET /api/v1/documents/tracking/:trackingNumber
	GetDocumentByTrackingNumber(c *gin.Context)

	// GetDocumentFiles retrieves a document's file version ledger
	// GET /api/v1/documents/:id/files
	GetDocumentFiles(c *gin.Context)

	// UpdateStatus applies a status transition to an email or document,
	// optionally attaching new files (multipart)
	// PUT /api/v1/status
	UpdateStatus(c *gin.Context)

	// GetStatusHistory retrieves a record's status timeline, newest first
	// GET /api/v1/status/history?record_type=<type>&record_id=<id>
	GetStatusHistory(c *gin.Context)

	// GetStatusStats counts records by their latest status
	// GET /api/v1/status/stats?record_type=<type>
	GetStatusStats(c *gin.Context)

	// DownloadAttachment streams a stored attachment
	// GET /api/v1/attachments/:storedName?originalName=<name>
	DownloadAttachment(c *gin.Context)

	// ExportReport streams a filtered record listing as CSV
	// GET /api/v1/reports/export?record_type=<type>&search=<term>&status=<status>&from=<date>&to=<date>
	ExportReport(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug          bool
	maxAttachments int
	executor       executor.Executor
}

// NewHandler creates a new REST API handler using the executor
func NewHandler(debug bool, maxAttachments int, exec executor.Executor) Handler {
	if maxAttachments <= 0 {
		maxAttachments = defaultMaxAttachments
	}
	return &handler{
		debug:          debug,
		maxAttachments: maxAttachments,
		executor:       exec,
	}
}

// collectAttachments reads the request's multipart file parts into memory.
// Non-multipart requests yield no attachments.
func (h *handler) collectAttachments(c *gin.Context) ([]executor.AttachmentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	headers := form.File[attachmentsField]
	if len(headers) > h.maxAttachments {
		return nil, fmt.Errorf("too many attachments: %d exceeds the limit of %d", len(headers), h.maxAttachments)
	}

	uploads := make([]executor.AttachmentUpload, 0, len(headers))
	for _, header := range headers {
		data, err := readFileHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %q: %w", header.Filename, err)
		}
		uploads = append(uploads, executor.AttachmentUpload{
			OriginalName: filepath.Base(header.Filename),
			Data:         data,
		})
	}
	return uploads, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// decodeInlineAttachments converts base64 payloads from a JSON submission
// into uploads, appending them after any multipart parts
func (h *handler) decodeInlineAttachments(uploads []executor.AttachmentUpload, payloads []dto.AttachmentPayload) ([]executor.AttachmentUpload, error) {
	if len(uploads)+len(payloads) > h.maxAttachments {
		return nil, fmt.Errorf("too many attachments: %d exceeds the limit of %d", len(uploads)+len(payloads), h.maxAttachments)
	}

	for _, payload := range payloads {
		data, err := base64.StdEncoding.DecodeString(payload.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %q is not valid base64: %w", payload.FileName, err)
		}
		uploads = append(uploads, executor.AttachmentUpload{
			OriginalName: filepath.Base(payload.FileName),
			Data:         data,
		})
	}
	return uploads, nil
}

// LogEmail records a new email with optional attachments
func (h *handler) LogEmail(c *gin.Context) {
	var req dto.CreateEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	attachments, err := h.collectAttachments(c)
	if err != nil {
		respondBadRequest(c, "Invalid attachments", err.Error())
		return
	}
	attachments, err = h.decodeInlineAttachments(attachments, req.Attachments)
	if err != nil {
		respondBadRequest(c, "Invalid attachments", err.Error())
		return
	}

	rec, err := h.executor.LogEmail(c.Request.Context(), executor.EmailSubmission{
		SenderName:         req.SenderName,
		Recipient:          req.Recipient,
		Subject:            req.Subject,
		Body:               req.Body,
		EmailType:          req.EmailType,
		Attachments:        attachments,
		RequesterIP:        c.ClientIP(),
		RequesterUserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err, "Failed to log email")
		return
	}

	c.JSON(http.StatusCreated, dto.FromEmailLog(rec))
}

// ListEmails retrieves emails with filtering and pagination
func (h *handler) ListEmails(c *gin.Context) {
	query, err := ParseListRecordsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	records, page, err := h.executor.ListEmails(c.Request.Context(), *query)
	if err != nil {
		respondError(c, err, "Failed to list emails")
		return
	}

	c.JSON(http.StatusOK, dto.FromEmailPage(records, page))
}

// GetEmailStats retrieves aggregate email figures
func (h *handler) GetEmailStats(c *gin.Context) {
	stats, err := h.executor.EmailStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get email stats")
		return
	}

	c.JSON(http.StatusOK, dto.FromEmailStats(stats))
}

// LogDocument records a new document with optional attachments
func (h *handler) LogDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	attachments, err := h.collectAttachments(c)
	if err != nil {
		respondBadRequest(c, "Invalid attachments", err.Error())
		return
	}
	attachments, err = h.decodeInlineAttachments(attachments, req.Attachments)
	if err != nil {
		respondBadRequest(c, "Invalid attachments", err.Error())
		return
	}

	rec, err := h.executor.LogDocument(c.Request.Context(), executor.DocumentSubmission{
		SenderName:         req.SenderName,
		DocType:            req.DocType,
		Subject:            req.Subject,
		Direction:          req.Direction,
		Remarks:            req.Remarks,
		ForwardedTo:        req.ForwardedTo,
		COF:                req.COF,
		Attachments:        attachments,
		RequesterIP:        c.ClientIP(),
		RequesterUserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err, "Failed to log document")
		return
	}

	c.JSON(http.StatusCreated, dto.FromDocumentLog(rec))
}

// ListDocuments retrieves documents with filtering and pagination
func (h *handler) ListDocuments(c *gin.Context) {
	query, err := ParseListRecordsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	records, page, err := h.executor.ListDocuments(c.Request.Context(), *query)
	if err != nil {
		respondError(c, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentPage(records, page))
}

// GetDocumentStats retrieves aggregate document figures
func (h *handler) GetDocumentStats(c *gin.Context) {
	stats, err := h.executor.DocumentStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get document stats")
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentStats(stats))
}

// GetDocumentByTrackingNumber retrieves a document by its tracking number
func (h *handler) GetDocumentByTrackingNumber(c *gin.Context) {
	trackingNumber := c.Param("trackingNumber")
	if trackingNumber == "" {
		respondBadRequest(c, "Tracking number is required")
		return
	}

	rec, err := h.executor.DocumentByTrackingNumber(c.Request.Context(), trackingNumber)
	if err != nil {
		respondError(c, err, "Failed to get document")
		return
	}

	if rec == nil {
		respondNotFound(c, "Document not found", trackingNumber)
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentLog(rec))
}

// GetDocumentFiles retrieves a document's file version ledger
func (h *handler) GetDocumentFiles(c *gin.Context) {
	documentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || documentID <= 0 {
		respondBadRequest(c, "Invalid document ID", c.Param("id"))
		return
	}

	view, err := h.executor.FileVersions(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err, "Failed to get file versions")
		return
	}

	c.JSON(http.StatusOK, dto.FromFileVersions(documentID, view))
}

// UpdateStatus applies a status transition to an email or document
func (h *handler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	attachments, err := h.collectAttachments(c)
	if err != nil {
		respondBadRequest(c, "Invalid attachments", err.Error())
		return
	}

	updated, err := h.executor.UpdateStatus(c.Request.Context(), executor.StatusUpdate{
		Record: domain.RecordRef{
			Type: domain.RecordType(req.RecordType),
			ID:   req.RecordID,
		},
		Status:      req.Status,
		Direction:   req.Direction,
		ForwardedTo: req.ForwardedTo,
		COF:         req.COF,
		Remarks:     req.Remarks,
		UpdatedBy:   req.UpdatedBy,
		Attachments: attachments,
	})
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, dto.FromUpdatedRecord(updated))
}

// parseRecordRef reads record_type and record_id query parameters
func parseRecordRef(c *gin.Context) (domain.RecordRef, error) {
	recordType := c.Query("record_type")
	recordID, err := strconv.ParseInt(c.Query("record_id"), 10, 64)
	if err != nil {
		return domain.RecordRef{}, fmt.Errorf("invalid record_id %q", c.Query("record_id"))
	}

	ref := domain.RecordRef{Type: domain.RecordType(recordType), ID: recordID}
	if !ref.Valid() {
		return domain.RecordRef{}, fmt.Errorf("invalid record reference %s/%d", recordType, recordID)
	}
	return ref, nil
}

// GetStatusHistory retrieves a record's status timeline, newest first
func (h *handler) GetStatusHistory(c *gin.Context) {
	ref, err := parseRecordRef(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	timeline, err := h.executor.Timeline(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err, "Failed to get status history")
		return
	}

	c.JSON(http.StatusOK, dto.FromTimeline(ref, timeline))
}

// GetStatusStats counts records by their latest status
func (h *handler) GetStatusStats(c *gin.Context) {
	var recordType *domain.RecordType
	if raw := c.Query("record_type"); raw != "" {
		rt := domain.RecordType(raw)
		if !domain.IsValidRecordType(rt) {
			respondValidationError(c, fmt.Sprintf("invalid record_type %q", raw))
			return
		}
		recordType = &rt
	}

	counts, err := h.executor.StatusCounts(c.Request.Context(), recordType)
	if err != nil {
		respondError(c, err, "Failed to get status stats")
		return
	}

	c.JSON(http.StatusOK, dto.StatusCountsResponse{Counts: counts})
}

// DownloadAttachment streams a stored attachment
func (h *handler) DownloadAttachment(c *gin.Context) {
	storedName := c.Param("storedName")
	if storedName == "" {
		respondBadRequest(c, "Stored file name is required")
		return
	}

	f, err := h.executor.OpenAttachment(storedName)
	if err != nil {
		respondError(c, err, "Failed to open attachment")
		return
	}
	defer f.Close()

	downloadName := c.Query("originalName")
	if downloadName == "" {
		downloadName = storedName
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, f); err != nil {
		// Headers are out; nothing to do but drop the connection
		c.Abort()
	}
}

// ExportReport streams a filtered record listing as CSV
func (h *handler) ExportReport(c *gin.Context) {
	recordType := domain.RecordType(c.DefaultQuery("record_type", string(domain.RecordTypeDocument)))
	if !domain.IsValidRecordType(recordType) {
		respondValidationError(c, fmt.Sprintf("invalid record_type %q", recordType))
		return
	}

	query, err := ParseListRecordsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	filename := fmt.Sprintf("cts-%s-report-%s.csv", recordType, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := h.executor.ExportCSV(c.Request.Context(), recordType, *query, c.Writer); err != nil {
		c.Abort()
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "cts-api",
	})
}
