package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/commdesk/cts/internal/adapter"
	"github.com/commdesk/cts/internal/domain"
	"github.com/commdesk/cts/internal/store/schema"
)

// allocationMaxRetries bounds the retry loop on a tracking-number unique-index
// conflict. The per-date counter makes conflicts extremely unlikely; the retry
// exists for counter rows that were reset or seeded behind existing records.
const allocationMaxRetries = 3

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB, clock adapter.Clock) Store {
	return &pgStore{db: db, clock: clock}
}

// AutoMigrate creates or updates the CTS tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.TrackingCounter{},
		&schema.EmailLog{},
		&schema.DocumentLog{},
		&schema.FileVersion{},
		&schema.StatusHistory{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// allocateTrackingNumber reserves the next sequence for the given day and
// formats it. The upsert increments the per-date counter atomically, so two
// concurrent transactions always observe distinct sequences. Must run inside
// the same transaction as the record insert so no record is ever persisted
// without a tracking number.
func allocateTrackingNumber(tx *gorm.DB, day time.Time) (domain.TrackingNumber, error) {
	datePart := day.Format(domain.TRACKING_DATE_LAYOUT)

	var lastSeq int64
	err := tx.Raw(`
		INSERT INTO tracking_counters (date_part, last_seq, updated_at)
		VALUES (?, 1, now())
		ON CONFLICT (date_part)
		DO UPDATE SET last_seq = tracking_counters.last_seq + 1, updated_at = now()
		RETURNING last_seq
	`, datePart).Scan(&lastSeq).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance tracking counter: %w", err)
	}
	if lastSeq <= 0 {
		return "", fmt.Errorf("tracking counter returned non-positive sequence %d", lastSeq)
	}

	return domain.NewTrackingNumber(day, uint64(lastSeq)), nil
}

// isUniqueViolation reports whether err is a unique-index conflict
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// attachmentsJSON serializes an attachment list for a JSON column
func attachmentsJSON(files []domain.AttachmentFile) (datatypes.JSON, error) {
	if len(files) == 0 {
		return datatypes.JSON("[]"), nil
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// appendAttachmentsJSON appends new files to an existing JSON attachment list
func appendAttachmentsJSON(existing datatypes.JSON, files []domain.AttachmentFile) (datatypes.JSON, error) {
	var current []domain.AttachmentFile
	if len(existing) > 0 && string(existing) != "null" {
		if err := json.Unmarshal(existing, &current); err != nil {
			return nil, fmt.Errorf("failed to unmarshal existing attachments: %w", err)
		}
	}
	return attachmentsJSON(append(current, files...))
}

// CreateEmailLog persists an email submission with a freshly allocated tracking number
func (s *pgStore) CreateEmailLog(ctx context.Context, input CreateEmailLogInput) (*schema.EmailLog, error) {
	var created *schema.EmailLog
	err := s.withAllocationRetry(ctx, func() error {
		rec, err := s.insertEmailLog(ctx, input)
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *pgStore) insertEmailLog(ctx context.Context, input CreateEmailLogInput) (*schema.EmailLog, error) {
	now := s.clock.Now()

	attachments, err := attachmentsJSON(input.Attachments)
	if err != nil {
		return nil, err
	}

	var rec schema.EmailLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trackingNumber, err := allocateTrackingNumber(tx, now)
		if err != nil {
			return err
		}

		rec = schema.EmailLog{
			TrackingNumber:     string(trackingNumber),
			SenderName:         input.SenderName,
			Recipient:          input.Recipient,
			Subject:            input.Subject,
			Body:               input.Body,
			EmailType:          input.EmailType,
			AttachmentCount:    len(input.Attachments),
			Attachments:        attachments,
			RequesterIP:        input.RequesterIP,
			RequesterUserAgent: input.RequesterUserAgent,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create email log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// CreateDocumentLog persists a document submission with a freshly allocated tracking number
func (s *pgStore) CreateDocumentLog(ctx context.Context, input CreateDocumentLogInput) (*schema.DocumentLog, error) {
	var created *schema.DocumentLog
	err := s.withAllocationRetry(ctx, func() error {
		rec, err := s.insertDocumentLog(ctx, input)
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *pgStore) insertDocumentLog(ctx context.Context, input CreateDocumentLogInput) (*schema.DocumentLog, error) {
	now := s.clock.Now()

	attachments, err := attachmentsJSON(input.Attachments)
	if err != nil {
		return nil, err
	}

	var rec schema.DocumentLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trackingNumber, err := allocateTrackingNumber(tx, now)
		if err != nil {
			return err
		}

		currentVersion := 0
		if len(input.Attachments) > 0 {
			currentVersion = 1
		}

		rec = schema.DocumentLog{
			TrackingNumber:     string(trackingNumber),
			SenderName:         input.SenderName,
			DocType:            input.DocType,
			Subject:            input.Subject,
			Direction:          input.Direction,
			Remarks:            input.Remarks,
			ForwardedTo:        input.ForwardedTo,
			COF:                input.COF,
			AttachmentCount:    len(input.Attachments),
			Attachments:        attachments,
			CurrentFileVersion: currentVersion,
			RequesterIP:        input.RequesterIP,
			RequesterUserAgent: input.RequesterUserAgent,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create document log: %w", err)
		}

		// Attachments submitted at creation become file version 1
		if len(input.Attachments) > 0 {
			version := schema.FileVersion{
				DocumentID:    rec.ID,
				VersionNumber: 1,
				Files:         attachments,
				UploadedBy:    input.SenderName,
				CreatedAt:     now,
			}
			if err := tx.Create(&version).Error; err != nil {
				return fmt.Errorf("failed to create initial file version: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// withAllocationRetry runs op, retrying a bounded number of times when a
// tracking-number unique-index conflict surfaces. Any other error aborts
// immediately.
func (s *pgStore) withAllocationRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), allocationMaxRetries), ctx)
	if err := backoff.Retry(wrapped, policy); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tracking number conflict persisted after %d retries: %v",
				domain.ErrAllocationFailed, allocationMaxRetries, err)
		}
		return err
	}
	return nil
}

// GetEmailLogByID retrieves an email log by its internal ID
func (s *pgStore) GetEmailLogByID(ctx context.Context, id int64) (*schema.EmailLog, error) {
	var rec schema.EmailLog
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email log: %w", err)
	}
	return &rec, nil
}

// GetDocumentLogByID retrieves a document log by its internal ID
func (s *pgStore) GetDocumentLogByID(ctx context.Context, id int64) (*schema.DocumentLog, error) {
	var rec schema.DocumentLog
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document log: %w", err)
	}
	return &rec, nil
}

// GetDocumentLogByTrackingNumber retrieves a document log by its tracking number
func (s *pgStore) GetDocumentLogByTrackingNumber(ctx context.Context, trackingNumber string) (*schema.DocumentLog, error) {
	var rec schema.DocumentLog
	err := s.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document log by tracking number: %w", err)
	}
	return &rec, nil
}

// ListEmailLogs retrieves email logs matching the filter plus the total match count
func (s *pgStore) ListEmailLogs(ctx context.Context, filter RecordQueryFilter) ([]schema.EmailLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.EmailLog{})

	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(
			"sender_name ILIKE ? OR subject ILIKE ? OR recipient ILIKE ? OR tracking_number ILIKE ?",
			like, like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("current_status = ?", filter.Status)
	}
	if filter.Direction != "" {
		query = query.Where("current_direction = ?", filter.Direction)
	}
	query = applyDateRange(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count email logs: %w", err)
	}

	var records []schema.EmailLog
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list email logs: %w", err)
	}

	return records, total, nil
}

// ListDocumentLogs retrieves document logs matching the filter plus the total match count
func (s *pgStore) ListDocumentLogs(ctx context.Context, filter RecordQueryFilter) ([]schema.DocumentLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.DocumentLog{})

	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(
			"sender_name ILIKE ? OR subject ILIKE ? OR doc_type ILIKE ? OR tracking_number ILIKE ?",
			like, like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("current_status = ?", filter.Status)
	}
	if filter.Direction != "" {
		// Status updates can re-route a document, so match either the
		// origination direction or the current one
		query = query.Where("direction = ? OR current_direction = ?", filter.Direction, filter.Direction)
	}
	query = applyDateRange(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count document logs: %w", err)
	}

	var records []schema.DocumentLog
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list document logs: %w", err)
	}

	return records, total, nil
}

func applyDateRange(query *gorm.DB, filter RecordQueryFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}

// GetEmailStats computes aggregate stats over all email logs
func (s *pgStore) GetEmailStats(ctx context.Context) (*EmailStats, error) {
	var stats EmailStats
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                           AS total,
		       COUNT(DISTINCT recipient)          AS unique_recipients,
		       COALESCE(AVG(attachment_count), 0) AS avg_attachments,
		       MAX(created_at)                    AS last_logged_at
		FROM email_logs
	`).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get email stats: %w", err)
	}
	return &stats, nil
}

// GetDocumentStats computes aggregate stats over all document logs
func (s *pgStore) GetDocumentStats(ctx context.Context) (*DocumentStats, error) {
	var stats DocumentStats
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                                                AS total,
		       COUNT(*) FILTER (WHERE LOWER(direction) = 'incoming')   AS incoming,
		       COUNT(*) FILTER (WHERE LOWER(direction) = 'outgoing')   AS outgoing,
		       COALESCE(AVG(attachment_count), 0)                      AS avg_attachments,
		       MAX(created_at)                                         AS last_logged_at
		FROM document_logs
	`).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get document stats: %w", err)
	}
	return &stats, nil
}

// UpdateStatus applies one status transition in a single transaction: the
// record's current fields, the history append and any file version row either
// all commit or none do.
func (s *pgStore) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*UpdatedRecord, error) {
	if !input.Record.Valid() {
		return nil, domain.ErrInvalidRecordType
	}

	now := s.clock.Now()
	var result UpdatedRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch input.Record.Type {
		case domain.RecordTypeEmail:
			rec, err := s.updateEmailStatus(tx, input, now)
			if err != nil {
				return err
			}
			result.Email = rec
		case domain.RecordTypeDocument:
			rec, err := s.updateDocumentStatus(tx, input, now)
			if err != nil {
				return err
			}
			result.Document = rec
		default:
			return domain.ErrInvalidRecordType
		}

		var attachmentName *string
		if len(input.Attachments) > 0 {
			name := input.Attachments[0].StoredName
			attachmentName = &name
		}

		history := schema.StatusHistory{
			RecordType:     string(input.Record.Type),
			RecordID:       input.Record.ID,
			Status:         input.Status,
			Direction:      input.Direction,
			ForwardedTo:    input.ForwardedTo,
			COF:            input.COF,
			Remarks:        input.Remarks,
			AttachmentName: attachmentName,
			CreatedBy:      input.UpdatedBy,
			CreatedAt:      now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *pgStore) updateEmailStatus(tx *gorm.DB, input UpdateStatusInput, now time.Time) (*schema.EmailLog, error) {
	var rec schema.EmailLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", input.Record.ID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to lock email log: %w", err)
	}

	applyStatusFields(&statusFields{
		Status:      &rec.CurrentStatus,
		Direction:   &rec.CurrentDirection,
		ForwardedTo: &rec.CurrentForwardedTo,
		COF:         &rec.CurrentCOF,
		Remarks:     &rec.CurrentStatusRemarks,
		UpdatedBy:   &rec.StatusUpdatedBy,
		UpdatedAt:   &rec.StatusUpdatedAt,
	}, input, now)

	if len(input.Attachments) > 0 {
		merged, err := appendAttachmentsJSON(rec.Attachments, input.Attachments)
		if err != nil {
			return nil, err
		}
		rec.Attachments = merged
		rec.AttachmentCount += len(input.Attachments)
	}

	rec.UpdatedAt = now
	if err := tx.Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to update email log: %w", err)
	}

	return &rec, nil
}

func (s *pgStore) updateDocumentStatus(tx *gorm.DB, input UpdateStatusInput, now time.Time) (*schema.DocumentLog, error) {
	var rec schema.DocumentLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", input.Record.ID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to lock document log: %w", err)
	}

	applyStatusFields(&statusFields{
		Status:      &rec.CurrentStatus,
		Direction:   &rec.CurrentDirection,
		ForwardedTo: &rec.CurrentForwardedTo,
		COF:         &rec.CurrentCOF,
		Remarks:     &rec.CurrentStatusRemarks,
		UpdatedBy:   &rec.StatusUpdatedBy,
		UpdatedAt:   &rec.StatusUpdatedAt,
	}, input, now)

	if len(input.Attachments) > 0 {
		files, err := attachmentsJSON(input.Attachments)
		if err != nil {
			return nil, err
		}

		// The version number comes from the locked row, so concurrent updates
		// on the same document cannot both claim the same version
		version := schema.FileVersion{
			DocumentID:    rec.ID,
			VersionNumber: rec.CurrentFileVersion + 1,
			Files:         files,
			UploadedBy:    input.UpdatedBy,
			CreatedAt:     now,
		}
		if err := tx.Create(&version).Error; err != nil {
			return nil, fmt.Errorf("failed to append file version: %w", err)
		}
		rec.CurrentFileVersion = version.VersionNumber

		merged, err := appendAttachmentsJSON(rec.Attachments, input.Attachments)
		if err != nil {
			return nil, err
		}
		rec.Attachments = merged

		// Recompute rather than increment to tolerate prior inconsistencies
		var totalFiles int64
		err = tx.Raw(`
			SELECT COALESCE(SUM(jsonb_array_length(files)), 0)
			FROM file_versions
			WHERE document_id = ?
		`, rec.ID).Scan(&totalFiles).Error
		if err != nil {
			return nil, fmt.Errorf("failed to recompute attachment count: %w", err)
		}
		rec.AttachmentCount = int(totalFiles)
	}

	rec.UpdatedAt = now
	if err := tx.Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to update document log: %w", err)
	}

	return &rec, nil
}

// statusFields points at a record's mutable current-state columns so both
// record variants share one update path
type statusFields struct {
	Status      *string
	Direction   *string
	ForwardedTo *string
	COF         *string
	Remarks     *string
	UpdatedBy   *string
	UpdatedAt   **time.Time
}

func applyStatusFields(fields *statusFields, input UpdateStatusInput, now time.Time) {
	*fields.Status = input.Status
	if input.Direction != "" {
		*fields.Direction = input.Direction
	}
	if input.ForwardedTo != "" {
		*fields.ForwardedTo = input.ForwardedTo
	}
	if input.COF != "" {
		*fields.COF = input.COF
	}
	*fields.Remarks = input.Remarks
	*fields.UpdatedBy = input.UpdatedBy
	updatedAt := now
	*fields.UpdatedAt = &updatedAt
}

// GetStatusHistory retrieves a record's history entries, newest first
func (s *pgStore) GetStatusHistory(ctx context.Context, ref domain.RecordRef) ([]schema.StatusHistory, error) {
	if !ref.Valid() {
		return nil, domain.ErrInvalidRecordType
	}

	var entries []schema.StatusHistory
	err := s.db.WithContext(ctx).
		Where("record_type = ? AND record_id = ?", string(ref.Type), ref.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}

	return entries, nil
}

// GetStatusCounts counts records by their latest status. Only the newest
// history entry per (record_id, record_type) contributes, tie-broken by
// highest id, so a record counts once under its current status.
func (s *pgStore) GetStatusCounts(ctx context.Context, recordType *domain.RecordType) (map[string]int64, error) {
	if recordType != nil && !domain.IsValidRecordType(*recordType) {
		return nil, domain.ErrInvalidRecordType
	}

	latest := s.db.Model(&schema.StatusHistory{}).
		Select("MAX(id)").
		Group("record_id, record_type")
	if recordType != nil {
		latest = latest.Where("record_type = ?", string(*recordType))
	}

	var rows []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	err := s.db.WithContext(ctx).Model(&schema.StatusHistory{}).
		Select("status, COUNT(*) AS count").
		Where("id IN (?)", latest).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// GetFileVersions retrieves a document's file version ledger
func (s *pgStore) GetFileVersions(ctx context.Context, documentID int64) (*FileVersionsResult, error) {
	var rec schema.DocumentLog
	err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get document log: %w", err)
	}

	var versions []schema.FileVersion
	err = s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_number ASC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get file versions: %w", err)
	}

	return &FileVersionsResult{
		CurrentVersion: rec.CurrentFileVersion,
		Versions:       versions,
	}, nil
}

// escapeLike escapes LIKE wildcards so a literal search term cannot act as a pattern
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
