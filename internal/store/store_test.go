package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commdesk/cts/internal/domain"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestAttachment(name string) domain.AttachmentFile {
	return domain.AttachmentFile{
		OriginalName: name,
		StoredName:   fmt.Sprintf("stored-%s", name),
		UploadedBy:   "tester",
	}
}

func buildTestEmailInput(n int) CreateEmailLogInput {
	return CreateEmailLogInput{
		SenderName:         fmt.Sprintf("Sender %d", n),
		Recipient:          fmt.Sprintf("recipient%d@example.com", n),
		Subject:            fmt.Sprintf("Subject %d", n),
		Body:               "Please see attached.",
		EmailType:          "Official",
		RequesterIP:        "203.0.113.10",
		RequesterUserAgent: "test-agent",
	}
}

func buildTestDocumentInput(n int) CreateDocumentLogInput {
	return CreateDocumentLogInput{
		SenderName:  fmt.Sprintf("Sender %d", n),
		DocType:     "Memo",
		Subject:     fmt.Sprintf("Document %d", n),
		Direction:   "Outgoing",
		Remarks:     "For routing",
		ForwardedTo: "Records Office",
		COF:         "J. Cruz",
		RequesterIP: "203.0.113.10",
	}
}

func decodeAttachments(t *testing.T, raw []byte) []domain.AttachmentFile {
	t.Helper()
	var files []domain.AttachmentFile
	require.NoError(t, json.Unmarshal(raw, &files))
	return files
}

func trackingSequence(t *testing.T, trackingNumber string) uint64 {
	t.Helper()
	_, seq, err := domain.TrackingNumber(trackingNumber).Parse()
	require.NoError(t, err)
	return seq
}

// =============================================================================
// Test: record creation and tracking-number allocation
// =============================================================================

func testCreateEmailLog(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("persists origination fields and allocates a valid tracking number", func(t *testing.T) {
		input := buildTestEmailInput(1)
		input.Attachments = []domain.AttachmentFile{buildTestAttachment("quote.pdf")}

		rec, err := store.CreateEmailLog(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.NotZero(t, rec.ID)

		assert.True(t, domain.TrackingNumber(rec.TrackingNumber).Valid(),
			"tracking number %q should be well-formed", rec.TrackingNumber)
		assert.Equal(t, input.SenderName, rec.SenderName)
		assert.Equal(t, input.Recipient, rec.Recipient)
		assert.Equal(t, input.Subject, rec.Subject)
		assert.Equal(t, input.Body, rec.Body)
		assert.Equal(t, input.EmailType, rec.EmailType)
		assert.Equal(t, 1, rec.AttachmentCount)
		assert.Empty(t, rec.CurrentStatus)
		assert.Nil(t, rec.StatusUpdatedAt)

		files := decodeAttachments(t, rec.Attachments)
		require.Len(t, files, 1)
		assert.Equal(t, "quote.pdf", files[0].OriginalName)

		// Re-read through the store
		got, err := store.GetEmailLogByID(ctx, rec.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.TrackingNumber, got.TrackingNumber)
	})

	t.Run("unknown id returns nil without error", func(t *testing.T) {
		got, err := store.GetEmailLogByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func testCreateDocumentLog(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("attachments at creation become file version 1", func(t *testing.T) {
		input := buildTestDocumentInput(1)
		input.Attachments = []domain.AttachmentFile{
			buildTestAttachment("memo.pdf"),
			buildTestAttachment("annex-a.pdf"),
		}

		rec, err := store.CreateDocumentLog(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, 1, rec.CurrentFileVersion)
		assert.Equal(t, 2, rec.AttachmentCount)

		versions, err := store.GetFileVersions(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, versions.CurrentVersion)
		require.Len(t, versions.Versions, 1)
		assert.Equal(t, 1, versions.Versions[0].VersionNumber)
		assert.Len(t, decodeAttachments(t, versions.Versions[0].Files), 2)
	})

	t.Run("no attachments means no version entry", func(t *testing.T) {
		rec, err := store.CreateDocumentLog(ctx, buildTestDocumentInput(2))
		require.NoError(t, err)
		assert.Equal(t, 0, rec.CurrentFileVersion)
		assert.Equal(t, 0, rec.AttachmentCount)

		versions, err := store.GetFileVersions(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, versions.CurrentVersion)
		assert.Empty(t, versions.Versions)
	})

	t.Run("lookup by tracking number", func(t *testing.T) {
		rec, err := store.CreateDocumentLog(ctx, buildTestDocumentInput(3))
		require.NoError(t, err)

		got, err := store.GetDocumentLogByTrackingNumber(ctx, rec.TrackingNumber)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.ID, got.ID)

		missing, err := store.GetDocumentLogByTrackingNumber(ctx, "CTS-000101-001")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func testTrackingSequence(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("sequence is monotonic across both record tables", func(t *testing.T) {
		var sequences []uint64
		for i := 0; i < 6; i++ {
			var trackingNumber string
			if i%2 == 0 {
				rec, err := store.CreateEmailLog(ctx, buildTestEmailInput(i))
				require.NoError(t, err)
				trackingNumber = rec.TrackingNumber
			} else {
				rec, err := store.CreateDocumentLog(ctx, buildTestDocumentInput(i))
				require.NoError(t, err)
				trackingNumber = rec.TrackingNumber
			}
			sequences = append(sequences, trackingSequence(t, trackingNumber))
		}

		for i := 1; i < len(sequences); i++ {
			assert.Equal(t, sequences[i-1]+1, sequences[i],
				"allocation %d should follow %d", sequences[i], sequences[i-1])
		}
	})

	t.Run("email and document allocations on the same day never collide", func(t *testing.T) {
		email, err := store.CreateEmailLog(ctx, buildTestEmailInput(10))
		require.NoError(t, err)
		doc, err := store.CreateDocumentLog(ctx, buildTestDocumentInput(10))
		require.NoError(t, err)

		assert.NotEqual(t, email.TrackingNumber, doc.TrackingNumber)
	})
}

// =============================================================================
// Test: status updates
// =============================================================================

func testUpdateStatus(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("record mutation and history append are visible together", func(t *testing.T) {
		rec, err := store.CreateEmailLog(ctx, buildTestEmailInput(20))
		require.NoError(t, err)

		updated, err := store.UpdateStatus(ctx, UpdateStatusInput{
			Record:      domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID},
			Status:      "Completed",
			Direction:   "Outgoing",
			ForwardedTo: "Archives",
			Remarks:     "Done",
			UpdatedBy:   "A",
		})
		require.NoError(t, err)
		require.NotNil(t, updated.Email)
		assert.Nil(t, updated.Document)

		got, err := store.GetEmailLogByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Completed", got.CurrentStatus)
		assert.Equal(t, "Outgoing", got.CurrentDirection)
		assert.Equal(t, "Archives", got.CurrentForwardedTo)
		assert.Equal(t, "A", got.StatusUpdatedBy)
		require.NotNil(t, got.StatusUpdatedAt)

		history, err := store.GetStatusHistory(ctx, domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Completed", history[0].Status)
		assert.Equal(t, "A", history[0].CreatedBy)
	})

	t.Run("history is ordered newest first", func(t *testing.T) {
		rec, err := store.CreateEmailLog(ctx, buildTestEmailInput(21))
		require.NoError(t, err)
		ref := domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID}

		for _, status := range []string{"Pending", "In Progress", "Completed"} {
			_, err := store.UpdateStatus(ctx, UpdateStatusInput{
				Record: ref, Status: status, UpdatedBy: "B",
			})
			require.NoError(t, err)
		}

		history, err := store.GetStatusHistory(ctx, ref)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "Completed", history[0].Status)
		assert.Equal(t, "In Progress", history[1].Status)
		assert.Equal(t, "Pending", history[2].Status)
	})

	t.Run("missing record fails with not found and persists nothing", func(t *testing.T) {
		ref := domain.RecordRef{Type: domain.RecordTypeDocument, ID: 424242}
		_, err := store.UpdateStatus(ctx, UpdateStatusInput{
			Record: ref, Status: "Completed", UpdatedBy: "A",
		})
		require.ErrorIs(t, err, domain.ErrRecordNotFound)

		history, err := store.GetStatusHistory(ctx, ref)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("unknown record type is rejected before any query", func(t *testing.T) {
		_, err := store.UpdateStatus(ctx, UpdateStatusInput{
			Record: domain.RecordRef{Type: "fax", ID: 1},
			Status: "Completed", UpdatedBy: "A",
		})
		require.ErrorIs(t, err, domain.ErrInvalidRecordType)
	})

	t.Run("email attachments append to the flat array", func(t *testing.T) {
		input := buildTestEmailInput(22)
		input.Attachments = []domain.AttachmentFile{buildTestAttachment("original.pdf")}
		rec, err := store.CreateEmailLog(ctx, input)
		require.NoError(t, err)

		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record:      domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID},
			Status:      "In Progress",
			UpdatedBy:   "C",
			Attachments: []domain.AttachmentFile{buildTestAttachment("followup.pdf")},
		})
		require.NoError(t, err)

		got, err := store.GetEmailLogByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.AttachmentCount)
		files := decodeAttachments(t, got.Attachments)
		require.Len(t, files, 2)
		assert.Equal(t, "original.pdf", files[0].OriginalName)
		assert.Equal(t, "followup.pdf", files[1].OriginalName)

		history, err := store.GetStatusHistory(ctx, domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID})
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.NotNil(t, history[0].AttachmentName)
		assert.Equal(t, "stored-followup.pdf", *history[0].AttachmentName)
	})
}

// =============================================================================
// Test: file version ledger
// =============================================================================

func testFileVersions(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("versions increment by exactly one per attachment-bearing update", func(t *testing.T) {
		input := buildTestDocumentInput(30)
		input.Attachments = []domain.AttachmentFile{buildTestAttachment("v1.pdf")}
		rec, err := store.CreateDocumentLog(ctx, input)
		require.NoError(t, err)
		ref := domain.RecordRef{Type: domain.RecordTypeDocument, ID: rec.ID}

		// Update 1: with attachments -> version 2
		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record: ref, Status: "In Progress", UpdatedBy: "A",
			Attachments: []domain.AttachmentFile{buildTestAttachment("v2.pdf")},
		})
		require.NoError(t, err)

		// Update 2: no attachments -> no new version
		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record: ref, Status: "In Progress", UpdatedBy: "A",
		})
		require.NoError(t, err)

		// Update 3: with attachments -> version 3
		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record: ref, Status: "Completed", UpdatedBy: "A",
			Attachments: []domain.AttachmentFile{
				buildTestAttachment("v3-a.pdf"),
				buildTestAttachment("v3-b.pdf"),
			},
		})
		require.NoError(t, err)

		versions, err := store.GetFileVersions(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, versions.CurrentVersion)
		require.Len(t, versions.Versions, 3)
		assert.Equal(t, 1, versions.Versions[0].VersionNumber)
		assert.Equal(t, 2, versions.Versions[1].VersionNumber)
		assert.Equal(t, 3, versions.Versions[2].VersionNumber)

		// attachment_count is recomputed as the total across all versions
		got, err := store.GetDocumentLogByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.AttachmentCount)
	})

	t.Run("reads without intervening writes are identical", func(t *testing.T) {
		input := buildTestDocumentInput(31)
		input.Attachments = []domain.AttachmentFile{buildTestAttachment("only.pdf")}
		rec, err := store.CreateDocumentLog(ctx, input)
		require.NoError(t, err)

		first, err := store.GetFileVersions(ctx, rec.ID)
		require.NoError(t, err)
		second, err := store.GetFileVersions(ctx, rec.ID)
		require.NoError(t, err)

		assert.Equal(t, first.CurrentVersion, second.CurrentVersion)
		require.Equal(t, len(first.Versions), len(second.Versions))
		for i := range first.Versions {
			assert.Equal(t, first.Versions[i].VersionNumber, second.Versions[i].VersionNumber)
			assert.JSONEq(t, string(first.Versions[i].Files), string(second.Versions[i].Files))
		}
	})

	t.Run("missing document fails with not found", func(t *testing.T) {
		_, err := store.GetFileVersions(ctx, 424242)
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

// =============================================================================
// Test: status counts
// =============================================================================

func testStatusCounts(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("only the latest entry per record contributes", func(t *testing.T) {
		rec, err := store.CreateEmailLog(ctx, buildTestEmailInput(40))
		require.NoError(t, err)
		ref := domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID}

		for _, status := range []string{"Pending", "In Progress", "Completed"} {
			_, err := store.UpdateStatus(ctx, UpdateStatusInput{Record: ref, Status: status, UpdatedBy: "A"})
			require.NoError(t, err)
		}

		counts, err := store.GetStatusCounts(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["Completed"])
		assert.Zero(t, counts["Pending"])
		assert.Zero(t, counts["In Progress"])
	})

	t.Run("record type filter restricts the groups", func(t *testing.T) {
		email, err := store.CreateEmailLog(ctx, buildTestEmailInput(41))
		require.NoError(t, err)
		doc, err := store.CreateDocumentLog(ctx, buildTestDocumentInput(41))
		require.NoError(t, err)

		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record: domain.RecordRef{Type: domain.RecordTypeEmail, ID: email.ID},
			Status: "Pending", UpdatedBy: "A",
		})
		require.NoError(t, err)
		_, err = store.UpdateStatus(ctx, UpdateStatusInput{
			Record: domain.RecordRef{Type: domain.RecordTypeDocument, ID: doc.ID},
			Status: "Pending", UpdatedBy: "A",
		})
		require.NoError(t, err)

		emailType := domain.RecordTypeEmail
		counts, err := store.GetStatusCounts(ctx, &emailType)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["Pending"])
	})

	t.Run("unknown record type is rejected", func(t *testing.T) {
		bad := domain.RecordType("fax")
		_, err := store.GetStatusCounts(ctx, &bad)
		require.ErrorIs(t, err, domain.ErrInvalidRecordType)
	})
}

// =============================================================================
// Test: listing and stats
// =============================================================================

func testListEmailLogs(t *testing.T, store Store) {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		input := buildTestEmailInput(50 + i)
		if i == 0 {
			input.Subject = "Quarterly budget review"
		}
		rec, err := store.CreateEmailLog(ctx, input)
		require.NoError(t, err)
		if i < 2 {
			_, err = store.UpdateStatus(ctx, UpdateStatusInput{
				Record: domain.RecordRef{Type: domain.RecordTypeEmail, ID: rec.ID},
				Status: "Completed", UpdatedBy: "A",
			})
			require.NoError(t, err)
		}
	}

	t.Run("pagination returns totals", func(t *testing.T) {
		records, total, err := store.ListEmailLogs(ctx, RecordQueryFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, records, 2)
	})

	t.Run("search matches subject", func(t *testing.T) {
		records, total, err := store.ListEmailLogs(ctx, RecordQueryFilter{Search: "budget", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, records, 1)
		assert.Equal(t, "Quarterly budget review", records[0].Subject)
	})

	t.Run("search wildcards are treated literally", func(t *testing.T) {
		_, total, err := store.ListEmailLogs(ctx, RecordQueryFilter{Search: "%", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("status filter", func(t *testing.T) {
		_, total, err := store.ListEmailLogs(ctx, RecordQueryFilter{Status: "Completed", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("email stats aggregate", func(t *testing.T) {
		stats, err := store.GetEmailStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.Total)
		assert.Equal(t, int64(5), stats.UniqueRecipients)
		require.NotNil(t, stats.LastLoggedAt)
	})
}

func testListDocumentLogs(t *testing.T, store Store) {
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		input := buildTestDocumentInput(60 + i)
		if i == 3 {
			input.Direction = "Incoming"
		}
		_, err := store.CreateDocumentLog(ctx, input)
		require.NoError(t, err)
	}

	t.Run("direction filter", func(t *testing.T) {
		_, total, err := store.ListDocumentLogs(ctx, RecordQueryFilter{Direction: "Incoming", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("document stats aggregate", func(t *testing.T) {
		stats, err := store.GetDocumentStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.Total)
		assert.Equal(t, int64(1), stats.Incoming)
		assert.Equal(t, int64(3), stats.Outgoing)
	})

	t.Run("date range excludes old records", func(t *testing.T) {
		future := time.Now().Add(24 * time.Hour)
		_, total, err := store.ListDocumentLogs(ctx, RecordQueryFilter{From: &future, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

// =============================================================================
// Test driver
// =============================================================================

// RunStoreTests runs the full store suite against a Store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CreateEmailLog", testCreateEmailLog},
		{"CreateDocumentLog", testCreateDocumentLog},
		{"TrackingSequence", testTrackingSequence},
		{"UpdateStatus", testUpdateStatus},
		{"FileVersions", testFileVersions},
		{"StatusCounts", testStatusCounts},
		{"ListEmailLogs", testListEmailLogs},
		{"ListDocumentLogs", testListDocumentLogs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
