package executor

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/commdesk/cts/internal/adapter"
	"github.com/commdesk/cts/internal/api/apierrors"
	"github.com/commdesk/cts/internal/domain"
	"github.com/commdesk/cts/internal/files"
	"github.com/commdesk/cts/internal/store"
	"github.com/commdesk/cts/internal/store/schema"
)

// stubStore satisfies store.Store with canned responses and records the
// inputs it receives
type stubStore struct {
	store.Store

	emailByID      *schema.EmailLog
	documentByID   *schema.DocumentLog
	history        []schema.StatusHistory
	fileVersions   *store.FileVersionsResult
	emailList      []schema.EmailLog
	emailTotal     int64
	updateErr      error
	historyCalls   int
	createdEmail   *store.CreateEmailLogInput
	updateInput    *store.UpdateStatusInput
	writesRecorded int
}

func (s *stubStore) CreateEmailLog(_ context.Context, input store.CreateEmailLogInput) (*schema.EmailLog, error) {
	s.createdEmail = &input
	s.writesRecorded++
	return &schema.EmailLog{ID: 1, TrackingNumber: "CTS-260831-001", SenderName: input.SenderName}, nil
}

func (s *stubStore) GetEmailLogByID(_ context.Context, _ int64) (*schema.EmailLog, error) {
	return s.emailByID, nil
}

func (s *stubStore) GetDocumentLogByID(_ context.Context, _ int64) (*schema.DocumentLog, error) {
	return s.documentByID, nil
}

func (s *stubStore) GetStatusHistory(_ context.Context, _ domain.RecordRef) ([]schema.StatusHistory, error) {
	s.historyCalls++
	return s.history, nil
}

func (s *stubStore) UpdateStatus(_ context.Context, input store.UpdateStatusInput) (*store.UpdatedRecord, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updateInput = &input
	s.writesRecorded++
	return &store.UpdatedRecord{Email: &schema.EmailLog{ID: input.Record.ID}}, nil
}

func (s *stubStore) GetFileVersions(_ context.Context, _ int64) (*store.FileVersionsResult, error) {
	if s.fileVersions == nil {
		return nil, domain.ErrRecordNotFound
	}
	return s.fileVersions, nil
}

func (s *stubStore) ListEmailLogs(_ context.Context, _ store.RecordQueryFilter) ([]schema.EmailLog, int64, error) {
	return s.emailList, s.emailTotal, nil
}

// stubFiles satisfies files.Service in memory
type stubFiles struct {
	saved   []string
	saveErr error
}

func (f *stubFiles) Save(originalName string, _ []byte) (*files.StoredFile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	stored := fmt.Sprintf("stored-%d", len(f.saved))
	f.saved = append(f.saved, originalName)
	return &files.StoredFile{OriginalName: originalName, StoredName: stored}, nil
}

func (f *stubFiles) Open(_ string) (adapter.File, error) {
	return nil, errors.New("not stored")
}

func (f *stubFiles) Exists(_ string) bool { return false }

func newTestExecutor(s *stubStore, f *stubFiles) Executor {
	return NewExecutor(s, f)
}

func requireAPIError(t *testing.T, err error, code apierrors.ErrorCode) *apierrors.APIError {
	t.Helper()
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestLogEmailValidation(t *testing.T) {
	s := &stubStore{}
	exec := newTestExecutor(s, &stubFiles{})

	_, err := exec.LogEmail(context.Background(), EmailSubmission{SenderName: "Dana Cruz"})
	apiErr := requireAPIError(t, err, apierrors.ErrCodeValidationFailed)
	assert.Contains(t, apiErr.Details, "recipient is required")
	assert.Contains(t, apiErr.Details, "subject is required")
	assert.Contains(t, apiErr.Details, "body is required")
	assert.Nil(t, s.createdEmail, "nothing should be persisted on validation failure")
}

func TestLogEmailSavesAttachments(t *testing.T) {
	s := &stubStore{}
	f := &stubFiles{}
	exec := newTestExecutor(s, f)

	rec, err := exec.LogEmail(context.Background(), EmailSubmission{
		SenderName: "Dana Cruz",
		Recipient:  "records@example.gov",
		Subject:    "Budget request",
		Body:       "See attached.",
		Attachments: []AttachmentUpload{
			{OriginalName: "budget.pdf", Data: []byte("pdf")},
			{OriginalName: "annex.xlsx", Data: []byte("xlsx")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, []string{"budget.pdf", "annex.xlsx"}, f.saved)
	require.NotNil(t, s.createdEmail)
	require.Len(t, s.createdEmail.Attachments, 2)
	assert.Equal(t, "budget.pdf", s.createdEmail.Attachments[0].OriginalName)
	assert.Equal(t, "Dana Cruz", s.createdEmail.Attachments[0].UploadedBy)
}

func TestLogEmailStorageFailure(t *testing.T) {
	s := &stubStore{}
	f := &stubFiles{saveErr: errors.New("disk full")}
	exec := newTestExecutor(s, f)

	_, err := exec.LogEmail(context.Background(), EmailSubmission{
		SenderName:  "Dana Cruz",
		Recipient:   "records@example.gov",
		Subject:     "Budget request",
		Body:        "See attached.",
		Attachments: []AttachmentUpload{{OriginalName: "budget.pdf", Data: []byte("pdf")}},
	})
	requireAPIError(t, err, apierrors.ErrCodeStorageError)
	assert.Nil(t, s.createdEmail)
}

func TestTimelineLeadsWithHistoryAndEndsAtOrigination(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := &stubStore{
		emailByID: &schema.EmailLog{
			ID:         7,
			SenderName: "Dana Cruz",
			Body:       "Initial request body",
			CreatedAt:  created,
		},
		history: []schema.StatusHistory{
			{Status: "Completed", CreatedBy: "Lee Ramos", CreatedAt: created.Add(2 * time.Hour)},
			{Status: "In Progress", CreatedBy: "Lee Ramos", CreatedAt: created.Add(time.Hour)},
		},
	}
	exec := newTestExecutor(s, &stubFiles{})

	timeline, err := exec.Timeline(context.Background(), domain.RecordRef{Type: domain.RecordTypeEmail, ID: 7})
	require.NoError(t, err)
	require.Len(t, timeline, 3)

	assert.Equal(t, "Completed", timeline[0].Status)
	assert.False(t, timeline[0].Origination)

	last := timeline[2]
	assert.True(t, last.Origination)
	assert.Equal(t, "Sent", last.Status)
	assert.Equal(t, "Outgoing", last.Direction)
	assert.Equal(t, "Dana Cruz", last.CreatedBy)
	assert.Equal(t, "Initial request body", last.Remarks)
	assert.Equal(t, created, last.CreatedAt)

	// The origination entry is synthesized read-side, never persisted
	assert.Zero(t, s.writesRecorded)
}

func TestTimelineIncomingDocumentReadsReceived(t *testing.T) {
	s := &stubStore{
		documentByID: &schema.DocumentLog{
			ID:         3,
			SenderName: "Provincial Office",
			Direction:  "Incoming",
			Remarks:    "For review",
			CreatedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
	}
	exec := newTestExecutor(s, &stubFiles{})

	timeline, err := exec.Timeline(context.Background(), domain.RecordRef{Type: domain.RecordTypeDocument, ID: 3})
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "Received", timeline[0].Status)
	assert.Equal(t, "Incoming", timeline[0].Direction)
	assert.True(t, timeline[0].Origination)
}

func TestTimelineMissingRecord(t *testing.T) {
	s := &stubStore{}
	exec := newTestExecutor(s, &stubFiles{})

	_, err := exec.Timeline(context.Background(), domain.RecordRef{Type: domain.RecordTypeEmail, ID: 404})
	requireAPIError(t, err, apierrors.ErrCodeNotFound)
	assert.Zero(t, s.historyCalls, "history should not be read for a missing record")
}

func TestUpdateStatusValidation(t *testing.T) {
	exec := newTestExecutor(&stubStore{}, &stubFiles{})

	_, err := exec.UpdateStatus(context.Background(), StatusUpdate{
		Record: domain.RecordRef{Type: "fax", ID: 0},
	})
	apiErr := requireAPIError(t, err, apierrors.ErrCodeValidationFailed)
	assert.Contains(t, apiErr.Details, "record_id is required")
	assert.Contains(t, apiErr.Details, "record_type must be email or document")
	assert.Contains(t, apiErr.Details, "status is required")
	assert.Contains(t, apiErr.Details, "updated_by is required")
}

func TestUpdateStatusNotFound(t *testing.T) {
	s := &stubStore{updateErr: domain.ErrRecordNotFound}
	exec := newTestExecutor(s, &stubFiles{})

	_, err := exec.UpdateStatus(context.Background(), StatusUpdate{
		Record:    domain.RecordRef{Type: domain.RecordTypeEmail, ID: 404},
		Status:    "Completed",
		UpdatedBy: "Lee Ramos",
	})
	requireAPIError(t, err, apierrors.ErrCodeNotFound)
}

func TestFileVersionsSplitsCurrentFromPrevious(t *testing.T) {
	s := &stubStore{
		fileVersions: &store.FileVersionsResult{
			CurrentVersion: 2,
			Versions: []schema.FileVersion{
				{
					VersionNumber: 1,
					UploadedBy:    "Dana Cruz",
					Files:         datatypes.JSON(`[{"originalName":"draft.pdf","storedName":"stored-draft"}]`),
				},
				{
					VersionNumber: 2,
					UploadedBy:    "Lee Ramos",
					Files:         datatypes.JSON(`[{"originalName":"final.pdf","storedName":"stored-final"},{"originalName":"annex.pdf","storedName":"stored-annex"}]`),
				},
			},
		},
	}
	exec := newTestExecutor(s, &stubFiles{})

	view, err := exec.FileVersions(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, view.CurrentVersion)
	require.Len(t, view.NewFiles, 2)
	assert.Equal(t, "final.pdf", view.NewFiles[0].OriginalName)
	require.Len(t, view.PreviousFiles, 1)
	assert.Equal(t, "draft.pdf", view.PreviousFiles[0].OriginalName)

	require.Len(t, view.Versions, 2)
	assert.False(t, view.Versions[0].IsCurrent)
	assert.True(t, view.Versions[1].IsCurrent)
}

func TestFileVersionsMissingDocument(t *testing.T) {
	exec := newTestExecutor(&stubStore{}, &stubFiles{})

	_, err := exec.FileVersions(context.Background(), 404)
	requireAPIError(t, err, apierrors.ErrCodeNotFound)
}

func TestListEmailsPagination(t *testing.T) {
	s := &stubStore{emailTotal: 45}
	exec := newTestExecutor(s, &stubFiles{})

	_, page, err := exec.ListEmails(context.Background(), ListQuery{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestDocumentByTrackingNumberRejectsMalformed(t *testing.T) {
	exec := newTestExecutor(&stubStore{}, &stubFiles{})

	_, err := exec.DocumentByTrackingNumber(context.Background(), "DOC-2026-001")
	requireAPIError(t, err, apierrors.ErrCodeValidationFailed)
}

func TestExportCSVEmails(t *testing.T) {
	loggedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := &stubStore{
		emailList: []schema.EmailLog{
			{
				TrackingNumber:  "CTS-260302-001",
				SenderName:      "Dana Cruz",
				Recipient:       "records@example.gov",
				Subject:         "Budget request",
				EmailType:       "Official",
				AttachmentCount: 2,
				CurrentStatus:   "Completed",
				CreatedAt:       loggedAt,
			},
		},
		emailTotal: 1,
	}
	exec := newTestExecutor(s, &stubFiles{})

	var buf bytes.Buffer
	err := exec.ExportCSV(context.Background(), domain.RecordTypeEmail, ListQuery{}, &buf)
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "tracking_number", rows[0][0])
	assert.Equal(t, "CTS-260302-001", rows[1][0])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "Completed", rows[1][6])
	assert.Equal(t, "2026-03-02T09:00:00Z", rows[1][8])
	assert.Equal(t, "", rows[1][9], "unset status timestamp exports empty")
}

func TestExportCSVRejectsUnknownType(t *testing.T) {
	exec := newTestExecutor(&stubStore{}, &stubFiles{})

	var buf bytes.Buffer
	err := exec.ExportCSV(context.Background(), domain.RecordType("fax"), ListQuery{}, &buf)
	requireAPIError(t, err, apierrors.ErrCodeValidationFailed)
}
