package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// RecordType discriminates between the two communication record tables
type RecordType string

const (
	RecordTypeEmail    RecordType = "email"
	RecordTypeDocument RecordType = "document"
)

// IsValidRecordType checks if a record type is one of the known variants.
// Unknown types must be rejected before any storage query is issued.
func IsValidRecordType(rt RecordType) bool {
	return rt == RecordTypeEmail || rt == RecordTypeDocument
}

// RecordRef identifies a single record across both record tables
type RecordRef struct {
	Type RecordType `json:"record_type"`
	ID   int64      `json:"record_id"`
}

// Valid reports whether the reference can be resolved against storage
func (r RecordRef) Valid() bool {
	return r.ID > 0 && IsValidRecordType(r.Type)
}

const (
	// TRACKING_PREFIX is the fixed prefix of every tracking number
	TRACKING_PREFIX = "CTS"
	// TRACKING_DATE_LAYOUT is the YYMMDD date part layout
	TRACKING_DATE_LAYOUT = "060102"
)

// trackingPattern matches CTS-YYMMDD-NNN. The sequence part is at least
// 3 digits; past 999 within a day it widens rather than rolling over.
var trackingPattern = regexp.MustCompile(`^CTS-(\d{6})-(\d{3,})$`)

// TrackingNumber is the human-readable record identifier in the form
// CTS-YYMMDD-NNN, assigned once at record creation and immutable afterward.
type TrackingNumber string

// NewTrackingNumber formats a tracking number for the given day and sequence.
// The sequence is zero-padded to 3 digits and widens beyond 999.
func NewTrackingNumber(day time.Time, sequence uint64) TrackingNumber {
	return TrackingNumber(fmt.Sprintf("%s-%s-%03d", TRACKING_PREFIX, day.Format(TRACKING_DATE_LAYOUT), sequence))
}

// Valid checks the tracking number shape
func (t TrackingNumber) Valid() bool {
	m := trackingPattern.FindStringSubmatch(string(t))
	if m == nil {
		return false
	}
	if _, err := time.Parse(TRACKING_DATE_LAYOUT, m[1]); err != nil {
		return false
	}
	seq, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return false
	}
	return seq > 0
}

// Parse splits a tracking number into its date part and sequence
func (t TrackingNumber) Parse() (datePart string, sequence uint64, err error) {
	m := trackingPattern.FindStringSubmatch(string(t))
	if m == nil {
		return "", 0, fmt.Errorf("malformed tracking number: %q", string(t))
	}
	sequence, err = strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed tracking sequence: %q", string(t))
	}
	return m[1], sequence, nil
}

// DatePrefix returns the "CTS-YYMMDD-" prefix used to scope a day's records
func DatePrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s-", TRACKING_PREFIX, day.Format(TRACKING_DATE_LAYOUT))
}

// AttachmentFile describes one stored attachment within a file version
type AttachmentFile struct {
	OriginalName string `json:"originalName"`
	StoredName   string `json:"storedName"`
	UploadedBy   string `json:"uploadedBy,omitempty"`
}
