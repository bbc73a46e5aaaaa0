package schema

import (
	"time"
)

// TrackingCounter represents the tracking_counters table - one row per calendar
// day holding the last sequence number handed out for that day. Allocation
// increments last_seq atomically so concurrent submissions never observe the
// same value.
type TrackingCounter struct {
	// DatePart is the YYMMDD date prefix the counter is scoped to
	DatePart string `gorm:"column:date_part;primaryKey;type:text"`
	// LastSeq is the most recently assigned sequence number for the date
	LastSeq int64 `gorm:"column:last_seq;not null;default:0"`
	// UpdatedAt is when the counter last advanced
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TrackingCounter model
func (TrackingCounter) TableName() string {
	return "tracking_counters"
}
