package models

import "time"

// UsageLedger holds one row of free-tier counters per (user, calendar date).
// Rows are created on the first counted action of a day and incremented with
// an atomic upsert; old rows simply age out, nothing reads them back.
type UsageLedger struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uniq_usage_user_date,priority:1" json:"user_id"`
	// EntryDate is the server-local calendar date bucket (YYYY-MM-DD),
	// derived from the clock at action time, never from client input.
	EntryDate         string    `gorm:"column:entry_date;type:varchar(10);not null;uniqueIndex:uniq_usage_user_date,priority:2" json:"entry_date"`
	JournalsCreated   int       `gorm:"column:journals_created;not null;default:0" json:"journals_created"`
	AISuggestionsUsed int       `gorm:"column:ai_suggestions_used;not null;default:0" json:"ai_suggestions_used"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (UsageLedger) TableName() string { return "usage_ledger" }
