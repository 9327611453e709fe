package models

import "time"

// Mood is the user-reported mood attached to a journal entry.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodCalm    Mood = "calm"
	MoodAngry   Mood = "angry"
	MoodExcited Mood = "excited"
	MoodNeutral Mood = "neutral"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAnxious, MoodCalm, MoodAngry, MoodExcited, MoodNeutral:
		return true
	}
	return false
}

// JournalEntry is one diary entry. Sentiment fields are filled best-effort by
// the AI collaborator when it is configured; they stay empty otherwise.
type JournalEntry struct {
	ID             string    `gorm:"column:id;type:uuid;primary_key;index:idx_journal_user_id,priority:2,sort:desc" json:"id"`
	UserID         string    `gorm:"column:user_id;type:uuid;not null;index:idx_journal_user_id,priority:1" json:"user_id"`
	Title          string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content        string    `gorm:"column:content;type:text;not null" json:"content"`
	Mood           Mood      `gorm:"column:mood;type:varchar(32)" json:"mood"`
	SentimentLabel string    `gorm:"column:sentiment_label;type:varchar(32)" json:"sentiment_label,omitempty"`
	SentimentScore float64   `gorm:"column:sentiment_score" json:"sentiment_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (JournalEntry) TableName() string { return "journal_entry" }
