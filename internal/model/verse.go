// Package model provides data models for the SutraQuery service.
package model

import (
	"fmt"
	"time"
)

// Verse represents a single verse (shloka) from a scripture.
type Verse struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	VerseID   string    `json:"verse_id" gorm:"type:varchar(128);uniqueIndex;not null"` // e.g. "bhagavad_gita_2_47"
	Source    string    `json:"source" gorm:"type:varchar(64);index;not null"`          // bhagavad_gita, ramayana, mahabharata
	Book      string    `json:"book" gorm:"type:varchar(128)"`                          // Kanda / Parva, when applicable
	Chapter   int       `json:"chapter" gorm:"index"`
	Verse     int       `json:"verse" gorm:"index"`
	Sanskrit  string    `json:"sanskrit,omitempty" gorm:"type:text"`
	Text      string    `json:"text" gorm:"type:text;not null"` // Translation
	Meaning   string    `json:"meaning,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Verse.
func (Verse) TableName() string {
	return "verses"
}

// Reference returns the human-readable citation, e.g. "Bhagavad Gita 2.47".
func (v *Verse) Reference() string {
	title := SourceTitle(v.Source)
	if v.Chapter > 0 && v.Verse > 0 {
		return fmt.Sprintf("%s %d.%d", title, v.Chapter, v.Verse)
	}
	return title
}

// FullText returns the indexable text of the verse: translation plus meaning.
func (v *Verse) FullText() string {
	if v.Meaning != "" && v.Meaning != v.Text {
		return v.Text + " " + v.Meaning
	}
	return v.Text
}

// SourceTitle maps an internal source key to its display title.
func SourceTitle(source string) string {
	switch source {
	case "bhagavad_gita":
		return "Bhagavad Gita"
	case "ramayana":
		return "Ramayana"
	case "mahabharata":
		return "Mahabharata"
	case "characters":
		return "Character Encyclopedia"
	default:
		return source
	}
}

// QueryResult represents a RAG query result.
type QueryResult struct {
	Answer     string        `json:"answer"`
	Sources    []VerseSource `json:"sources"`
	Confidence float64       `json:"confidence"`
	Cached     bool          `json:"cached"`
}

// VerseSource represents citation information for a retrieved passage.
type VerseSource struct {
	VerseID string  `json:"verse_id"`
	Source  string  `json:"source"`
	Book    string  `json:"book,omitempty"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// LoadReport summarizes a corpus load run.
type LoadReport struct {
	BatchID      string         `json:"batch_id"`
	Verses       int            `json:"verses"`
	Chunks       int            `json:"chunks"`
	PerSource    map[string]int `json:"per_source"`
	FailedFiles  []string       `json:"failed_files,omitempty"`
	Skipped      bool           `json:"skipped"` // true when the store was already populated
	DurationSecs float64        `json:"duration_secs"`
}
