package store

import (
	"database/sql"
	"time"

	"earshot/internal/services"
)

// ErrNotFound is returned when a context or audio sample does not exist.
var ErrNotFound = services.ErrNotFound

const (
	// DefaultListLimit is the page size used when callers pass no limit.
	DefaultListLimit = 100
	// MaxListLimit caps a single ListContexts page.
	MaxListLimit = 100

	dateLayout = "Jan 2, 2006"
)

// Context is a stored context row without its attached entities.
type Context struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is the list entry shape served to clients.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Desc string `json:"desc"`
}

// Summary converts the context into its list representation.
func (c Context) Summary() Summary {
	return Summary{
		ID:   c.ID,
		Name: c.Name,
		Date: c.CreatedAt.Local().Format(dateLayout),
		Desc: c.Description,
	}
}

// AudioSample is an uploaded recording attached to a context.
type AudioSample struct {
	ID          int64     `json:"id"`
	ContextID   int64     `json:"context_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FilePath    string    `json:"-"`
	Transcribed bool      `json:"transcribed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarises the database contents.
type Stats struct {
	Contexts     int `json:"contexts"`
	Speakers     int `json:"speakers"`
	Codewords    int `json:"codewords"`
	AudioSamples int `json:"audio_samples"`
	Utterances   int `json:"utterances"`
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
