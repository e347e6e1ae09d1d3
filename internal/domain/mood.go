package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Mood bounds and limits
const (
	MinMood           = 1
	MaxMood           = 5
	MaxMoodNoteLength = 1000
)

// ErrInvalidMood is returned when a mood is outside 1..5.
var ErrInvalidMood = errors.New("mood must be between 1 and 5")

// MoodEntry is a user's mood for one calendar day. There is at most one per
// (user, day); saving again for the same day replaces the entry.
type MoodEntry struct {
	UserID    uuid.UUID `json:"-"`
	Date      Day       `json:"date"`
	Mood      int       `json:"mood"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMoodEntry creates a validated MoodEntry.
func NewMoodEntry(userID uuid.UUID, date Day, mood int, note string) (*MoodEntry, error) {
	entry := &MoodEntry{
		UserID:    userID,
		Date:      date,
		Mood:      mood,
		Note:      strings.TrimSpace(note),
		UpdatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the MoodEntry has valid data.
func (m *MoodEntry) Validate() error {
	if m.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrInvalidID)
	}
	if !m.Date.Valid() {
		return NewValidationError("date", "must be a calendar day in YYYY-MM-DD form", ErrInvalidFormat)
	}
	if m.Mood < MinMood || m.Mood > MaxMood {
		return NewValidationError("mood", "is out of range", ErrInvalidMood)
	}
	if utf8.RuneCountInString(m.Note) > MaxMoodNoteLength {
		return NewValidationError("note", "is too long", ErrValidation)
	}
	return nil
}
