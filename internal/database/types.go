package database

import (
	"errors"
	"time"
)

var (
	// ErrProjectNotFound is returned when an operation targets a missing project
	ErrProjectNotFound = errors.New("project not found")
	// ErrPhotoNotFound is returned when an operation targets a missing photo
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrInvalidFingerprint is returned when a photo carries a malformed content fingerprint
	ErrInvalidFingerprint = errors.New("invalid photo fingerprint")
	// ErrDuplicatePhoto is returned when inserting a fingerprint already stored for the project
	ErrDuplicatePhoto = errors.New("photo with this fingerprint already exists in project")
)

// Project is a named collection of photos sharing an evaluation prompt
type Project struct {
	ID        string
	Name      string
	Prompt    string // optional text appended to the scoring rubric
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Photo is a single ingested file and the analysis state attached to it
type Photo struct {
	ID            int64
	ProjectID     string
	Filename      string // original filename as uploaded
	OriginalPath  string
	ThumbnailPath string
	Fingerprint   string // hex SHA-256 of the original bytes
	Size          int64
	Score         *float64 // nil until analyzed, otherwise within [0, 10]
	Comment       *string
	Selected      bool
	GroupID       *int64 // nil when not part of a similarity group
	TakenAt       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsScored reports whether the photo has been analyzed
func (p *Photo) IsScored() bool {
	return p.Score != nil
}

// ScoreValue returns the score or -1 for unscored photos, for ranking.
func (p *Photo) ScoreValue() float64 {
	if p.Score == nil {
		return -1
	}
	return *p.Score
}
