package database

import (
	"context"
)

// ProjectReader provides read-only access to projects
type ProjectReader interface {
	// GetProject retrieves a project by ID, returns nil if not found
	GetProject(ctx context.Context, id string) (*Project, error)
	// ListProjects returns all projects ordered by creation time
	ListProjects(ctx context.Context) ([]Project, error)
}

// ProjectWriter provides write access to projects
type ProjectWriter interface {
	ProjectReader

	// CreateProject stores a new project; ID and timestamps are filled in when empty
	CreateProject(ctx context.Context, project *Project) error
	// UpdateProject updates name and prompt of an existing project
	UpdateProject(ctx context.Context, project *Project) error
	// DeleteProject removes a project and all of its photos
	DeleteProject(ctx context.Context, id string) error
}

// PhotoReader provides read-only access to photos
type PhotoReader interface {
	// GetPhoto retrieves a photo by ID, returns nil if not found
	GetPhoto(ctx context.Context, id int64) (*Photo, error)
	// ListPhotos returns all photos of a project ordered by ID
	ListPhotos(ctx context.Context, projectID string) ([]Photo, error)
	// ListUnscoredPhotos returns photos with a null score ordered by ID
	ListUnscoredPhotos(ctx context.Context, projectID string) ([]Photo, error)
	// ListSelectedPhotos returns photos flagged for export ordered by ID
	ListSelectedPhotos(ctx context.Context, projectID string) ([]Photo, error)
	// FindByFingerprint returns the photo with the given content fingerprint, nil if none
	FindByFingerprint(ctx context.Context, projectID, fingerprint string) (*Photo, error)
	// ListByGroup returns the members of one similarity group ordered by ID
	ListByGroup(ctx context.Context, projectID string, groupID int64) ([]Photo, error)
	// CountGroups returns the number of distinct non-null group IDs in a project
	CountGroups(ctx context.Context, projectID string) (int, error)
	// CountUnscored returns the number of photos with a null score
	CountUnscored(ctx context.Context, projectID string) (int, error)
}

// PhotoWriter provides write access to photos
type PhotoWriter interface {
	PhotoReader

	// CreatePhoto inserts a photo and sets its ID and timestamps.
	// Returns ErrDuplicatePhoto when the fingerprint already exists in the project.
	CreatePhoto(ctx context.Context, photo *Photo) error
	// UpdateScore sets score and comment of a photo
	UpdateScore(ctx context.Context, id int64, score float64, comment string) error
	// AssignGroup sets the group ID of all given photos in one transaction
	AssignGroup(ctx context.Context, projectID string, groupID int64, photoIDs []int64) error
	// ClearGroups sets the group ID of every photo in a project to null
	ClearGroups(ctx context.Context, projectID string) error
	// SetSelected updates the export flag of the given photos, returns rows changed
	SetSelected(ctx context.Context, projectID string, photoIDs []int64, selected bool) (int64, error)
	// DeletePhoto removes a photo row
	DeletePhoto(ctx context.Context, id int64) error
}

// Store combines all project and photo operations
type Store interface {
	ProjectWriter
	PhotoWriter
	Close() error
}
