// Package mock provides an in-memory implementation of database.Store for testing.
package mock

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
)

// MockStore is an in-memory implementation of database.Store
type MockStore struct {
	mu       sync.RWMutex
	projects map[string]*database.Project
	photos   map[int64]*database.Photo
	nextID   int64

	// Error injection
	CreatePhotoError error
	UpdateScoreError error
	AssignGroupError error
	ClearGroupsError error
	SetSelectedError error
	ListPhotosError  error

	// Call tracking
	UpdateScoreCalls int
	AssignGroupCalls int
}

var _ database.Store = (*MockStore)(nil)

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		projects: make(map[string]*database.Project),
		photos:   make(map[int64]*database.Photo),
	}
}

// AddPhoto inserts a photo as-is, assigning an ID when zero
func (m *MockStore) AddPhoto(photo database.Photo) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if photo.ID == 0 {
		m.nextID++
		photo.ID = m.nextID
	} else if photo.ID > m.nextID {
		m.nextID = photo.ID
	}
	m.photos[photo.ID] = &photo
	return photo.ID
}

// CreateProject stores a new project
func (m *MockStore) CreateProject(ctx context.Context, project *database.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	p := *project
	m.projects[p.ID] = &p
	return nil
}

// GetProject retrieves a project by ID
func (m *MockStore) GetProject(ctx context.Context, id string) (*database.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ListProjects returns all projects ordered by creation time
func (m *MockStore) ListProjects(ctx context.Context) ([]database.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []database.Project
	for _, p := range m.projects {
		result = append(result, *p)
	}
	slices.SortFunc(result, func(a, b database.Project) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// UpdateProject updates name and prompt
func (m *MockStore) UpdateProject(ctx context.Context, project *database.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[project.ID]
	if !ok {
		return database.ErrProjectNotFound
	}
	p.Name = project.Name
	p.Prompt = project.Prompt
	p.UpdatedAt = time.Now().UTC()
	project.UpdatedAt = p.UpdatedAt
	return nil
}

// DeleteProject removes a project and its photos
func (m *MockStore) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return database.ErrProjectNotFound
	}
	delete(m.projects, id)
	for pid, p := range m.photos {
		if p.ProjectID == id {
			delete(m.photos, pid)
		}
	}
	return nil
}

// CreatePhoto inserts a photo, rejecting duplicate fingerprints
func (m *MockStore) CreatePhoto(ctx context.Context, photo *database.Photo) error {
	if m.CreatePhotoError != nil {
		return m.CreatePhotoError
	}
	if !fingerprint.Valid(photo.Fingerprint) {
		return database.ErrInvalidFingerprint
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ProjectID == photo.ProjectID && p.Fingerprint == photo.Fingerprint {
			return database.ErrDuplicatePhoto
		}
	}
	m.nextID++
	photo.ID = m.nextID
	now := time.Now().UTC()
	photo.CreatedAt = now
	photo.UpdatedAt = now
	p := *photo
	m.photos[p.ID] = &p
	return nil
}

// GetPhoto retrieves a photo by ID
func (m *MockStore) GetPhoto(ctx context.Context, id int64) (*database.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.photos[id]
	if !ok {
		return nil, nil
	}
	cp := clonePhoto(p)
	return &cp, nil
}

// FindByFingerprint returns the photo with the fingerprint in the project
func (m *MockStore) FindByFingerprint(ctx context.Context, projectID, fingerprint string) (*database.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.photos {
		if p.ProjectID == projectID && p.Fingerprint == fingerprint {
			cp := clonePhoto(p)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStore) filter(projectID string, keep func(*database.Photo) bool) []database.Photo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []database.Photo
	for _, p := range m.photos {
		if p.ProjectID == projectID && keep(p) {
			result = append(result, clonePhoto(p))
		}
	}
	slices.SortFunc(result, func(a, b database.Photo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// ListPhotos returns all photos of a project ordered by ID
func (m *MockStore) ListPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	if m.ListPhotosError != nil {
		return nil, m.ListPhotosError
	}
	return m.filter(projectID, func(*database.Photo) bool { return true }), nil
}

// ListUnscoredPhotos returns photos without a score
func (m *MockStore) ListUnscoredPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	return m.filter(projectID, func(p *database.Photo) bool { return p.Score == nil }), nil
}

// ListSelectedPhotos returns photos flagged for export
func (m *MockStore) ListSelectedPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	return m.filter(projectID, func(p *database.Photo) bool { return p.Selected }), nil
}

// ListByGroup returns members of one group
func (m *MockStore) ListByGroup(ctx context.Context, projectID string, groupID int64) ([]database.Photo, error) {
	return m.filter(projectID, func(p *database.Photo) bool {
		return p.GroupID != nil && *p.GroupID == groupID
	}), nil
}

// CountGroups returns the number of distinct group IDs
func (m *MockStore) CountGroups(ctx context.Context, projectID string) (int, error) {
	groups := make(map[int64]struct{})
	for _, p := range m.filter(projectID, func(p *database.Photo) bool { return p.GroupID != nil }) {
		groups[*p.GroupID] = struct{}{}
	}
	return len(groups), nil
}

// CountUnscored returns the number of unscored photos
func (m *MockStore) CountUnscored(ctx context.Context, projectID string) (int, error) {
	return len(m.filter(projectID, func(p *database.Photo) bool { return p.Score == nil })), nil
}

// UpdateScore sets score and comment
func (m *MockStore) UpdateScore(ctx context.Context, id int64, score float64, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateScoreCalls++
	if m.UpdateScoreError != nil {
		return m.UpdateScoreError
	}
	p, ok := m.photos[id]
	if !ok {
		return database.ErrPhotoNotFound
	}
	p.Score = &score
	p.Comment = &comment
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignGroup sets the group ID of all photos or none
func (m *MockStore) AssignGroup(ctx context.Context, projectID string, groupID int64, photoIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssignGroupCalls++
	if m.AssignGroupError != nil {
		return m.AssignGroupError
	}
	for _, id := range photoIDs {
		p, ok := m.photos[id]
		if !ok || p.ProjectID != projectID {
			return fmt.Errorf("assign group %d: %w", groupID, database.ErrPhotoNotFound)
		}
	}
	for _, id := range photoIDs {
		g := groupID
		m.photos[id].GroupID = &g
	}
	return nil
}

// ClearGroups removes all group assignments in a project
func (m *MockStore) ClearGroups(ctx context.Context, projectID string) error {
	if m.ClearGroupsError != nil {
		return m.ClearGroupsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ProjectID == projectID {
			p.GroupID = nil
		}
	}
	return nil
}

// SetSelected updates the export flag
func (m *MockStore) SetSelected(ctx context.Context, projectID string, photoIDs []int64, selected bool) (int64, error) {
	if m.SetSelectedError != nil {
		return 0, m.SetSelectedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range photoIDs {
		if p, ok := m.photos[id]; ok && p.ProjectID == projectID {
			p.Selected = selected
			n++
		}
	}
	return n, nil
}

// DeletePhoto removes a photo
func (m *MockStore) DeletePhoto(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return database.ErrPhotoNotFound
	}
	delete(m.photos, id)
	return nil
}

// Close is a no-op
func (m *MockStore) Close() error {
	return nil
}

func clonePhoto(p *database.Photo) database.Photo {
	cp := *p
	if p.Score != nil {
		s := *p.Score
		cp.Score = &s
	}
	if p.Comment != nil {
		c := *p.Comment
		cp.Comment = &c
	}
	if p.GroupID != nil {
		g := *p.GroupID
		cp.GroupID = &g
	}
	return cp
}
