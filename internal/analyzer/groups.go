package analyzer

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kozaktomas/photo-culler/internal/database"
)

// GroupView is one similarity group with its best photo.
type GroupView struct {
	GroupID int64
	Photos  []database.Photo
	Best    database.Photo
}

// BestOf picks the highest scored photo. Unscored photos rank below any
// score; ties go to the lowest id. photos must not be empty.
func BestOf(photos []database.Photo) database.Photo {
	best := photos[0]
	for _, p := range photos[1:] {
		switch c := cmp.Compare(p.ScoreValue(), best.ScoreValue()); {
		case c > 0:
			best = p
		case c == 0 && p.ID < best.ID:
			best = p
		}
	}
	return best
}

// BestOfGroups returns every group of a project in ascending id order.
func (a *Analyzer) BestOfGroups(ctx context.Context, projectID string) ([]GroupView, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return nil, err
	}

	photos, err := a.store.ListPhotos(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	byGroup := make(map[int64][]database.Photo)
	for _, p := range photos {
		if p.GroupID != nil {
			byGroup[*p.GroupID] = append(byGroup[*p.GroupID], p)
		}
	}

	views := make([]GroupView, 0, len(byGroup))
	for id, members := range byGroup {
		views = append(views, GroupView{GroupID: id, Photos: members, Best: BestOf(members)})
	}
	slices.SortFunc(views, func(x, y GroupView) int {
		return cmp.Compare(x.GroupID, y.GroupID)
	})
	return views, nil
}

// GroupMembers lists the photos of one group.
func (a *Analyzer) GroupMembers(ctx context.Context, projectID string, groupID int64) ([]database.Photo, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return nil, err
	}
	photos, err := a.store.ListByGroup(ctx, projectID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group %d: %w", groupID, err)
	}
	return photos, nil
}
