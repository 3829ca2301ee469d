package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/batch"
	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/database"
)

// groupAllocator hands out group ids for one run, starting at 1.
type groupAllocator struct {
	mu   sync.Mutex
	next int64
}

func (g *groupAllocator) allocate() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

// GroupPhotos clears existing groups, asks the vision service to cluster
// similar photos batch by batch, and returns the number of groups stored.
// Groups never span batches.
func (a *Analyzer) GroupPhotos(ctx context.Context, projectID string, opts Options) (int, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return 0, err
	}

	if err := a.store.ClearGroups(ctx, projectID); err != nil {
		return 0, fmt.Errorf("failed to clear groups: %w", err)
	}

	photos, err := a.store.ListPhotos(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}
	if len(photos) < constants.MinGroupSize {
		return 0, nil
	}

	batches := batch.Partition(photos, constants.GroupingBatchSize)
	progress := &progressTracker{total: len(photos), notify: opts.OnProgress}
	alloc := &groupAllocator{}
	instruction := ai.GroupingInstruction()

	a.log.Info("grouping started", "project", projectID, "photos", len(photos), "batches", len(batches))

	err = runBatches(ctx, batches, opts.Concurrency, func(ctx context.Context, i int, b []database.Photo) {
		if len(b) >= constants.MinGroupSize {
			a.groupBatch(ctx, projectID, instruction, alloc, b)
		}
		progress.add(len(b), fmt.Sprintf("Grouped batch %d/%d", i+1, len(batches)))
	})

	// groups saved before a cancellation still count
	count, countErr := a.store.CountGroups(context.WithoutCancel(ctx), projectID)
	if countErr != nil {
		if err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("failed to count groups: %w", countErr)
	}
	progress.done(fmt.Sprintf("Found %d groups", count))

	a.log.Info("grouping finished", "project", projectID, "groups", count)
	return count, err
}

func (a *Analyzer) groupBatch(ctx context.Context, projectID, instruction string, alloc *groupAllocator, b []database.Photo) {
	images := a.loadImages(b)
	if len(images) < constants.MinGroupSize {
		return
	}

	text, err := a.analyze(ctx, &ai.VisionRequest{
		Images:      images,
		Instruction: instruction,
		MaxTokens:   constants.GroupingMaxTokens,
	})
	if err != nil {
		a.log.Error("grouping batch failed", "first_photo_id", images[0].PhotoID, "photos", len(images), "error", err)
		return
	}

	result := ai.ParseGroups(text)
	if !result.OK {
		a.log.Warn("unusable grouping response", "first_photo_id", images[0].PhotoID, "response", truncate(text, 200))
		return
	}

	for _, members := range reconcileProposals(result.Groups, idSet(images)) {
		groupID := alloc.allocate()
		if err := a.store.AssignGroup(ctx, projectID, groupID, members); err != nil {
			a.log.Error("failed to save group", "group_id", groupID, "error", err)
		}
	}
}

// reconcileProposals keeps ids that belong to the batch and are not already
// claimed by an earlier proposal, and drops proposals left with fewer than
// two members.
func reconcileProposals(proposals []ai.GroupProposal, inBatch map[int64]bool) [][]int64 {
	claimed := make(map[int64]bool)
	var groups [][]int64
	for _, proposal := range proposals {
		var members []int64
		for _, id := range proposal.PhotoIDs {
			if !inBatch[id] || claimed[id] {
				continue
			}
			claimed[id] = true
			members = append(members, id)
		}
		if len(members) < constants.MinGroupSize {
			// release ids so a later proposal can still use them
			for _, id := range members {
				delete(claimed, id)
			}
			continue
		}
		groups = append(groups, members)
	}
	return groups
}

// UngroupPhotos clears every group assignment of a project.
func (a *Analyzer) UngroupPhotos(ctx context.Context, projectID string) error {
	if _, err := a.project(ctx, projectID); err != nil {
		return err
	}
	if err := a.store.ClearGroups(ctx, projectID); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}
	return nil
}
