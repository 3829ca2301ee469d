package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/kozaktomas/photo-culler/internal/ai"
)

func groupsJSON(groups ...[]int64) string {
	type group struct {
		PhotoIDs []int64 `json:"photo_ids"`
		Reason   string  `json:"reason"`
	}
	payload := struct {
		Groups []group `json:"groups"`
	}{Groups: []group{}}
	for _, g := range groups {
		payload.Groups = append(payload.Groups, group{PhotoIDs: g, Reason: "same scene"})
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func (e *testEnv) groupOf(t *testing.T, id int64) int64 {
	t.Helper()
	p := e.photo(t, id)
	if p.GroupID == nil {
		return 0
	}
	return *p.GroupID
}

func TestGroupPhotos_OverlappingProposals(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addPhotos(t, 6)

	env.analyzer.provider = &stubProvider{respond: func(*ai.VisionRequest, int) (string, error) {
		return groupsJSON(
			[]int64{ids[0], ids[1]},
			[]int64{ids[1], ids[2], ids[3]},
			[]int64{ids[3], 999},
			[]int64{ids[4], ids[4]},
		), nil
	}}

	n, err := env.analyzer.GroupPhotos(context.Background(), env.projectID, Options{})
	if err != nil {
		t.Fatalf("GroupPhotos failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 groups, got %d", n)
	}

	if g := env.groupOf(t, ids[0]); g != 1 || env.groupOf(t, ids[1]) != 1 {
		t.Errorf("expected first two photos in group 1, got %d", g)
	}
	if env.groupOf(t, ids[2]) != 2 || env.groupOf(t, ids[3]) != 2 {
		t.Error("expected photos 3 and 4 in group 2")
	}
	for _, id := range ids[4:] {
		if g := env.groupOf(t, id); g != 0 {
			t.Errorf("photo %d must stay ungrouped, got group %d", id, g)
		}
	}
}

func TestGroupPhotos_ClearsPreviousGroups(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addPhotos(t, 3)
	env.store.AssignGroup(context.Background(), env.projectID, 42, ids)

	env.analyzer.provider = &stubProvider{respond: func(*ai.VisionRequest, int) (string, error) {
		return "", errors.New("boom")
	}}

	n, err := env.analyzer.GroupPhotos(context.Background(), env.projectID, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 groups, got %d", n)
	}
	for _, id := range ids {
		if env.groupOf(t, id) != 0 {
			t.Errorf("photo %d still grouped", id)
		}
	}
}

func TestGroupPhotos_BatchLayout(t *testing.T) {
	provider := &stubProvider{respond: func(req *ai.VisionRequest, _ int) (string, error) {
		ids := requestIDs(req)
		return groupsJSON(ids[:2]), nil
	}}
	env := newTestEnv(t, provider)
	env.addPhotos(t, 41)

	var last AnalysisProgress
	n, err := env.analyzer.GroupPhotos(context.Background(), env.projectID, Options{
		OnProgress: func(p AnalysisProgress) { last = p },
	})
	if err != nil {
		t.Fatal(err)
	}

	// 20 + 20 + 1; the single-photo batch is never sent.
	if provider.calls() != 2 {
		t.Errorf("expected 2 calls, got %d", provider.calls())
	}
	if n != 2 {
		t.Errorf("expected 2 groups, got %d", n)
	}
	if !last.Done || last.Current != 41 || last.Message != "Found 2 groups" {
		t.Errorf("unexpected final progress %+v", last)
	}
}

func TestGroupPhotos_TooFewPhotos(t *testing.T) {
	provider := &stubProvider{respond: func(*ai.VisionRequest, int) (string, error) { return groupsJSON(), nil }}
	env := newTestEnv(t, provider)
	env.addPhotos(t, 1)

	n, err := env.analyzer.GroupPhotos(context.Background(), env.projectID, Options{})
	if err != nil || n != 0 {
		t.Errorf("expected 0 groups without error, got %d, %v", n, err)
	}
	if provider.calls() != 0 {
		t.Errorf("expected no calls, got %d", provider.calls())
	}
}

func TestGroupPhotos_ConcurrentIDsAreUnique(t *testing.T) {
	provider := &stubProvider{respond: func(req *ai.VisionRequest, _ int) (string, error) {
		ids := requestIDs(req)
		return groupsJSON(ids[:3], ids[3:6]), nil
	}}
	env := newTestEnv(t, provider)
	ids := env.addPhotos(t, 60)

	n, err := env.analyzer.GroupPhotos(context.Background(), env.projectID, Options{Concurrency: 3})
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("expected 6 groups, got %d", n)
	}

	seen := make(map[int64][]int64)
	for _, id := range ids {
		if g := env.groupOf(t, id); g != 0 {
			seen[g] = append(seen[g], id)
		}
	}
	for g, members := range seen {
		if len(members) != 3 {
			t.Errorf("group %d has %d members", g, len(members))
		}
		// every group stays inside one batch of 20
		if (members[0]-ids[0])/20 != (members[2]-ids[0])/20 {
			t.Errorf("group %d spans batches: %v", g, members)
		}
	}
	for g := int64(1); g <= 6; g++ {
		if _, ok := seen[g]; !ok {
			t.Errorf("group id %d missing", g)
		}
	}
}

func TestUngroupPhotos(t *testing.T) {
	env := newTestEnv(t, nil)
	ids := env.addPhotos(t, 2)
	env.store.AssignGroup(context.Background(), env.projectID, 1, ids)

	if err := env.analyzer.UngroupPhotos(context.Background(), env.projectID); err != nil {
		t.Fatal(err)
	}
	if n, _ := env.store.CountGroups(context.Background(), env.projectID); n != 0 {
		t.Errorf("expected no groups, got %d", n)
	}
}

func TestReconcileProposals(t *testing.T) {
	inBatch := map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true}

	tests := []struct {
		name      string
		proposals [][]int64
		want      [][]int64
	}{
		{"disjoint", [][]int64{{1, 2}, {3, 4}}, [][]int64{{1, 2}, {3, 4}}},
		{"first claim wins", [][]int64{{1, 2, 3}, {3, 4, 5}}, [][]int64{{1, 2, 3}, {4, 5}}},
		{"outside batch dropped", [][]int64{{1, 9}, {2, 3, 8}}, [][]int64{{2, 3}}},
		{"discarded proposal releases ids", [][]int64{{1, 9}, {1, 2}}, [][]int64{{1, 2}}},
		{"repeated id counts once", [][]int64{{4, 4}}, nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposals := make([]ai.GroupProposal, 0, len(tt.proposals))
			for _, ids := range tt.proposals {
				proposals = append(proposals, ai.GroupProposal{PhotoIDs: ids})
			}
			got := reconcileProposals(proposals, inBatch)
			if !slices.EqualFunc(got, tt.want, slices.Equal[[]int64]) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupAllocator_Concurrent(t *testing.T) {
	alloc := &groupAllocator{}
	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := alloc.allocate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		})
	}
	wg.Wait()
	for id := int64(1); id <= 50; id++ {
		if !seen[id] {
			t.Fatalf("id %d never allocated", id)
		}
	}
}
