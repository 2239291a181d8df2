package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"switchmap/internal/domain"
	"switchmap/internal/repository"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// testRun builds a run finishing at the given instant
func testRun(id string, finished time.Time) *domain.DiscoveryRun {
	return &domain.DiscoveryRun{
		ID:           id,
		StartedAt:    finished.Add(-time.Minute),
		FinishedAt:   finished,
		HostsQueried: 3,
		Hosts:        []string{"10.0.0.2", "10.0.0.3"},
		Links: []domain.Link{
			{
				SourceHost:      "10.0.0.2",
				SourcePort:      "Gi0/1",
				DestinationHost: "10.0.0.3",
				DestinationPort: "Gi0/3",
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}

	if got.ID != run.ID {
		t.Errorf("ID = %s, want %s", got.ID, run.ID)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %s, want %s", got.StartedAt, run.StartedAt)
	}
	if !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("FinishedAt = %s, want %s", got.FinishedAt, run.FinishedAt)
	}
	if got.HostsQueried != 3 {
		t.Errorf("HostsQueried = %d, want 3", got.HostsQueried)
	}
	if len(got.Hosts) != 2 || got.Hosts[0] != "10.0.0.2" || got.Hosts[1] != "10.0.0.3" {
		t.Errorf("Hosts = %v, want [10.0.0.2 10.0.0.3]", got.Hosts)
	}
	if len(got.Links) != 1 || got.Links[0] != run.Links[0] {
		t.Errorf("Links = %v, want %v", got.Links, run.Links)
	}
}

func TestGetRunPreservesHostOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Completion order is not sorted order; it must survive storage
	run := testRun("run-order", time.Now())
	run.Hosts = []string{"10.0.0.9", "10.0.0.1", "10.0.0.5"}
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-order")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}

	want := []string{"10.0.0.9", "10.0.0.1", "10.0.0.5"}
	for i, host := range want {
		if got.Hosts[i] != host {
			t.Errorf("Hosts[%d] = %s, want %s", i, got.Hosts[i], host)
		}
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetRun(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestGetRunEmptyCollections(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := testRun("run-empty", time.Now())
	run.Hosts = nil
	run.Links = nil
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-empty")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Hosts == nil || got.Links == nil {
		t.Error("Hosts and Links should be empty slices, not nil")
	}
}

func TestLatestRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	latest, err := repo.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() error: %v", err)
	}
	if latest.ID != "run-2" {
		t.Errorf("LatestRun() = %s, want run-2", latest.ID)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.LatestRun(context.Background())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("LatestRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	summaries, err := repo.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(summaries))
	}
	// Newest first
	want := []string{"run-4", "run-3", "run-2"}
	for i, id := range want {
		if summaries[i].ID != id {
			t.Errorf("summaries[%d].ID = %s, want %s", i, summaries[i].ID, id)
		}
	}

	// Counts come from the child tables
	if summaries[0].HostsUp != 2 {
		t.Errorf("HostsUp = %d, want 2", summaries[0].HostsUp)
	}
	if summaries[0].LinkCount != 1 {
		t.Errorf("LinkCount = %d, want 1", summaries[0].LinkCount)
	}
}

func TestListRunsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	summaries, err := repo.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if summaries == nil {
		t.Error("ListRuns() should return an empty slice, not nil")
	}
	if len(summaries) != 0 {
		t.Errorf("ListRuns() returned %d runs, want 0", len(summaries))
	}
}

func TestPruneRuns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	pruned, err := repo.PruneRuns(ctx, 2)
	if err != nil {
		t.Fatalf("PruneRuns() error: %v", err)
	}
	if pruned != 3 {
		t.Errorf("PruneRuns() = %d, want 3", pruned)
	}

	summaries, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("%d runs remain, want 2", len(summaries))
	}
	if summaries[0].ID != "run-4" || summaries[1].ID != "run-3" {
		t.Errorf("remaining runs = %s, %s; want run-4, run-3", summaries[0].ID, summaries[1].ID)
	}

	// Child rows cascade with the run
	if _, err := repo.GetRun(ctx, "run-0"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("pruned run still readable, error = %v", err)
	}
	var orphans int
	if err := repo.db.QueryRow(
		`SELECT COUNT(*) FROM run_hosts WHERE run_id = 'run-0'`).Scan(&orphans); err != nil {
		t.Fatalf("orphan query error: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d orphaned host rows after prune, want 0", orphans)
	}
}

func TestPruneRunsNonPositiveKeep(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := testRun("run-keep", time.Now())
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	pruned, err := repo.PruneRuns(ctx, 0)
	if err != nil {
		t.Fatalf("PruneRuns() error: %v", err)
	}
	if pruned != 0 {
		t.Errorf("PruneRuns(0) = %d, want 0 (no-op)", pruned)
	}

	if _, err := repo.GetRun(ctx, "run-keep"); err != nil {
		t.Errorf("run should survive a no-op prune, error = %v", err)
	}
}

func TestSavedRunProjectsGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := testRun("run-graph", time.Now())
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := repo.GetRun(ctx, "run-graph")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}

	graph := got.Graph()
	if len(graph.Nodes) != 2 {
		t.Fatalf("graph has %d nodes, want 2", len(graph.Nodes))
	}
	if graph.Nodes[0].Label != "10.0.0.2" || graph.Nodes[0].ID != 0 {
		t.Errorf("node 0 = %+v", graph.Nodes[0])
	}
	if len(graph.Edges) != 1 {
		t.Fatalf("graph has %d edges, want 1", len(graph.Edges))
	}
	if graph.Edges[0].Label != "Gi0/1 - Gi0/3" {
		t.Errorf("edge label = %q, want %q", graph.Edges[0].Label, "Gi0/1 - Gi0/3")
	}
}
