package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStartCompleteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.StartJob(ctx, "/work/in.mp4", "/work/out.mp4", -16, "192k")
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job ID")
	}
	if job.Status != StatusRunning {
		t.Fatalf("new job status: %s", job.Status)
	}

	stats := Stats{
		InputI:       "-23.4",
		InputTP:      "-4.1",
		InputLRA:     "7.3",
		InputThresh:  "-33.9",
		TargetOffset: "0.2",
		InputBytes:   1000,
		OutputBytes:  900,
	}
	if err := store.CompleteJob(ctx, job.ID, 12.5, stats); err != nil {
		t.Fatalf("CompleteJob: %v", err)
	}

	loaded, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if loaded.Status != StatusCompleted {
		t.Fatalf("status: %s", loaded.Status)
	}
	if loaded.InputI != "-23.4" || loaded.TargetOffset != "0.2" {
		t.Fatalf("measured stats not persisted: %+v", loaded)
	}
	if loaded.DurationSeconds != 12.5 {
		t.Fatalf("duration: %f", loaded.DurationSeconds)
	}
	if loaded.InputBytes != 1000 || loaded.OutputBytes != 900 {
		t.Fatalf("sizes not persisted: %+v", loaded)
	}
	if loaded.UpdatedAt.Before(loaded.CreatedAt) {
		t.Fatal("updated_at precedes created_at")
	}
}

func TestFailJobRecordsMessage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.StartJob(ctx, "in.mp4", "out.mp4", -16, "192k")
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	if err := store.FailJob(ctx, job.ID, "input has no audio stream"); err != nil {
		t.Fatalf("FailJob: %v", err)
	}

	loaded, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if loaded.Status != StatusFailed {
		t.Fatalf("status: %s", loaded.Status)
	}
	if loaded.ErrorMessage != "input has no audio stream" {
		t.Fatalf("error message: %q", loaded.ErrorMessage)
	}
}

func TestUpdateMissingJobReturnsNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.FailJob(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetJob(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 3; i++ {
		job, err := store.StartJob(ctx, "in.mp4", "out.mp4", -16, "192k")
		if err != nil {
			t.Fatalf("StartJob: %v", err)
		}
		last = job.ID
	}

	jobs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != last {
		t.Fatal("expected newest job first")
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(limited))
	}
}

func TestClearAndPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.StartJob(ctx, "in.mp4", "out.mp4", -16, "192k"); err != nil {
			t.Fatalf("StartJob: %v", err)
		}
	}

	pruned, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 3 {
		t.Fatalf("expected 3 pruned, got %d", pruned)
	}

	remaining, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(remaining))
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.StartJob(context.Background(), "in.mp4", "out.mp4", -16, "192k"); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	jobs, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected persisted job, got %d", len(jobs))
	}
}
