package status

import (
	"fmt"
	"sync"
	"testing"

	"newsdigest/internal/domain"
)

func TestGetIdleSentinel(t *testing.T) {
	t.Parallel()

	store := NewStore()

	got := store.Get("never-ran")
	if got.Phase != domain.PhaseIdle {
		t.Fatalf("unexpected phase: %s", got.Phase)
	}
	if got.ProgressText != "No refresh has run yet." {
		t.Fatalf("unexpected progress text: %q", got.ProgressText)
	}
}

func TestSetOverwritesAndStamps(t *testing.T) {
	t.Parallel()

	store := NewStore()

	store.Set("job", domain.JobStatus{Phase: domain.PhaseFetching, ProgressText: "Fetching..."})
	store.Set("job", domain.JobStatus{Phase: domain.PhaseCompleted, TotalItems: 5, ProcessedItems: 5})

	got := store.Get("job")
	if got.Phase != domain.PhaseCompleted {
		t.Fatalf("unexpected phase: %s", got.Phase)
	}
	if got.TotalItems != 5 || got.ProcessedItems != 5 {
		t.Fatalf("unexpected counters: %d/%d", got.ProcessedItems, got.TotalItems)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt must be stamped on Set")
	}
}

func TestConcurrentWriters(t *testing.T) {
	t.Parallel()

	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Set("job", domain.JobStatus{
				Phase:          domain.PhaseSummarizing,
				ProgressText:   fmt.Sprintf("Processing... %d/20", n),
				ProcessedItems: n,
				TotalItems:     20,
			})
			_ = store.Get("job")
		}(i)
	}
	wg.Wait()

	if got := store.Get("job"); got.Phase != domain.PhaseSummarizing {
		t.Fatalf("unexpected phase after concurrent writes: %s", got.Phase)
	}
}
