// Package batch runs the same operation over a multi-selection with bounded
// concurrency and per-item outcome reporting. Used by multi-delete and
// multi-download; the server has no bulk endpoint for those, each item is
// its own request.
package batch

import (
	"context"
	"sort"
	"sync"
)

// DefaultMaxConcurrent bounds how many item operations run at once.
const DefaultMaxConcurrent = 4

// Outcome reports what happened to each item of a batch. A batch never
// fails as a whole: every item either succeeded or carries its own error.
type Outcome struct {
	// Succeeded holds the ids that completed, sorted.
	Succeeded []string
	// Failed maps each failed id to its error.
	Failed map[string]error
}

// OK reports whether every item succeeded.
func (o Outcome) OK() bool {
	return len(o.Failed) == 0
}

// Run applies op to every id with at most maxConcurrent in flight. It always
// processes all items; a failing item never aborts its siblings. Context
// cancellation stops unstarted items, which are reported failed with the
// context error.
func Run(ctx context.Context, ids []string, maxConcurrent int, op func(ctx context.Context, id string) error) Outcome {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	outcome := Outcome{Failed: make(map[string]error)}
	var mu sync.Mutex

	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			outcome.Failed[id] = err
			mu.Unlock()
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := op(ctx, id)
			mu.Lock()
			if err != nil {
				outcome.Failed[id] = err
			} else {
				outcome.Succeeded = append(outcome.Succeeded, id)
			}
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	sort.Strings(outcome.Succeeded)
	return outcome
}
