package crawler

import (
	"context"
	"sync"
)

// RunBatches processes items in fixed-size sequential batches. Within a
// batch at most limit handlers run concurrently; the next batch starts
// only after the previous one has fully drained. The index passed to
// handle is the item's position in the original sequence.
//
// Handlers are fault-isolated by construction: they report nothing back,
// so one item's failure cannot abort its siblings. A cancelled context
// stops dispatching new items but lets in-flight handlers finish.
func RunBatches[T any](ctx context.Context, items []T, batchSize, limit int, handle func(idx int, item T)) {
	if batchSize <= 0 {
		batchSize = len(items)
	}
	if limit <= 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				wg.Wait()
				return
			}

			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, item T) {
				defer func() {
					<-sem
					wg.Done()
				}()
				handle(idx, item)
			}(i, items[i])
		}
		wg.Wait()
	}
}
