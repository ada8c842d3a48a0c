package neighbor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// BatchResult summarizes a batch insert.
type BatchResult struct {
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
	Errors         []error
	NodeIDs        []uint64
}

// BatchInsert inserts many descriptors concurrently. Order of NodeIDs
// matches the order of descriptors; a failed insert leaves its slot zero
// and is recorded in Errors.
func (g *Graph) BatchInsert(descriptors [][]float32) *BatchResult {
	result := &BatchResult{
		TotalProcessed: len(descriptors),
		Errors:         make([]error, 0),
		NodeIDs:        make([]uint64, len(descriptors)),
	}
	if len(descriptors) == 0 {
		return result
	}

	const numWorkers = 8
	jobs := make(chan int, len(descriptors))
	var wg sync.WaitGroup
	var successCount, failureCount int64
	var errMu sync.Mutex

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id, err := g.Insert(descriptors[i])
				if err != nil {
					errMu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("descriptor %d: %w", i, err))
					errMu.Unlock()
					atomic.AddInt64(&failureCount, 1)
					continue
				}
				result.NodeIDs[i] = id
				atomic.AddInt64(&successCount, 1)
			}
		}()
	}

	for i := range descriptors {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result.SuccessCount = int(successCount)
	result.FailureCount = int(failureCount)
	return result
}
