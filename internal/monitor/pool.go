package monitor

import (
	"sync"
)

// CheckTask produces one CheckResult when executed.
type CheckTask func() CheckResult

// RunBounded executes tasks with at most maxConcurrency in flight and returns
// one result per task, in task order. A slow or failing task never blocks
// siblings beyond the shared concurrency budget, and all results are
// collected even when some checks fail.
func RunBounded(tasks []CheckTask, maxConcurrency int) []CheckResult {
	if len(tasks) == 0 {
		return nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if maxConcurrency > len(tasks) {
		maxConcurrency = len(tasks)
	}

	type job struct {
		index int
		task  CheckTask
	}

	jobs := make(chan job)
	results := make([]CheckResult, len(tasks))

	var wg sync.WaitGroup
	wg.Add(maxConcurrency)
	for i := 0; i < maxConcurrency; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = j.task()
			}
		}()
	}

	for i, task := range tasks {
		jobs <- job{index: i, task: task}
	}
	close(jobs)
	wg.Wait()

	return results
}
