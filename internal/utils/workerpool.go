package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type task[T any] struct {
	index int
	total int
	value T
}

type result[T any] struct {
	index int
	value T
}

// WorkerPool maps a function over a slice with a bounded number of
// goroutines, preserving input order in the output.
type WorkerPool[I any, O any] struct {
	maxWorkers int
	f          func(value I) (O, error)
	onProgress func(current int, total int)
}

func NewWorkerPool[I any, O any](f func(value I) (O, error), maxWorkers int) *WorkerPool[I, O] {
	return &WorkerPool[I, O]{
		maxWorkers: maxWorkers,
		f:          f,
	}
}

func (wp *WorkerPool[I, O]) OnProgress(f func(current int, total int)) {
	wp.onProgress = f
}

func (wp *WorkerPool[I, O]) worker(ctx context.Context, id int, tasks <-chan task[I], results chan<- result[O]) error {
	for {
		select {
		case t, ok := <-tasks:
			if !ok {
				return nil
			}

			if wp.onProgress != nil {
				wp.onProgress(t.index, t.total)
			}

			value, err := wp.f(t.value)
			if err != nil {
				return fmt.Errorf("worker %d error: %w", id, err)
			}

			results <- result[O]{index: t.index, value: value}
		case <-ctx.Done():
			return nil
		}
	}
}

// Map runs the pool function over every input value. The first worker
// error cancels the remaining tasks; already collected results keep
// their slots in the output.
func (wp *WorkerPool[I, O]) Map(ctx context.Context, input []I) ([]O, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	var errMu sync.Mutex
	var workerErrs error

	tasks := make(chan task[I])
	results := make(chan result[O])

	for i := 0; i < wp.maxWorkers; i++ {
		id := i + 1
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := wp.worker(ctx, id, tasks, results); err != nil {
				errMu.Lock()
				workerErrs = errors.Join(workerErrs, err)
				errMu.Unlock()
				cancel()
			}
		}()
	}

	go func() {
		defer close(tasks)
		total := len(input)
		for index, value := range input {
			select {
			case tasks <- task[I]{index: index, value: value, total: total}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	output := make([]O, len(input))
	for r := range results {
		output[r.index] = r.value
	}

	return output, workerErrs
}
