// Package async provides a small worker pool for fanning out independent
// queries and joining their results.
package async

import (
	"context"
	"fmt"
	"sync"
)

// Task is a named unit of work executed by the pool.
type Task struct {
	Name    string
	Execute func(ctx context.Context) (interface{}, error)
}

// Result carries a task's outcome, keyed by the task name.
type Result struct {
	Name string
	Data interface{}
	Err  error
}

// Results maps task names to their outcomes.
type Results map[string]Result

// FirstError returns the first task error found, wrapped with the task name.
// Join-all semantics: every task runs to completion before this is checked.
func (r Results) FirstError() error {
	for name, result := range r {
		if result.Err != nil {
			return fmt.Errorf("task %s: %w", name, result.Err)
		}
	}
	return nil
}

// Pool runs tasks across a fixed number of workers. A Pool is reusable; each
// Execute call gets its own channels.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs all tasks and blocks until every task has produced a result
// or ctx is cancelled. On cancellation the returned map holds the results
// collected so far.
func (p *Pool) Execute(ctx context.Context, tasks []Task) Results {
	taskCh := make(chan Task)
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case task, ok := <-taskCh:
					if !ok {
						return
					}
					data, err := task.Execute(ctx)
					resultCh <- Result{Name: task.Name, Data: data, Err: err}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(Results, len(tasks))
	for i := 0; i < len(tasks); i++ {
		select {
		case result := <-resultCh:
			results[result.Name] = result
		case <-ctx.Done():
			wg.Wait()
			return results
		}
	}

	wg.Wait()
	return results
}
