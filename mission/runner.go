package mission

import "sync"

// Runner launches one fire-and-forget task per alert while keeping a
// handle on the set, so the composition root can drain in-flight
// missions on shutdown and tests can await completion.
type Runner struct {
	wg sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Go runs fn in its own goroutine.
func (r *Runner) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Wait blocks until every launched task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
