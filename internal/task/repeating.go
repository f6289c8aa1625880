package task

import (
	"context"
	"sync"
	"time"
)

// RepeatingTask executes a task in a specific interval asynchronously.
// The task receives a context that is cancelled once the task is stopped.
type RepeatingTask struct {
	task     func(ctx context.Context)
	interval time.Duration

	mtx     sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRepeating creates a new repeating asynchronous task
func NewRepeating(task func(ctx context.Context), interval time.Duration) *RepeatingTask {
	return &RepeatingTask{
		task:     task,
		interval: interval,
	}
}

// Start starts the repeating task; the first execution happens after one interval.
// If the task is already running, this is a no-op.
func (task *RepeatingTask) Start(ctx context.Context) {
	task.mtx.Lock()
	defer task.mtx.Unlock()
	if task.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(task.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				task.task(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	task.running = true
	task.cancel = cancel
	task.done = done
}

// Running reports whether the task is currently scheduled
func (task *RepeatingTask) Running() bool {
	task.mtx.Lock()
	defer task.mtx.Unlock()
	return task.running
}

// Stop stops the repeating task and waits for an in-flight execution to return.
// If the task is not running, this is a no-op.
// forceExec defines whether to execute the task one last time just before the task shuts down.
func (task *RepeatingTask) Stop(ctx context.Context, forceExec bool) {
	task.mtx.Lock()
	if !task.running {
		task.mtx.Unlock()
		return
	}
	task.cancel()
	done := task.done
	task.running = false
	task.mtx.Unlock()

	<-done
	if forceExec {
		task.task(ctx)
	}
}
