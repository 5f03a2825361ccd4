package treecache

// TaskQueue accepts deferred work. Submitted tasks must eventually run, in
// submission order, on the goroutine that owns the cache.
type TaskQueue interface {
	Submit(task func())
}

// Queue is a cooperative FIFO task queue drained explicitly by its owner,
// typically once per frame or tick.
type Queue struct {
	tasks []func()
}

// Compile-time check that Queue implements TaskQueue.
var _ TaskQueue = (*Queue)(nil)

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Submit appends task to the queue.
func (q *Queue) Submit(task func()) {
	q.tasks = append(q.tasks, task)
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// RunPending runs queued tasks in order until the queue is empty, including
// tasks submitted by the tasks it runs. It returns the number of tasks run.
func (q *Queue) RunPending() int {
	ran := 0
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		task()
		ran++
	}
	return ran
}

// ScheduleUnload submits an unload pass to the cache's queue. Requests made
// while a pass is already pending are merged into it. When the pass runs it
// first clears the pending flag, so a request made from a disposal callback
// schedules a new pass, then runs UnloadUnusedContent and, if
// resetUsageAfter is true, MarkAllUnused.
func (c *Cache[T]) ScheduleUnload(resetUsageAfter bool) {
	if c.unloadPending {
		return
	}
	c.unloadPending = true

	c.queue.Submit(func() {
		c.unloadPending = false
		c.UnloadUnusedContent()
		if resetUsageAfter {
			c.MarkAllUnused()
		}
	})
}

// UnloadPending reports whether a scheduled pass has not run yet.
func (c *Cache[T]) UnloadPending() bool {
	return c.unloadPending
}
