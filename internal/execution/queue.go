package execution

import "sync"

// Queue is a FIFO work queue with a front-insertion operation for
// retries, spec §4.10. Safe for concurrent use by a single scheduler
// goroutine and any number of readers calling Size/IsEmpty.
type Queue struct {
	mu    sync.Mutex
	items []TestCase
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends tc to the tail.
func (q *Queue) Enqueue(tc TestCase) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, tc)
}

// EnqueueSuite appends every test case in tcs, in order.
func (q *Queue) EnqueueSuite(tcs []TestCase) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, tcs...)
}

// Dequeue removes and returns the head of the queue. ok is false when
// the queue is empty.
func (q *Queue) Dequeue() (TestCase, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return TestCase{}, false
	}
	tc := q.items[0]
	q.items = q.items[1:]
	return tc, true
}

// Requeue inserts tc at the head, so retries run before new work.
func (q *Queue) Requeue(tc TestCase) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]TestCase{tc}, q.items...)
}

// Size returns the number of queued test cases.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue has no queued test cases.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}
