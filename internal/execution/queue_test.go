package execution

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.EnqueueSuite([]TestCase{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if q.Size() != 3 {
		t.Fatalf("expected size 3, got %d", q.Size())
	}

	first, ok := q.Dequeue()
	if !ok || first.ID != "a" {
		t.Fatalf("expected a first, got %+v ok=%v", first, ok)
	}
}

func TestQueueRequeuePrioritizesRetries(t *testing.T) {
	q := NewQueue()
	q.Enqueue(TestCase{ID: "new-work"})
	q.Requeue(TestCase{ID: "retry"})

	first, ok := q.Dequeue()
	if !ok || first.ID != "retry" {
		t.Fatalf("expected retry to be dequeued first, got %+v", first)
	}
	second, ok := q.Dequeue()
	if !ok || second.ID != "new-work" {
		t.Fatalf("expected new-work second, got %+v", second)
	}
}

func TestQueueDequeueEmpty(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() {
		t.Fatal("expected new queue to be empty")
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("expected Dequeue on empty queue to report ok=false")
	}
}
