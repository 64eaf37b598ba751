package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/mateoblack/sentinel/internal/telemetry"
)

// SpawnFunc starts a new worker with the given id. The scheduler calls
// it once per initial worker and once per crash replacement.
type SpawnFunc func(ctx context.Context, id int) (WorkerHandle, error)

// Scheduler supervises a fixed pool of isolated worker processes,
// spec §4.12.
type Scheduler struct {
	queue   *Queue
	workers int
	retries int
	config  RunnerConfig
	spawn   SpawnFunc
	metrics *telemetry.Metrics
}

// NewScheduler returns a Scheduler ready to Run. workers is the pool
// size; retries is the number of additional attempts granted to a
// failing test case before it is recorded as permanently failed.
func NewScheduler(queue *Queue, workers, retries int, config RunnerConfig, spawn SpawnFunc) *Scheduler {
	return &Scheduler{queue: queue, workers: workers, retries: retries, config: config, spawn: spawn}
}

// WithMetrics attaches a telemetry bundle; nil disables metric emission.
func (s *Scheduler) WithMetrics(m *telemetry.Metrics) *Scheduler {
	s.metrics = m
	return s
}

type workerEvent struct {
	workerID int
	msg      *WorkerMessage
	exited   bool
	exitErr  error
}

// Run dispatches every queued test case across the worker pool,
// following the protocol in spec §4.12, and returns results in
// completion order once the queue is empty and every worker is idle.
func (s *Scheduler) Run(ctx context.Context) (RunResult, error) {
	events := make(chan workerEvent, s.workers*2)
	handles := make(map[int]WorkerHandle)
	current := make(map[int]*TestCase) // worker id -> its in-flight test case, nil when idle
	attempts := make(map[string]int)   // test id -> attempt count
	crashes := make(map[string]int)    // test id -> crash count
	dispatched := make(map[int]time.Time)
	var results []TestResult
	nextID := 0

	spawnAndWatch := func() error {
		id := nextID
		nextID++
		h, err := s.spawn(ctx, id)
		if err != nil {
			return fmt.Errorf("execution: spawning worker %d: %w", id, err)
		}
		handles[id] = h
		current[id] = nil
		go forward(h, id, events)
		return nil
	}

	for i := 0; i < s.workers; i++ {
		if err := spawnAndWatch(); err != nil {
			return RunResult{}, err
		}
	}

	dispatch := func(workerID int) {
		tc, ok := s.queue.Dequeue()
		if !ok {
			current[workerID] = nil
			return
		}
		current[workerID] = &tc
		if _, seen := attempts[tc.ID]; !seen {
			attempts[tc.ID] = 0
		}
		dispatched[workerID] = time.Now()
		cfg := s.config
		if err := handles[workerID].Send(WorkerMessage{Type: "execute", TestCase: &tc, Config: &cfg}); err != nil {
			s.queue.Requeue(tc)
			current[workerID] = nil
		}
	}

	recordTerminal := func(workerID int, res TestResult) {
		if s.metrics == nil {
			return
		}
		s.metrics.TestsCompleted.WithLabelValues(string(res.Status)).Inc()
		elapsed := res.DurationMs
		if start, ok := dispatched[workerID]; ok && elapsed == 0 {
			elapsed = time.Since(start).Milliseconds()
		}
		s.metrics.TestDuration.WithLabelValues(string(res.Status)).Observe(float64(elapsed) / 1000)
	}

	for id := range handles {
		dispatch(id)
	}

	settled := func() bool {
		if !s.queue.IsEmpty() {
			return false
		}
		for _, tc := range current {
			if tc != nil {
				return false
			}
		}
		return true
	}

	for !settled() {
		ev := <-events

		switch {
		case ev.exited:
			tc := current[ev.workerID]
			delete(handles, ev.workerID)
			delete(current, ev.workerID)
			if s.metrics != nil {
				s.metrics.WorkerCrashes.Inc()
			}
			if tc != nil {
				crashes[tc.ID]++
				if crashes[tc.ID] <= s.retries+1 {
					s.queue.Requeue(*tc)
				} else {
					res := TestResult{
						TestID: tc.ID, Name: tc.Name, Suite: tc.Suite,
						Status: StatusFailed,
						Error:  &TestError{Message: fmt.Sprintf("Worker crashed %d times for test %q", crashes[tc.ID], tc.Name)},
					}
					recordTerminal(ev.workerID, res)
					results = append(results, res)
				}
			}
			if err := spawnAndWatch(); err != nil {
				return RunResult{}, err
			}
			dispatch(nextID - 1)

		case ev.msg != nil:
			tc := current[ev.workerID]
			if tc == nil {
				break
			}
			attempt := attempts[tc.ID]

			switch ev.msg.Type {
			case "result":
				if ev.msg.Result == nil {
					s.queue.Requeue(*tc)
					break
				}
				res := *ev.msg.Result
				if res.Status == StatusFailed && attempt < s.retries {
					attempts[tc.ID] = attempt + 1
					s.queue.Requeue(*tc)
				} else {
					if res.Status == StatusPassed && attempt > 0 {
						res.Status = StatusPassedWithRetry
					}
					res.RetryCount = attempt
					recordTerminal(ev.workerID, res)
					results = append(results, res)
				}
			case "error":
				if attempt < s.retries {
					attempts[tc.ID] = attempt + 1
					s.queue.Requeue(*tc)
				} else {
					res := TestResult{
						TestID: tc.ID, Name: tc.Name, Suite: tc.Suite,
						Status: StatusFailed, RetryCount: attempt,
						Error: &TestError{Message: ev.msg.Error},
					}
					recordTerminal(ev.workerID, res)
					results = append(results, res)
				}
			}
			dispatch(ev.workerID)
		}
	}

	for _, h := range handles {
		h.Stop()
	}

	return RunResult{Results: results}, nil
}

// forward fans a worker's message and exit channels into the
// scheduler's single event stream, tagging each with the worker's id.
func forward(h WorkerHandle, id int, events chan<- workerEvent) {
	msgs := h.Messages()
	done := h.Done()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				if done == nil {
					return
				}
				continue
			}
			events <- workerEvent{workerID: id, msg: &msg}
		case err, ok := <-done:
			if !ok {
				done = nil
				if msgs == nil {
					return
				}
				continue
			}
			events <- workerEvent{workerID: id, exited: true, exitErr: err}
			done = nil
			if msgs == nil {
				return
			}
		}
	}
}
