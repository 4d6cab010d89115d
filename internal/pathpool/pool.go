// Package pathpool implements C5: a fixed-size pool of worker goroutines
// running A* against navmaps, fed by a blocking task channel and drained via
// a non-blocking result channel (spec.md §4.5, §5).
package pathpool

import (
	"time"

	"tickworld/internal/gamelog"
	"tickworld/internal/navmap"
	"tickworld/internal/objects"
)

// DefaultWorkers is the pool size spec.md §4.5 names as the default.
const DefaultWorkers = 2

// slowRunThreshold is the wall-clock budget past which a completed A* run
// is logged as excessive but still returned (spec.md §4.5).
const slowRunThreshold = 10 * time.Millisecond

// Task carries everything a worker needs to run one A* search. Navmap is an
// immutable borrow guaranteed to outlive the task because navmaps are
// created once at startup and never mutated (spec.md §4.5, §5).
type Task struct {
	ObjectID   objects.ID
	StartPos   objects.Vec3
	TargetPos  objects.Vec3
	MapOrigin  string
	Navmap     *navmap.Navmap
}

// Result carries a completed (possibly empty) path back to the controller.
type Result struct {
	ObjectID objects.ID
	Path     []objects.Vec3
}

// Pool owns the task/result channels and the worker goroutines draining
// them. Workers share nothing mutable with the simulation thread except
// these two channels (spec.md §5).
type Pool struct {
	tasks   chan Task
	results chan Result
	stop    chan struct{}
}

// New starts workerCount goroutines (DefaultWorkers if <= 0). taskBuffer
// sizes the task channel; a small positive buffer lets Enqueue never block
// the simulation thread in the common case while still blocking workers on
// empty, per spec.md §4.5's queue contract.
func New(workerCount, taskBuffer int) *Pool {
	if workerCount <= 0 {
		workerCount = DefaultWorkers
	}
	if taskBuffer <= 0 {
		taskBuffer = 64
	}
	p := &Pool{
		tasks:   make(chan Task, taskBuffer),
		results: make(chan Result, taskBuffer),
		stop:    make(chan struct{}),
	}
	for i := 0; i < workerCount; i++ {
		go p.workerLoop()
	}
	return p
}

func (p *Pool) workerLoop() {
	for {
		select {
		case <-p.stop:
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			start := time.Now()
			path := FindPath(task.Navmap, task.StartPos, task.TargetPos)
			elapsed := time.Since(start)
			if elapsed > slowRunThreshold {
				gamelog.Log.WithField("object_id", task.ObjectID).
					WithField("elapsed_ms", elapsed.Milliseconds()).
					Warn("pathfind run exceeded budget")
			}
			select {
			case p.results <- Result{ObjectID: task.ObjectID, Path: path}:
			case <-p.stop:
				return
			}
		}
	}
}

// Enqueue submits a task. It blocks only if the task channel's buffer is
// full, never on the simulation thread's steady-state path since the
// buffer is sized generously; there is no cancellation protocol (spec.md
// §4.5, §5).
func (p *Pool) Enqueue(task Task) {
	p.tasks <- task
}

// DrainResults returns every result currently available without blocking,
// per the controller's non-blocking per-tick drain contract (spec.md §4.6).
func (p *Pool) DrainResults() []Result {
	var out []Result
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Stop terminates all worker goroutines. Any task already dequeued by a
// worker still runs to completion; its result is discarded because nothing
// reads the results channel afterward.
func (p *Pool) Stop() {
	close(p.stop)
}
