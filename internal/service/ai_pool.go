package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/model"
)

// AIJob asks the engine to move in one game. When Reply is set the result
// is sent there as well as to the pool's result handler; it must have room
// for one value. Ctx, if set, cancels the search in addition to the pool's
// own timeout and shutdown.
type AIJob struct {
	Game  *model.Game
	Ctx   context.Context
	Reply chan<- AIResult
}

type AIResult struct {
	GameID string
	Move   model.AIMove
	Err    error
}

// AIPool runs engine searches on a fixed number of goroutines. Each search
// gets its own deadline.
type AIPool struct {
	numWorkers int
	bufferSize int
	timeout    time.Duration
	jobs       chan AIJob
	onResult   func(AIResult)
	wg         sync.WaitGroup
	stopFlag   int32

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

type AIPoolOption func(*AIPool)

func WithWorkers(n int) AIPoolOption {
	return func(p *AIPool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

func WithBufferSize(size int) AIPoolOption {
	return func(p *AIPool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// WithMoveTimeout bounds every search.
func WithMoveTimeout(d time.Duration) AIPoolOption {
	return func(p *AIPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithResultHandler is called from the worker goroutine after every job.
func WithResultHandler(fn func(AIResult)) AIPoolOption {
	return func(p *AIPool) {
		p.onResult = fn
	}
}

// NewAIPool creates a pool. Defaults: 2 workers, a buffer of 32 jobs and a
// 10 second move timeout.
func NewAIPool(opts ...AIPoolOption) *AIPool {
	p := &AIPool{
		numWorkers: 2,
		bufferSize: 32,
		timeout:    10 * time.Second,
		onResult:   func(AIResult) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jobs = make(chan AIJob, p.bufferSize)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

func (p *AIPool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *AIPool) worker() {
	defer p.wg.Done()

	for job := range p.jobs {
		if p.IsStopped() {
			p.finish(job, AIResult{GameID: job.Game.ID, Err: context.Canceled})
			continue
		}
		parent := job.Ctx
		if parent == nil {
			parent = p.ctx
		}
		ctx, cancel := context.WithTimeout(parent, p.timeout)
		stop := context.AfterFunc(p.ctx, cancel)
		move, err := job.Game.PlayAI(ctx)
		stop()
		cancel()
		p.finish(job, AIResult{GameID: job.Game.ID, Move: move, Err: err})
	}
}

func (p *AIPool) finish(job AIJob, res AIResult) {
	p.onResult(res)
	if job.Reply != nil {
		job.Reply <- res
	}
}

// Submit queues a job without blocking. It returns false if the queue is
// full or the pool is stopped or closed.
func (p *AIPool) Submit(job AIJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.IsStopped() {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop cancels running searches. Queued jobs are drained unplayed.
func (p *AIPool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
	p.cancel()
}

func (p *AIPool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close stops accepting jobs and waits for the workers to finish.
func (p *AIPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *AIPool) NumWorkers() int {
	return p.numWorkers
}
