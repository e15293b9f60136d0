package security

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktracker/task-api/internal/api/metrics"
	"github.com/tasktracker/task-api/internal/core/domain"
)

const channelBuffer = 256

// ErrPoolStopped is returned for jobs submitted after Stop.
var ErrPoolStopped = errors.New("hasher pool stopped")

type hashJob struct {
	run  func()
	done chan struct{}
}

// BcryptPool runs bcrypt on a fixed set of worker goroutines. Request
// goroutines block only on their own job, so a burst of logins cannot take
// more than workers CPUs away from the rest of the service.
type BcryptPool struct {
	cost    int
	workers int
	jobs    chan hashJob
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewBcryptPool creates a pool with numWorkers workers hashing at cost.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewBcryptPool(numWorkers, cost int, log zerolog.Logger) (*BcryptPool, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &BcryptPool{
		cost:    cost,
		workers: numWorkers,
		jobs:    make(chan hashJob, channelBuffer),
		stop:    make(chan struct{}),
		log:     log,
	}, nil
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled
// or Stop is called.
func (p *BcryptPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	p.log.Debug().Int("workers", p.workers).Int("cost", p.cost).Msg("hasher pool started")
}

// Stop signals workers to exit and waits for in-flight jobs to finish.
func (p *BcryptPool) Stop() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// Hash returns the bcrypt digest of plaintext. Passwords longer than
// domain.MaxPasswordBytes yield domain.ErrPasswordTooLong.
func (p *BcryptPool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest []byte
		err    error
	)
	if submitErr := p.submit(ctx, func() {
		defer observeSince("hash", time.Now())
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	}); submitErr != nil {
		return "", submitErr
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext against digest in constant time.
func (p *BcryptPool) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var err error
	if submitErr := p.submit(ctx, func() {
		defer observeSince("verify", time.Now())
		err = bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}); submitErr != nil {
		return false, submitErr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt compare: %w", err)
	}
}

// submit enqueues fn and waits for it. If ctx ends first the job still runs
// to completion on its worker, but its result is discarded.
func (p *BcryptPool) submit(ctx context.Context, fn func()) error {
	job := hashJob{run: fn, done: make(chan struct{})}

	select {
	case p.jobs <- job:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-p.stop:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-job.done:
		return nil
	case <-p.stop:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *BcryptPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case job := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			p.execute(id, job)
		}
	}
}

func (p *BcryptPool) execute(id int, job hashJob) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("hash job panicked")
		}
	}()
	job.run()
}

func observeSince(op string, start time.Time) {
	metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
