package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Job is a unit of background work, such as archiving a report workbook.
type Job func(ctx context.Context) error

var ErrPoolClosed = errors.New("working pool is closed")

type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job

	mu     sync.RWMutex
	closed bool
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		NumWorkers: max(numWorkers, 1),
		jobChan:    make(chan Job, max(queueSize, 0)),
	}
}

// SubmitJob queues a job, blocking while the queue is full. It fails once
// the pool has shut down or when ctx ends first.
func (p *WorkingPool) SubmitJob(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the workers until ctx is canceled, then drains queued jobs
// and returns once every worker has exited.
func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Println("[WorkingPool] Shutdown signaled. Closing job channel.")
	p.mu.Lock()
	p.closed = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Println("[WorkingPool] All workers stopped.")
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()
	log.Printf("[WorkingPool-Worker %d] Started and waiting for jobs.\n", id)

	// queued jobs still run after ctx ends; they get a context without the
	// cancellation so an upload is not cut halfway
	jobCtx := context.WithoutCancel(ctx)
	for job := range p.jobChan {
		p.safeExecution(jobCtx, job, id)
	}
	log.Printf("[WorkingPool-Worker %d] Job channel closed. Exiting.\n", id)
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WorkingPool-Worker %d] FATAL: Panic recovered in job: %v\n", workerID, r)
		}
	}()

	err = job(ctx)
	if err != nil {
		log.Printf("[WorkingPool-Worker %d] Error executing job: %s.\n", workerID, err)
	}
	return err
}
