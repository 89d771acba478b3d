package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/pantry-bot/pkg/logger"
	"golang.org/x/time/rate"
)

// receiptJob one photo waiting for OCR.
type receiptJob struct {
	chatID int64
	fileID string
	mime   string
}

// workerPool OCR so'rovlarini cheklangan parallellikda bajaradi
type workerPool struct {
	jobs        chan receiptJob
	workerCount int
	handler     *BotHandler
	wg          sync.WaitGroup

	queueMu sync.Mutex
	closed  bool

	// Rate limiting per chat
	limiterMu sync.Mutex
	limiters  map[int64]*chatLimiter
}

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	defaultWorkerCount     = 2
	jobQueueSize           = 32
	receiptJobTimeout      = 90 * time.Second
	receiptsPerMinute      = 6
	receiptBurst           = 3
	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
)

func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		jobs:        make(chan receiptJob, jobQueueSize),
		workerCount: workerCount,
		handler:     handler,
		limiters:    make(map[int64]*chatLimiter),
	}
}

// start starts all workers
func (wp *workerPool) start(ctx context.Context) {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		wp.cleanupRateLimits(ctx)
	}()
}

func (wp *workerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				logger.InfoLogger.Printf("Worker %d shutting down (queue closed)", id)
				return
			}
			wp.run(ctx, job)
		}
	}
}

// run one job with a timeout; a panic costs the job, not the worker.
func (wp *workerPool) run(ctx context.Context, job receiptJob) {
	ctx, cancel := context.WithTimeout(ctx, receiptJobTimeout)
	defer cancel()
	defer wp.handler.endProcessing(job.chatID)
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Printf("❌ Panic in receipt job chat=%d: %v", job.chatID, r)
			wp.handler.sendMessage(job.chatID, "⚠️ 内部エラーが発生しました。もう一度お試しください。")
		}
	}()
	wp.handler.processReceipt(ctx, job)
}

// allow per-chat token bucket
func (wp *workerPool) allow(chatID int64) bool {
	wp.limiterMu.Lock()
	defer wp.limiterMu.Unlock()
	l, ok := wp.limiters[chatID]
	if !ok {
		l = &chatLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/receiptsPerMinute), receiptBurst)}
		wp.limiters[chatID] = l
	}
	l.lastSeen = time.Now()
	return l.limiter.Allow()
}

func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := wp.evictIdle(time.Now()); n > 0 {
				logger.InfoLogger.Printf("♻️ %d ta faolsiz rate limiter tozalandi", n)
			}
		}
	}
}

func (wp *workerPool) evictIdle(now time.Time) int {
	wp.limiterMu.Lock()
	defer wp.limiterMu.Unlock()
	n := 0
	for chatID, l := range wp.limiters {
		if now.Sub(l.lastSeen) > rateLimiterMaxIdleTime {
			delete(wp.limiters, chatID)
			n++
		}
	}
	return n
}

// submit queues a job without blocking; false when the queue is full.
func (wp *workerPool) submit(job receiptJob) bool {
	wp.queueMu.Lock()
	defer wp.queueMu.Unlock()
	if wp.closed {
		return false
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		logger.ErrorLogger.Printf("Worker pool queue is full (%d/%d), rejecting chat %d", len(wp.jobs), jobQueueSize, job.chatID)
		return false
	}
}

// shutdown closes the queue and waits for running jobs.
func (wp *workerPool) shutdown() {
	wp.queueMu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.queueMu.Unlock()
	wp.wg.Wait()
}
