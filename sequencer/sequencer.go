package sequencer

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/exception"
	"github.com/mezonai/cryptocurrency/interfaces"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/monitoring"
	"github.com/mezonai/cryptocurrency/types"
)

var (
	ErrQueueFull        = stderrors.New("sequencer queue is full")
	ErrSequencerStopped = stderrors.New("sequencer stopped")
)

const (
	DefaultQueueSize     = 1024
	DefaultSubmitTimeout = 5 * time.Second
)

type Config struct {
	QueueSize int
	// SubmitTimeout bounds Submit when the caller's context has no deadline. Zero disables it.
	SubmitTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{QueueSize: DefaultQueueSize, SubmitTimeout: DefaultSubmitTimeout}
}

// Request states. The run loop and Submit race on the same CAS, so an operation is
// either executed and answered or abandoned and never executed.
const (
	reqPending int32 = iota
	reqTaken
	reqAbandoned
)

type request struct {
	ctx    context.Context
	op     *types.Operation
	state  atomic.Int32
	result chan result
}

type result struct {
	receipt *types.Receipt
	err     error
}

// Sequencer is the ordering layer in front of the executor. A single goroutine drains
// the queue, so operations run one at a time in arrival order, each tagged with a
// strictly increasing sequence number.
type Sequencer struct {
	executor      interfaces.Executor
	queue         chan *request
	submitTimeout time.Duration

	next    atomic.Uint64
	stopped atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

func New(executor interfaces.Executor, cfg Config) *Sequencer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Sequencer{
		executor:      executor,
		queue:         make(chan *request, cfg.QueueSize),
		submitTimeout: cfg.SubmitTimeout,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (s *Sequencer) Start() {
	s.startOnce.Do(func() {
		logx.Info("SEQUENCER", fmt.Sprintf("Starting sequencer | queue_size=%d", cap(s.queue)))
		exception.SafeGoWithPanic("Sequencer", s.run)
	})
}

// Stop ends the loop after the operation in flight. Operations still queued are
// answered with ErrSequencerStopped.
func (s *Sequencer) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stopCh)
		s.startOnce.Do(func() { close(s.done) })
		<-s.done
		logx.Info("SEQUENCER", fmt.Sprintf("Sequencer stopped | last_seq=%d", s.LastSeq()))
	})
}

// Submit enqueues op and waits for its receipt. A rejected operation yields a receipt
// with Status ReceiptRejected and a nil error; errors are reserved for operations that
// were never executed or failed on infrastructure. Once the loop has taken the operation
// Submit waits for its outcome even past ctx, so a context error always means the
// operation was not applied.
func (s *Sequencer) Submit(ctx context.Context, op *types.Operation) (*types.Receipt, error) {
	if s.stopped.Load() {
		return nil, ErrSequencerStopped
	}
	if _, ok := ctx.Deadline(); !ok && s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	req := &request{ctx: ctx, op: op, result: make(chan result, 1)}
	select {
	case s.queue <- req:
		monitoring.SetSequencerQueueSize(len(s.queue))
	default:
		logx.Warn("SEQUENCER", fmt.Sprintf("Queue full, rejecting %s from %s", op.Kind, op.Author))
		return nil, ErrQueueFull
	}

	select {
	case res := <-req.result:
		return res.receipt, res.err
	case <-ctx.Done():
		if req.state.CompareAndSwap(reqPending, reqAbandoned) {
			return nil, ctx.Err()
		}
		res := <-req.result
		return res.receipt, res.err
	case <-s.done:
		select {
		case res := <-req.result:
			return res.receipt, res.err
		default:
			return nil, ErrSequencerStopped
		}
	}
}

// LastSeq returns the last assigned sequence number, zero before the first operation.
func (s *Sequencer) LastSeq() uint64 {
	return s.next.Load()
}

func (s *Sequencer) Pending() int {
	return len(s.queue)
}

func (s *Sequencer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.queue:
			monitoring.SetSequencerQueueSize(len(s.queue))
			if !req.state.CompareAndSwap(reqPending, reqTaken) {
				logx.Debug("SEQUENCER", fmt.Sprintf("Skipping abandoned %s from %s", req.op.Kind, req.op.Author))
				continue
			}
			req.result <- s.execute(req)
		}
	}
}

func (s *Sequencer) execute(req *request) result {
	// The submitter already gave up; leave the operation unapplied.
	if err := req.ctx.Err(); err != nil {
		return result{err: err}
	}

	seq := s.next.Add(1)
	receipt := &types.Receipt{
		Seq:    seq,
		OpHash: req.op.Hash(),
		Status: types.ReceiptCommitted,
	}

	err := s.executor.ExecuteAt(seq, req.op)
	if err == nil {
		return result{receipt: receipt}
	}
	if execErr, ok := errors.AsExecutionError(err); ok {
		receipt.Status = types.ReceiptRejected
		receipt.Code = uint8(execErr.Code)
		receipt.Error = execErr.Message
		return result{receipt: receipt}
	}
	return result{err: fmt.Errorf("operation %d failed: %w", seq, err)}
}
