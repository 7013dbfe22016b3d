package ai

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/starchess-backend/internal/chess"
)

// MoveFinder picks a move for the side to move. *Searcher implements it.
type MoveFinder interface {
	BestMove(ctx context.Context, b *chess.Chessboard) (Move, error)
}

type Result struct {
	Move Move
	Err  error
}

// Worker runs searches on its own goroutine so callers never block on one.
// Only one search may be in flight at a time; Submit fails with
// ErrWorkerBusy until the previous result is in. The loop exits when the
// context given to NewWorker is cancelled.
type Worker struct {
	finder   MoveFinder
	requests chan *chess.Chessboard
	done     chan struct{}

	mu      sync.Mutex
	busy    bool
	stopped bool
	result  *Result
	ready   chan struct{}
}

func NewWorker(ctx context.Context, finder MoveFinder) *Worker {
	w := &Worker{
		finder:   finder,
		requests: make(chan *chess.Chessboard, 1),
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stop(ctx.Err())
			return
		case board := <-w.requests:
			log.Debugf("ai: searching for %s", board.MovingSide())
			move, err := w.finder.BestMove(ctx, board)
			if err != nil {
				log.Debugf("ai: search ended: %v", err)
			}
			w.finish(Result{Move: move, Err: err})
		}
	}
}

// Submit hands a snapshot of the board to the worker.
func (w *Worker) Submit(b *chess.Chessboard) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return ErrWorkerStopped
	}
	if w.busy {
		return ErrWorkerBusy
	}
	w.busy = true
	w.result = nil
	w.ready = make(chan struct{})
	w.requests <- b.Clone()
	return nil
}

// Poll reports the result of the last search without blocking.
func (w *Worker) Poll() (Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.result == nil {
		return Result{}, false
	}
	return *w.result, true
}

// Await blocks until the last submitted search finishes or ctx is done.
func (w *Worker) Await(ctx context.Context) (Move, error) {
	w.mu.Lock()
	ready := w.ready
	w.mu.Unlock()

	if ready == nil {
		return Move{}, ErrNothingSubmitted
	}
	select {
	case <-ready:
		res, _ := w.Poll()
		return res.Move, res.Err
	case <-ctx.Done():
		return Move{}, ctx.Err()
	}
}

func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Done is closed once the worker loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) finish(res Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.result = &res
	w.busy = false
	close(w.ready)
}

func (w *Worker) stop(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.busy {
		w.result = &Result{Err: err}
		w.busy = false
		close(w.ready)
	}
}
