package ai

import "errors"

var (
	ErrNoMoves          = errors.New("no legal moves")
	ErrWorkerBusy       = errors.New("search already in progress")
	ErrWorkerStopped    = errors.New("search worker stopped")
	ErrNothingSubmitted = errors.New("no search submitted")
)
