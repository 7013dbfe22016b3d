package ai

import (
	"context"
	"math"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/benbeisheim/starchess-backend/internal/chess"
)

const DefaultMaxDepth = 2

type Options struct {
	// MaxDepth is the number of plies searched, counting the root.
	MaxDepth int
	// MoveCountCutoff keeps only the first N ordered candidates per ply.
	// Zero keeps all of them.
	MoveCountCutoff int
	CheckBonuses    bool
}

func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Searcher runs a fixed-depth search without pruning. Candidates are ordered
// by the magnitude of their score, not its sign.
type Searcher struct {
	opts      Options
	evaluator Evaluator
}

func NewSearcher(opts Options) *Searcher {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}
	return &Searcher{
		opts:      opts,
		evaluator: Evaluator{CheckBonuses: opts.CheckBonuses},
	}
}

func (s *Searcher) Options() Options {
	return s.opts
}

// BestMove searches for the side to move on b. The board is not modified.
func (s *Searcher) BestMove(ctx context.Context, b *chess.Chessboard) (Move, error) {
	best, ok, err := s.search(ctx, b, b.MovingSide(), 1)
	if err != nil {
		return Move{}, err
	}
	if !ok {
		return Move{}, ErrNoMoves
	}
	return best, nil
}

func (s *Searcher) search(ctx context.Context, b *chess.Chessboard, searching chess.Side, depth int) (Move, bool, error) {
	candidates := s.candidates(b, searching)
	if len(candidates) == 0 {
		return Move{}, false, nil
	}

	best := candidates[0]
	if depth >= s.opts.MaxDepth {
		return best, true, nil
	}

	bestCombined := math.MinInt
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Move{}, false, err
		}

		next := b.Clone()
		next.MoveTo(c.PieceID, c.To)
		next.ChangeMovingSide()

		combined := c.Score
		reply, ok, err := s.search(ctx, next, searching, depth+1)
		if err != nil {
			return Move{}, false, err
		}
		if ok {
			combined += reply.Score
		}
		if combined > bestCombined {
			bestCombined = combined
			best = c
			best.Score = combined
		}
	}
	return best, true, nil
}

// candidates scores every legal move, negating the opponent's, and orders
// them by descending absolute score.
func (s *Searcher) candidates(b *chess.Chessboard, searching chess.Side) []Move {
	legal := b.LegalMoves()
	out := make([]Move, len(legal))
	for i, lm := range legal {
		score := s.evaluator.Score(b, lm)
		if b.MovingSide() != searching {
			score = -score
		}
		out[i] = newMove(lm, score)
	}
	slices.SortStableFunc(out, func(a, c Move) int {
		return abs(c.Score) - abs(a.Score)
	})
	if s.opts.MoveCountCutoff > 0 && len(out) > s.opts.MoveCountCutoff {
		out = out[:s.opts.MoveCountCutoff]
	}
	return out
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
