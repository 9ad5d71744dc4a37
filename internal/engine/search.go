package engine

import (
	"context"
	"math"
)

var (
	// MateScore is the score of a position where Black is checkmated.
	MateScore = math.Inf(1)
	// MatedScore is the score of a position where White is checkmated.
	MatedScore = math.Inf(-1)
)

// SearchStats counts the work done by one search.
type SearchStats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Cutoffs int `json:"cutoffs"`
}

// SearchResult is what the root selector settled on.
type SearchResult struct {
	Move  Move
	Score float64
	Found bool
	Stats SearchStats
}

type searcher struct {
	pos     *Position
	done    <-chan struct{}
	stopped bool
	stats   SearchStats
}

// Search is fixed-depth alpha-beta minimax rooted at p. Scores are from
// White's point of view; maximizing says whether the side to move at this
// node is the maximizer. p is restored before Search returns.
func Search(p *Position, depth int, alpha, beta float64, maximizing bool) float64 {
	s := &searcher{pos: p}
	return s.alphaBeta(depth, alpha, beta, maximizing)
}

func (s *searcher) alphaBeta(depth int, alpha, beta float64, maximizing bool) float64 {
	s.stats.Nodes++
	if s.interrupted() {
		return 0
	}
	if depth <= 0 {
		s.stats.Leaves++
		return float64(Evaluate(s.pos))
	}

	moves := s.pos.LegalMoves()
	if len(moves) == 0 {
		return terminalScore(s.pos, maximizing)
	}

	if maximizing {
		best := math.Inf(-1)
		for _, m := range moves {
			score := s.child(m, depth-1, alpha, beta, false)
			if s.stopped {
				return best
			}
			best = math.Max(best, score)
			if best >= beta {
				s.stats.Cutoffs++
				return best
			}
			alpha = math.Max(alpha, best)
		}
		return best
	}

	best := math.Inf(1)
	for _, m := range moves {
		score := s.child(m, depth-1, alpha, beta, true)
		if s.stopped {
			return best
		}
		best = math.Min(best, score)
		if best <= alpha {
			s.stats.Cutoffs++
			return best
		}
		beta = math.Min(beta, best)
	}
	return best
}

// child searches the position after m and always takes m back.
func (s *searcher) child(m Move, depth int, alpha, beta float64, maximizing bool) float64 {
	defer s.pos.Play(m)()
	return s.alphaBeta(depth, alpha, beta, maximizing)
}

func (s *searcher) interrupted() bool {
	if s.stopped {
		return true
	}
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		s.stopped = true
	default:
	}
	return s.stopped
}

// terminalScore scores a node with no legal moves: the mated side gets its
// worst score, stalemate is 0.
func terminalScore(p *Position, maximizing bool) float64 {
	if !p.IsInCheck() {
		return 0
	}
	if maximizing {
		return MatedScore
	}
	return MateScore
}

// Minimax is Search without pruning. It visits every node to the given
// depth and exists to check Search against.
func Minimax(p *Position, depth int, maximizing bool) float64 {
	if depth <= 0 {
		return float64(Evaluate(p))
	}
	moves := p.LegalMoves()
	if len(moves) == 0 {
		return terminalScore(p, maximizing)
	}
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range moves {
		undo := p.Play(m)
		score := Minimax(p, depth-1, !maximizing)
		undo()
		if maximizing {
			best = math.Max(best, score)
		} else {
			best = math.Min(best, score)
		}
	}
	return best
}

// FindBestMove picks a move for side among rootMoves by searching each one
// depth-1 plies deeper. ok is false when there is nothing to choose from.
func FindBestMove(p *Position, depth int, rootMoves []Move, side Color) (Move, bool) {
	res, _ := FindBestMoveContext(context.Background(), p, depth, rootMoves, side)
	return res.Move, res.Found
}

// FindBestMoveContext is FindBestMove with a deadline. When ctx ends the
// search unwinds, p is left as it was, and the best candidate whose subtree
// was fully searched is returned together with ctx.Err().
//
// Moves already played three or more times are skipped unless that would
// leave no candidates. This is a guard against shuffling, not a repetition
// draw rule. White keeps the last candidate scoring >= the best so far,
// Black the last scoring <=.
func FindBestMoveContext(ctx context.Context, p *Position, depth int, rootMoves []Move, side Color) (SearchResult, error) {
	s := &searcher{pos: p, done: ctx.Done()}
	res := SearchResult{Score: math.Inf(-1)}
	if side == Black {
		res.Score = math.Inf(1)
	}

	for _, m := range withoutRepeats(p.history, rootMoves) {
		score := s.child(m, depth-1, math.Inf(-1), math.Inf(1), side == Black)
		if s.stopped {
			break
		}
		if (side == White && score >= res.Score) || (side == Black && score <= res.Score) {
			res.Score = score
			res.Move = m
			res.Found = true
		}
	}
	res.Stats = s.stats
	if s.stopped {
		return res, ctx.Err()
	}
	return res, nil
}

// withoutRepeats drops moves that already occur three times in history,
// falling back to all of moves if none survive.
func withoutRepeats(history, moves []Move) []Move {
	fresh := make([]Move, 0, len(moves))
	for _, m := range moves {
		if countIdentical(history, m) < 3 {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		return moves
	}
	return fresh
}
