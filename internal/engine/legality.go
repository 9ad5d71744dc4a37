package engine

// LegalMoves returns the pseudo-legal moves that do not leave the mover's
// own king in check, in generation order.
func (p *Position) LegalMoves() []Move {
	pseudo := p.PseudoLegalMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if p.leavesKingSafe(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// leavesKingSafe plays m, looks at the mover's king from the mover's side,
// and takes m back.
func (p *Position) leavesKingSafe(m Move) bool {
	defer p.Play(m)()
	p.sideToMove = p.sideToMove.Opposite()
	defer func() { p.sideToMove = p.sideToMove.Opposite() }()
	return !p.IsInCheck()
}

// IsInCheck reports whether the side to move's king stands on the
// destination of any of the opponent's pseudo-legal moves.
func (p *Position) IsInCheck() bool {
	king := p.kings[p.sideToMove]
	p.sideToMove = p.sideToMove.Opposite()
	replies := p.PseudoLegalMoves()
	p.sideToMove = p.sideToMove.Opposite()
	for _, m := range replies {
		if m.To == king {
			return true
		}
	}
	return false
}

// IsLegal reports whether a move with m's identity is currently legal and
// returns the generated move, which carries the board's real pieces.
func (p *Position) IsLegal(m Move) (Move, bool) {
	for _, legal := range p.LegalMoves() {
		if legal.Equal(m) {
			legal.Promotion = m.Promotion
			return legal, true
		}
	}
	return Move{}, false
}
