package engine

// Position is a mutable chess position: the 8x8 grid, the side to move, a
// cache of both king squares and the stack of applied moves.
//
// A single Position is mutated in place for a whole game, search included.
// Every Apply must be paired with exactly one Undo by the same caller.
type Position struct {
	board      [BoardSize][BoardSize]Piece
	sideToMove Color
	kings      [2]Square
	history    []Move
}

var startingBackRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewPosition returns the standard starting position with White to move.
func NewPosition() *Position {
	p := &Position{sideToMove: White}
	for col := 0; col < BoardSize; col++ {
		p.board[0][col] = NewPiece(Black, startingBackRank[col])
		p.board[1][col] = NewPiece(Black, Pawn)
		p.board[6][col] = NewPiece(White, Pawn)
		p.board[7][col] = NewPiece(White, startingBackRank[col])
	}
	p.kings[White] = Sq(7, 4)
	p.kings[Black] = Sq(0, 4)
	return p
}

func (p *Position) At(sq Square) Piece { return p.board[sq.Row][sq.Col] }

func (p *Position) SideToMove() Color { return p.sideToMove }

// KingSquare returns the cached square of c's king.
func (p *Position) KingSquare(c Color) Square { return p.kings[c] }

// Board returns a copy of the grid.
func (p *Position) Board() [BoardSize][BoardSize]Piece { return p.board }

// History returns a copy of the applied moves, oldest first.
func (p *Position) History() []Move {
	out := make([]Move, len(p.history))
	copy(out, p.history)
	return out
}

// LastMove returns the most recently applied move.
func (p *Position) LastMove() (Move, bool) {
	if len(p.history) == 0 {
		return Move{}, false
	}
	return p.history[len(p.history)-1], true
}

func (p *Position) Ply() int { return len(p.history) }

// Clone returns an independent copy, history included.
func (p *Position) Clone() *Position {
	c := *p
	c.history = p.History()
	return &c
}

// Apply plays m. See resolvePromotion for how a promoting pawn's new piece
// is chosen; with autoQueen set it is always a queen and chooser is never
// consulted. The move is assumed to come from LegalMoves.
func (p *Position) Apply(m Move, autoQueen bool, chooser PromotionChooser) {
	p.board[m.From.Row][m.From.Col] = NoPiece
	p.board[m.To.Row][m.To.Col] = m.Piece

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(m)
		p.board[rookTo.Row][rookTo.Col] = p.board[rookFrom.Row][rookFrom.Col]
		p.board[rookFrom.Row][rookFrom.Col] = NoPiece
	}

	if m.IsPromotion() {
		pt := resolvePromotion(m, autoQueen, chooser)
		p.board[m.To.Row][m.To.Col] = NewPiece(m.Piece.Color, pt)
	}

	p.sideToMove = p.sideToMove.Opposite()
	if m.Piece.Type == King {
		p.kings[m.Piece.Color] = m.To
	}
	p.history = append(p.history, m)
}

// Undo takes back the most recent move. It is a no-op on an empty history.
func (p *Position) Undo() {
	if len(p.history) == 0 {
		return
	}
	m := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]

	p.board[m.From.Row][m.From.Col] = m.Piece
	p.board[m.To.Row][m.To.Col] = m.Captured

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(m)
		p.board[rookFrom.Row][rookFrom.Col] = p.board[rookTo.Row][rookTo.Col]
		p.board[rookTo.Row][rookTo.Col] = NoPiece
	}

	p.sideToMove = p.sideToMove.Opposite()
	if m.Piece.Type == King {
		p.kings[m.Piece.Color] = m.From
	}
}

// Play applies m with auto-queen promotion and returns the matching undo.
// Callers defer the returned func so the move is reverted on every path.
func (p *Position) Play(m Move) (undo func()) {
	p.Apply(m, true, nil)
	return p.Undo
}

// castleRookSquares returns the rook's corner and destination for a castling
// king move.
func castleRookSquares(m Move) (from, to Square) {
	row := m.To.Row
	if m.To.Col > m.From.Col {
		return Sq(row, 7), Sq(row, m.To.Col-1)
	}
	return Sq(row, 0), Sq(row, m.To.Col+1)
}

// place puts pc on sq and keeps the king cache in step. Used while
// building positions, never during play.
func (p *Position) place(sq Square, pc Piece) {
	p.board[sq.Row][sq.Col] = pc
	if pc.Type == King {
		p.kings[pc.Color] = sq
	}
}

// countEmpty returns the number of empty squares.
func (p *Position) countEmpty() int {
	n := 0
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p.board[row][col].IsEmpty() {
				n++
			}
		}
	}
	return n
}
