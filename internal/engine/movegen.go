package engine

var (
	rookDirs   = []Square{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []Square{{Row: -1, Col: 1}, {Row: -1, Col: -1}, {Row: 1, Col: -1}, {Row: 1, Col: 1}}
	knightDirs = []Square{
		{Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: -1, Col: 2}, {Row: -2, Col: -1},
		{Row: -2, Col: 1}, {Row: -1, Col: -2}, {Row: 1, Col: -2}, {Row: 2, Col: -1},
	}
	kingDirs = []Square{
		{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 0, Col: 1}, {Row: -1, Col: 1},
		{Row: -1, Col: 0}, {Row: -1, Col: -1}, {Row: 0, Col: -1}, {Row: 1, Col: -1},
	}
)

// PseudoLegalMoves returns every move the side to move can make by piece
// geometry alone, ignoring whether it leaves its own king in check.
// Squares are scanned row by row from row 0.
func (p *Position) PseudoLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			pc := p.board[row][col]
			if pc.IsEmpty() || pc.Color != p.sideToMove {
				continue
			}
			from := Sq(row, col)
			switch pc.Type {
			case Pawn:
				moves = p.pawnMoves(from, pc, moves)
			case Knight:
				moves = p.stepMoves(from, pc, knightDirs, moves)
			case Bishop:
				moves = p.slideMoves(from, pc, bishopDirs, moves)
			case Rook:
				moves = p.slideMoves(from, pc, rookDirs, moves)
			case Queen:
				moves = p.slideMoves(from, pc, bishopDirs, moves)
				moves = p.slideMoves(from, pc, rookDirs, moves)
			case King:
				moves = p.stepMoves(from, pc, kingDirs, moves)
				moves = p.castleMoves(from, pc, moves)
			}
		}
	}
	return moves
}

func (p *Position) add(moves []Move, from, to Square) []Move {
	return append(moves, NewMove(p, from, to))
}

// pawnMoves adds single and double pushes and diagonal captures. There is
// no en passant.
func (p *Position) pawnMoves(from Square, pc Piece, moves []Move) []Move {
	dir := forward(pc.Color)
	one := from.Offset(dir, 0)
	if one.OnBoard() && p.At(one).IsEmpty() {
		moves = p.add(moves, from, one)
		two := from.Offset(2*dir, 0)
		if from.Row == pawnStartRank(pc.Color) && two.OnBoard() && p.At(two).IsEmpty() {
			moves = p.add(moves, from, two)
		}
	}
	for _, dc := range [2]int{-1, 1} {
		to := from.Offset(dir, dc)
		if !to.OnBoard() {
			continue
		}
		if dest := p.At(to); !dest.IsEmpty() && dest.Color != pc.Color {
			moves = p.add(moves, from, to)
		}
	}
	return moves
}

// stepMoves handles knights and the king's one-square steps.
func (p *Position) stepMoves(from Square, pc Piece, dirs []Square, moves []Move) []Move {
	for _, d := range dirs {
		to := from.Offset(d.Row, d.Col)
		if !to.OnBoard() {
			continue
		}
		if dest := p.At(to); dest.IsEmpty() || dest.Color != pc.Color {
			moves = p.add(moves, from, to)
		}
	}
	return moves
}

// slideMoves walks each direction until the edge or an occupied square. An
// enemy occupant is included, a friendly one is not.
func (p *Position) slideMoves(from Square, pc Piece, dirs []Square, moves []Move) []Move {
	for _, d := range dirs {
		to := from.Offset(d.Row, d.Col)
		for to.OnBoard() {
			dest := p.At(to)
			if dest.IsEmpty() {
				moves = p.add(moves, from, to)
			} else {
				if dest.Color != pc.Color {
					moves = p.add(moves, from, to)
				}
				break
			}
			to = to.Offset(d.Row, d.Col)
		}
	}
	return moves
}

// castleMoves adds O-O and O-O-O when the king and rook stand on their
// original squares with nothing between them. Attacks on the squares the
// king crosses are not examined.
func (p *Position) castleMoves(from Square, pc Piece, moves []Move) []Move {
	row := backRank(pc.Color)
	if from != Sq(row, 4) {
		return moves
	}
	if p.canCastle(pc.Color, row, 7, []int{5, 6}) {
		moves = p.add(moves, from, Sq(row, 6))
	}
	if p.canCastle(pc.Color, row, 0, []int{1, 2, 3}) {
		moves = p.add(moves, from, Sq(row, 2))
	}
	return moves
}

func (p *Position) canCastle(c Color, row, rookCol int, between []int) bool {
	if !p.board[row][rookCol].Is(c, Rook) {
		return false
	}
	for _, col := range between {
		if !p.board[row][col].IsEmpty() {
			return false
		}
	}
	return true
}
