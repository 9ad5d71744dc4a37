package model

import "github.com/benbeisheim/alphabeta-chess/internal/engine"

type Piece struct {
	Type  engine.PieceType `json:"type"`
	Color engine.Color     `json:"color"`
}

// BoardState is the client view of the grid. Board[row][col] is nil for an
// empty square; row 0 is rank 8.
type BoardState struct {
	Board             [][]*Piece    `json:"board"`
	BlackKingPosition engine.Square `json:"blackKingPosition"`
	WhiteKingPosition engine.Square `json:"whiteKingPosition"`
}

func newBoardState(pos *engine.Position) BoardState {
	grid := pos.Board()
	board := make([][]*Piece, engine.BoardSize)
	for row := range grid {
		board[row] = make([]*Piece, engine.BoardSize)
		for col, pc := range grid[row] {
			if !pc.IsEmpty() {
				board[row][col] = &Piece{Type: pc.Type, Color: pc.Color}
			}
		}
	}
	return BoardState{
		Board:             board,
		BlackKingPosition: pos.KingSquare(engine.Black),
		WhiteKingPosition: pos.KingSquare(engine.White),
	}
}

type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// newCapturedPieces lists what each side has taken, in order.
func newCapturedPieces(history []engine.Move) CapturedPieces {
	captured := CapturedPieces{White: make([]Piece, 0), Black: make([]Piece, 0)}
	for _, m := range history {
		if !m.IsCapture() {
			continue
		}
		pc := Piece{Type: m.Captured.Type, Color: m.Captured.Color}
		if m.Piece.Color == engine.White {
			captured.White = append(captured.White, pc)
		} else {
			captured.Black = append(captured.Black, pc)
		}
	}
	return captured
}
