package model

import "github.com/benbeisheim/alphabeta-chess/internal/engine"

// WSMove is a move as submitted by a client. Promotion is a piece name or
// letter; empty or unknown promotes to a queen.
type WSMove struct {
	From      engine.Square `json:"from"`
	To        engine.Square `json:"to"`
	Promotion string        `json:"promotion,omitempty"`
}

type CastleRookMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

type Ply struct {
	Piece          Piece            `json:"piece"`
	From           engine.Square    `json:"from"`
	To             engine.Square    `json:"to"`
	CapturedPiece  *Piece           `json:"capturedPiece"`
	CastleRookMove *CastleRookMove  `json:"castleRookMove"`
	Promotion      engine.PieceType `json:"promotion,omitempty"`
	Notation       string           `json:"notation"`
	UCI            string           `json:"uci"`
}

// Move pairs White's ply with Black's reply. A game started from a position
// with Black to move has a first Move with no WhitePly.
type Move struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

// LegalMove is one entry of the legal move list sent to clients.
type LegalMove struct {
	From     engine.Square `json:"from"`
	To       engine.Square `json:"to"`
	Notation string        `json:"notation"`
	UCI      string        `json:"uci"`
}

func newPly(m engine.Move, promoted engine.PieceType) Ply {
	ply := Ply{
		Piece:    Piece{Type: m.Piece.Type, Color: m.Piece.Color},
		From:     m.From,
		To:       m.To,
		Notation: m.String(),
		UCI:      m.UCI(),
	}
	if m.IsCapture() {
		ply.CapturedPiece = &Piece{Type: m.Captured.Type, Color: m.Captured.Color}
	}
	if m.IsCastle() {
		row := m.From.Row
		if m.To.Col > m.From.Col {
			ply.CastleRookMove = &CastleRookMove{From: engine.Sq(row, 7), To: engine.Sq(row, 5)}
		} else {
			ply.CastleRookMove = &CastleRookMove{From: engine.Sq(row, 0), To: engine.Sq(row, 3)}
		}
	}
	if m.IsPromotion() {
		ply.Promotion = promoted
		if ply.Notation != "" {
			ply.Notation += "=" + promoted.Letter()
		}
	}
	return ply
}

// pairPlies groups plies into numbered moves.
func pairPlies(plies []Ply) []Move {
	moves := make([]Move, 0, (len(plies)+1)/2)
	for i := range plies {
		ply := &plies[i]
		if ply.Piece.Color == engine.White || len(moves) == 0 || moves[len(moves)-1].BlackPly != nil {
			moves = append(moves, Move{})
		}
		last := &moves[len(moves)-1]
		if ply.Piece.Color == engine.White {
			last.WhitePly = ply
		} else {
			last.BlackPly = ply
		}
	}
	return moves
}

func newLegalMoves(moves []engine.Move) []LegalMove {
	out := make([]LegalMove, 0, len(moves))
	for _, m := range moves {
		out = append(out, LegalMove{From: m.From, To: m.To, Notation: m.String(), UCI: m.UCI()})
	}
	return out
}
