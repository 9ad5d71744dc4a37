package engine

import "strings"

// Move is one ply. Piece and Captured record the contents of From and To
// before the move was applied and are what Undo restores.
//
// A move's identity is (From, To) only: neither the pieces nor the
// requested promotion take part in ID or Equal.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Piece     Piece     `json:"piece"`
	Captured  Piece     `json:"captured"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// NewMove builds a move from the current contents of pos.
func NewMove(pos *Position, from, to Square) Move {
	return Move{
		From:     from,
		To:       to,
		Piece:    pos.At(from),
		Captured: pos.At(to),
	}
}

// ID packs the origin and destination into 12 bits.
func (m Move) ID() uint16 {
	return uint16(m.From.index())<<6 | uint16(m.To.index())
}

func (m Move) Equal(other Move) bool { return m.ID() == other.ID() }

func (m Move) IsCapture() bool { return !m.Captured.IsEmpty() }

// IsCastle reports a king move spanning two columns.
func (m Move) IsCastle() bool {
	return m.Piece.Type == King && abs(m.From.Col-m.To.Col) == 2
}

// IsPromotion reports a pawn arriving on its promotion rank.
func (m Move) IsPromotion() bool {
	return m.Piece.Type == Pawn && m.To.Row == promotionRank(m.Piece.Color)
}

// String renders simple algebraic notation: no piece letter for pawns, x for
// captures, O-O / O-O-O for castling, and no check or disambiguation marks.
func (m Move) String() string {
	if m.IsCastle() {
		if m.To.Col == 6 {
			return "O-O"
		}
		return "O-O-O"
	}
	if m.Piece.Type == Pawn {
		if m.IsCapture() {
			return m.From.File() + "x" + m.To.String()
		}
		return m.To.String()
	}
	if m.IsCapture() {
		return m.Piece.Type.Letter() + "x" + m.To.String()
	}
	return m.Piece.Type.Letter() + m.To.String()
}

// UCI renders long algebraic notation such as e2e4 or e7e8q.
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion.Promotable() {
		s += strings.ToLower(m.Promotion.Letter())
	}
	return s
}

// countIdentical returns how many moves in history share m's identity.
func countIdentical(history []Move, m Move) int {
	n := 0
	for _, h := range history {
		if h.Equal(m) {
			n++
		}
	}
	return n
}
