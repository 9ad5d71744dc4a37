// Package engine holds the chess position, move generation, legality
// filtering, static evaluation and alpha-beta search.
package engine

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*c = parsed
	return nil
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

// PieceType is the kind of a piece. The zero value means no piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Letter returns the upper-case notation letter, "" for pawns.
func (p PieceType) Letter() string {
	switch p {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

func (p PieceType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PieceType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPieceType
		return nil
	}
	parsed, ok := ParsePieceType(string(text))
	if !ok {
		return fmt.Errorf("invalid piece type %q", string(text))
	}
	*p = parsed
	return nil
}

// ParsePieceType accepts full names ("queen") and letters ("q", "Q").
func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return NoPieceType, false
	}
}

// Promotable reports whether a pawn may promote to p.
func (p PieceType) Promotable() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	default:
		return false
	}
}

// Piece is the content of a square. The zero value is an empty square.
type Piece struct {
	Color Color     `json:"color"`
	Type  PieceType `json:"type"`
}

// NoPiece is the empty-square value.
var NoPiece = Piece{}

func NewPiece(c Color, t PieceType) Piece { return Piece{Color: c, Type: t} }

func (p Piece) IsEmpty() bool { return p.Type == NoPieceType }

func (p Piece) Is(c Color, t PieceType) bool { return p.Type == t && p.Color == c }

// String returns the FEN letter: upper case for White, lower case for Black,
// "." for an empty square.
func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	letter := p.Type.Letter()
	if p.Type == Pawn {
		letter = "P"
	}
	if p.Color == Black {
		return strings.ToLower(letter)
	}
	return letter
}

const BoardSize = 8

// Square is a (row, column) pair. Row 0 is Black's back rank (rank 8),
// row 7 is White's (rank 1); column 0 is the a-file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Sq(row, col int) Square { return Square{Row: row, Col: col} }

func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < BoardSize && s.Col >= 0 && s.Col < BoardSize
}

func (s Square) Offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

func (s Square) index() int { return s.Row*BoardSize + s.Col }

func (s Square) File() string { return string(rune('a' + s.Col)) }

func (s Square) Rank() string { return string(rune('8' - s.Row)) }

func (s Square) String() string {
	if !s.OnBoard() {
		return "-"
	}
	return s.File() + s.Rank()
}

// ParseSquare converts "e4" style coordinates.
func ParseSquare(coord string) (Square, bool) {
	coord = strings.ToLower(strings.TrimSpace(coord))
	if len(coord) != 2 {
		return Square{}, false
	}
	file, rank := coord[0], coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, false
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, true
}

// backRank is the row on which c's pieces start.
func backRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// promotionRank is the row on which c's pawns promote.
func promotionRank(c Color) int {
	return backRank(c.Opposite())
}

// pawnStartRank is the row c's pawns may double-push from.
func pawnStartRank(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// forward is the row delta of one pawn step for c.
func forward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
