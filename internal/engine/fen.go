package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// StartingFEN is the standard starting position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a Position from the placement and side-to-move fields of
// a FEN string. Castling, en passant and clock fields may be present but are
// ignored. The history of the returned position is empty.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty FEN string: %w", ErrInvalidFEN)
	}

	p := &Position{sideToMove: White}
	if err := parsePlacement(p, parts[0]); err != nil {
		return nil, err
	}

	if len(parts) > 1 {
		switch parts[1] {
		case "w":
			p.sideToMove = White
		case "b":
			p.sideToMove = Black
		default:
			return nil, fmt.Errorf("invalid side to move %q: %w", parts[1], ErrInvalidFEN)
		}
	}
	return p, nil
}

// MustParseFEN is ParseFEN for fixed, known-good strings.
func MustParseFEN(fen string) *Position {
	p, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePlacement(p *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != BoardSize {
		return fmt.Errorf("expected %d ranks, got %d: %w", BoardSize, len(ranks), ErrInvalidFEN)
	}

	var kings [2]int
	for row, rank := range ranks {
		col := 0
		for _, c := range rank {
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			pt, ok := ParsePieceType(string(c))
			if !ok {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			if col >= BoardSize {
				return fmt.Errorf("rank %d overflows: %w", BoardSize-row, ErrInvalidFEN)
			}
			color := White
			if unicode.IsLower(c) {
				color = Black
			}
			if pt == King {
				kings[color]++
			}
			p.place(Sq(row, col), NewPiece(color, pt))
			col++
		}
		if col != BoardSize {
			return fmt.Errorf("rank %d has %d files: %w", BoardSize-row, col, ErrInvalidFEN)
		}
	}

	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("need exactly one king per side, got %d white and %d black: %w",
			kings[White], kings[Black], ErrInvalidFEN)
	}
	return nil
}

// FEN renders the position. Castling rights are derived from the king and
// rook placement; en passant is always "-".
func (p *Position) FEN() string {
	var b strings.Builder
	for row := 0; row < BoardSize; row++ {
		if row > 0 {
			b.WriteByte('/')
		}
		empty := 0
		for col := 0; col < BoardSize; col++ {
			pc := p.board[row][col]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(pc.String())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}

	b.WriteByte(' ')
	if p.sideToMove == White {
		b.WriteByte('w')
	} else {
		b.WriteByte('b')
	}
	b.WriteByte(' ')
	b.WriteString(p.castlingField())
	fmt.Fprintf(&b, " - 0 %d", p.Ply()/2+1)
	return b.String()
}

func (p *Position) castlingField() string {
	var b strings.Builder
	for _, c := range []Color{White, Black} {
		row := backRank(c)
		if !p.board[row][4].Is(c, King) {
			continue
		}
		k, q := "K", "Q"
		if c == Black {
			k, q = "k", "q"
		}
		if p.board[row][7].Is(c, Rook) {
			b.WriteString(k)
		}
		if p.board[row][0].Is(c, Rook) {
			b.WriteString(q)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
