package engine

// GameStatus classifies a position for the side to move.
type GameStatus uint8

const (
	Ongoing GameStatus = iota
	Checkmate
	Stalemate
	// BareKings means only the two kings are left. It is the only draw by
	// material that is recognised.
	BareKings
)

func (s GameStatus) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case BareKings:
		return "draw"
	default:
		return "ongoing"
	}
}

func (s GameStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further moves should be played.
func (s GameStatus) Terminal() bool { return s != Ongoing }

// Status reports checkmate or stalemate for the side to move, or BareKings
// when 62 squares are empty.
func Status(p *Position) GameStatus {
	if len(p.LegalMoves()) == 0 {
		if p.IsInCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.countEmpty() == BoardSize*BoardSize-2 {
		return BareKings
	}
	return Ongoing
}
