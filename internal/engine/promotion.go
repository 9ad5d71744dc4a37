package engine

// PromotionChooser supplies the piece a human-controlled pawn promotes to.
type PromotionChooser interface {
	ChoosePromotion(color Color, at Square) (PieceType, error)
}

// PromotionFunc adapts a plain function to PromotionChooser.
type PromotionFunc func(color Color, at Square) (PieceType, error)

func (f PromotionFunc) ChoosePromotion(color Color, at Square) (PieceType, error) {
	return f(color, at)
}

// PromoteTo returns a chooser that always answers pt.
func PromoteTo(pt PieceType) PromotionChooser {
	return PromotionFunc(func(Color, Square) (PieceType, error) { return pt, nil })
}

// resolvePromotion picks the promotion piece: autoQueen wins, then the
// chooser, then the move's requested piece. Anything unusable falls back to
// a queen; chooser errors are swallowed.
func resolvePromotion(m Move, autoQueen bool, chooser PromotionChooser) PieceType {
	if autoQueen {
		return Queen
	}
	if chooser != nil {
		pt, err := chooser.ChoosePromotion(m.Piece.Color, m.To)
		if err != nil || !pt.Promotable() {
			return Queen
		}
		return pt
	}
	if m.Promotion.Promotable() {
		return m.Promotion
	}
	return Queen
}
