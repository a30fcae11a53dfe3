package chess

import "github.com/park285/cheese-web/internal/domain"

// AppendMoveRecord adds a half-move to the move list. A white move opens a new row; a black
// move fills the open row, or opens one when the list starts with black.
// Each call refreshes the row's placeholder evaluation.
func AppendMoveRecord(records []domain.MoveRecord, mover domain.Side, san string, evaluation float64) []domain.MoveRecord {
	out := append([]domain.MoveRecord(nil), records...)
	if mover == domain.Black && len(out) > 0 && out[len(out)-1].Black == "" {
		last := &out[len(out)-1]
		last.Black = san
		last.Evaluation = evaluation
		return out
	}
	row := domain.MoveRecord{Number: len(out) + 1, Evaluation: evaluation}
	if mover == domain.White {
		row.White = san
	} else {
		row.Black = san
	}
	return append(out, row)
}

// PlaceholderEvaluation maps a uniform [0, 1) sample onto [-2, 2). It is display filler
// and carries no information about the position.
func PlaceholderEvaluation(sample float64) float64 {
	return sample*4 - 2
}
