package entity

import (
	"fmt"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InRange() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Index returns the flat board index of the position.
func (that Position) Index() (int, error) {
	if !that.InRange() {
		return 0, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfRange, that.Row, that.Col)
	}

	return that.Row*BoardSize + that.Col, nil
}

// PositionFromIndex is the inverse of Index.
func PositionFromIndex(index int) (Position, error) {
	if index < 0 || index >= CellCount {
		return Position{}, fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, index)
	}

	return Position{Row: index / BoardSize, Col: index % BoardSize}, nil
}
