package entity

import (
	"fmt"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
)

// Mark is the content of a single cell.
type Mark string

const (
	Empty        Mark = ""
	PlayerMark   Mark = "X"
	ComputerMark Mark = "O"
)

type Turn string

const (
	TurnPlayer   Turn = "player"
	TurnComputer Turn = "computer"
)

type Status string

const (
	StatusInProgress  Status = "in_progress"
	StatusPlayerWin   Status = "player_win"
	StatusComputerWin Status = "computer_win"
	StatusTie         Status = "tie"
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize
)

// Line is a triple of flat board indices.
type Line [3]int

// WinCombos lists rows, then columns, then diagonals.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is stored row-major: index = row*3 + col.
type Board [CellCount]Mark

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, CellCount)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that Board) Count(mark Mark) int {
	n := 0
	for _, cell := range that {
		if cell == mark {
			n++
		}
	}

	return n
}

// Outcome classifies a board. Line is only set for a win.
type Outcome struct {
	Status Status `json:"status"`
	Line   *Line  `json:"line,omitempty"`
}

func (that Outcome) IsTerminal() bool {
	return that.Status != StatusInProgress
}

func (that Outcome) IsWin() bool {
	return that.Status == StatusPlayerWin || that.Status == StatusComputerWin
}

// Clone returns an outcome that shares no memory with that.
func (that Outcome) Clone() Outcome {
	if that.Line != nil {
		line := *that.Line
		that.Line = &line
	}

	return that
}

// SameLine reports whether both outcomes name the same winning line or none.
func (that Outcome) SameLine(other Outcome) bool {
	if that.Line == nil || other.Line == nil {
		return that.Line == nil && other.Line == nil
	}

	return *that.Line == *other.Line
}

type GameState struct {
	Board   Board   `json:"board"`
	Turn    Turn    `json:"turn"`
	Outcome Outcome `json:"outcome"`
}

// Clone returns a deep copy; the winning line is not shared.
func (that GameState) Clone() GameState {
	that.Outcome = that.Outcome.Clone()
	return that
}

// NewGameState returns an empty board with the player to move.
func NewGameState() GameState {
	return GameState{
		Turn:    TurnPlayer,
		Outcome: Outcome{Status: StatusInProgress},
	}
}

type Score struct {
	PlayerWins   int `json:"player_wins"`
	ComputerWins int `json:"computer_wins"`
}

// Evaluate scans the eight lines in WinCombos order. A board on which both
// marks complete a line cannot come from alternating play and is reported
// as ErrConflictingLines.
func Evaluate(board Board) (Outcome, error) {
	var winner *Outcome

	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a == Empty || a != b || b != c {
			continue
		}

		status := StatusPlayerWin
		if a == ComputerMark {
			status = StatusComputerWin
		}

		if winner == nil {
			line := combo
			winner = &Outcome{Status: status, Line: &line}
			continue
		}

		if winner.Status != status {
			return Outcome{}, fmt.Errorf("%w: lines %v and %v", apperror.ErrConflictingLines, *winner.Line, combo)
		}
	}

	if winner != nil {
		return *winner, nil
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return Outcome{Status: StatusInProgress}, nil
	}

	return Outcome{Status: StatusTie}, nil
}
