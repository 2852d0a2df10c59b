package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

const (
	x = entity.PlayerMark
	o = entity.ComputerMark
	e = entity.Empty
)

// firstChooser always takes the first candidate and remembers what it was offered.
type firstChooser struct {
	offered []int
}

func (that *firstChooser) Choose(cells []int) int {
	that.offered = append([]int(nil), cells...)
	return cells[0]
}

func TestFindImmediateWin(t *testing.T) {
	t.Run("Completes the middle row", func(t *testing.T) {
		// Given: O holds cells 3 and 4
		board := entity.Board{
			x, x, e,
			o, o, e,
			e, e, e,
		}

		// When: looking for an O win
		cell, ok := FindImmediateWin(board, o)

		// Then: cell 5 completes row 3-4-5
		require.True(t, ok)
		assert.Equal(t, 5, cell)
	})

	t.Run("First winning cell in row-major order", func(t *testing.T) {
		// Given: O can win at 2 (row 0) and at 6 (column 0)
		board := entity.Board{
			o, o, e,
			o, x, x,
			e, x, x,
		}

		// When: looking for an O win
		cell, ok := FindImmediateWin(board, o)

		// Then: the lower index wins the scan
		require.True(t, ok)
		assert.Equal(t, 2, cell)
	})

	t.Run("No win available", func(t *testing.T) {
		// Given: a board without two O in any open line
		board := entity.Board{
			x, e, e,
			e, o, e,
			e, e, x,
		}

		// When: looking for an O win
		_, ok := FindImmediateWin(board, o)

		// Then: nothing is found
		assert.False(t, ok)
	})

	t.Run("Does not mistake an opponent line for a win", func(t *testing.T) {
		// Given: X threatens row 0, O has nothing
		board := entity.Board{
			x, x, e,
			o, e, e,
			e, e, e,
		}

		// When: looking for an O win
		_, ok := FindImmediateWin(board, o)

		// Then: placing O at 2 only blocks, so it is not reported
		assert.False(t, ok)
	})
}

func TestRandomChoice(t *testing.T) {
	t.Run("Delegates to the chooser", func(t *testing.T) {
		chooser := &firstChooser{}

		cell, err := RandomChoice(chooser, []int{4, 7})

		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		assert.Equal(t, []int{4, 7}, chooser.offered)
	})

	t.Run("Empty set", func(t *testing.T) {
		_, err := RandomChoice(&firstChooser{}, nil)

		require.ErrorIs(t, err, apperror.ErrNoEmptyCell)
	})
}

func TestRandomChooser(t *testing.T) {
	// Given: a seeded chooser and a candidate set
	chooser := NewRandomChooser(42)
	cells := []int{0, 2, 6, 8}
	seen := make(map[int]bool)

	// When: choosing many times
	for range 200 {
		cell := chooser.Choose(cells)
		assert.Contains(t, cells, cell)
		seen[cell] = true
	}

	// Then: every candidate shows up
	assert.Len(t, seen, len(cells))
}

func TestRandomChooser_SameSeedSameSequence(t *testing.T) {
	first := NewRandomChooser(7)
	second := NewRandomChooser(7)
	cells := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	for range 20 {
		assert.Equal(t, first.Choose(cells), second.Choose(cells))
	}
}

func TestNewBotService(t *testing.T) {
	t.Run("Known policies", func(t *testing.T) {
		for _, policy := range []Policy{PolicyGreedy, PolicyRandom} {
			bot, err := NewBotService(policy, &firstChooser{})
			require.NoError(t, err)
			assert.Equal(t, policy, bot.Policy())
		}
	})

	t.Run("Unknown policy", func(t *testing.T) {
		_, err := NewBotService("minimax", &firstChooser{})
		require.ErrorIs(t, err, apperror.ErrUnknownPolicy)
	})
}

func TestBotService_ChooseCell(t *testing.T) {
	// O can complete row 3-4-5; the first empty cell is 2
	winnable := entity.Board{
		x, x, e,
		o, o, e,
		e, e, x,
	}

	t.Run("Greedy takes the win", func(t *testing.T) {
		chooser := &firstChooser{}
		bot, err := NewBotService(PolicyGreedy, chooser)
		require.NoError(t, err)

		cell, err := bot.ChooseCell(winnable)

		require.NoError(t, err)
		assert.Equal(t, 5, cell)
		assert.Nil(t, chooser.offered, "random fallback must not run")
	})

	t.Run("Greedy falls back to random without blocking", func(t *testing.T) {
		// Given: X threatens row 0 at cell 2 but O has no win
		board := entity.Board{
			x, x, e,
			o, e, e,
			e, e, e,
		}
		chooser := &firstChooser{}
		bot, err := NewBotService(PolicyGreedy, chooser)
		require.NoError(t, err)

		// When: choosing a cell
		cell, err := bot.ChooseCell(board)

		// Then: the choice comes from all empty cells
		require.NoError(t, err)
		assert.Equal(t, board.EmptyCells(), chooser.offered)
		assert.Equal(t, 2, cell)
	})

	t.Run("Random ignores the win", func(t *testing.T) {
		chooser := &firstChooser{}
		bot, err := NewBotService(PolicyRandom, chooser)
		require.NoError(t, err)

		cell, err := bot.ChooseCell(winnable)

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
		assert.Equal(t, []int{2, 5, 6, 7}, chooser.offered)
	})

	t.Run("Full board", func(t *testing.T) {
		bot, err := NewBotService(PolicyGreedy, &firstChooser{})
		require.NoError(t, err)

		_, err = bot.ChooseCell(entity.Board{
			x, o, x,
			x, o, o,
			o, x, x,
		})

		require.ErrorIs(t, err, apperror.ErrNoEmptyCell)
	})
}
