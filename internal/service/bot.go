package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

type Policy string

const (
	// PolicyGreedy takes an immediate win when one exists, else moves randomly.
	// It never blocks the player's open lines.
	PolicyGreedy Policy = "greedy"
	// PolicyRandom is the legacy opponent with no lookahead at all.
	PolicyRandom Policy = "random"
)

// Chooser picks one element of a non-empty set of cell indices.
type Chooser interface {
	Choose(cells []int) int
}

type randomChooser struct {
	rng *rand.Rand
}

// NewRandomChooser seeds a PCG source once per process. A zero seed derives
// one from the clock.
func NewRandomChooser(seed uint64) Chooser {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &randomChooser{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // game randomness
	}
}

func (that *randomChooser) Choose(cells []int) int {
	return cells[that.rng.IntN(len(cells))]
}

// FindImmediateWin scans empty cells row-major and returns the first one
// whose placement completes a line for mark.
func FindImmediateWin(board entity.Board, mark entity.Mark) (int, bool) {
	for _, cell := range board.EmptyCells() {
		probe := board
		probe[cell] = mark

		outcome, err := entity.Evaluate(probe)
		if err != nil {
			continue
		}

		if outcome.IsWin() && probe[(*outcome.Line)[0]] == mark {
			return cell, true
		}
	}

	return 0, false
}

func RandomChoice(chooser Chooser, cells []int) (int, error) {
	if len(cells) == 0 {
		return 0, apperror.ErrNoEmptyCell
	}

	return chooser.Choose(cells), nil
}

type BotService interface {
	ChooseCell(board entity.Board) (int, error)
	Policy() Policy
}

type botService struct {
	policy  Policy
	chooser Chooser
}

func NewBotService(policy Policy, chooser Chooser) (BotService, error) {
	switch policy {
	case PolicyGreedy, PolicyRandom:
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownPolicy, policy)
	}

	return &botService{
		policy:  policy,
		chooser: chooser,
	}, nil
}

func (that *botService) Policy() Policy {
	return that.policy
}

func (that *botService) ChooseCell(board entity.Board) (int, error) {
	if that.policy == PolicyGreedy {
		if cell, ok := FindImmediateWin(board, entity.ComputerMark); ok {
			return cell, nil
		}
	}

	cell, err := RandomChoice(that.chooser, board.EmptyCells())
	if err != nil {
		return 0, fmt.Errorf("bot failed to choose a cell: %w", err)
	}

	return cell, nil
}
