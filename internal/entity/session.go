package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
)

// Session is one player's game and running score within a process run.
type Session struct {
	ID        string    `json:"id"`
	State     GameState `json:"state"`
	Score     Score     `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		State:     NewGameState(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Validate checks a stored game against the alternating-play invariants.
func (that GameState) Validate() error {
	for i, cell := range that.Board {
		if cell != Empty && cell != PlayerMark && cell != ComputerMark {
			return fmt.Errorf("%w: unknown mark %q at cell %d", apperror.ErrCorruptState, cell, i)
		}
	}

	diff := that.Board.Count(PlayerMark) - that.Board.Count(ComputerMark)
	if diff != 0 && diff != 1 {
		return fmt.Errorf("%w: mark difference %d", apperror.ErrCorruptState, diff)
	}

	if that.Turn != TurnPlayer && that.Turn != TurnComputer {
		return fmt.Errorf("%w: unknown turn %q", apperror.ErrCorruptState, that.Turn)
	}

	outcome, err := Evaluate(that.Board)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrCorruptState, err)
	}

	if outcome.Status != that.Outcome.Status {
		return fmt.Errorf("%w: stored outcome %q, board says %q", apperror.ErrCorruptState, that.Outcome.Status, outcome.Status)
	}

	if !outcome.SameLine(that.Outcome) {
		return fmt.Errorf("%w: stored line %v, board says %v", apperror.ErrCorruptState, that.Outcome.Line, outcome.Line)
	}

	// the winner made the last move
	switch {
	case outcome.Status == StatusPlayerWin && diff != 1,
		outcome.Status == StatusComputerWin && diff != 0:
		return fmt.Errorf("%w: %q with mark difference %d", apperror.ErrCorruptState, outcome.Status, diff)
	}

	if outcome.Status == StatusInProgress {
		want := TurnPlayer
		if diff == 1 {
			want = TurnComputer
		}
		if that.Turn != want {
			return fmt.Errorf("%w: turn %q with mark difference %d", apperror.ErrCorruptState, that.Turn, diff)
		}
	}

	return nil
}
