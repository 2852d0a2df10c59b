package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

// NoMove is returned as the computer's cell when no mark was placed.
const NoMove = -1

type botService interface {
	ChooseCell(board entity.Board) (int, error)
}

// Engine owns one game and the running score of a session. It is not safe
// for concurrent use.
type Engine struct {
	logger *slog.Logger
	bot    botService

	state entity.GameState
	score entity.Score
}

func New(logger *slog.Logger, bot botService) *Engine {
	return &Engine{
		logger: logger.With("component", "engine"),
		bot:    bot,
		state:  entity.NewGameState(),
	}
}

// Restore rebuilds an engine from a stored game and score.
func Restore(logger *slog.Logger, bot botService, state entity.GameState, score entity.Score) (*Engine, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	if score.PlayerWins < 0 || score.ComputerWins < 0 {
		return nil, fmt.Errorf("%w: negative score %+v", apperror.ErrCorruptState, score)
	}

	engine := New(logger, bot)
	engine.state = state.Clone()
	engine.score = score

	return engine, nil
}

func (that *Engine) State() entity.GameState {
	return that.state.Clone()
}

func (that *Engine) CurrentScore() entity.Score {
	return that.score
}

// ApplyPlayerMove marks pos for the player. Occupied cells, finished games and
// moves out of turn are ignored and leave the state untouched; only positions
// off the board are reported.
func (that *Engine) ApplyPlayerMove(pos entity.Position) (entity.GameState, error) {
	cell, err := pos.Index()
	if err != nil {
		return that.state.Clone(), fmt.Errorf("invalid player move: %w", err)
	}

	if !that.isLegal(entity.TurnPlayer, cell) {
		that.logger.Debug("ignored player move", "cell", cell, "status", that.state.Outcome.Status)
		return that.state.Clone(), nil
	}

	if err = that.place(entity.TurnPlayer, cell); err != nil {
		return that.state.Clone(), err
	}

	return that.state.Clone(), nil
}

// ComputeComputerMove asks the bot for a cell and marks it. When the game is
// over or it is the player's turn the call is ignored and NoMove returned.
func (that *Engine) ComputeComputerMove() (entity.GameState, int, error) {
	if that.state.Outcome.IsTerminal() || that.state.Turn != entity.TurnComputer {
		return that.state.Clone(), NoMove, nil
	}

	if that.state.Board.IsFull() {
		return that.state.Clone(), NoMove, fmt.Errorf("computer turn on a full board: %w", apperror.ErrNoEmptyCell)
	}

	cell, err := that.bot.ChooseCell(that.state.Board)
	if err != nil {
		return that.state.Clone(), NoMove, fmt.Errorf("failed to compute computer move: %w", err)
	}

	if !that.isLegal(entity.TurnComputer, cell) {
		return that.state.Clone(), NoMove, fmt.Errorf("%w: bot chose cell %d", apperror.ErrCorruptState, cell)
	}

	if err = that.place(entity.TurnComputer, cell); err != nil {
		return that.state.Clone(), NoMove, err
	}

	return that.state.Clone(), cell, nil
}

// Evaluate classifies the current board without changing anything.
func (that *Engine) Evaluate() (entity.Outcome, error) {
	return entity.Evaluate(that.state.Board)
}

// Reset starts a new game. The score is kept.
func (that *Engine) Reset() entity.GameState {
	that.state = entity.NewGameState()
	return that.state.Clone()
}

// RecordResult credits a finished game to the score. Ties and unfinished
// games change nothing.
func (that *Engine) RecordResult(outcome entity.Outcome) {
	switch outcome.Status {
	case entity.StatusPlayerWin:
		that.score.PlayerWins++
	case entity.StatusComputerWin:
		that.score.ComputerWins++
	case entity.StatusInProgress, entity.StatusTie:
	}
}

func (that *Engine) isLegal(turn entity.Turn, cell int) bool {
	if that.state.Outcome.IsTerminal() || that.state.Turn != turn {
		return false
	}

	if cell < 0 || cell >= entity.CellCount {
		return false
	}

	return that.state.Board[cell] == entity.Empty
}

// place marks the cell and moves the state machine. The board is rolled back
// if it would evaluate to an impossible position.
func (that *Engine) place(turn entity.Turn, cell int) error {
	mark, next := entity.PlayerMark, entity.TurnComputer
	if turn == entity.TurnComputer {
		mark, next = entity.ComputerMark, entity.TurnPlayer
	}

	that.state.Board[cell] = mark

	outcome, err := that.Evaluate()
	if err != nil {
		that.state.Board[cell] = entity.Empty
		return fmt.Errorf("failed to evaluate board: %w", err)
	}

	that.state.Outcome = outcome
	if !outcome.IsTerminal() {
		that.state.Turn = next
	}

	that.logger.Debug("mark placed", "turn", turn, "cell", cell, "status", outcome.Status)

	return nil
}
