package rest

import (
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/tictactoe"
	"github.com/rocketscienceinc/xo-engine/internal/usecase"
)

type moveRequest struct {
	Row *int `json:"row" validate:"required"`
	Col *int `json:"col" validate:"required"`
}

type scoreView struct {
	Player   int `json:"player"`
	Computer int `json:"computer"`
}

type sessionView struct {
	ID     string    `json:"id"`
	Board  [9]string `json:"board"`
	Turn   string    `json:"turn"`
	Status string    `json:"status"`
	Line   []int     `json:"line,omitempty"`
	Score  scoreView `json:"score"`
}

type turnView struct {
	sessionView
	Accepted bool `json:"accepted"`
	// ComputerMove is null when the computer did not mark a cell.
	ComputerMove *int `json:"computer_move"`
}

type errorView struct {
	Error string `json:"error"`
}

func newScoreView(score entity.Score) scoreView {
	return scoreView{Player: score.PlayerWins, Computer: score.ComputerWins}
}

func newSessionView(session *entity.Session) sessionView {
	view := sessionView{
		ID:     session.ID,
		Turn:   string(session.State.Turn),
		Status: string(session.State.Outcome.Status),
		Score:  newScoreView(session.Score),
	}

	for i, mark := range session.State.Board {
		view.Board[i] = string(mark)
	}

	if line := session.State.Outcome.Line; line != nil {
		view.Line = line[:]
	}

	return view
}

func newTurnView(result *usecase.TurnResult) turnView {
	view := turnView{
		sessionView: newSessionView(result.Session),
		Accepted:    result.Accepted,
	}

	if result.ComputerMove != tictactoe.NoMove {
		cell := result.ComputerMove
		view.ComputerMove = &cell
	}

	return view
}
