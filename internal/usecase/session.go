package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/tictactoe"
)

const meterName = "github.com/rocketscienceinc/xo-engine/internal/usecase"

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	ChooseCell(board entity.Board) (int, error)
}

// TurnResult is what one click on the board produced.
type TurnResult struct {
	Session *entity.Session
	// Accepted is false when the player move was ignored.
	Accepted bool
	// ComputerMove is the flat index the computer marked, or tictactoe.NoMove.
	ComputerMove int
}

type SessionManager struct {
	logger *slog.Logger
	repo   sessionRepo
	bot    botService

	mu       sync.Mutex
	finished metric.Int64Counter
}

func NewSessionManager(logger *slog.Logger, repo sessionRepo, bot botService) (*SessionManager, error) {
	finished, err := otel.Meter(meterName).Int64Counter(
		"xo.games.finished",
		metric.WithDescription("Number of finished games by outcome"),
		metric.WithUnit("{game}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create finished games counter: %w", err)
	}

	return &SessionManager{
		logger:   logger.With("component", "session_manager"),
		repo:     repo,
		bot:      bot,
		finished: finished,
	}, nil
}

func (that *SessionManager) StartSession(ctx context.Context) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session := entity.NewSession(uuid.NewString())

	if err := that.repo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Debug("session started", "session_id", session.ID)

	return session, nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.getSession(ctx, id)
}

// MakeTurn runs one click: the player move, then the computer reply while the
// game is still open. A finished game is credited to the score once.
func (that *SessionManager) MakeTurn(ctx context.Context, id string, pos entity.Position) (*TurnResult, error) {
	log := that.logger.With("method", "MakeTurn", "session_id", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, engine, err := that.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	before := engine.State()

	state, err := engine.ApplyPlayerMove(pos)
	if err != nil {
		return nil, fmt.Errorf("failed to apply player move: %w", err)
	}

	if state.Board == before.Board {
		return &TurnResult{Session: session, Accepted: false, ComputerMove: tictactoe.NoMove}, nil
	}

	computerMove := tictactoe.NoMove
	if !state.Outcome.IsTerminal() {
		state, computerMove, err = engine.ComputeComputerMove()
		if err != nil {
			log.Error("computer move failed", "error", err)
			return nil, fmt.Errorf("failed to compute computer move: %w", err)
		}
	}

	if state.Outcome.IsTerminal() {
		engine.RecordResult(state.Outcome)
		that.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(state.Outcome.Status))))
		log.Info("game finished", "status", state.Outcome.Status, "score", engine.CurrentScore())
	}

	session.State = engine.State()
	session.Score = engine.CurrentScore()

	if err = that.save(ctx, session); err != nil {
		return nil, err
	}

	return &TurnResult{Session: session, Accepted: true, ComputerMove: computerMove}, nil
}

// Restart clears the board and keeps the score.
func (that *SessionManager) Restart(ctx context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, engine, err := that.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	session.State = engine.Reset()

	if err = that.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (that *SessionManager) Score(ctx context.Context, id string) (entity.Score, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return entity.Score{}, err
	}

	return session.Score, nil
}

func (that *SessionManager) EndSession(ctx context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	that.logger.Debug("session ended", "session_id", id)

	return nil
}

func (that *SessionManager) getSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *SessionManager) restore(ctx context.Context, id string) (*entity.Session, *tictactoe.Engine, error) {
	session, err := that.getSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	engine, err := tictactoe.Restore(that.logger, that.bot, session.State, session.Score)
	if err != nil {
		that.logger.Error("stored session is corrupt", "session_id", id, "error", err)
		return nil, nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	return session, engine, nil
}

func (that *SessionManager) save(ctx context.Context, session *entity.Session) error {
	session.UpdatedAt = time.Now().UTC()

	if err := that.repo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}
