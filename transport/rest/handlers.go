package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/usecase"
	"github.com/rocketscienceinc/xo-engine/internal/validator"
)

const maxMoveBodyBytes = 1 << 10

type sessionUseCase interface {
	StartSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	MakeTurn(ctx context.Context, id string, pos entity.Position) (*usecase.TurnResult, error)
	Restart(ctx context.Context, id string) (*entity.Session, error)
	Score(ctx context.Context, id string) (entity.Score, error)
	EndSession(ctx context.Context, id string) error
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func (that *handlers) startSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.StartSession(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newSessionView(session))
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionView(session))
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMoveBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			that.writeJSON(w, http.StatusRequestEntityTooLarge, errorView{Error: "move body too large"})
			return
		}

		that.writeJSON(w, http.StatusBadRequest, errorView{Error: "malformed move: " + err.Error()})
		return
	}

	if err := validator.Get().Struct(req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorView{Error: "move needs row and col"})
		return
	}

	pos := entity.Position{Row: *req.Row, Col: *req.Col}

	result, err := that.sessions.MakeTurn(r.Context(), chi.URLParam(r, "id"), pos)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newTurnView(result))
}

func (that *handlers) restart(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionView(session))
}

func (that *handlers) score(w http.ResponseWriter, r *http.Request) {
	score, err := that.sessions.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newScoreView(score))
}

func (that *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, errorView{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrOutOfRange):
		that.writeJSON(w, http.StatusBadRequest, errorView{Error: apperror.ErrOutOfRange.Error()})
	default:
		that.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		that.writeJSON(w, http.StatusInternalServerError, errorView{Error: "Internal Server Error"})
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
