package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

const tracerName = "github.com/rocketscienceinc/xo-engine/internal/repository"

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSession struct {
	client *redis.Client
	tracer trace.Tracer

	runID string
	ttl   time.Duration
}

// NewSessionRepository stores sessions in Redis under keys scoped to runID, so
// a new process run never sees the sessions of an earlier one. A zero ttl keeps
// keys until the run's data is flushed.
func NewSessionRepository(client *redis.Client, runID string, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		tracer: otel.Tracer(tracerName),
		runID:  runID,
		ttl:    ttl,
	}
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, session *entity.Session) (err error) {
	ctx, span := that.startSpan(ctx, "SessionRepository.CreateOrUpdate", session.ID)
	defer func() { endSpan(span, err) }()

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if err = that.client.Set(ctx, that.key(session.ID), sessionJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (_ *entity.Session, err error) {
	ctx, span := that.startSpan(ctx, "SessionRepository.GetByID", id)
	defer func() { endSpan(span, err) }()

	response, err := that.client.Get(ctx, that.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, span := that.startSpan(ctx, "SessionRepository.DeleteByID", id)
	defer func() { endSpan(span, err) }()

	deleted, err := that.client.Del(ctx, that.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return nil
}

func (that *dbSession) key(id string) string {
	return fmt.Sprintf("run:%s:session:%s", that.runID, id)
}

func (that *dbSession) startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return that.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("session.id", id),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// PurgeRun deletes every key written under runID and reports how many went.
func PurgeRun(ctx context.Context, client *redis.Client, runID string) (int64, error) {
	var purged int64

	iter := client.Scan(ctx, 0, fmt.Sprintf("run:%s:*", runID), 0).Iterator()
	for iter.Next(ctx) {
		deleted, err := client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return purged, fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}

		purged += deleted
	}

	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("failed to scan run keys: %w", err)
	}

	return purged, nil
}
