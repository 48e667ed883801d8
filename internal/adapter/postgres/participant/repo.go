// Package participant implements the Participant repository using PostgreSQL.
// A participant row links one user (by platform ID and display name captured
// at join time) to one activity.
package participant

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hikoguma/raidbot/internal/adapter/postgres"
	"github.com/hikoguma/raidbot/internal/domain"
)

// Repo provides participant persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new participant repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const createSQL = `
INSERT INTO participants (id, user_id, display_name, activity_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

const listByActivitySQL = `
SELECT id, user_id, display_name, activity_id, created_at
FROM participants
WHERE activity_id = $1
ORDER BY created_at, id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByActivity returns all participants of an activity in insertion order.
// Returns an empty slice (not nil) when the roster is empty.
func (r *Repo) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]domain.Participant, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByActivitySQL, activityID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	result := []domain.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return result, nil
}

// GetByActivityAndUser returns the oldest participant row for (activity, user ID).
// This is the self-join uniqueness key. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByActivityAndUser(ctx context.Context, activityID uuid.UUID, userID string) (*domain.Participant, error) {
	return r.getOne(ctx, sq.Eq{"activity_id": activityID, "user_id": userID}, userID)
}

// GetByActivityAndName returns the oldest participant row for
// (activity, display name). This is the proxy-registration uniqueness key.
// Returns domain.ErrNotFound if absent.
func (r *Repo) GetByActivityAndName(ctx context.Context, activityID uuid.UUID, displayName string) (*domain.Participant, error) {
	return r.getOne(ctx, sq.Eq{"activity_id": activityID, "display_name": displayName}, displayName)
}

func (r *Repo) getOne(ctx context.Context, where sq.Eq, key string) (*domain.Participant, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.
		Select("id", "user_id", "display_name", "activity_id", "created_at").
		From("participants").
		Where(where).
		OrderBy("created_at", "id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get participant: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "participant", key)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, postgres.MapError(err, "participant", key)
		}
		return nil, fmt.Errorf("participant %s: %w", key, domain.ErrNotFound)
	}

	p, err := scanParticipant(rows)
	if err != nil {
		return nil, postgres.MapError(err, "participant", key)
	}

	return &p, nil
}

// CountByActivity returns the headcount of an activity.
func (r *Repo) CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	err := querier.QueryRow(ctx,
		`SELECT count(*) FROM participants WHERE activity_id = $1`, activityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new participant and returns it. A zero ID is assigned; a
// zero CreatedAt is set to the current time. An empty DisplayName is stored
// as NULL.
func (r *Repo) Create(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	var name pgtype.Text
	if p.DisplayName != "" {
		name = pgtype.Text{String: p.DisplayName, Valid: true}
	}

	_, err := querier.Exec(ctx, createSQL, p.ID, p.UserID, name, p.ActivityID, p.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "participant", p.ID)
	}

	return p, nil
}

// Delete removes a participant by primary key.
// Returns domain.ErrNotFound if the row does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "participant", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByActivity removes every participant of an activity and returns the
// number removed.
func (r *Repo) DeleteByActivity(ctx context.Context, activityID uuid.UUID) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.Delete("participants").Where(sq.Eq{"activity_id": activityID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete by activity: %w", err)
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete participants: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteAll removes every participant and returns the number removed.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM participants`)
	if err != nil {
		return 0, fmt.Errorf("delete all participants: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanParticipant(rows pgx.Rows) (domain.Participant, error) {
	var (
		p    domain.Participant
		name pgtype.Text
	)

	if err := rows.Scan(&p.ID, &p.UserID, &name, &p.ActivityID, &p.CreatedAt); err != nil {
		return domain.Participant{}, err
	}

	if name.Valid {
		p.DisplayName = name.String
	}

	return p, nil
}
