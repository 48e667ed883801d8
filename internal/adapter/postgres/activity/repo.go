// Package activity implements the Activity repository using PostgreSQL.
package activity

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/hikoguma/raidbot/internal/adapter/postgres"
	"github.com/hikoguma/raidbot/internal/domain"
)

// Repo provides activity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// psql builds queries with PostgreSQL $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO activities (id, name, scheduled_at, creator_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

const getByIDSQL = `
SELECT id, name, scheduled_at, creator_id, created_at
FROM activities
WHERE id = $1`

const listWithCountsSQL = `
SELECT
    a.id, a.name, a.scheduled_at, a.creator_id, a.created_at,
    count(p.id) AS participant_count
FROM activities a
LEFT JOIN participants p ON p.activity_id = a.id
GROUP BY a.id
ORDER BY a.created_at, a.id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an activity by primary key.
// Returns domain.ErrNotFound if the activity does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var a domain.Activity
	err := querier.QueryRow(ctx, getByIDSQL, id).
		Scan(&a.ID, &a.Name, &a.ScheduledAt, &a.CreatorID, &a.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "activity", id)
	}

	return &a, nil
}

// GetByName returns the oldest activity with the given name.
// Duplicate names are allowed; the first match by creation time wins.
// Returns domain.ErrNotFound if no activity has that name.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.Activity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.
		Select("id", "name", "scheduled_at", "creator_id", "created_at").
		From("activities").
		Where(sq.Eq{"name": name}).
		OrderBy("created_at", "id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get by name: %w", err)
	}

	var a domain.Activity
	err = querier.QueryRow(ctx, query, args...).
		Scan(&a.ID, &a.Name, &a.ScheduledAt, &a.CreatorID, &a.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "activity", name)
	}

	return &a, nil
}

// ListWithCounts returns every activity with its current headcount, ordered
// by creation time. Returns an empty slice (not nil) when there are none.
func (r *Repo) ListWithCounts(ctx context.Context) ([]domain.ActivityWithCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listWithCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	result := []domain.ActivityWithCount{}
	for rows.Next() {
		var ac domain.ActivityWithCount
		if err := rows.Scan(&ac.ID, &ac.Name, &ac.ScheduledAt, &ac.CreatorID, &ac.CreatedAt, &ac.ParticipantCount); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		result = append(result, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new activity and returns it. A zero ID is assigned; a zero
// CreatedAt is set to the current time.
func (r *Repo) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := querier.Exec(ctx, createSQL, a.ID, a.Name, a.ScheduledAt, a.CreatorID, a.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "activity", a.ID)
	}

	return a, nil
}

// Delete removes an activity. Participants are removed by the FK cascade,
// though callers delete them explicitly first inside the same transaction.
// Returns domain.ErrNotFound if the activity does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.Delete("activities").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "activity", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAll removes every activity and returns the number removed.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM activities`)
	if err != nil {
		return 0, fmt.Errorf("delete all activities: %w", err)
	}

	return tag.RowsAffected(), nil
}
