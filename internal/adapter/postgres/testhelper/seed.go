package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hikoguma/raidbot/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedActivity inserts an activity with a unique name and returns it.
func SeedActivity(t *testing.T, pool *pgxpool.Pool, creatorID string) domain.Activity {
	t.Helper()
	ctx := context.Background()

	a := domain.Activity{
		ID:          uuid.New(),
		Name:        "Raid-" + uniqueSuffix(),
		ScheduledAt: "2024-01-01T20:00",
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO activities (id, name, scheduled_at, creator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Name, a.ScheduledAt, a.CreatorID, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedActivity insert: %v", err)
	}

	return a
}

// SeedParticipant inserts a participant for the given activity and returns it.
func SeedParticipant(t *testing.T, pool *pgxpool.Pool, activityID uuid.UUID, userID, displayName string) domain.Participant {
	t.Helper()
	ctx := context.Background()

	p := domain.Participant{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: displayName,
		ActivityID:  activityID,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO participants (id, user_id, display_name, activity_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.DisplayName, p.ActivityID, p.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedParticipant insert: %v", err)
	}

	return p
}
