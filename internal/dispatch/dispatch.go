// Package dispatch classifies inbound chat events into intents and runs the
// activity business logic: the multi-step creation flow, joins and leaves,
// roster management by name, and the guarded bulk delete. Handlers return
// presentational messages for the transport to deliver; errors bubble up to
// the transport boundary instead of being swallowed here.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hikoguma/raidbot/internal/config"
	"github.com/hikoguma/raidbot/internal/domain"
	"github.com/hikoguma/raidbot/internal/state"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type activityRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	GetByName(ctx context.Context, name string) (*domain.Activity, error)
	ListWithCounts(ctx context.Context) ([]domain.ActivityWithCount, error)
	Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type participantRepo interface {
	Create(ctx context.Context, p *domain.Participant) (*domain.Participant, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]domain.Participant, error)
	GetByActivityAndUser(ctx context.Context, activityID uuid.UUID, userID string) (*domain.Participant, error)
	GetByActivityAndName(ctx context.Context, activityID uuid.UUID, displayName string) (*domain.Participant, error)
	CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByActivity(ctx context.Context, activityID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type stateStore interface {
	Get(userID string) (state.Entry, bool)
	Set(userID string, e state.Entry)
	SetName(userID, name string) bool
	Delete(userID string)
}

// profileResolver looks up a user's display name on the messaging platform.
// Failures are expected (opt-outs, network); the dispatcher falls back to the
// raw user ID.
type profileResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// keyedLocks serializes mutations that share a key: "user:<id>" for the
// creation flow, "activity:<id>" for roster changes.
type keyedLocks interface {
	Lock(key string)
	Unlock(key string)
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher implements the bot's command handling.
type Dispatcher struct {
	log          *slog.Logger
	activities   activityRepo
	participants participantRepo
	states       stateStore
	profiles     profileResolver
	tx           txManager
	locks        keyedLocks
	cfg          config.BotConfig
}

// New creates a Dispatcher.
func New(
	logger *slog.Logger,
	activities activityRepo,
	participants participantRepo,
	states stateStore,
	profiles profileResolver,
	tx txManager,
	locks keyedLocks,
	cfg config.BotConfig,
) *Dispatcher {
	return &Dispatcher{
		log:          logger.With("component", "dispatch"),
		activities:   activities,
		participants: participants,
		states:       states,
		profiles:     profiles,
		tx:           tx,
		locks:        locks,
		cfg:          cfg,
	}
}

func userKey(userID string) string { return "user:" + userID }

func activityKey(id uuid.UUID) string { return "activity:" + id.String() }

// displayName resolves the invoker's display name, falling back to the raw
// user ID when the profile lookup fails or comes back empty.
func (d *Dispatcher) displayName(ctx context.Context, userID string) string {
	name, err := d.profiles.DisplayName(ctx, userID)
	if err != nil {
		d.log.Warn("profile lookup failed, using user ID", "user_id", userID, "error", err)
		return userID
	}
	if name == "" {
		return userID
	}
	return name
}
