package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/hikoguma/raidbot/internal/domain"
	"github.com/hikoguma/raidbot/internal/render"
)

// HandlePostback parses a postback payload ("action=<tag>&k=v") and runs the
// matching action. params carries platform-side extras such as the
// datetime-picker selection.
func (d *Dispatcher) HandlePostback(ctx context.Context, userID, data string, params map[string]string) ([]render.Message, error) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return nil, fmt.Errorf("parse postback data %q: %w", data, err)
	}

	switch action := values.Get("action"); action {
	case render.ActionSelectDate:
		return d.completeCreation(ctx, userID, params["datetime"])

	case render.ActionSelectTemplate:
		return d.toggleTemplate(userID, values.Get("name")), nil

	case render.ActionJoin:
		id, err := parseID(values)
		if err != nil {
			return nil, err
		}
		return d.join(ctx, userID, id)

	case render.ActionCancelJoin:
		id, err := parseID(values)
		if err != nil {
			return nil, err
		}
		return d.leave(ctx, userID, id)

	case render.ActionDelete:
		id, err := parseID(values)
		if err != nil {
			return nil, err
		}
		return d.deleteActivity(ctx, userID, id)

	case render.ActionViewRoster:
		id, err := parseID(values)
		if err != nil {
			return nil, err
		}
		return d.roster(ctx, id)

	case render.ActionConfirmWipe:
		return d.deleteEverything(ctx)

	case render.ActionCancelWipe:
		return []render.Message{render.WipeCancelled}, nil
	}

	return nil, fmt.Errorf("unknown postback action %q", values.Get("action"))
}

func parseID(values url.Values) (uuid.UUID, error) {
	id, err := uuid.Parse(values.Get("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse activity id %q: %w", values.Get("id"), err)
	}
	return id, nil
}

// completeCreation finishes the creation flow with the picked date/time. The
// conversation entry must exist and carry a name; an entry with no name (the
// template menu with nothing selected) stays put so the user can pick one.
func (d *Dispatcher) completeCreation(ctx context.Context, userID, datetime string) ([]render.Message, error) {
	d.locks.Lock(userKey(userID))
	defer d.locks.Unlock(userKey(userID))

	entry, ok := d.states.Get(userID)
	if !ok {
		return []render.Message{render.StartOver}, nil
	}
	// Both halves must be in place: a name in the entry and a picked
	// datetime. Otherwise the entry stays so the user can finish the flow.
	if entry.Name == "" || datetime == "" {
		return []render.Message{render.CreateFailed}, nil
	}

	a, err := d.activities.Create(ctx, &domain.Activity{
		Name:        entry.Name,
		ScheduledAt: datetime,
		CreatorID:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create activity %q: %w", entry.Name, err)
	}

	d.states.Delete(userID)

	d.log.Info("activity created",
		"activity_id", a.ID, "name", a.Name, "scheduled_at", a.ScheduledAt, "creator", userID)

	return d.listActivities(ctx)
}

// toggleTemplate flips the chosen template name in the invoker's conversation
// entry: picking the current selection clears it, anything else replaces it.
func (d *Dispatcher) toggleTemplate(userID, name string) []render.Message {
	d.locks.Lock(userKey(userID))
	defer d.locks.Unlock(userKey(userID))

	entry, ok := d.states.Get(userID)
	if !ok {
		return []render.Message{render.StartOver}
	}

	selected := name
	if entry.Name == name {
		selected = ""
	}
	if !d.states.SetName(userID, selected) {
		return []render.Message{render.StartOver}
	}

	return []render.Message{render.TemplateSelect(d.cfg.Templates, selected)}
}

func (d *Dispatcher) join(ctx context.Context, userID string, id uuid.UUID) ([]render.Message, error) {
	a, err := d.activities.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.ActivityGone()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}

	person := d.displayName(ctx, userID)

	d.locks.Lock(activityKey(a.ID))
	defer d.locks.Unlock(activityKey(a.ID))

	_, err = d.participants.GetByActivityAndUser(ctx, a.ID, userID)
	if err == nil {
		return []render.Message{render.AlreadyJoined(a.Name, person)}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get signup for %s: %w", userID, err)
	}

	if _, err := d.participants.Create(ctx, &domain.Participant{
		UserID:      userID,
		DisplayName: person,
		ActivityID:  a.ID,
	}); err != nil {
		return nil, fmt.Errorf("join activity %s: %w", a.ID, err)
	}

	count, err := d.participants.CountByActivity(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}

	d.log.Info("participant joined", "activity", a.Name, "user_id", userID)

	return []render.Message{render.Joined(a.Name, person, a.ScheduledAt, count)}, nil
}

// leave cancels the invoker's own signup. A vanished activity is a silent
// no-op: the card the button lived on is stale and there is nothing useful
// to say.
func (d *Dispatcher) leave(ctx context.Context, userID string, id uuid.UUID) ([]render.Message, error) {
	a, err := d.activities.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}

	person := d.displayName(ctx, userID)

	d.locks.Lock(activityKey(a.ID))
	defer d.locks.Unlock(activityKey(a.ID))

	p, err := d.participants.GetByActivityAndUser(ctx, a.ID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.NotJoined(a.Name, person)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get signup for %s: %w", userID, err)
	}

	if err := d.participants.Delete(ctx, p.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("leave activity %s: %w", a.ID, err)
	}

	return []render.Message{render.Left(a.Name, person)}, nil
}

// deleteActivity removes an activity and its whole roster. Creator only.
func (d *Dispatcher) deleteActivity(ctx context.Context, userID string, id uuid.UUID) ([]render.Message, error) {
	a, err := d.activities.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.ActivityGone()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}

	if a.CreatorID != userID {
		person := d.displayName(ctx, userID)
		return []render.Message{render.NoPermission(a.Name, person)}, nil
	}

	d.locks.Lock(activityKey(a.ID))
	defer d.locks.Unlock(activityKey(a.ID))

	err = d.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := d.participants.DeleteByActivity(ctx, a.ID); err != nil {
			return fmt.Errorf("delete participants: %w", err)
		}
		if err := d.activities.Delete(ctx, a.ID); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete activity %s: %w", a.ID, err)
	}

	d.log.Info("activity deleted", "activity", a.Name, "by", userID)

	return []render.Message{render.Deleted(a.Name)}, nil
}

func (d *Dispatcher) roster(ctx context.Context, id uuid.UUID) ([]render.Message, error) {
	a, err := d.activities.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.ActivityGone()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}

	participants, err := d.participants.ListByActivity(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return []render.Message{render.Roster(*a, participants)}, nil
}

// deleteEverything wipes every activity and roster in one transaction.
func (d *Dispatcher) deleteEverything(ctx context.Context) ([]render.Message, error) {
	var activities, participants int64

	err := d.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if participants, err = d.participants.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete all participants: %w", err)
		}
		if activities, err = d.activities.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete all activities: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info("all activities deleted", "activities", activities, "participants", participants)

	return []render.Message{render.AllDeleted}, nil
}
