package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hikoguma/raidbot/internal/domain"
	"github.com/hikoguma/raidbot/internal/render"
	"github.com/hikoguma/raidbot/internal/state"
)

// HandleText classifies a text message and runs the matching command.
// Unrecognized input is a silent no-op: the bot lives in group chats and must
// not answer ordinary conversation.
func (d *Dispatcher) HandleText(ctx context.Context, userID, text string) ([]render.Message, error) {
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "help":
		return []render.Message{render.HelpText()}, nil

	case trimmed == "activities":
		return d.listActivities(ctx)

	case trimmed == "delete all activities":
		return []render.Message{render.DeleteAllConfirm()}, nil

	case trimmed == "templates":
		return d.openTemplateMenu(userID), nil

	case trimmed == "activity" || strings.HasPrefix(trimmed, "activity "):
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, "activity"))
		if name == "" {
			return []render.Message{render.UsageCreate}, nil
		}
		return d.startCreation(userID, name), nil

	// Only the command word followed by a space (or nothing) counts: a plain
	// "+1" in chat is conversation, not a command.
	case trimmed == "+" || strings.HasPrefix(trimmed, "+ "):
		args := strings.Fields(strings.TrimPrefix(trimmed, "+"))
		if len(args) != 2 {
			return []render.Message{render.UsageAdd}, nil
		}
		return d.addByName(ctx, userID, args[0], args[1])

	case trimmed == "-" || strings.HasPrefix(trimmed, "- "):
		args := strings.Fields(strings.TrimPrefix(trimmed, "-"))
		if len(args) != 2 {
			return []render.Message{render.UsageRemove}, nil
		}
		return d.removeByName(ctx, args[0], args[1])
	}

	return nil, nil
}

func (d *Dispatcher) listActivities(ctx context.Context) ([]render.Message, error) {
	activities, err := d.activities.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return []render.Message{render.ActivityList(activities)}, nil
}

// startCreation records the named activity in the invoker's conversation
// state and asks for a date/time.
func (d *Dispatcher) startCreation(userID, name string) []render.Message {
	d.locks.Lock(userKey(userID))
	defer d.locks.Unlock(userKey(userID))

	d.states.Set(userID, state.Entry{Step: state.StepAwaitingDateTime, Name: name})

	return []render.Message{render.DatetimePicker()}
}

// openTemplateMenu starts the creation flow with no name chosen yet and shows
// the template-selection card.
func (d *Dispatcher) openTemplateMenu(userID string) []render.Message {
	d.locks.Lock(userKey(userID))
	defer d.locks.Unlock(userKey(userID))

	d.states.Set(userID, state.Entry{Step: state.StepAwaitingDateTime})

	return []render.Message{render.TemplateSelect(d.cfg.Templates, "")}
}

// addByName registers a person on an activity's roster by display name, on
// behalf of the invoker. The row keeps the invoker's user ID; uniqueness is
// checked against the display name only.
func (d *Dispatcher) addByName(ctx context.Context, userID, activityName, person string) ([]render.Message, error) {
	a, err := d.activities.GetByName(ctx, activityName)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.ActivityNotFound(activityName)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %q: %w", activityName, err)
	}

	d.locks.Lock(activityKey(a.ID))
	defer d.locks.Unlock(activityKey(a.ID))

	_, err = d.participants.GetByActivityAndName(ctx, a.ID, person)
	if err == nil {
		return []render.Message{render.AlreadyRegistered(a.Name, person)}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration for %q: %w", person, err)
	}

	if _, err := d.participants.Create(ctx, &domain.Participant{
		UserID:      userID,
		DisplayName: person,
		ActivityID:  a.ID,
	}); err != nil {
		return nil, fmt.Errorf("register %q: %w", person, err)
	}

	count, err := d.participants.CountByActivity(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}

	d.log.Info("participant registered by name",
		"activity", a.Name, "person", person, "by", userID)

	return []render.Message{render.ProxyAdded(a.Name, person, a.ScheduledAt, count)}, nil
}

// removeByName drops a person from an activity's roster by display name.
func (d *Dispatcher) removeByName(ctx context.Context, activityName, person string) ([]render.Message, error) {
	a, err := d.activities.GetByName(ctx, activityName)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.ActivityNotFound(activityName)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %q: %w", activityName, err)
	}

	d.locks.Lock(activityKey(a.ID))
	defer d.locks.Unlock(activityKey(a.ID))

	p, err := d.participants.GetByActivityAndName(ctx, a.ID, person)
	if errors.Is(err, domain.ErrNotFound) {
		return []render.Message{render.NoRegistration(a.Name, person)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registration for %q: %w", person, err)
	}

	if err := d.participants.Delete(ctx, p.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("remove %q: %w", person, err)
	}

	return []render.Message{render.RemovedByName(a.Name, person)}, nil
}
