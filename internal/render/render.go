// Package render turns store records into presentational payloads: plain
// text replies and platform-neutral cards. The transport layer decides how a
// Card becomes a concrete message (a Flex bubble on LINE); everything here is
// pure.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/hikoguma/raidbot/internal/domain"
)

// Message is either a Text or a Card.
type Message interface {
	message()
}

// Text is a plain text reply.
type Text string

func (Text) message() {}

// ButtonKind selects how a button is wired on the platform side.
type ButtonKind string

const (
	// ButtonPostback sends the button's Data back as a postback event.
	ButtonPostback ButtonKind = "postback"
	// ButtonDatetimePicker opens the platform datetime picker and sends the
	// selection back as a postback with a datetime parameter.
	ButtonDatetimePicker ButtonKind = "datetimepicker"
)

// Button is one tappable action on a card. Data carries the same
// "action=<tag>&k=v" encoding the dispatcher classifies on the way back in.
type Button struct {
	Label string
	Data  string
	Style string // primary, secondary, link
	Kind  ButtonKind
}

// Block is one section of a card: some lines of text and a row of buttons.
type Block struct {
	Lines   []string
	Buttons []Button
}

// Card is a structured reply with a title and one or more blocks.
type Card struct {
	AltText string
	Title   string
	Blocks  []Block
}

func (Card) message() {}

// ---------------------------------------------------------------------------
// Postback action encoding
// ---------------------------------------------------------------------------

// Action tags consumed by the dispatcher.
const (
	ActionSelectDate     = "select_date"
	ActionJoin           = "join_activity"
	ActionCancelJoin     = "cancel_join"
	ActionDelete         = "delete_activity"
	ActionViewRoster     = "view_participants"
	ActionConfirmWipe    = "confirm_delete_all"
	ActionCancelWipe     = "cancel_delete_all"
	ActionSelectTemplate = "select_activity"
)

// SelectDateData is the datetime-picker postback payload.
const SelectDateData = "action=" + ActionSelectDate

func activityData(tag string, id uuid.UUID) string {
	return fmt.Sprintf("action=%s&id=%s", tag, id)
}

// TemplateData encodes the template-toggle postback for a template name.
func TemplateData(name string) string {
	return fmt.Sprintf("action=%s&name=%s", ActionSelectTemplate, url.QueryEscape(name))
}

// ---------------------------------------------------------------------------
// Static texts
// ---------------------------------------------------------------------------

// HelpText lists every command the bot understands.
func HelpText() Text {
	return Text(strings.Join([]string{
		"Commands",
		"-------------------",
		"1. Create an activity:",
		"» activity <name>",
		"   e.g. activity Raid",
		"",
		"2. Pick from templates:",
		"» templates",
		"",
		"3. List activities:",
		"» activities",
		"",
		"4. Buttons on each activity:",
		"» Join: sign up",
		"» Leave: cancel your signup",
		"» Roster: show who joined",
		"» Remove: delete the activity (creator only)",
		"",
		"5. Manage the roster by name:",
		"» + <activity> <person>: add someone",
		"» - <activity> <person>: remove someone",
		"",
		"6. delete all activities (asks first before wiping)",
	}, "\n"))
}

// Usage hints for malformed commands.
const (
	UsageCreate = Text(`Please provide an activity name, e.g. "activity Raid"`)
	UsageAdd    = Text("Wrong format. Use: + <activity> <person>")
	UsageRemove = Text("Wrong format. Use: - <activity> <person>")
)

// Flow-control texts for the creation state machine.
const (
	CreateFailed = Text("Activity creation failed, please start again")
	StartOver    = Text("No activity in progress, please start over")
)

// Bulk-delete texts.
const (
	AllDeleted    = Text("All activities have been deleted")
	WipeCancelled = Text("Deletion of all activities cancelled")
)

// NoActivities is the list reply when the store is empty.
const NoActivities = Text("There are no activities yet")

// ---------------------------------------------------------------------------
// Parameterized texts
// ---------------------------------------------------------------------------

// ActivityNotFound reports a failed lookup by name.
func ActivityNotFound(name string) Text {
	return Text(fmt.Sprintf("No activity named %s was found", name))
}

// ActivityGone reports a failed lookup by ID (the card the button lived on is stale).
func ActivityGone() Text {
	return Text("That activity no longer exists")
}

// Joined is the self-join success summary.
func Joined(activity, person, scheduledAt string, count int) Text {
	return Text(fmt.Sprintf("»%s: %s joined successfully\nTime: %s\nParticipants: %d",
		activity, person, scheduledAt, count))
}

// AlreadyJoined reports a duplicate self-join attempt.
func AlreadyJoined(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s already joined", activity, person))
}

// Left confirms a cancelled signup.
func Left(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s left the roster", activity, person))
}

// NotJoined reports a leave attempt without a signup.
func NotJoined(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s has not joined", activity, person))
}

// Deleted confirms an activity deletion.
func Deleted(activity string) Text {
	return Text(fmt.Sprintf("»%s: deleted", activity))
}

// NoPermission reports a delete attempt by a non-creator.
func NoPermission(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s has no permission to delete", activity, person))
}

// ProxyAdded is the add-by-name success summary.
func ProxyAdded(activity, person, scheduledAt string, count int) Text {
	return Text(fmt.Sprintf("»%s: %s registered successfully\nTime: %s\nParticipants: %d",
		activity, person, scheduledAt, count))
}

// AlreadyRegistered reports a duplicate add-by-name attempt.
func AlreadyRegistered(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s is already on the roster", activity, person))
}

// RemovedByName confirms a remove-by-name.
func RemovedByName(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: %s removed from the roster", activity, person))
}

// NoRegistration reports a remove-by-name without a matching registration.
func NoRegistration(activity, person string) Text {
	return Text(fmt.Sprintf("»%s: no registration found for %s", activity, person))
}

// Roster renders the participant checklist for one activity.
func Roster(a domain.Activity, participants []domain.Participant) Text {
	var sb strings.Builder
	fmt.Fprintf(&sb, "»%s roster\n", a.Name)
	fmt.Fprintf(&sb, "Time: %s\n", a.ScheduledAt)
	fmt.Fprintf(&sb, "Participants: %d\n", len(participants))
	sb.WriteString("-----------------")
	for _, p := range participants {
		sb.WriteString("\n✓ ")
		sb.WriteString(p.DisplayName)
	}
	return Text(sb.String())
}

// ---------------------------------------------------------------------------
// Cards
// ---------------------------------------------------------------------------

// DatetimePicker prompts the user to pick the activity's date and time.
func DatetimePicker() Card {
	return Card{
		AltText: "Pick the activity time",
		Title:   "Pick the activity time",
		Blocks: []Block{{
			Buttons: []Button{{
				Label: "Pick date & time",
				Data:  SelectDateData,
				Style: "primary",
				Kind:  ButtonDatetimePicker,
			}},
		}},
	}
}

// ActivityList renders every activity with its headcount and action buttons,
// or NoActivities when the store is empty.
func ActivityList(activities []domain.ActivityWithCount) Message {
	if len(activities) == 0 {
		return NoActivities
	}

	blocks := make([]Block, 0, len(activities))
	for _, ac := range activities {
		date, clock := ac.ScheduleParts()
		blocks = append(blocks, Block{
			Lines: []string{
				ac.Name,
				"Date: " + date,
				"Time: " + clock,
				fmt.Sprintf("Participants: %d", ac.ParticipantCount),
			},
			Buttons: []Button{
				{Label: "Join", Data: activityData(ActionJoin, ac.ID), Style: "primary", Kind: ButtonPostback},
				{Label: "Leave", Data: activityData(ActionCancelJoin, ac.ID), Style: "secondary", Kind: ButtonPostback},
				{Label: "Roster", Data: activityData(ActionViewRoster, ac.ID), Style: "secondary", Kind: ButtonPostback},
				{Label: "Remove", Data: activityData(ActionDelete, ac.ID), Style: "link", Kind: ButtonPostback},
			},
		})
	}

	return Card{
		AltText: "Activity list",
		Title:   "Activities",
		Blocks:  blocks,
	}
}

// DeleteAllConfirm asks before wiping the store.
func DeleteAllConfirm() Card {
	return Card{
		AltText: "Delete all activities?",
		Title:   "Delete all activities?",
		Blocks: []Block{{
			Buttons: []Button{
				{Label: "Yes", Data: "action=" + ActionConfirmWipe, Style: "primary", Kind: ButtonPostback},
				{Label: "No", Data: "action=" + ActionCancelWipe, Style: "secondary", Kind: ButtonPostback},
			},
		}},
	}
}

// TemplateSelect renders the template menu. The selected template (if any) is
// highlighted; tapping it again clears the selection. The picker button
// completes the flow once a template is chosen.
func TemplateSelect(templates []string, selected string) Card {
	buttons := make([]Button, 0, len(templates))
	for _, name := range templates {
		style := "secondary"
		if name == selected {
			style = "primary"
		}
		buttons = append(buttons, Button{
			Label: name,
			Data:  TemplateData(name),
			Style: style,
			Kind:  ButtonPostback,
		})
	}

	line := "Pick a template"
	if selected != "" {
		line = "Selected: " + selected
	}

	return Card{
		AltText: "Pick an activity template",
		Title:   "New activity",
		Blocks: []Block{
			{Lines: []string{line}, Buttons: buttons},
			{Buttons: []Button{{
				Label: "Pick date & time",
				Data:  SelectDateData,
				Style: "primary",
				Kind:  ButtonDatetimePicker,
			}}},
		},
	}
}
