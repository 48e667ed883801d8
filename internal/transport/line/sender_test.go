package line

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikoguma/raidbot/internal/render"
)

func TestToMessages_Text(t *testing.T) {
	t.Parallel()

	msgs, err := toMessages([]render.Message{render.Text("hello")})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestToMessages_Card(t *testing.T) {
	t.Parallel()

	msgs, err := toMessages([]render.Message{render.DeleteAllConfirm()})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestBubble_Layout(t *testing.T) {
	t.Parallel()

	card := render.Card{
		AltText: "alt",
		Title:   "Activities",
		Blocks: []render.Block{
			{
				Lines: []string{"Raid", "Date: 2024-05-01"},
				Buttons: []render.Button{
					{Label: "Join", Data: "action=join_activity&id=x", Style: "primary", Kind: render.ButtonPostback},
				},
			},
			{
				Buttons: []render.Button{
					{Label: "Pick date & time", Data: "action=select_date", Style: "primary", Kind: render.ButtonDatetimePicker},
				},
			},
		},
	}

	b := bubble(card)
	assert.Equal(t, "bubble", b["type"])

	body, ok := b["body"].(map[string]any)
	require.True(t, ok)
	contents, ok := body["contents"].([]any)
	require.True(t, ok)

	// Title, two lines, one button, separator, one button.
	require.Len(t, contents, 6)

	title := contents[0].(map[string]any)
	assert.Equal(t, "Activities", title["text"])
	assert.Equal(t, "bold", title["weight"])

	button := contents[3].(map[string]any)
	action := button["action"].(map[string]any)
	assert.Equal(t, "postback", action["type"])
	assert.Equal(t, "action=join_activity&id=x", action["data"])

	separator := contents[4].(map[string]any)
	assert.Equal(t, "separator", separator["type"])

	picker := contents[5].(map[string]any)
	pickerAction := picker["action"].(map[string]any)
	assert.Equal(t, "datetimepicker", pickerAction["type"])
	assert.Equal(t, "datetime", pickerAction["mode"])
}
