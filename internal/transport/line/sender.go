package line

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/hikoguma/raidbot/internal/render"
)

// Sender delivers rendered messages through the Messaging API reply endpoint.
type Sender struct {
	api *messaging_api.MessagingApiAPI
}

// NewSender creates a Sender.
func NewSender(api *messaging_api.MessagingApiAPI) *Sender {
	return &Sender{api: api}
}

// Reply sends the rendered messages against a reply token. A token is valid
// for a single reply, so all messages go in one call. An empty batch is a
// no-op.
func (s *Sender) Reply(_ context.Context, replyToken string, msgs []render.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	payload, err := toMessages(msgs)
	if err != nil {
		return err
	}

	if _, err := s.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   payload,
	}); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}

	return nil
}

func toMessages(msgs []render.Message) ([]messaging_api.MessageInterface, error) {
	out := make([]messaging_api.MessageInterface, 0, len(msgs))
	for _, m := range msgs {
		switch v := m.(type) {
		case render.Text:
			out = append(out, messaging_api.TextMessage{Text: string(v)})
		case render.Card:
			flex, err := flexMessage(v)
			if err != nil {
				return nil, err
			}
			out = append(out, flex)
		default:
			return nil, fmt.Errorf("unsupported message type %T", m)
		}
	}

	return out, nil
}

// flexMessage renders a card as a Flex bubble. The bubble is built as JSON
// and unmarshalled through the SDK, which validates the container shape.
func flexMessage(c render.Card) (messaging_api.FlexMessage, error) {
	raw, err := json.Marshal(bubble(c))
	if err != nil {
		return messaging_api.FlexMessage{}, fmt.Errorf("marshal flex bubble: %w", err)
	}

	contents, err := messaging_api.UnmarshalFlexContainer(raw)
	if err != nil {
		return messaging_api.FlexMessage{}, fmt.Errorf("build flex container: %w", err)
	}

	return messaging_api.FlexMessage{
		AltText:  c.AltText,
		Contents: contents,
	}, nil
}

// bubble lays the card out as one vertical box: title, then each block's
// lines and buttons, with separators between blocks.
func bubble(c render.Card) map[string]any {
	contents := []any{
		map[string]any{
			"type":   "text",
			"text":   c.Title,
			"weight": "bold",
			"size":   "lg",
			"wrap":   true,
		},
	}

	for i, block := range c.Blocks {
		if i > 0 {
			contents = append(contents, map[string]any{"type": "separator", "margin": "md"})
		}
		for _, line := range block.Lines {
			contents = append(contents, map[string]any{
				"type":  "text",
				"text":  line,
				"size":  "sm",
				"color": "#555555",
				"wrap":  true,
			})
		}
		for _, btn := range block.Buttons {
			contents = append(contents, map[string]any{
				"type":   "button",
				"style":  btn.Style,
				"height": "sm",
				"margin": "sm",
				"action": buttonAction(btn),
			})
		}
	}

	return map[string]any{
		"type": "bubble",
		"body": map[string]any{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": contents,
		},
	}
}

func buttonAction(btn render.Button) map[string]any {
	action := map[string]any{
		"label": btn.Label,
		"data":  btn.Data,
	}

	switch btn.Kind {
	case render.ButtonDatetimePicker:
		action["type"] = "datetimepicker"
		action["mode"] = "datetime"
	default:
		action["type"] = "postback"
	}

	return action
}
