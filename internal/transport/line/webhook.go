// Package line is the LINE-facing transport: webhook intake, reply delivery,
// and profile lookups. Signature verification belongs to the SDK; everything
// past it is acknowledged with 200 so the platform never retries a delivery
// that merely failed processing.
package line

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/hikoguma/raidbot/internal/render"
)

// dispatcher is the command core the webhook feeds.
type dispatcher interface {
	HandleText(ctx context.Context, userID, text string) ([]render.Message, error)
	HandlePostback(ctx context.Context, userID, data string, params map[string]string) ([]render.Message, error)
}

// replier sends rendered messages against a reply token.
type replier interface {
	Reply(ctx context.Context, replyToken string, msgs []render.Message) error
}

// WebhookHandler receives LINE webhook deliveries and routes each event
// through the dispatcher.
type WebhookHandler struct {
	log           *slog.Logger
	channelSecret string
	dispatcher    dispatcher
	replier       replier
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(logger *slog.Logger, channelSecret string, d dispatcher, r replier) *WebhookHandler {
	return &WebhookHandler{
		log:           logger.With("component", "webhook"),
		channelSecret: channelSecret,
		dispatcher:    d,
		replier:       r,
	}
}

// ServeHTTP parses and verifies the delivery, then handles every event
// independently. A bad signature or body is the only 400; a handler failure
// is logged and the delivery is still acknowledged.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callback, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		h.log.WarnContext(r.Context(), "webhook rejected", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, event := range callback.Events {
		start := time.Now()
		if err := h.handleEvent(r.Context(), event); err != nil {
			h.log.ErrorContext(r.Context(), "event failed",
				"event_type", eventType(event), "duration", time.Since(start), "error", err)
			continue
		}
		h.log.InfoContext(r.Context(), "event handled",
			"event_type", eventType(event), "duration", time.Since(start))
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event webhook.EventInterface) error {
	switch e := event.(type) {
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return nil
		}
		userID := sourceUserID(e.Source)
		if userID == "" {
			return nil
		}

		msgs, err := h.dispatcher.HandleText(ctx, userID, text.Text)
		if err != nil {
			return err
		}
		return h.replier.Reply(ctx, e.ReplyToken, msgs)

	case webhook.PostbackEvent:
		userID := sourceUserID(e.Source)
		if userID == "" {
			return nil
		}

		msgs, err := h.dispatcher.HandlePostback(ctx, userID, e.Postback.Data, e.Postback.Params)
		if err != nil {
			return err
		}
		return h.replier.Reply(ctx, e.ReplyToken, msgs)
	}

	// Follows, joins, stickers and the rest are none of the bot's business.
	return nil
}

// sourceUserID extracts the acting user from any source kind. Group and room
// events still carry the sender's user ID unless they opted out.
func sourceUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}

func eventType(event webhook.EventInterface) string {
	switch event.(type) {
	case webhook.MessageEvent:
		return "message"
	case webhook.PostbackEvent:
		return "postback"
	default:
		return "other"
	}
}
