package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// ProfileClient resolves display names through the Messaging API. The SDK
// client carries its own HTTP timeout, so lookups cannot hang past it.
type ProfileClient struct {
	api *messaging_api.MessagingApiAPI
}

// NewProfileClient creates a ProfileClient.
func NewProfileClient(api *messaging_api.MessagingApiAPI) *ProfileClient {
	return &ProfileClient{api: api}
}

// DisplayName returns the user's profile display name. The context is
// accepted for interface symmetry; the SDK bounds the call with its client
// timeout.
func (c *ProfileClient) DisplayName(_ context.Context, userID string) (string, error) {
	profile, err := c.api.GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("get profile %s: %w", userID, err)
	}

	return profile.DisplayName, nil
}
