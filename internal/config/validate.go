package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Line.ChannelSecret == "" {
		return fmt.Errorf("line.channel_secret is required")
	}
	if c.Line.ChannelToken == "" {
		return fmt.Errorf("line.channel_token is required")
	}
	if c.Line.APITimeout <= 0 {
		return fmt.Errorf("line.api_timeout must be > 0 (got %v)", c.Line.APITimeout)
	}

	if err := c.Bot.validate(); err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	return nil
}

func (b *BotConfig) validate() error {
	if b.StateTTL <= 0 {
		return fmt.Errorf("state_ttl must be > 0 (got %v)", b.StateTTL)
	}
	if b.StateSweepInterval <= 0 {
		return fmt.Errorf("state_sweep_interval must be > 0 (got %v)", b.StateSweepInterval)
	}

	b.Templates = ParseTemplates(b.TemplatesRaw)

	return nil
}

// ParseTemplates parses a comma-separated list of activity template names.
// Blank items are skipped; an empty string returns a nil slice.
func ParseTemplates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	templates := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		templates = append(templates, p)
	}

	if len(templates) == 0 {
		return nil
	}

	return templates
}
