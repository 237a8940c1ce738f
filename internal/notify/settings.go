package notify

import (
	"context"
	"strconv"
	"strings"
)

const (
	KeyEmail   = "weekly_report_email"
	KeyEnabled = "weekly_report_enabled"
)

// SettingsStore is the key/value table behind the settings screen.
type SettingsStore interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Settings controls the weekly report email.
type Settings struct {
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Enabled bool   `json:"enabled"`
}

// LoadSettings reads both keys. Missing keys read as disabled with no address.
func LoadSettings(ctx context.Context, s SettingsStore) (Settings, error) {
	email, _, err := s.Setting(ctx, KeyEmail)
	if err != nil {
		return Settings{}, err
	}
	enabled, _, err := s.Setting(ctx, KeyEnabled)
	if err != nil {
		return Settings{}, err
	}
	on, _ := strconv.ParseBool(strings.TrimSpace(enabled))
	return Settings{Email: strings.TrimSpace(email), Enabled: on}, nil
}

func SaveSettings(ctx context.Context, s SettingsStore, in Settings) error {
	if err := s.PutSetting(ctx, KeyEmail, strings.TrimSpace(in.Email)); err != nil {
		return err
	}
	return s.PutSetting(ctx, KeyEnabled, strconv.FormatBool(in.Enabled))
}
