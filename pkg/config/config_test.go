package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_TIMEOUT", "CACHE_TTL", "REPORT_FROM", "WEEKLY_REPORT_CRON", "SUPABASE_BUCKET"} {
		t.Setenv(k, "")
	}
	cfg := Load("does-not-exist.env")

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.DBTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "LexPro <onboarding@resend.dev>", cfg.ReportFrom)
	assert.Equal(t, "0 8 * * 1", cfg.WeeklyReportCron)
	assert.Equal(t, "reports", cfg.SupabaseBucket)
}

func TestLoad_Durations(t *testing.T) {
	t.Setenv("DB_TIMEOUT", "20")
	t.Setenv("CACHE_TTL", "90s")
	cfg := Load("does-not-exist.env")

	assert.Equal(t, 20*time.Second, cfg.DBTimeout)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)

	t.Setenv("DB_TIMEOUT", "soon")
	assert.Equal(t, 15*time.Second, Load("does-not-exist.env").DBTimeout)
}
