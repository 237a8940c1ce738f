package bootstrap

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/pkg/config"
)

func TestRouterRequiresJWTSecret(t *testing.T) {
	a := &App{Cfg: config.Config{}, Log: zap.NewNop()}
	_, err := a.Router()
	assert.Error(t, err)
}

func TestRouterProtectsAPI(t *testing.T) {
	a := &App{
		Cfg:   config.Config{SupabaseJWTSecret: "secret"},
		Log:   zap.NewNop(),
		Cache: cache.New(nil, time.Minute, zap.NewNop()),
	}
	app, err := a.Router()
	require.NoError(t, err)

	for _, path := range []string{"/api/dashboard", "/api/cases", "/api/lawyers", "/api/settings/weekly-report"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestLiquidationRequiresStaffRole(t *testing.T) {
	a := &App{
		Cfg:   config.Config{SupabaseJWTSecret: "secret"},
		Log:   zap.NewNop(),
		Cache: cache.New(nil, time.Minute, zap.NewNop()),
	}
	app, err := a.Router()
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Sub:  "6f1c2a9e-4a57-4d8e-9a0b-0f5d0c3e7b21",
		Role: "anon",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for _, path := range []string{
		"/api/commissions/liquidate-all",
		"/api/allocations/6f1c2a9e-4a57-4d8e-9a0b-0f5d0c3e7b21/liquidate",
		"/api/cases/6f1c2a9e-4a57-4d8e-9a0b-0f5d0c3e7b21/liquidate-legacy",
	} {
		req := httptest.NewRequest("POST", path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode, path)
	}
}
