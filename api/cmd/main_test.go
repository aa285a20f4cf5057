package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "dev",
		HTTPAddr:        ":8086",
		JWTSecret:       "test-secret",
		JWTIssuer:       "test-issuer",
		IngestWorkers:   2,
		IngestQueueSize: 8,
		ViewDedupTTL:    time.Hour,
		SyncInterval:    time.Hour,
		CronSecret:      "cron",
	}
}

func TestNewApp(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("should_wire_with_in_process_store", func(t *testing.T) {
		cfg := testConfig()
		app, err := NewApp(cfg, db)
		require.NoError(t, err)

		assert.Equal(t, cfg.HTTPAddr, app.Server.Addr)
		assert.NotNil(t, app.Server.Handler, "HTTP Handler should be initialized")
		assert.Nil(t, app.Redis)
		assert.Nil(t, app.Publisher)

		rr := httptest.NewRecorder()
		app.Server.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		app.Shutdown(context.Background())
	})

	t.Run("should_wire_with_redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.RedisURL = "redis://" + mr.Addr()

		app, err := NewApp(cfg, db)
		require.NoError(t, err)
		assert.NotNil(t, app.Redis)
		app.Shutdown(context.Background())
	})

	t.Run("should_fail_on_unreachable_redis", func(t *testing.T) {
		cfg := testConfig()
		cfg.RedisURL = "redis://127.0.0.1:1"

		_, err := NewApp(cfg, db)
		assert.Error(t, err)
	})
}

func TestApp_StartRespectsSyncToggle(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.SyncEnabled = false
	app, err := NewApp(cfg, db)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)
	cancel()
	app.Shutdown(context.Background())
}

func TestSysClock_Now(t *testing.T) {
	assert.Equal(t, "UTC", sysClock{}.Now().Location().String())
}
