package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chatshield/internal/server/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "users.db")
	cfg.LogLevel = "error"
	return cfg
}

func TestNewApp_OpensStore(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, app.db.Ping())
	require.NoError(t, app.db.Close())
}

func TestNewApp_BadDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "missing", "dir", "users.db")

	_, err := NewApp(cfg)
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.Error(t, app.db.Ping(), "database should be closed")
}
