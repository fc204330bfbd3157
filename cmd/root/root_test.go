package root_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/cmd/root"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "cashflow", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "cash-flow tracker")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
}

func TestRootCommand_Flags(t *testing.T) {
	if root.Cmd.PersistentFlags().Lookup("log-level") == nil {
		root.Init()
	}
	flag := root.Cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestPersistentPreRunRejectsBadLevel(t *testing.T) {
	root.LogLevel = "loud"
	t.Cleanup(func() { root.LogLevel = "" })

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestLoadConfigAppliesLogLevel(t *testing.T) {
	root.LogLevel = "DEBUG"
	t.Cleanup(func() { root.LogLevel = "" })

	cfg, err := root.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewContainer(t *testing.T) {
	t.Setenv("CASHFLOW_STORE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("CASHFLOW_SCHEDULER_ENABLED", "false")

	c, err := root.NewContainer(context.Background())
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.GetScheduler())
}
