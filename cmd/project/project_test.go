package project_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/cmd/project"
	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/container"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	t.Setenv("CASHFLOW_STORE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("CASHFLOW_SCHEDULER_ENABLED", "false")
	c, err := root.NewContainer(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	c.GetProjection().Now = func() time.Time { return time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestProjectCommand_Flags(t *testing.T) {
	assert.Equal(t, "project", project.Cmd.Use)
	months := project.Cmd.Flags().Lookup("months")
	require.NotNil(t, months)
	assert.Equal(t, "12", months.DefValue)
	assert.NotNil(t, project.Cmd.Flags().Lookup("scenario"))
}

func TestRun(t *testing.T) {
	c := newContainer(t)
	ctx := context.Background()
	_, err := c.GetLedger().CreateTemplate(ctx, ledger.NewTemplate{
		Description: "Aluguel",
		Amount:      decimal.NewFromInt(-2500),
		Type:        models.TypeExpense,
		DayOfMonth:  5,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, project.Run(ctx, c.GetProjection(), &out, 3, nil, "table"))
	assert.Contains(t, out.String(), "Aluguel")
	assert.Contains(t, out.String(), "-2500.00")
	assert.Contains(t, out.String(), "Total")

	out.Reset()
	require.NoError(t, project.Run(ctx, c.GetProjection(), &out, 3, nil, "json"))
	var p models.Projection
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Len(t, p.Months, 3)
	require.Len(t, p.Items, 1)

	err = project.Run(ctx, c.GetProjection(), &out, 3, nil, "xml")
	assert.Error(t, err)
}
