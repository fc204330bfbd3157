package materialize_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/cmd/materialize"
	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
)

func TestRun(t *testing.T) {
	t.Setenv("CASHFLOW_STORE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("CASHFLOW_SCHEDULER_ENABLED", "false")
	c, err := root.NewContainer(context.Background())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, err = c.GetLedger().CreateTemplate(ctx, ledger.NewTemplate{
		Description: "Internet",
		Amount:      decimal.NewFromInt(-120),
		Type:        models.TypeExpense,
		DayOfMonth:  10,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, materialize.Run(ctx, c.GetLedger(), &out, 2025, 3))
	assert.Equal(t, "Generated 1 transactions for 3/2025\n", out.String())

	out.Reset()
	require.NoError(t, materialize.Run(ctx, c.GetLedger(), &out, 2025, 3))
	assert.Equal(t, "Generated 0 transactions for 3/2025\n", out.String())

	assert.Error(t, materialize.Run(ctx, c.GetLedger(), &out, 2025, 0))
}

func TestMaterializeCommand_Flags(t *testing.T) {
	assert.Equal(t, "materialize", materialize.Cmd.Use)
	assert.NotNil(t, materialize.Cmd.Flags().Lookup("year"))
	assert.NotNil(t, materialize.Cmd.Flags().Lookup("month"))
}
