package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

func TestInstallmentWindowIncludesCutoffDay(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		items int
	}{
		{name: "first day of window", date: day(2024, 10, 22), items: 1},
		{name: "day before window", date: day(2024, 10, 21), items: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.OpenMemory(logging.NewMockLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			tx, err := models.NewTransactionBuilder().
				WithDate(tt.date).
				WithDescription("Loja X").
				WithAmount(dec("-100")).
				WithType(models.TypeExpense).
				WithSourceType(models.SourceCard).
				WithInstallment(3, 10).
				Build()
			require.NoError(t, err)
			require.NoError(t, s.CreateTransaction(context.Background(), &tx))

			p, err := newTestEngine(s).Project(context.Background(), 12, nil)
			require.NoError(t, err)
			assert.Len(t, p.Items, tt.items)
			if tt.items == 1 {
				assert.Equal(t, "Loja X (4/10)", p.Items[0].Name)
			}
		})
	}
}
