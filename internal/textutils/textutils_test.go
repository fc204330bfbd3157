package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInstallment(t *testing.T) {
	tests := []struct {
		raw    string
		want   Installment
		wantOK bool
	}{
		{"1 de 10", Installment{1, 10}, true},
		{"01/12", Installment{1, 12}, true},
		{"3 DE 4", Installment{3, 4}, true},
		{"Parcela 2/6", Installment{2, 6}, true},
		{"5", Installment{1, 1}, true},
		{"", Installment{}, false},
		{"-", Installment{}, false},
		{"única", Installment{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseInstallment(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "lancamento", Fold("Lançamento"))
	assert.Equal(t, "descricao", Fold(" Descrição "))
	assert.Equal(t, "uber trip sao paulo", Fold("UBER   TRIP  São Paulo"))
	assert.Equal(t, "saude", Fold("SAÚDE"))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("PAGAMENTO DE FATURA - CARTÃO", "pagamento de fatura"))
	assert.True(t, ContainsFold("Farmácia São João", "FARMACIA"))
	assert.False(t, ContainsFold("Mercado", ""))
	assert.False(t, ContainsFold("Mercado", "posto"))
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, "Data", StripBOM("\ufeffData"))
	assert.Equal(t, "Data", StripBOM("Data"))
}
