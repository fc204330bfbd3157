package models

// TransactionType classifies the direction of a record.
type TransactionType string

const (
	TypeIncome   TransactionType = "INCOME"
	TypeExpense  TransactionType = "EXPENSE"
	TypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Source types produced by the importers and generators.
const (
	SourceCard      = "XP_CARD"
	SourceAccount   = "XP_ACCOUNT"
	SourceManual    = "MANUAL"
	SourceRecurring = "RECURRING"
)

// CategoryUncategorized is the sentinel assigned when nothing better is known.
const CategoryUncategorized = "Uncategorized"

// Seeded category names.
const (
	CategoryHousing       = "Moradia"
	CategoryDogs          = "Dogs"
	CategoryFood          = "Alimentação"
	CategoryTransport     = "Transporte"
	CategoryHealth        = "Saúde"
	CategoryLeisure       = "Lazer"
	CategoryStreaming     = "Streaming"
	CategorySubscriptions = "Assinaturas"
	CategoryShopping      = "Compras"
	CategoryEducation     = "Educação"
	CategoryFinancialFees = "Serviços Financeiros"
	CategoryServices      = "Serviços Diversos"
	CategoryInvestments   = "Investimentos"
	CategorySalary        = "Salário"
	CategoryOtherIncome   = "Receita"
)

// RawDataSourceFilename is the provenance key holding the imported file name.
const RawDataSourceFilename = "source_filename"
