package logging

// Field names shared by every component so log lines can be filtered
// consistently.
const (
	FieldFile          = "file"
	FieldDialect       = "dialect"
	FieldRow           = "row"
	FieldTransactionID = "transaction_id"
	FieldSourceType    = "source_type"
	FieldCategory      = "category"
	FieldStrategy      = "strategy"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldSkipped       = "skipped"
	FieldCandidates    = "candidates"
	FieldScenarioID    = "scenario_id"
	FieldTemplateID    = "template_id"
	FieldPeriod        = "period"
	FieldMonths        = "months"
	FieldAmount        = "amount"
	FieldCategorized   = "categorized"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldAddr          = "addr"
	FieldJob           = "job"
	FieldSchedule      = "schedule"
)
