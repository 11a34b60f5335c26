package logging

// Standardized field names for structured logging.
const (
	FieldFile         = "file_path"
	FieldFormat       = "format"
	FieldParser       = "parser"
	FieldCategory     = "category"
	FieldReason       = "reason"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldOrganization = "organization_id"
	FieldTransaction  = "transaction_id"
	FieldScore        = "score"
	FieldPattern      = "pattern"
	FieldConfidence   = "confidence"
	FieldLine         = "line"
	FieldService      = "service"
)
