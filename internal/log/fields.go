package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldRowID       = "row_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldIntent      = "intent"
	FieldBackend     = "backend"
	FieldApproximate = "approximate"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentExpense   = "expense"
	ComponentAnalytics = "analytics"
	ComponentStore     = "store"
	ComponentExtractor = "extractor"
	ComponentAuth      = "auth"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)

// Operations defines standard operation names
const (
	OpSubmit    = "submit"
	OpGet       = "get"
	OpList      = "list"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpSearch    = "search"
	OpQuery     = "query"
	OpExtract   = "extract"
	OpSummarize = "summarize"
	OpSync      = "sync"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
