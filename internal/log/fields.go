package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldEndpoint   = "endpoint"
	FieldCategory   = "category"
	FieldTxID       = "transaction_id"
	FieldStale      = "stale"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAPI       = "api"
	ComponentSession   = "session"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpRefresh  = "refresh"
	OpRestore  = "restore"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpFetch    = "fetch"
	OpSnapshot = "snapshot"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
