package observe

import "errors"

// Configuration errors. Config.Validate wraps them with the offending value.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

// Runtime errors.
var (
	// ErrNilObserver indicates a nil Observer was passed to MiddlewareFromObserver.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingFuncName indicates FuncMeta carries neither a name nor an ID.
	ErrMissingFuncName = errors.New("observe: function name is required")
)

// RedactedFields lists log field keys whose values are replaced with
// "[REDACTED]". Call arguments and results may carry user data.
var RedactedFields = []string{
	"args",
	"result",
	"input",
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
}
