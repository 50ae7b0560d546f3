package observability

import "github.com/cardlore/cardlore/internal/types"

// Observability error codes
const (
	ErrCodeExporterConnection  types.ErrorCode = "OBSERVABILITY_EXPORTER_CONNECTION"
	ErrCodeMetricsRegistration types.ErrorCode = "OBSERVABILITY_METRICS_REGISTRATION"
	ErrCodeShutdownTimeout     types.ErrorCode = "OBSERVABILITY_SHUTDOWN_TIMEOUT"
)
