package ban

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bandesk/bandesk/internal/apperr"
)

// operations counts engine calls by operation and outcome.
var operations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "ban_operations_total",
		Help: "Number of ban engine operations, differentiated by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// observe records the outcome of one engine operation.
func observe(operation string, err error) {
	operations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperr.IsValidation(err):
		return "validation_error"
	case apperr.IsConflict(err):
		return "conflict"
	case apperr.IsAuthorization(err):
		return "authorization_error"
	case apperr.IsUnavailable(err):
		return "unavailable"
	case errors.Is(err, ErrBanNotFound):
		return "not_found"
	default:
		return "error"
	}
}
