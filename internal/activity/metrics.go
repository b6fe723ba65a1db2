package activity

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// operationMetrics は登録系操作の結果を数えるPrometheusメトリクス。
type operationMetrics struct {
	// operations は操作種別と結果ごとの件数。
	operations *prometheus.CounterVec
}

func newOperationMetrics(registry prometheus.Registerer) *operationMetrics {
	m := &operationMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activities",
			Name:      "operations_total",
			Help:      "Number of login, register and unregister operations by result",
		}, []string{"operation", "result"}),
	}
	registry.MustRegister(m.operations)
	return m
}

// observe は操作結果を記録する。resultにはエラーの種類を表す短い名前を使う。
func (m *operationMetrics) observe(operation string, err error) {
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	default:
		return "error"
	}
}
