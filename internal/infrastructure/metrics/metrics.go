package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	AccountsCreated  prometheus.Counter
	AccountsClosed   prometheus.Counter
	StorageErrors    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Idempotency metrics
	IdempotentReplays prometheus.Counter

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_ledger_operations_total",
				Help: "Total ledger and auth operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_closed_total",
			Help: "Total number of accounts closed",
		}),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_storage_errors_total",
				Help: "Total operations that failed because storage was unavailable",
			},
			[]string{"operation"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Idempotency metrics
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_idempotent_replays_total",
			Help: "Total requests answered from a stored idempotent response",
		}),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_auth_attempts_total",
				Help: "Total login attempts",
			},
			[]string{"status"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}

// RecordOperation implements usecase.Recorder.
func (m *Metrics) RecordOperation(operation string, err error) {
	m.LedgerOperations.WithLabelValues(operation, Outcome(err)).Inc()

	if errors.Is(err, domain.ErrStorageUnavailable) {
		m.StorageErrors.WithLabelValues(operation).Inc()
	}

	switch operation {
	case usecase.OpCreateAccount:
		if err == nil {
			m.AccountsCreated.Inc()
		}
	case usecase.OpCloseAccount:
		if err == nil {
			m.AccountsClosed.Inc()
		}
	case usecase.OpLogin:
		if err == nil {
			m.AuthAttempts.WithLabelValues("success").Inc()
		} else {
			m.AuthAttempts.WithLabelValues("failure").Inc()
			m.AuthFailures.WithLabelValues(Outcome(err)).Inc()
		}
	case usecase.OpVerifyToken:
		if err != nil {
			m.AuthFailures.WithLabelValues(Outcome(err)).Inc()
		}
	}
}

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrInvalidAmount, "invalid_amount"},
	{domain.ErrAccountNotFound, "not_found"},
	{domain.ErrRecipientNotFound, "recipient_not_found"},
	{domain.ErrRecipientInactive, "recipient_inactive"},
	{domain.ErrSameAccount, "same_account"},
	{domain.ErrInsufficientFunds, "insufficient_funds"},
	{domain.ErrAlreadyHasActiveAccount, "already_has_account"},
	{domain.ErrNonZeroBalance, "non_zero_balance"},
	{domain.ErrUserExists, "user_exists"},
	{domain.ErrInvalidCredentials, "invalid_credentials"},
	{domain.ErrInvalidUsername, "invalid_username"},
	{domain.ErrInvalidPassword, "invalid_password"},
	{domain.ErrTokenExpired, "token_expired"},
	{domain.ErrTokenInvalid, "token_invalid"},
	{domain.ErrStorageUnavailable, "storage_unavailable"},
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
