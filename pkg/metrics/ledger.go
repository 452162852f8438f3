package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records counters for money-moving operations.
type LedgerMetrics struct {
	entriesCreated  *prometheus.CounterVec
	entriesResolved *prometheus.CounterVec
	amountMoved     *prometheus.CounterVec
	debitRejections prometheus.Counter
	reconciliation  prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	entriesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_created_total",
		Help: "Ledger entries created, by transaction type.",
	}, []string{"type"})
	entriesResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_resolved_total",
		Help: "Ledger entries resolved, by transaction type and terminal status.",
	}, []string{"type", "status"})
	amountMoved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_amount_moved_total",
		Help: "Currency units moved through completed ledger operations, by type.",
	}, []string{"type"})
	debitRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_debit_rejections_total",
		Help: "Debits refused because the guarded balance update matched no row.",
	})
	reconciliation := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reconciliation_incidents_total",
		Help: "Money-moving operations that failed mid-flight and need operator review.",
	})
	reg.MustRegister(entriesCreated, entriesResolved, amountMoved, debitRejections, reconciliation)
	return &LedgerMetrics{
		entriesCreated:  entriesCreated,
		entriesResolved: entriesResolved,
		amountMoved:     amountMoved,
		debitRejections: debitRejections,
		reconciliation:  reconciliation,
	}
}

// IncEntryCreated increments the created counter for the given type.
func (m *LedgerMetrics) IncEntryCreated(txType string) {
	if m == nil || m.entriesCreated == nil {
		return
	}
	m.entriesCreated.WithLabelValues(normalizeLabel(txType)).Inc()
}

// IncEntryResolved increments the resolved counter for the given type and status.
func (m *LedgerMetrics) IncEntryResolved(txType, status string) {
	if m == nil || m.entriesResolved == nil {
		return
	}
	m.entriesResolved.WithLabelValues(normalizeLabel(txType), normalizeLabel(status)).Inc()
}

// AddAmountMoved accumulates the currency units moved for the given type.
func (m *LedgerMetrics) AddAmountMoved(txType string, amount int64) {
	if m == nil || m.amountMoved == nil || amount <= 0 {
		return
	}
	m.amountMoved.WithLabelValues(normalizeLabel(txType)).Add(float64(amount))
}

// IncDebitRejection increments the refused-debit counter.
func (m *LedgerMetrics) IncDebitRejection() {
	if m == nil || m.debitRejections == nil {
		return
	}
	m.debitRejections.Inc()
}

// IncReconciliationIncident increments the manual-review counter.
func (m *LedgerMetrics) IncReconciliationIncident() {
	if m == nil || m.reconciliation == nil {
		return
	}
	m.reconciliation.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
