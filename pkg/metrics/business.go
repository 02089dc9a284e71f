package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Business holds the reconciliation collectors. A nil *Business is valid and
// records nothing.
type Business struct {
	process    *prometheus.HistogramVec
	outcome    *prometheus.CounterVec
	settlement *prometheus.CounterVec
	mismatch   prometheus.Counter
}

// NewBusiness registers the business collectors on reg. Collectors that are
// already registered are reused.
func NewBusiness(reg prometheus.Registerer) (*Business, error) {
	b := &Business{}
	for _, def := range []*Metric{MetricsBusinessProcess, MetricsReconcileOutcome, MetricsSettlementResult, MetricsAmountMismatch} {
		c, err := register(reg, NewMetric(def, ""))
		if err != nil {
			return nil, err
		}
		switch def {
		case MetricsBusinessProcess:
			b.process = c.(*prometheus.HistogramVec)
		case MetricsReconcileOutcome:
			b.outcome = c.(*prometheus.CounterVec)
		case MetricsSettlementResult:
			b.settlement = c.(*prometheus.CounterVec)
		case MetricsAmountMismatch:
			b.mismatch = c.(prometheus.Counter)
		}
	}
	return b, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// ObserveProcess records the latency of a business step, e.g. ("reconcile", "sepay").
func (b *Business) ObserveProcess(typ, subtype string, start time.Time) {
	if b == nil {
		return
	}
	b.process.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}

func (b *Business) IncOutcome(status, reason string) {
	if b == nil {
		return
	}
	b.outcome.WithLabelValues(status, reason).Inc()
}

func (b *Business) IncSettlement(trigger, result string) {
	if b == nil {
		return
	}
	b.settlement.WithLabelValues(trigger, result).Inc()
}

func (b *Business) IncAmountMismatch() {
	if b == nil {
		return
	}
	b.mismatch.Inc()
}

func newDefaultBusiness() (*Business, error) {
	return NewBusiness(prometheus.DefaultRegisterer)
}

var Module = fx.Options(
	fx.Provide(newDefaultBusiness),
)
