package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SettlementTotal counts completed settlement attempts by outcome and payment method.
	SettlementTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "settlement_total",
		Help:      "Count of settlement attempts by outcome.",
	}, []string{"outcome", "method"})
	// ReceivablePaymentTotal counts receivable payment recording outcomes.
	ReceivablePaymentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "receivable_payment_total",
		Help:      "Count of receivable payment attempts by result.",
	}, []string{"result"})
	// CartClampTotal counts cart mutations that were clamped to the stock ceiling.
	CartClampTotal prometheus.Counter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "cart_clamp_total",
		Help:      "Number of cart quantity mutations clamped to the stock ceiling.",
	})
	// DiscountClampTotal counts settlements where the additional discount was clamped to the subtotal.
	DiscountClampTotal prometheus.Counter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "discount_clamp_total",
		Help:      "Number of settlements where the additional discount exceeded the subtotal.",
	})
)

// MustRegisterDomainMetrics registers the domain collectors. The collectors
// exist before registration so services can increment them in tests without
// touching a registry.
func MustRegisterDomainMetrics(reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		mustRegisterCollector(reg, SettlementTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SettlementTotal = v
			}
		})
		mustRegisterCollector(reg, ReceivablePaymentTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReceivablePaymentTotal = v
			}
		})
		mustRegisterCollector(reg, CartClampTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartClampTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountClampTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountClampTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
