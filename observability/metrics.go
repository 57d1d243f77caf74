package observability

import (
	"math/big"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

type marketMetrics struct {
	eventsTotal  *prometheus.CounterVec
	tradesTotal  *prometheus.CounterVec
	tradeVolume  *prometheus.CounterVec
	feesAccrued  *prometheus.CounterVec
	sweptSales   prometheus.Counter
	activeOffers prometheus.Gauge
}

var (
	marketMetricsOnce sync.Once
	marketRegistry    *marketMetrics
)

// MarketMetrics returns the lazily-initialised metrics registry tracking
// marketplace activity.
func MarketMetrics() *marketMetrics {
	marketMetricsOnce.Do(func() {
		marketRegistry = &marketMetrics{
			eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "events_total",
				Help:      "Count of marketplace events segmented by event type.",
			}, []string{"type"}),
			tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "trades_total",
				Help:      "Count of settled trades segmented by collection and denom.",
			}, []string{"collection", "denom"}),
			tradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "trade_volume_total",
				Help:      "Settled trade volume in base denomination units.",
			}, []string{"denom"}),
			feesAccrued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "fees_accrued_total",
				Help:      "Marketplace fees accrued in base denomination units.",
			}, []string{"denom"}),
			sweptSales: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "expired_sales_swept_total",
				Help:      "Count of expired sales removed by the background sweep.",
			}),
			activeOffers: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "chihuahua",
				Subsystem: "market",
				Name:      "open_offers",
				Help:      "Offers currently holding escrow.",
			}),
		}
		prometheus.MustRegister(
			marketRegistry.eventsTotal,
			marketRegistry.tradesTotal,
			marketRegistry.tradeVolume,
			marketRegistry.feesAccrued,
			marketRegistry.sweptSales,
			marketRegistry.activeOffers,
		)
	})
	return marketRegistry
}

// Emitter adapts the metrics registry to the engine's event sink so that
// every emitted event is counted without a second instrumentation pass.
type Emitter struct {
	metrics *marketMetrics
}

// NewEmitter returns an event sink backed by the shared metrics registry.
func NewEmitter() *Emitter {
	return &Emitter{metrics: MarketMetrics()}
}

// Emit records the event in Prometheus counters. Unknown or malformed
// attributes degrade to the bare event-type counter.
func (e *Emitter) Emit(event *events.Event) {
	if e == nil || e.metrics == nil || event == nil {
		return
	}
	eventType := strings.TrimSpace(event.Type)
	if eventType == "" {
		eventType = "unknown"
	}
	e.metrics.eventsTotal.WithLabelValues(eventType).Inc()

	switch eventType {
	case market.EventTypeSaleSold:
		collection := attribute(event, "collection")
		denom := attribute(event, "denom")
		e.metrics.tradesTotal.WithLabelValues(collection, denom).Inc()
		if amount := bigAttribute(event, "price"); amount != nil {
			e.metrics.tradeVolume.WithLabelValues(denom).Add(bigToFloat(amount))
		}
		if fee := bigAttribute(event, "fee"); fee != nil {
			e.metrics.feesAccrued.WithLabelValues(denom).Add(bigToFloat(fee))
		}
	case market.EventTypeSaleExpired:
		e.metrics.sweptSales.Inc()
	case market.EventTypeOfferCreated:
		e.metrics.activeOffers.Inc()
	case market.EventTypeOfferCancelled, market.EventTypeOfferRejected, market.EventTypeOfferAccepted:
		e.metrics.activeOffers.Dec()
	}
}

func attribute(event *events.Event, key string) string {
	value := strings.TrimSpace(event.Attributes[key])
	if value == "" {
		return "unknown"
	}
	return value
}

func bigAttribute(event *events.Event, key string) *big.Int {
	value, ok := new(big.Int).SetString(strings.TrimSpace(event.Attributes[key]), 10)
	if !ok {
		return nil
	}
	return value
}

func bigToFloat(amount *big.Int) float64 {
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f
}
