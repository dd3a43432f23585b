package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds  prometheus.Gauge
	executedOpCount    *prometheus.CounterVec
	rejectedOpCount    *prometheus.CounterVec
	opDuration         prometheus.Histogram
	walletCount        prometheus.Gauge
	sequencerQueueSize prometheus.Gauge
	panicCount         prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cryptocurrency_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		executedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptocurrency_executed_op_count",
				Help: "The total number of committed operations",
			},
			[]string{"kind"},
		),
		rejectedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptocurrency_rejected_op_count",
				Help: "The total number of rejected operations",
			},
			[]string{"reason"},
		),
		opDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cryptocurrency_op_duration_seconds",
				Help:    "Time spent executing one operation, commit included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
		),
		walletCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cryptocurrency_wallet_count",
				Help: "The number of wallets created since the node started, plus those loaded at startup",
			},
		),
		sequencerQueueSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cryptocurrency_sequencer_queue_size",
				Help: "Operations waiting to be executed",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "cryptocurrency_panic_count",
				Help: "Recovered panics in background goroutines",
			},
		),
	}
}

var (
	initOnce    sync.Once
	nodeMetrics *nodePromMetrics
)

// InitMetrics registers the node metrics. Until it is called every recorder is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
		logx.Info("MONITORING", "Prometheus metrics registered")
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordExecutedOp(kind string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.executedOpCount.With(prometheus.Labels{"kind": kind}).Inc()
}

func RecordRejectedOp(reason string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rejectedOpCount.With(prometheus.Labels{"reason": reason}).Inc()
}

func RecordOpDuration(duration time.Duration) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.opDuration.Observe(duration.Seconds())
}

func SetWalletCount(count int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.walletCount.Set(float64(count))
}

func IncreaseWalletCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.walletCount.Inc()
}

func SetSequencerQueueSize(size int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.sequencerQueueSize.Set(float64(size))
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
