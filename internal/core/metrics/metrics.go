package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ultralight"

// Metrics ultralight 指标集合
//
// 零值不可用，使用 New 创建。nil *Metrics 的所有记录方法都是空操作。
type Metrics struct {
	registry *prometheus.Registry

	reconstructions *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	bookRebuilds    prometheus.Counter
	bookBuckets     prometheus.Gauge
	bookPeers       prometheus.Gauge
}

// New 创建指标集合并注册到新的私有 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconstructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconstructions_total",
			Help:      "Block reconstructions by final state.",
		}, []string{"state"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed content fetches by block part.",
		}, []string{"part"}),
		bookRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "addressbook",
			Name:      "rebuilds_total",
			Help:      "Address book recomputations.",
		}),
		bookBuckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "addressbook",
			Name:      "buckets",
			Help:      "Non-empty distance buckets in the current address book.",
		}),
		bookPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "addressbook",
			Name:      "peers",
			Help:      "Peers in the current address book.",
		}),
	}

	m.registry.MustRegister(
		m.reconstructions,
		m.fetchFailures,
		m.bookRebuilds,
		m.bookBuckets,
		m.bookPeers,
	)
	return m
}

// Registry 返回私有 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ReconstructionFinished 记录一次重建的最终状态
func (m *Metrics) ReconstructionFinished(state string) {
	if m == nil {
		return
	}
	m.reconstructions.WithLabelValues(state).Inc()
}

// FetchFailed 记录一次区块部件获取失败（header / body）
func (m *Metrics) FetchFailed(part string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(part).Inc()
}

// AddressBookRebuilt 记录一次地址簿重新计算
func (m *Metrics) AddressBookRebuilt(buckets, peers int) {
	if m == nil {
		return
	}
	m.bookRebuilds.Inc()
	m.bookBuckets.Set(float64(buckets))
	m.bookPeers.Set(float64(peers))
}
