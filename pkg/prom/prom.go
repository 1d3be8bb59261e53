package prom

import (
	"fmt"
	"sync"

	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemLedger        = "ledger"
	SystemDebtors       = "debtors"
	SystemNotifications = "notifications"
)

const (
	MetricPostings         = "postings_total"
	MetricRejections       = "rejections_total"
	MetricCreated          = "created_total"
	MetricPurged           = "purged_total"
	MetricDelivered        = "delivered_total"
	MetricDeliveryDuration = "delivery_duration_seconds"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeHistogramVec = "histogramVec"
)

var (
	mu                  sync.RWMutex
	namespace           = "none"
	defaultLabels       prometheus.Labels
	MetricSystemEnabled bool
	registry            = prometheus.DefaultRegisterer
)

var (
	counters      = map[string]prometheus.Counter{}
	counterVecs   = map[string]*prometheus.CounterVec{}
	histogramVecs = map[string]*prometheus.HistogramVec{}
)

// Create registers the metrics of the service. Calling it again is a no-op.
func Create(host string, env string, nameSpace string) error {
	mu.Lock()
	if MetricSystemEnabled {
		mu.Unlock()
		return nil
	}
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	mu.Unlock()

	metrics := []struct {
		kind, subsystem, name string
		labels                []string
	}{
		{TypeCounterVec, SystemLedger, MetricPostings, []string{"type"}},
		{TypeCounterVec, SystemLedger, MetricRejections, []string{"reason"}},
		{TypeCounter, SystemDebtors, MetricCreated, nil},
		{TypeCounter, SystemDebtors, MetricPurged, nil},
		{TypeCounterVec, SystemNotifications, MetricDelivered, []string{"result"}},
		{TypeHistogramVec, SystemNotifications, MetricDeliveryDuration, []string{"relay"}},
	}
	for _, m := range metrics {
		if err := CreateMetric(m.kind, m.subsystem, m.name, m.labels...); err != nil {
			return err
		}
	}

	mu.Lock()
	MetricSystemEnabled = true
	mu.Unlock()
	return nil
}

func CreateMetric(metricType, subsystem, name string, labels ...string) error {
	mu.Lock()
	defer mu.Unlock()

	opts := prometheus.Opts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        subsystem + " " + name,
		ConstLabels: defaultLabels,
	}
	key := subsystem + name

	var c prometheus.Collector
	switch metricType {
	case TypeCounter:
		counters[key] = prometheus.NewCounter(prometheus.CounterOpts(opts))
		c = counters[key]
	case TypeCounterVec:
		counterVecs[key] = prometheus.NewCounterVec(prometheus.CounterOpts(opts), labels)
		c = counterVecs[key]
	case TypeHistogramVec:
		histogramVecs[key] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        opts.Name,
			Help:        opts.Help,
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		}, labels)
		c = histogramVecs[key]
	default:
		return fmt.Errorf("metric type %s is not defined", metricType)
	}
	return registry.Register(c)
}

// ListenAndServer exposes the default registry on addr. It blocks.
func ListenAndServer(addr string, url string) {
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.GET(url, fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	logger.Info("[metrics-server] listening", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func IncCounter(subsystem, name string) {
	AddCounter(subsystem, name, 1)
}

func AddCounter(subsystem, name string, n float64) {
	mu.RLock()
	defer mu.RUnlock()
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counters[subsystem+name]; ok {
		v.Add(n)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	mu.RLock()
	defer mu.RUnlock()
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counterVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func ObserveHistogramVec(subsystem, name string, value float64, labelValues ...string) {
	mu.RLock()
	defer mu.RUnlock()
	if !MetricSystemEnabled {
		return
	}
	if v, ok := histogramVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(value)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func RecordPosting(tranType string) {
	IncCounterVec(SystemLedger, MetricPostings, tranType)
}

func RecordRejection(reason string) {
	IncCounterVec(SystemLedger, MetricRejections, reason)
}

func RecordDebtorCreated() {
	IncCounter(SystemDebtors, MetricCreated)
}

func RecordPurged(n int) {
	AddCounter(SystemDebtors, MetricPurged, float64(n))
}

func RecordNotification(result string) {
	IncCounterVec(SystemNotifications, MetricDelivered, result)
}

func RecordDeliveryDuration(relay string, seconds float64) {
	ObserveHistogramVec(SystemNotifications, MetricDeliveryDuration, seconds, relay)
}
