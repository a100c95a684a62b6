package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	read      func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool statistics, read on every scrape.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string
	metrics []poolMetric
}

// NewPoolStatsCollector creates a collector for pool labelled with service.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	c := &PoolStatsCollector{pool: pool, service: service}

	gauge := func(name, help string, read func(*pgxpool.Stat) float64) {
		c.add(name, help, prometheus.GaugeValue, read)
	}
	counter := func(name, help string, read func(*pgxpool.Stat) float64) {
		c.add(name, help, prometheus.CounterValue, read)
	}

	gauge("db_pool_acquired_connections", "Connections currently checked out of the pool.",
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	gauge("db_pool_idle_connections", "Connections currently idle in the pool.",
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
	gauge("db_pool_total_connections", "Connections currently open.",
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })
	gauge("db_pool_max_connections", "Configured pool size.",
		func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) })
	counter("db_pool_acquire_count_total", "Successful connection acquisitions.",
		func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) })
	counter("db_pool_acquire_duration_seconds_total", "Time spent acquiring connections.",
		func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() })
	counter("db_pool_empty_acquire_count_total", "Acquisitions that waited for a free connection.",
		func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) })
	counter("db_pool_canceled_acquire_count_total", "Acquisitions cancelled by their context.",
		func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) })
	counter("db_pool_new_connections_total", "Connections opened.",
		func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) })

	return c
}

func (c *PoolStatsCollector) add(name, help string, vt prometheus.ValueType, read func(*pgxpool.Stat) float64) {
	c.metrics = append(c.metrics, poolMetric{
		desc:      prometheus.NewDesc(name, help, []string{"service"}, nil),
		valueType: vt,
		read:      read,
	})
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.read(stat), c.service)
	}
}

// RegisterPoolMetrics registers a collector for pool with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
