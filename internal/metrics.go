package internal

import (
	"sort"
	"sync"
	"time"
)

type MetricsCollector struct {
	logger *Logger

	requestCount    map[string]int64
	requestDuration map[string][]int64
	apiErrors       map[string]int64

	upstreamCalls  map[string]int64
	cacheHits      map[string]int64
	cacheMisses    map[string]int64
	throttleEvents int64
	runDurations   []int64
	runsAborted    int64

	mu sync.RWMutex
}

func NewMetricsCollector(logger *Logger) *MetricsCollector {
	mc := &MetricsCollector{
		logger:          logger,
		requestCount:    make(map[string]int64),
		requestDuration: make(map[string][]int64),
		apiErrors:       make(map[string]int64),
		upstreamCalls:   make(map[string]int64),
		cacheHits:       make(map[string]int64),
		cacheMisses:     make(map[string]int64),
	}

	go mc.startMetricsReporter()
	return mc
}

func (mc *MetricsCollector) RecordRequest(endpoint string, duration time.Duration, statusCode int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.requestCount[endpoint]++
	mc.requestDuration[endpoint] = append(mc.requestDuration[endpoint], duration.Milliseconds())

	if statusCode >= 400 {
		mc.apiErrors[endpoint]++
	}
}

func (mc *MetricsCollector) RecordUpstreamCall(operation string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.upstreamCalls[operation]++
}

func (mc *MetricsCollector) RecordCacheHit(namespace string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cacheHits[namespace]++
}

func (mc *MetricsCollector) RecordCacheMiss(namespace string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cacheMisses[namespace]++
}

func (mc *MetricsCollector) RecordThrottle() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.throttleEvents++
}

func (mc *MetricsCollector) RecordRun(duration time.Duration, aborted bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.runDurations = append(mc.runDurations, duration.Milliseconds())
	if aborted {
		mc.runsAborted++
	}
}

func (mc *MetricsCollector) startMetricsReporter() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mc.reportMetrics()
	}
}

func (mc *MetricsCollector) reportMetrics() {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	mc.logger.Info("metrics_report").
		Component("metrics").
		Operation("report").
		Meta("total_requests", mc.sumMapValues(mc.requestCount)).
		Meta("total_errors", mc.sumMapValues(mc.apiErrors)).
		Meta("upstream_calls", mc.upstreamCalls).
		Meta("cache_hits", mc.cacheHits).
		Meta("cache_misses", mc.cacheMisses).
		Meta("cache_hit_rate_percent", mc.calculateCacheHitRate()).
		Meta("throttle_events", mc.throttleEvents).
		Meta("runs", len(mc.runDurations)).
		Meta("runs_aborted", mc.runsAborted).
		Meta("run_duration_avg_ms", mc.calculateAverage(mc.runDurations)).
		Meta("run_duration_p95_ms", mc.calculatePercentile(mc.runDurations, 0.95)).
		Log()
}

func (mc *MetricsCollector) sumMapValues(m map[string]int64) int64 {
	sum := int64(0)
	for _, count := range m {
		sum += count
	}
	return sum
}

func (mc *MetricsCollector) calculateCacheHitRate() float64 {
	hits := mc.sumMapValues(mc.cacheHits)
	total := hits + mc.sumMapValues(mc.cacheMisses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

func (mc *MetricsCollector) calculateAverage(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := int64(0)
	for _, v := range values {
		sum += v
	}

	return float64(sum) / float64(len(values))
}

func (mc *MetricsCollector) calculatePercentile(values []int64, percentile float64) int64 {
	if len(values) == 0 {
		return 0
	}

	sortedValues := make([]int64, len(values))
	copy(sortedValues, values)
	sort.Slice(sortedValues, func(i, j int) bool {
		return sortedValues[i] < sortedValues[j]
	})

	index := int(percentile * float64(len(sortedValues)-1))
	return sortedValues[index]
}

func (mc *MetricsCollector) GetMetrics() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return map[string]interface{}{
		"cache": map[string]interface{}{
			"hits":     mc.cacheHits,
			"misses":   mc.cacheMisses,
			"hit_rate": mc.calculateCacheHitRate(),
		},
		"upstream": map[string]interface{}{
			"calls":           mc.upstreamCalls,
			"throttle_events": mc.throttleEvents,
		},
		"runs": map[string]interface{}{
			"count":           int64(len(mc.runDurations)),
			"aborted":         mc.runsAborted,
			"avg_duration_ms": mc.calculateAverage(mc.runDurations),
			"p95_duration_ms": mc.calculatePercentile(mc.runDurations, 0.95),
		},
		"requests": mc.requestCount,
		"errors":   mc.apiErrors,
	}
}
