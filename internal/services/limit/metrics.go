package limit

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordCheck(string, bool) {}
func (n *NoopMetricsCollector) RecordCacheHit(string)    {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)   {}
